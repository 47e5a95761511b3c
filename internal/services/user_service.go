package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/auth"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/log"
)

// UserService handles signup, login and user management, including the
// category set and its deletion cascade.
type UserService struct {
	users  UserStore
	tokens *auth.Tokens
	logger *log.Logger
}

func NewUserService(users UserStore, tokens *auth.Tokens, logger *log.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

type SignupInput struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Income   core.Money `json:"income"`
}

type UserUpdate struct {
	Name   *string     `json:"name"`
	Email  *string     `json:"email"`
	Income *core.Money `json:"income"`
}

// CascadeReport is the outcome of a category removal: the user's remaining
// categories plus the ids of every expense whose allocation was rewritten.
type CascadeReport struct {
	Categories       []string `json:"categories"`
	ModifiedExpenses []string `json:"modifiedExpenses"`
}

// Signup registers a new user seeded with the default category set and
// returns the user together with a fresh bearer token.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (core.User, string, error) {
	if err := core.ValidatePassword(in.Password); err != nil {
		return core.User{}, "", apperr.New(apperr.CodeInvalid, err.Error())
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, "", apperr.Wrap(apperr.CodeInternal, "hash password", err)
	}

	u := core.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Income:       in.Income,
		Categories:   append([]string(nil), core.DefaultCategories...),
		CreatedAt:    time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return core.User{}, "", apperr.New(apperr.CodeInvalid, err.Error())
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return core.User{}, "", err
	}

	token, err := s.tokens.Issue(u.ID, u.Name)
	if err != nil {
		return core.User{}, "", apperr.Wrap(apperr.CodeInternal, "issue token", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID)
	return u, token, nil
}

// Login verifies credentials and returns the user with a fresh bearer token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsNotFound(err) {
			return core.User{}, "", apperr.New(apperr.CodeUnauthorized, "invalid credentials")
		}
		return core.User{}, "", err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return core.User{}, "", apperr.New(apperr.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID, u.Name)
	if err != nil {
		return core.User{}, "", apperr.Wrap(apperr.CodeInternal, "issue token", err)
	}
	return u, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (core.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (core.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Income != nil {
		u.Income = *in.Income
	}
	if err := u.Validate(); err != nil {
		return core.User{}, apperr.New(apperr.CodeInvalid, err.Error())
	}

	if err := s.users.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Delete removes the user and all of their expenses.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", log.FieldUserID, id)
	return nil
}

// AddCategory adds a label to the user's category set. Adding a label the
// user already declares is a no-op; the updated set is returned either way.
func (s *UserService) AddCategory(ctx context.Context, userID, label string) ([]string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperr.New(apperr.CodeInvalid, "provide a category")
	}
	return s.users.AddCategory(ctx, userID, label)
}

// RemoveCategory removes a label from the user's category set and rewrites
// every expense of that user whose split allocation still references it,
// folding the amount into Uncategorised.
func (s *UserService) RemoveCategory(ctx context.Context, userID, label string) (CascadeReport, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return CascadeReport{}, apperr.New(apperr.CodeInvalid, "provide a category")
	}
	if label == core.Uncategorised {
		return CascadeReport{}, apperr.Newf(apperr.CodeInvalid, "cannot remove the %s category", core.Uncategorised)
	}

	categories, modified, err := s.users.RemoveCategoryAndReallocate(ctx, userID, label)
	if err != nil {
		return CascadeReport{}, err
	}

	s.logger.InfoContext(ctx, "Category removed",
		log.FieldUserID, userID,
		"category", label,
		"modified_expenses", len(modified))
	return CascadeReport{Categories: categories, ModifiedExpenses: modified}, nil
}
