package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/auth"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newUserService(store *memStore) *UserService {
	tokens := auth.NewTokens("test-secret", time.Hour)
	return NewUserService(store, tokens, testLogger())
}

func TestSignupSeedsDefaults(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)

	user, token, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "sufficiently-long",
		Income:   core.Money{Cents: 300000},
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == "sufficiently-long" {
		t.Error("password stored in plaintext")
	}
	if len(user.Categories) != len(core.DefaultCategories) {
		t.Errorf("categories = %v, want defaults", user.Categories)
	}
}

func TestSignupRejectsBadPassword(t *testing.T) {
	svc := newUserService(newMemStore())

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "short",
	})
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newUserService(newMemStore())
	ctx := context.Background()

	in := SignupInput{Name: "Ada", Email: "ada@example.com", Password: "sufficiently-long"}
	if _, _, err := svc.Signup(ctx, in); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, _, err := svc.Signup(ctx, in)
	if apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("code = %v, want CodeConflict", apperr.CodeOf(err))
	}
}

func TestLoginRoundTrip(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	created, _, err := svc.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "sufficiently-long",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	user, token, err := svc.Login(ctx, "ada@example.com", "sufficiently-long")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("logged in as %q, want %q", user.ID, created.ID)
	}

	claims, err := auth.NewTokens("test-secret", time.Hour).Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != created.ID {
		t.Errorf("token subject = %q, want %q", claims.UserID(), created.ID)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	svc := newUserService(newMemStore())
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "sufficiently-long",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"ada@example.com", "wrong-password-here"},
		{"nobody@example.com", "sufficiently-long"},
	} {
		_, _, err := svc.Login(ctx, tc.email, tc.password)
		if apperr.CodeOf(err) != apperr.CodeUnauthorized {
			t.Errorf("Login(%q) code = %v, want CodeUnauthorized", tc.email, apperr.CodeOf(err))
		}
	}
}

func TestAddCategoryIdempotent(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "sufficiently-long",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	first, err := svc.AddCategory(ctx, user.ID, "Travel")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	second, err := svc.AddCategory(ctx, user.ID, "Travel")
	if err != nil {
		t.Fatalf("AddCategory again: %v", err)
	}
	if len(first) != len(second) {
		t.Errorf("set grew on duplicate add: %v vs %v", first, second)
	}
}

func TestAddCategoryRejectsBlank(t *testing.T) {
	svc := newUserService(newMemStore())
	_, err := svc.AddCategory(context.Background(), "user-1", "   ")
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestRemoveCategoryGuards(t *testing.T) {
	svc := newUserService(newMemStore())
	ctx := context.Background()

	if _, err := svc.RemoveCategory(ctx, "user-1", " "); apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("blank label: code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
	if _, err := svc.RemoveCategory(ctx, "user-1", core.Uncategorised); apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("Uncategorised: code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestRemoveCategoryCascade(t *testing.T) {
	store := newMemStore()
	userSvc := newUserService(store)
	expenseSvc := NewExpenseService(store, store)
	ctx := context.Background()

	user, _, err := userSvc.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "sufficiently-long",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	expense, err := expenseSvc.Create(ctx, user.ID, ExpenseInput{
		Description:     "Groceries run",
		ProductDetails:  core.Allocation{"Milk": {Cents: 2000}, "Bread": {Cents: 1500}},
		SplitAllocation: core.Allocation{"Groceries": {Cents: 3500}},
	})
	if err != nil {
		t.Fatalf("Create expense: %v", err)
	}

	report, err := userSvc.RemoveCategory(ctx, user.ID, "Groceries")
	if err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}
	if len(report.ModifiedExpenses) != 1 || report.ModifiedExpenses[0] != expense.ID {
		t.Errorf("modified = %v, want [%s]", report.ModifiedExpenses, expense.ID)
	}
	for _, c := range report.Categories {
		if c == "Groceries" {
			t.Error("Groceries still in category set")
		}
	}

	after, err := expenseSvc.Get(ctx, user.ID, expense.ID)
	if err != nil {
		t.Fatalf("Get expense: %v", err)
	}
	if _, ok := after.SplitAllocation["Groceries"]; ok {
		t.Error("expense still allocated to removed category")
	}
	if got := after.SplitAllocation[core.Uncategorised].Cents; got != 3500 {
		t.Errorf("Uncategorised = %d cents, want 3500 (amount conserved)", got)
	}
	if after.SplitAllocation.Total().Cents != after.Total.Cents {
		t.Error("allocation sum no longer matches total")
	}
}
