package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/query"
)

// BudgetService handles monthly budget CRUD.
type BudgetService struct {
	budgets BudgetStore
}

func NewBudgetService(budgets BudgetStore) *BudgetService {
	return &BudgetService{budgets: budgets}
}

type BudgetInput struct {
	Description string          `json:"description"`
	Month       string          `json:"month"`
	Limits      core.Allocation `json:"budget"`
}

type BudgetUpdate struct {
	Description *string         `json:"description"`
	Month       *string         `json:"month"`
	Limits      core.Allocation `json:"budget"`
}

func (s *BudgetService) Create(ctx context.Context, ownerID string, in BudgetInput) (core.Budget, error) {
	b := core.Budget{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(in.Description),
		Month:       strings.TrimSpace(in.Month),
		Limits:      in.Limits,
		CreatedBy:   ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, apperr.New(apperr.CodeInvalid, err.Error())
	}

	if err := s.budgets.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Get(ctx context.Context, ownerID, id string) (core.Budget, error) {
	b, err := s.budgets.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if b.CreatedBy != ownerID {
		return core.Budget{}, apperr.New(apperr.CodeNotFound, "budget not found")
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, ownerID, id string, in BudgetUpdate) (core.Budget, error) {
	b, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return core.Budget{}, err
	}

	if in.Description != nil {
		b.Description = strings.TrimSpace(*in.Description)
	}
	if in.Month != nil {
		b.Month = strings.TrimSpace(*in.Month)
	}
	if in.Limits != nil {
		b.Limits = in.Limits
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, apperr.New(apperr.CodeInvalid, err.Error())
	}

	if err := s.budgets.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.budgets.DeleteBudget(ctx, id)
}

func (s *BudgetService) List(ctx context.Context, ownerID string, spec query.Spec) ([]core.Budget, error) {
	return s.budgets.ListBudgets(ctx, ownerID, spec)
}
