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

// IncomeService handles income CRUD. The category is free text and defaults
// to Uncategorised when omitted.
type IncomeService struct {
	incomes IncomeStore
}

func NewIncomeService(incomes IncomeStore) *IncomeService {
	return &IncomeService{incomes: incomes}
}

type IncomeInput struct {
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Amount      core.Money `json:"amount"`
}

type IncomeUpdate struct {
	Description *string     `json:"description"`
	Category    *string     `json:"category"`
	Amount      *core.Money `json:"amount"`
}

func (s *IncomeService) Create(ctx context.Context, ownerID string, in IncomeInput) (core.Income, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = core.Uncategorised
	}

	income := core.Income{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Amount:      in.Amount,
		OwnedBy:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, apperr.New(apperr.CodeInvalid, err.Error())
	}

	if err := s.incomes.CreateIncome(ctx, income); err != nil {
		return core.Income{}, err
	}
	return income, nil
}

func (s *IncomeService) Get(ctx context.Context, ownerID, id string) (core.Income, error) {
	income, err := s.incomes.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if income.OwnedBy != ownerID {
		return core.Income{}, apperr.New(apperr.CodeNotFound, "income not found")
	}
	return income, nil
}

func (s *IncomeService) Update(ctx context.Context, ownerID, id string, in IncomeUpdate) (core.Income, error) {
	income, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return core.Income{}, err
	}

	if in.Description != nil {
		income.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		income.Category = strings.TrimSpace(*in.Category)
	}
	if in.Amount != nil {
		income.Amount = *in.Amount
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, apperr.New(apperr.CodeInvalid, err.Error())
	}

	if err := s.incomes.UpdateIncome(ctx, income); err != nil {
		return core.Income{}, err
	}
	return income, nil
}

func (s *IncomeService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.incomes.DeleteIncome(ctx, id)
}

func (s *IncomeService) List(ctx context.Context, ownerID string, spec query.Spec) ([]core.Income, error) {
	return s.incomes.ListIncomes(ctx, ownerID, spec)
}
