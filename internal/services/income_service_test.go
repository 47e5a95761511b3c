package services

import (
	"context"
	"testing"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
)

func TestCreateIncomeDefaultCategory(t *testing.T) {
	store := newMemStore()
	svc := NewIncomeService(store)

	income, err := svc.Create(context.Background(), "user-1", IncomeInput{
		Description: "garage sale",
		Amount:      core.Money{Cents: 4500},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if income.Category != core.Uncategorised {
		t.Errorf("category = %q, want %q", income.Category, core.Uncategorised)
	}
}

func TestCreateIncomeRejectsZeroAmount(t *testing.T) {
	svc := NewIncomeService(newMemStore())
	_, err := svc.Create(context.Background(), "user-1", IncomeInput{Category: "Employment"})
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestIncomeUpdatePartial(t *testing.T) {
	store := newMemStore()
	svc := NewIncomeService(store)
	ctx := context.Background()

	income, err := svc.Create(ctx, "user-1", IncomeInput{
		Category: "Employment",
		Amount:   core.Money{Cents: 500000},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	category := "Freelance"
	updated, err := svc.Update(ctx, "user-1", income.ID, IncomeUpdate{Category: &category})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Category != "Freelance" {
		t.Errorf("category = %q, want Freelance", updated.Category)
	}
	if updated.Amount.Cents != 500000 {
		t.Errorf("amount changed to %d on partial update", updated.Amount.Cents)
	}
}

func TestBudgetMonthValidation(t *testing.T) {
	store := newMemStore()
	svc := NewBudgetService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", BudgetInput{
		Month:  "13-2026",
		Limits: core.Allocation{"Groceries": {Cents: 30000}},
	})
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}

	budget, err := svc.Create(ctx, "user-1", BudgetInput{
		Month:  "2026-09",
		Limits: core.Allocation{"Groceries": {Cents: 30000}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if budget.CreatedBy != "user-1" {
		t.Errorf("owner = %q, want user-1", budget.CreatedBy)
	}
}
