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

// ExpenseService handles expense CRUD. The total is always derived from the
// product details, and every split allocation is checked against the owning
// user's declared categories before persisting.
type ExpenseService struct {
	expenses ExpenseStore
	users    UserStore
}

func NewExpenseService(expenses ExpenseStore, users UserStore) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		users:    users,
	}
}

type ExpenseInput struct {
	Description     string          `json:"description"`
	ProductDetails  core.Allocation `json:"productDetails"`
	SplitAllocation core.Allocation `json:"splitAllocation"`
}

type ExpenseUpdate struct {
	Description     *string         `json:"description"`
	ProductDetails  core.Allocation `json:"productDetails"`
	SplitAllocation core.Allocation `json:"splitAllocation"`
}

// Create records a new expense for ownerID. When no split allocation is
// supplied, the whole total lands in Uncategorised.
func (s *ExpenseService) Create(ctx context.Context, ownerID string, in ExpenseInput) (core.Expense, error) {
	total := in.ProductDetails.Total()

	split := in.SplitAllocation
	if len(split) == 0 {
		split = core.Allocation{core.Uncategorised: total}
	}

	e := core.Expense{
		ID:              uuid.NewString(),
		Description:     strings.TrimSpace(in.Description),
		ProductDetails:  in.ProductDetails,
		SplitAllocation: split,
		Total:           total,
		SpentBy:         ownerID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, apperr.New(apperr.CodeInvalid, err.Error())
	}
	if err := s.checkAllocation(ctx, ownerID, e.SplitAllocation); err != nil {
		return core.Expense{}, err
	}

	if err := s.expenses.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, ownerID, id string) (core.Expense, error) {
	e, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if e.SpentBy != ownerID {
		return core.Expense{}, apperr.New(apperr.CodeNotFound, "expense not found")
	}
	return e, nil
}

// Update patches an expense. The total is recomputed from the resulting
// product details, so a payload that changes them must also supply a split
// allocation summing to the new total.
func (s *ExpenseService) Update(ctx context.Context, ownerID, id string, in ExpenseUpdate) (core.Expense, error) {
	e, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, err
	}

	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.ProductDetails != nil {
		e.ProductDetails = in.ProductDetails
	}
	if in.SplitAllocation != nil {
		e.SplitAllocation = in.SplitAllocation
	}
	e.Total = e.ProductDetails.Total()

	if err := e.Validate(); err != nil {
		return core.Expense{}, apperr.New(apperr.CodeInvalid, err.Error())
	}
	if err := s.checkAllocation(ctx, ownerID, e.SplitAllocation); err != nil {
		return core.Expense{}, err
	}

	if err := s.expenses.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.expenses.DeleteExpense(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context, ownerID string, spec query.Spec) ([]core.Expense, error) {
	return s.expenses.ListExpenses(ctx, ownerID, spec)
}

func (s *ExpenseService) checkAllocation(ctx context.Context, ownerID string, alloc core.Allocation) error {
	u, err := s.users.GetUser(ctx, ownerID)
	if err != nil {
		return err
	}
	if invalid := core.InvalidAllocationKeys(alloc, u.Categories); len(invalid) > 0 {
		return apperr.Newf(apperr.CodeInvalid, "unknown categories: %s", strings.Join(invalid, ", "))
	}
	return nil
}
