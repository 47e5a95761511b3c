package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
)

func seedUser(t *testing.T, store *memStore) core.User {
	t.Helper()
	u := core.User{
		ID:         "user-1",
		Name:       "Ada",
		Email:      "ada@example.com",
		Categories: append([]string(nil), core.DefaultCategories...),
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestCreateExpenseTotalFromProducts(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store)
	svc := NewExpenseService(store, store)

	expense, err := svc.Create(context.Background(), user.ID, ExpenseInput{
		Description:     "Groceries run",
		ProductDetails:  core.Allocation{"Milk": {Cents: 2000}, "Bread": {Cents: 1500}},
		SplitAllocation: core.Allocation{"Groceries": {Cents: 3500}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if expense.Total.Cents != 3500 {
		t.Errorf("total = %d cents, want 3500 (sum of product details)", expense.Total.Cents)
	}
	if expense.SpentBy != user.ID {
		t.Errorf("owner = %q, want %q", expense.SpentBy, user.ID)
	}
}

func TestCreateExpenseDefaultSplit(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store)
	svc := NewExpenseService(store, store)

	expense, err := svc.Create(context.Background(), user.ID, ExpenseInput{
		ProductDetails: core.Allocation{"Cinema": {Cents: 1200}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(expense.SplitAllocation) != 1 {
		t.Fatalf("split = %v, want single Uncategorised entry", expense.SplitAllocation)
	}
	if got := expense.SplitAllocation[core.Uncategorised].Cents; got != 1200 {
		t.Errorf("Uncategorised = %d cents, want 1200", got)
	}
}

func TestCreateExpenseUnknownCategory(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store)
	svc := NewExpenseService(store, store)

	_, err := svc.Create(context.Background(), user.ID, ExpenseInput{
		ProductDetails:  core.Allocation{"Ticket": {Cents: 5000}},
		SplitAllocation: core.Allocation{"Travel": {Cents: 5000}},
	})
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Fatalf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
	if !strings.Contains(apperr.MessageOf(err), "Travel") {
		t.Errorf("message %q should name the offending category", apperr.MessageOf(err))
	}
}

func TestCreateExpenseSplitMismatch(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store)
	svc := NewExpenseService(store, store)

	_, err := svc.Create(context.Background(), user.ID, ExpenseInput{
		ProductDetails:  core.Allocation{"Milk": {Cents: 2000}},
		SplitAllocation: core.Allocation{"Groceries": {Cents: 1500}},
	})
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestUpdateExpenseRecomputesTotal(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store)
	svc := NewExpenseService(store, store)
	ctx := context.Background()

	expense, err := svc.Create(ctx, user.ID, ExpenseInput{
		ProductDetails: core.Allocation{"Milk": {Cents: 2000}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, expense.ID, ExpenseUpdate{
		ProductDetails:  core.Allocation{"Milk": {Cents: 2000}, "Cheese": {Cents: 3000}},
		SplitAllocation: core.Allocation{"Groceries": {Cents: 5000}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Total.Cents != 5000 {
		t.Errorf("total = %d cents, want 5000", updated.Total.Cents)
	}

	// The split supplied with an update must cover the recomputed total.
	_, err = svc.Update(ctx, user.ID, expense.ID, ExpenseUpdate{
		ProductDetails: core.Allocation{"Milk": {Cents: 9000}},
	})
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestExpenseOwnershipScoping(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store)
	svc := NewExpenseService(store, store)
	ctx := context.Background()

	expense, err := svc.Create(ctx, user.ID, ExpenseInput{
		ProductDetails: core.Allocation{"Milk": {Cents: 2000}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, "someone-else", expense.ID); !apperr.IsNotFound(err) {
		t.Errorf("foreign read: got %v, want not found", err)
	}
	if err := svc.Delete(ctx, "someone-else", expense.ID); !apperr.IsNotFound(err) {
		t.Errorf("foreign delete: got %v, want not found", err)
	}
	if _, err := svc.Get(ctx, user.ID, expense.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
}
