// Package services orchestrates domain operations between the HTTP layer and
// the SQLite store. Each service depends on a narrow store interface so tests
// can run against in-memory fakes.
package services

import (
	"context"
	"time"

	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/query"
	"github.com/victor-uk/expense-tracker/internal/storage"
)

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUser(ctx context.Context, id string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	UpdateUser(ctx context.Context, u core.User) error
	DeleteUser(ctx context.Context, id string) error
	AddCategory(ctx context.Context, userID, label string) ([]string, error)
	RemoveCategoryAndReallocate(ctx context.Context, userID, label string) ([]string, []string, error)
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) error
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, ownerID string, spec query.Spec) ([]core.Expense, error)
}

type IncomeStore interface {
	CreateIncome(ctx context.Context, in core.Income) error
	GetIncome(ctx context.Context, id string) (core.Income, error)
	UpdateIncome(ctx context.Context, in core.Income) error
	DeleteIncome(ctx context.Context, id string) error
	ListIncomes(ctx context.Context, ownerID string, spec query.Spec) ([]core.Income, error)
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) error
	GetBudget(ctx context.Context, id string) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id string) error
	ListBudgets(ctx context.Context, ownerID string, spec query.Spec) ([]core.Budget, error)
}

type SummaryStore interface {
	AggregateExpenses(ctx context.Context, from, to time.Time) (map[string]core.SummarySide, error)
	AggregateIncomes(ctx context.Context, from, to time.Time) (map[string]core.SummarySide, error)
	UpsertSummaries(ctx context.Context, summaries []core.Summary) error
	GetSummary(ctx context.Context, userID, month string) (core.Summary, error)
	ListSummaries(ctx context.Context, userID string) ([]core.Summary, error)
}

var (
	_ UserStore    = (*storage.Repository)(nil)
	_ ExpenseStore = (*storage.Repository)(nil)
	_ IncomeStore  = (*storage.Repository)(nil)
	_ BudgetStore  = (*storage.Repository)(nil)
	_ SummaryStore = (*storage.Repository)(nil)
)
