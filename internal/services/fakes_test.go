package services

import (
	"context"
	"sort"
	"time"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/query"
)

// memStore is an in-memory stand-in for the SQLite repository, covering the
// store interfaces the services depend on.
type memStore struct {
	users     map[string]core.User
	expenses  map[string]core.Expense
	incomes   map[string]core.Income
	budgets   map[string]core.Budget
	summaries map[string]core.Summary // keyed userID|month
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]core.User),
		expenses:  make(map[string]core.Expense),
		incomes:   make(map[string]core.Income),
		budgets:   make(map[string]core.Budget),
		summaries: make(map[string]core.Summary),
	}
}

func (m *memStore) CreateUser(_ context.Context, u core.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.New(apperr.CodeConflict, "email already registered")
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (core.User, error) {
	u, ok := m.users[id]
	if !ok {
		return core.User{}, apperr.New(apperr.CodeNotFound, "user not found")
	}
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, apperr.New(apperr.CodeNotFound, "user not found")
}

func (m *memStore) ListUsers(_ context.Context) ([]core.User, error) {
	users := make([]core.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *memStore) UpdateUser(_ context.Context, u core.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	delete(m.users, id)
	for eid, e := range m.expenses {
		if e.SpentBy == id {
			delete(m.expenses, eid)
		}
	}
	return nil
}

func (m *memStore) AddCategory(_ context.Context, userID, label string) ([]string, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	present := false
	for _, c := range u.Categories {
		if c == label {
			present = true
			break
		}
	}
	if !present {
		u.Categories = append(u.Categories, label)
		m.users[userID] = u
	}
	return u.Categories, nil
}

func (m *memStore) RemoveCategoryAndReallocate(_ context.Context, userID, label string) ([]string, []string, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, nil, apperr.New(apperr.CodeNotFound, "user not found")
	}

	kept := u.Categories[:0:0]
	for _, c := range u.Categories {
		if c != label {
			kept = append(kept, c)
		}
	}
	u.Categories = kept
	m.users[userID] = u

	var modified []string
	for id, e := range m.expenses {
		if e.SpentBy != userID {
			continue
		}
		amount, ok := e.SplitAllocation[label]
		if !ok {
			continue
		}
		split := make(core.Allocation, len(e.SplitAllocation))
		for k, v := range e.SplitAllocation {
			split[k] = v
		}
		split[core.Uncategorised] = core.Money{Cents: split[core.Uncategorised].Cents + amount.Cents}
		delete(split, label)
		e.SplitAllocation = split
		m.expenses[id] = e
		modified = append(modified, id)
	}
	sort.Strings(modified)
	return u.Categories, modified, nil
}

func (m *memStore) CreateExpense(_ context.Context, e core.Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m *memStore) GetExpense(_ context.Context, id string) (core.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return core.Expense{}, apperr.New(apperr.CodeNotFound, "expense not found")
	}
	return e, nil
}

func (m *memStore) UpdateExpense(_ context.Context, e core.Expense) error {
	if _, ok := m.expenses[e.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "expense not found")
	}
	m.expenses[e.ID] = e
	return nil
}

func (m *memStore) DeleteExpense(_ context.Context, id string) error {
	if _, ok := m.expenses[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "expense not found")
	}
	delete(m.expenses, id)
	return nil
}

func (m *memStore) ListExpenses(_ context.Context, ownerID string, _ query.Spec) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range m.expenses {
		if e.SpentBy == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) CreateIncome(_ context.Context, in core.Income) error {
	m.incomes[in.ID] = in
	return nil
}

func (m *memStore) GetIncome(_ context.Context, id string) (core.Income, error) {
	in, ok := m.incomes[id]
	if !ok {
		return core.Income{}, apperr.New(apperr.CodeNotFound, "income not found")
	}
	return in, nil
}

func (m *memStore) UpdateIncome(_ context.Context, in core.Income) error {
	if _, ok := m.incomes[in.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "income not found")
	}
	m.incomes[in.ID] = in
	return nil
}

func (m *memStore) DeleteIncome(_ context.Context, id string) error {
	if _, ok := m.incomes[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "income not found")
	}
	delete(m.incomes, id)
	return nil
}

func (m *memStore) ListIncomes(_ context.Context, ownerID string, _ query.Spec) ([]core.Income, error) {
	var out []core.Income
	for _, in := range m.incomes {
		if in.OwnedBy == ownerID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memStore) CreateBudget(_ context.Context, b core.Budget) error {
	m.budgets[b.ID] = b
	return nil
}

func (m *memStore) GetBudget(_ context.Context, id string) (core.Budget, error) {
	b, ok := m.budgets[id]
	if !ok {
		return core.Budget{}, apperr.New(apperr.CodeNotFound, "budget not found")
	}
	return b, nil
}

func (m *memStore) UpdateBudget(_ context.Context, b core.Budget) error {
	if _, ok := m.budgets[b.ID]; !ok {
		return apperr.New(apperr.CodeNotFound, "budget not found")
	}
	m.budgets[b.ID] = b
	return nil
}

func (m *memStore) DeleteBudget(_ context.Context, id string) error {
	if _, ok := m.budgets[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "budget not found")
	}
	delete(m.budgets, id)
	return nil
}

func (m *memStore) ListBudgets(_ context.Context, ownerID string, _ query.Spec) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.CreatedBy == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) AggregateExpenses(_ context.Context, from, to time.Time) (map[string]core.SummarySide, error) {
	totals := make(map[string]map[string]int64)
	for _, e := range m.expenses {
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		if totals[e.SpentBy] == nil {
			totals[e.SpentBy] = make(map[string]int64)
		}
		for category, amount := range e.SplitAllocation {
			totals[e.SpentBy][category] += amount.Cents
		}
	}
	return sidesFromTotals(totals), nil
}

func (m *memStore) AggregateIncomes(_ context.Context, from, to time.Time) (map[string]core.SummarySide, error) {
	totals := make(map[string]map[string]int64)
	for _, in := range m.incomes {
		if in.CreatedAt.Before(from) || in.CreatedAt.After(to) {
			continue
		}
		if totals[in.OwnedBy] == nil {
			totals[in.OwnedBy] = make(map[string]int64)
		}
		totals[in.OwnedBy][in.Category] += in.Amount.Cents
	}
	return sidesFromTotals(totals), nil
}

func sidesFromTotals(totals map[string]map[string]int64) map[string]core.SummarySide {
	sides := make(map[string]core.SummarySide, len(totals))
	for userID, byCategory := range totals {
		var side core.SummarySide
		categories := make([]string, 0, len(byCategory))
		for c := range byCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			side.Total.Cents += byCategory[c]
			side.ByCategory = append(side.ByCategory, core.CategoryTotal{
				Category: c,
				Total:    core.Money{Cents: byCategory[c]},
			})
		}
		sides[userID] = side
	}
	return sides
}

func (m *memStore) UpsertSummaries(_ context.Context, summaries []core.Summary) error {
	for _, s := range summaries {
		m.summaries[s.UserID+"|"+s.Month] = s
	}
	return nil
}

func (m *memStore) GetSummary(_ context.Context, userID, month string) (core.Summary, error) {
	s, ok := m.summaries[userID+"|"+month]
	if !ok {
		return core.Summary{}, apperr.New(apperr.CodeNotFound, "summary not found")
	}
	return s, nil
}

func (m *memStore) ListSummaries(_ context.Context, userID string) ([]core.Summary, error) {
	var out []core.Summary
	for _, s := range m.summaries {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}
