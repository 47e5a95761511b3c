package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
)

// AggregateExpenses explodes every split allocation recorded inside the window
// and groups the amounts by (user, category). The window bounds are inclusive.
func (r *Repository) AggregateExpenses(ctx context.Context, from, to time.Time) (map[string]core.SummarySide, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.spent_by, je.key, SUM(je.value)
		FROM expenses e, json_each(e.split_allocation) je
		WHERE e.created_at >= ? AND e.created_at <= ?
		GROUP BY e.spent_by, je.key`,
		toMillis(from), toMillis(to))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "aggregate expenses", err)
	}
	defer rows.Close()

	return collectSides(rows)
}

// AggregateIncomes groups income amounts recorded inside the window by
// (user, category).
func (r *Repository) AggregateIncomes(ctx context.Context, from, to time.Time) (map[string]core.SummarySide, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT owned_by, category, SUM(amount_cents)
		FROM incomes
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY owned_by, category`,
		toMillis(from), toMillis(to))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "aggregate incomes", err)
	}
	defer rows.Close()

	return collectSides(rows)
}

func collectSides(rows *sql.Rows) (map[string]core.SummarySide, error) {
	sides := make(map[string]core.SummarySide)
	for rows.Next() {
		var (
			userID   string
			category string
			cents    int64
		)
		if err := rows.Scan(&userID, &category, &cents); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "scan aggregate row", err)
		}
		side := sides[userID]
		side.Total.Cents += cents
		side.ByCategory = append(side.ByCategory, core.CategoryTotal{
			Category: category,
			Total:    core.Money{Cents: cents},
		})
		sides[userID] = side
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "aggregate rows", err)
	}
	for userID, side := range sides {
		sort.Slice(side.ByCategory, func(i, j int) bool {
			return side.ByCategory[i].Category < side.ByCategory[j].Category
		})
		sides[userID] = side
	}
	return sides, nil
}

// UpsertSummaries writes one row per summary, replacing the aggregate for a
// (user, month) pair that already exists. All writes happen in one
// transaction so a failed run never leaves a half-updated month.
func (r *Repository) UpsertSummaries(ctx context.Context, summaries []core.Summary) error {
	if len(summaries) == 0 {
		return nil
	}

	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "begin upsert", err)
	}
	defer tx.Rollback()

	for _, s := range summaries {
		expenseCats, err := marshalCategoryTotals(s.Expense.ByCategory)
		if err != nil {
			return err
		}
		incomeCats, err := marshalCategoryTotals(s.Income.ByCategory)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO summaries (user_id, month, expense_total_cents, expense_by_category,
			                       income_total_cents, income_by_category, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, month) DO UPDATE SET
				expense_total_cents = excluded.expense_total_cents,
				expense_by_category = excluded.expense_by_category,
				income_total_cents  = excluded.income_total_cents,
				income_by_category  = excluded.income_by_category`,
			s.UserID, s.Month, s.Expense.Total.Cents, expenseCats,
			s.Income.Total.Cents, incomeCats, toMillis(s.CreatedAt))
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, "upsert summary", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "commit upsert", err)
	}
	return nil
}

func (r *Repository) GetSummary(ctx context.Context, userID, month string) (core.Summary, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, month, expense_total_cents, expense_by_category,
		       income_total_cents, income_by_category, created_at
		FROM summaries WHERE user_id = ? AND month = ?`, userID, month)
	return scanSummary(row)
}

// ListSummaries returns every stored summary for one user, newest month first.
func (r *Repository) ListSummaries(ctx context.Context, userID string) ([]core.Summary, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, month, expense_total_cents, expense_by_category,
		       income_total_cents, income_by_category, created_at
		FROM summaries WHERE user_id = ? ORDER BY month DESC`, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list summaries", err)
	}
	defer rows.Close()

	var summaries []core.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list summaries", err)
	}
	return summaries, nil
}

func scanSummary(row rowScanner) (core.Summary, error) {
	var (
		s            core.Summary
		expenseTotal int64
		expenseCats  string
		incomeTotal  int64
		incomeCats   string
		createdAt    int64
	)
	err := row.Scan(&s.UserID, &s.Month, &expenseTotal, &expenseCats,
		&incomeTotal, &incomeCats, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Summary{}, apperr.New(apperr.CodeNotFound, "summary not found")
	}
	if err != nil {
		return core.Summary{}, apperr.Wrap(apperr.CodeInternal, "scan summary", err)
	}
	s.Expense.Total = core.Money{Cents: expenseTotal}
	s.Income.Total = core.Money{Cents: incomeTotal}
	s.CreatedAt = fromMillis(createdAt)
	if s.Expense.ByCategory, err = unmarshalCategoryTotals(expenseCats); err != nil {
		return core.Summary{}, err
	}
	if s.Income.ByCategory, err = unmarshalCategoryTotals(incomeCats); err != nil {
		return core.Summary{}, err
	}
	return s, nil
}

// persistedCategoryTotal keeps the stored shape in cents, independent of the
// JSON the API serves.
type persistedCategoryTotal struct {
	Category string `json:"category"`
	Cents    int64  `json:"cents"`
}

func marshalCategoryTotals(totals []core.CategoryTotal) (string, error) {
	persisted := make([]persistedCategoryTotal, 0, len(totals))
	for _, t := range totals {
		persisted = append(persisted, persistedCategoryTotal{Category: t.Category, Cents: t.Total.Cents})
	}
	b, err := json.Marshal(persisted)
	if err != nil {
		return "", fmt.Errorf("marshal category totals: %w", err)
	}
	return string(b), nil
}

func unmarshalCategoryTotals(raw string) ([]core.CategoryTotal, error) {
	var persisted []persistedCategoryTotal
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		return nil, fmt.Errorf("unmarshal category totals: %w", err)
	}
	totals := make([]core.CategoryTotal, 0, len(persisted))
	for _, p := range persisted {
		totals = append(totals, core.CategoryTotal{Category: p.Category, Total: core.Money{Cents: p.Cents}})
	}
	return totals, nil
}
