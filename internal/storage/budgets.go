package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/query"
)

const budgetColumns = "id, description, month, limits_cents, created_by, created_at"

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	limits, err := marshalAllocation(b.Limits)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Description, b.Month, limits, b.CreatedBy, toMillis(b.CreatedAt))
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "create budget", err)
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	return scanBudget(row)
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	limits, err := marshalAllocation(b.Limits)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET description = ?, month = ?, limits_cents = ? WHERE id = ?`,
		b.Description, b.Month, limits, b.ID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "update budget", err)
	}
	return requireAffected(res, "budget not found")
}

func (r *Repository) DeleteBudget(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete budget", err)
	}
	return requireAffected(res, "budget not found")
}

func (r *Repository) ListBudgets(ctx context.Context, ownerID string, spec query.Spec) ([]core.Budget, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tail, args, err := compileSpec(spec, budgetSchema, "created_by", ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets`+tail, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list budgets", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list budgets", err)
	}
	return budgets, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b         core.Budget
		limits    string
		createdAt int64
	)
	err := row.Scan(&b.ID, &b.Description, &b.Month, &limits, &b.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, apperr.New(apperr.CodeNotFound, "budget not found")
	}
	if err != nil {
		return core.Budget{}, apperr.Wrap(apperr.CodeInternal, "scan budget", err)
	}
	b.CreatedAt = fromMillis(createdAt)
	if b.Limits, err = unmarshalAllocation(limits); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}
