package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/query"
)

const incomeColumns = "id, description, category, amount_cents, owned_by, created_at"

func (r *Repository) CreateIncome(ctx context.Context, in core.Income) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (`+incomeColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.Description, in.Category, in.Amount.Cents, in.OwnedBy, toMillis(in.CreatedAt))
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "create income", err)
	}
	return nil
}

func (r *Repository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id)
	return scanIncome(row)
}

func (r *Repository) UpdateIncome(ctx context.Context, in core.Income) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET description = ?, category = ?, amount_cents = ? WHERE id = ?`,
		in.Description, in.Category, in.Amount.Cents, in.ID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "update income", err)
	}
	return requireAffected(res, "income not found")
}

func (r *Repository) DeleteIncome(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete income", err)
	}
	return requireAffected(res, "income not found")
}

func (r *Repository) ListIncomes(ctx context.Context, ownerID string, spec query.Spec) ([]core.Income, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tail, args, err := compileSpec(spec, incomeSchema, "owned_by", ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+incomeColumns+` FROM incomes`+tail, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list incomes", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list incomes", err)
	}
	return incomes, nil
}

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in        core.Income
		amount    int64
		createdAt int64
	)
	err := row.Scan(&in.ID, &in.Description, &in.Category, &amount, &in.OwnedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, apperr.New(apperr.CodeNotFound, "income not found")
	}
	if err != nil {
		return core.Income{}, apperr.Wrap(apperr.CodeInternal, "scan income", err)
	}
	in.Amount = core.Money{Cents: amount}
	in.CreatedAt = fromMillis(createdAt)
	return in, nil
}
