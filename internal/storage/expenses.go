package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/query"
)

const expenseColumns = "id, description, product_details, split_allocation, total_cents, spent_by, created_at"

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	products, err := marshalAllocation(e.ProductDetails)
	if err != nil {
		return err
	}
	split, err := marshalAllocation(e.SplitAllocation)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, products, split, e.Total.Cents, e.SpentBy, toMillis(e.CreatedAt))
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "create expense", err)
	}
	return nil
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	return scanExpense(row)
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	products, err := marshalAllocation(e.ProductDetails)
	if err != nil {
		return err
	}
	split, err := marshalAllocation(e.SplitAllocation)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET description = ?, product_details = ?, split_allocation = ?, total_cents = ? WHERE id = ?`,
		e.Description, products, split, e.Total.Cents, e.ID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "update expense", err)
	}
	return requireAffected(res, "expense not found")
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete expense", err)
	}
	return requireAffected(res, "expense not found")
}

// ListExpenses materializes the full filtered, sorted, paginated result set
// for one owner.
func (r *Repository) ListExpenses(ctx context.Context, ownerID string, spec query.Spec) ([]core.Expense, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tail, args, err := compileSpec(spec, expenseSchema, "spent_by", ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses`+tail, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list expenses", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list expenses", err)
	}
	return expenses, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		products  string
		split     string
		total     int64
		createdAt int64
	)
	err := row.Scan(&e.ID, &e.Description, &products, &split, &total, &e.SpentBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, apperr.New(apperr.CodeNotFound, "expense not found")
	}
	if err != nil {
		return core.Expense{}, apperr.Wrap(apperr.CodeInternal, "scan expense", err)
	}
	e.Total = core.Money{Cents: total}
	e.CreatedAt = fromMillis(createdAt)
	if e.ProductDetails, err = unmarshalAllocation(products); err != nil {
		return core.Expense{}, err
	}
	if e.SplitAllocation, err = unmarshalAllocation(split); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
