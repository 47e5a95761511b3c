package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
)

const userColumns = "id, name, email, password_hash, income_cents, categories, created_at"

func (r *Repository) CreateUser(ctx context.Context, u core.User) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	categories, err := marshalCategories(u.Categories)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Income.Cents, categories, toMillis(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeConflict, "email already registered")
		}
		return apperr.Wrap(apperr.CodeInternal, "create user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list users", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list users", err)
	}
	return users, nil
}

func (r *Repository) UpdateUser(ctx context.Context, u core.User) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, income_cents = ? WHERE id = ?`,
		u.Name, u.Email, u.Income.Cents, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeConflict, "email already registered")
		}
		return apperr.Wrap(apperr.CodeInternal, "update user", err)
	}
	return requireAffected(res, "user not found")
}

// DeleteUser removes the user and cascades to their expenses in one
// transaction. Incomes and budgets are deliberately left in place.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete user", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete user", err)
	}
	if err := requireAffected(res, "user not found"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE spent_by = ?`, id); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete user expenses", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete user", err)
	}
	return nil
}

// AddCategory adds the label to the user's category set. Set semantics:
// adding a present label leaves the list untouched.
func (r *Repository) AddCategory(ctx context.Context, userID, label string) ([]string, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "add category", err)
	}
	defer tx.Rollback()

	categories, err := categoriesForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(categories, label) {
		categories = append(categories, label)
		if err := writeCategories(ctx, tx, userID, categories); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "add category", err)
	}
	return categories, nil
}

// RemoveCategoryAndReallocate drops the label from the user's category set
// and folds the matching split-allocation amounts of that user's expenses
// into the Uncategorised bucket. The rewrite is one UPDATE statement per
// matching row executed by the store, so no intermediate state where both
// keys coexist is ever observable.
func (r *Repository) RemoveCategoryAndReallocate(ctx context.Context, userID, label string) ([]string, []string, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeInternal, "remove category", err)
	}
	defer tx.Rollback()

	categories, err := categoriesForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	if i := slices.Index(categories, label); i >= 0 {
		categories = slices.Delete(categories, i, i+1)
		if err := writeCategories(ctx, tx, userID, categories); err != nil {
			return nil, nil, err
		}
	}

	catPath := allocPath(label)
	uncPath := allocPath(core.Uncategorised)

	rows, err := tx.QueryContext(ctx, `
		UPDATE expenses
		SET split_allocation = json_remove(
			json_set(split_allocation, ?,
				coalesce(json_extract(split_allocation, ?), 0) + json_extract(split_allocation, ?)),
			?)
		WHERE spent_by = ? AND json_extract(split_allocation, ?) IS NOT NULL
		RETURNING id`,
		uncPath, uncPath, catPath, catPath, userID, catPath)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeInternal, "reallocate expenses", err)
	}

	var modified []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, nil, apperr.Wrap(apperr.CodeInternal, "reallocate expenses", err)
		}
		modified = append(modified, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, apperr.Wrap(apperr.CodeInternal, "reallocate expenses", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeInternal, "remove category", err)
	}

	slog.InfoContext(ctx, "Category removed",
		"user_id", userID, "category", label, "expenses_modified", len(modified))
	return categories, modified, nil
}

func categoriesForUpdate(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT categories FROM users WHERE id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "load categories", err)
	}
	return unmarshalCategories(raw)
}

func writeCategories(ctx context.Context, tx *sql.Tx, userID string, categories []string) error {
	raw, err := marshalCategories(categories)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET categories = ? WHERE id = ?`, raw, userID); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "write categories", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u          core.User
		income     int64
		categories string
		createdAt  int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &income, &categories, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return core.User{}, apperr.Wrap(apperr.CodeInternal, "scan user", err)
	}
	u.Income = core.Money{Cents: income}
	u.CreatedAt = fromMillis(createdAt)
	if u.Categories, err = unmarshalCategories(categories); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func requireAffected(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "rows affected", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeNotFound, notFoundMsg)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
