// Package storage implements the collection store on SQLite. Map-shaped
// fields (product details, split allocations, budget limits) persist as JSON
// text columns holding cents, which keeps the category cascade and the
// summary aggregation inside single SQL statements.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/victor-uk/expense-tracker/internal/core"

	_ "modernc.org/sqlite"
)

const defaultTimeout = 5 * time.Second

type Repository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewRepository(dbPath string, timeout time.Duration) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Repository{db: db, timeout: timeout}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// opCtx bounds every store operation so a stuck driver call surfaces as a
// retryable timeout instead of hanging the request.
func (r *Repository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// centsMap is the persisted shape of an allocation.
type centsMap map[string]int64

func marshalAllocation(a core.Allocation) (string, error) {
	m := make(centsMap, len(a))
	for k, v := range a {
		m[k] = v.Cents
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal allocation: %w", err)
	}
	return string(b), nil
}

func unmarshalAllocation(raw string) (core.Allocation, error) {
	var m centsMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshal allocation: %w", err)
	}
	a := make(core.Allocation, len(m))
	for k, v := range m {
		a[k] = core.Money{Cents: v}
	}
	return a, nil
}

func marshalCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	b, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("marshal categories: %w", err)
	}
	return string(b), nil
}

func unmarshalCategories(raw string) ([]string, error) {
	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	return categories, nil
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
