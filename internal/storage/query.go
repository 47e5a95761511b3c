package storage

import (
	"fmt"
	"strings"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/query"
)

// collectionSchema tells the compiler how a query.Spec maps onto a table.
// Sortable names not in Columns are rejected, so clients can never smuggle
// SQL through sort or projection parameters.
type collectionSchema struct {
	// Columns maps the external field names to their columns.
	Columns map[string]string
	// SearchColumns are matched case-insensitively by the search parameter.
	SearchColumns []string
	// CategoryColumn handles exact-match category filtering; the allocation
	// membership mode always targets split_allocation.
	CategoryColumn string
	TotalColumn    string
}

var expenseSchema = collectionSchema{
	Columns: map[string]string{
		"description": "description",
		"total":       "total_cents",
		"createdAt":   "created_at",
	},
	SearchColumns: []string{"description", "product_details"},
	TotalColumn:   "total_cents",
}

var incomeSchema = collectionSchema{
	Columns: map[string]string{
		"description": "description",
		"category":    "category",
		"amount":      "amount_cents",
		"createdAt":   "created_at",
	},
	SearchColumns:  []string{"description", "category"},
	CategoryColumn: "category",
	TotalColumn:    "amount_cents",
}

var budgetSchema = collectionSchema{
	Columns: map[string]string{
		"description": "description",
		"month":       "month",
		"createdAt":   "created_at",
	},
	SearchColumns:  []string{"description", "month"},
	CategoryColumn: "month",
	TotalColumn:    "",
}

// compileSpec renders the WHERE/ORDER BY/LIMIT tail for a list query. The
// owner clause is prepended by the caller and always present.
func compileSpec(spec query.Spec, schema collectionSchema, ownerColumn, ownerID string) (string, []any, error) {
	clauses := []string{ownerColumn + " = ?"}
	args := []any{ownerID}

	f := spec.Filter

	if f.Search != "" {
		var parts []string
		for _, col := range schema.SearchColumns {
			parts = append(parts, col+" LIKE '%' || ? || '%' COLLATE NOCASE")
			args = append(args, f.Search)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	if f.Category != "" {
		switch f.CategoryMode {
		case query.CategoryInAllocation:
			clauses = append(clauses, "json_extract(split_allocation, ?) IS NOT NULL")
			args = append(args, allocPath(f.Category))
		default:
			if schema.CategoryColumn == "" {
				return "", nil, apperr.New(apperr.CodeInvalid, "category filter not supported")
			}
			clauses = append(clauses, schema.CategoryColumn+" = ?")
			args = append(args, f.Category)
		}
	}

	if schema.TotalColumn == "" && (f.TotalCents != nil || f.MinCents != nil || f.MaxCents != nil) {
		return "", nil, apperr.New(apperr.CodeInvalid, "amount filter not supported")
	}
	if f.TotalCents != nil {
		clauses = append(clauses, schema.TotalColumn+" = ?")
		args = append(args, *f.TotalCents)
	}
	if f.MinCents != nil {
		clauses = append(clauses, schema.TotalColumn+" >= ?")
		args = append(args, *f.MinCents)
	}
	if f.MaxCents != nil {
		clauses = append(clauses, schema.TotalColumn+" <= ?")
		args = append(args, *f.MaxCents)
	}

	if f.CreatedFrom != nil && f.CreatedTo != nil {
		clauses = append(clauses, "created_at >= ? AND created_at <= ?")
		args = append(args, toMillis(*f.CreatedFrom), toMillis(*f.CreatedTo))
	}

	var sb strings.Builder
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(clauses, " AND "))

	orderBy, err := compileSort(spec.Sort, schema)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(orderBy)

	if spec.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, spec.Limit, spec.Offset)
	}

	return sb.String(), args, nil
}

func compileSort(sort []query.SortField, schema collectionSchema) (string, error) {
	if len(sort) == 0 {
		return " ORDER BY created_at DESC", nil
	}
	var parts []string
	for _, sf := range sort {
		col, ok := schema.Columns[sf.Field]
		if !ok {
			return "", apperr.Newf(apperr.CodeInvalid, "cannot sort by %q", sf.Field)
		}
		dir := " ASC"
		if sf.Descending {
			dir = " DESC"
		}
		parts = append(parts, col+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// allocPath builds the JSON1 path addressing an allocation key. Quotes and
// backslashes are escaped so arbitrary category labels stay inside the path
// literal.
func allocPath(label string) string {
	escaped := strings.ReplaceAll(label, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return fmt.Sprintf(`$."%s"`, escaped)
}
