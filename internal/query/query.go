// Package query translates HTTP list parameters into a backend-agnostic
// filter, sort and pagination specification. Parsing performs no I/O and is
// deterministic: the storage layer compiles the resulting Spec against its
// own field allowlist.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
)

// DefaultPageSize applies when a page is requested without an explicit limit.
const DefaultPageSize = 10

// CategoryMode selects how the category parameter filters a collection.
type CategoryMode int

const (
	// CategoryExact matches the record's category field (incomes, budgets).
	CategoryExact CategoryMode = iota
	// CategoryInAllocation requires the split allocation to contain the
	// category as a key (expenses).
	CategoryInAllocation
)

// SortField is one element of a sort specification.
type SortField struct {
	Field      string
	Descending bool
}

// Filter is the backend-agnostic record filter.
type Filter struct {
	// Search matches case-insensitively against description and product
	// details.
	Search string

	Category     string
	CategoryMode CategoryMode

	// TotalCents filters on the exact total, MinCents/MaxCents on the
	// inclusive range. Both bounds may be set at once.
	TotalCents *int64
	MinCents   *int64
	MaxCents   *int64

	// CreatedFrom/CreatedTo bound the creation time inclusively.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Spec is the full list specification: filter plus cursor configuration.
type Spec struct {
	Filter Filter
	Sort   []SortField
	Fields []string
	Limit  int
	Offset int
}

// Parse builds a Spec from URL query parameters. The category mode is fixed
// by the calling service, never by the client.
func Parse(values url.Values, mode CategoryMode) (Spec, error) {
	spec := Spec{
		Filter: Filter{
			Search:       strings.TrimSpace(values.Get("search")),
			Category:     strings.TrimSpace(values.Get("category")),
			CategoryMode: mode,
		},
		Sort: []SortField{{Field: "createdAt", Descending: true}},
	}

	if v := strings.TrimSpace(values.Get("total")); v != "" {
		units, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Spec{}, apperr.New(apperr.CodeInvalid, "invalid total value")
		}
		cents := core.CentsFromFloat(units)
		spec.Filter.TotalCents = &cents
	}

	from, hasFrom, err := parseTimestamp(values.Get("startDate"))
	if err != nil {
		return Spec{}, err
	}
	to, hasTo, err := parseTimestamp(values.Get("endDate"))
	if err != nil {
		return Spec{}, err
	}
	if hasFrom && hasTo {
		spec.Filter.CreatedFrom = &from
		spec.Filter.CreatedTo = &to
	}

	if err := parseAmountRange(values, &spec.Filter); err != nil {
		return Spec{}, err
	}

	if v := strings.TrimSpace(values.Get("sort")); v != "" {
		spec.Sort = parseSort(v)
	}
	if v := strings.TrimSpace(values.Get("field")); v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				spec.Fields = append(spec.Fields, f)
			}
		}
	}

	limit, err := parsePositiveInt(values.Get("limit"), "limit")
	if err != nil {
		return Spec{}, err
	}
	page, err := parsePositiveInt(values.Get("page"), "page")
	if err != nil {
		return Spec{}, err
	}
	switch {
	case page > 0:
		size := limit
		if size == 0 {
			size = DefaultPageSize
		}
		spec.Limit = size
		spec.Offset = size * (page - 1)
	case limit > 0:
		spec.Limit = limit
	}

	return spec, nil
}

// parseTimestamp reads a unix-millisecond timestamp parameter. Negative
// values are invalid input.
func parseTimestamp(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		return time.Time{}, false, apperr.New(apperr.CodeInvalid, "invalid time value")
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func parseAmountRange(values url.Values, f *Filter) error {
	parse := func(name string) (*int64, error) {
		v := strings.TrimSpace(values.Get(name))
		if v == "" {
			return nil, nil
		}
		units, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, apperr.Newf(apperr.CodeInvalid, "invalid %s value", name)
		}
		cents := core.CentsFromFloat(units)
		return &cents, nil
	}

	min, err := parse("minAmount")
	if err != nil {
		return err
	}
	max, err := parse("maxAmount")
	if err != nil {
		return err
	}
	f.MinCents, f.MaxCents = min, max
	return nil
}

func parseSort(raw string) []SortField {
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			sf = SortField{Field: part[1:], Descending: true}
		}
		if sf.Field != "" {
			fields = append(fields, sf)
		}
	}
	if len(fields) == 0 {
		return []SortField{{Field: "createdAt", Descending: true}}
	}
	return fields
}

func parsePositiveInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Newf(apperr.CodeInvalid, "invalid %s value", name)
	}
	return n, nil
}
