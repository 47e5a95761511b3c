package query

import (
	"net/url"
	"testing"

	"github.com/victor-uk/expense-tracker/internal/apperr"
)

func TestParseDefaults(t *testing.T) {
	spec, err := Parse(url.Values{}, CategoryExact)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(spec.Sort) != 1 || spec.Sort[0].Field != "createdAt" || !spec.Sort[0].Descending {
		t.Errorf("default sort = %+v, want descending createdAt", spec.Sort)
	}
	if spec.Limit != 0 || spec.Offset != 0 {
		t.Errorf("expected no pagination by default, got limit=%d offset=%d", spec.Limit, spec.Offset)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		limit  int
		offset int
	}{
		{
			name:   "page with limit",
			params: url.Values{"page": {"2"}, "limit": {"10"}},
			limit:  10,
			offset: 10,
		},
		{
			name:   "page without limit defaults to 10",
			params: url.Values{"page": {"3"}},
			limit:  10,
			offset: 20,
		},
		{
			name:   "limit without page",
			params: url.Values{"limit": {"5"}},
			limit:  5,
			offset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse(tt.params, CategoryExact)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if spec.Limit != tt.limit || spec.Offset != tt.offset {
				t.Errorf("got limit=%d offset=%d, want limit=%d offset=%d",
					spec.Limit, spec.Offset, tt.limit, tt.offset)
			}
		})
	}
}

func TestParseRejectsBadPagination(t *testing.T) {
	for _, params := range []url.Values{
		{"page": {"0"}},
		{"page": {"-1"}},
		{"limit": {"abc"}},
	} {
		if _, err := Parse(params, CategoryExact); err == nil {
			t.Errorf("Parse(%v) should fail", params)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	spec, err := Parse(url.Values{"startDate": {"1000"}, "endDate": {"2000"}}, CategoryExact)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Filter.CreatedFrom == nil || spec.Filter.CreatedTo == nil {
		t.Fatal("expected both range bounds set")
	}
	if spec.Filter.CreatedFrom.UnixMilli() != 1000 || spec.Filter.CreatedTo.UnixMilli() != 2000 {
		t.Errorf("range = [%d, %d], want [1000, 2000]",
			spec.Filter.CreatedFrom.UnixMilli(), spec.Filter.CreatedTo.UnixMilli())
	}

	// A lone bound is ignored rather than applied.
	spec, err = Parse(url.Values{"startDate": {"1000"}}, CategoryExact)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Filter.CreatedFrom != nil || spec.Filter.CreatedTo != nil {
		t.Error("single bound should not produce a range filter")
	}
}

func TestParseNegativeDateFails(t *testing.T) {
	_, err := Parse(url.Values{"startDate": {"-5"}, "endDate": {"100"}}, CategoryExact)
	if err == nil {
		t.Fatal("expected error for negative timestamp")
	}
	if apperr.CodeOf(err) != apperr.CodeInvalid {
		t.Errorf("code = %v, want CodeInvalid", apperr.CodeOf(err))
	}
}

func TestParseAmountRange(t *testing.T) {
	spec, err := Parse(url.Values{"minAmount": {"10.50"}, "maxAmount": {"99.99"}}, CategoryExact)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Filter.MinCents == nil || *spec.Filter.MinCents != 1050 {
		t.Errorf("MinCents = %v, want 1050", spec.Filter.MinCents)
	}
	if spec.Filter.MaxCents == nil || *spec.Filter.MaxCents != 9999 {
		t.Errorf("MaxCents = %v, want 9999", spec.Filter.MaxCents)
	}
}

func TestParseSort(t *testing.T) {
	spec, err := Parse(url.Values{"sort": {"-total,description"}}, CategoryExact)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []SortField{
		{Field: "total", Descending: true},
		{Field: "description"},
	}
	if len(spec.Sort) != len(want) {
		t.Fatalf("sort = %+v, want %+v", spec.Sort, want)
	}
	for i := range want {
		if spec.Sort[i] != want[i] {
			t.Errorf("sort[%d] = %+v, want %+v", i, spec.Sort[i], want[i])
		}
	}
}

func TestParseFields(t *testing.T) {
	spec, err := Parse(url.Values{"field": {"description, total ,"}}, CategoryExact)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(spec.Fields) != 2 || spec.Fields[0] != "description" || spec.Fields[1] != "total" {
		t.Errorf("fields = %v, want [description total]", spec.Fields)
	}
}

func TestParseCategoryMode(t *testing.T) {
	spec, err := Parse(url.Values{"category": {"Groceries"}}, CategoryInAllocation)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Filter.Category != "Groceries" || spec.Filter.CategoryMode != CategoryInAllocation {
		t.Errorf("filter = %+v, want allocation-membership mode", spec.Filter)
	}
}

func TestParseDeterministic(t *testing.T) {
	params := url.Values{
		"search": {"milk"}, "category": {"Groceries"}, "total": {"35"},
		"sort": {"-createdAt"}, "page": {"2"}, "limit": {"10"},
	}
	a, err := Parse(params, CategoryInAllocation)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := Parse(params, CategoryInAllocation)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Filter.Search != b.Filter.Search || *a.Filter.TotalCents != *b.Filter.TotalCents ||
		a.Limit != b.Limit || a.Offset != b.Offset {
		t.Error("identical inputs should produce identical specs")
	}
}
