package core

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultCategories seeds every new user's category set.
var DefaultCategories = []string{
	"Groceries", "Leisure", "Electronics", "Utilities", "Health", Uncategorised,
}

// Uncategorised is the fallback bucket for unallocated amounts and for the
// category-deletion cascade.
const Uncategorised = "Uncategorised"

type (
	// Allocation maps a label (product line item or budgeting category) to an
	// amount. Used for expense product details, split allocations and budget
	// limits.
	Allocation map[string]Money

	User struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Email        string     `json:"email"`
		PasswordHash string     `json:"-"`
		Income       Money      `json:"income"`
		Categories   []string   `json:"categories"`
		CreatedAt    time.Time  `json:"createdAt"`
	}

	Expense struct {
		ID              string     `json:"id"`
		Description     string     `json:"description"`
		ProductDetails  Allocation `json:"productDetails"`
		SplitAllocation Allocation `json:"splitAllocation"`
		Total           Money      `json:"total"`
		SpentBy         string     `json:"spentBy"`
		CreatedAt       time.Time  `json:"createdAt"`
	}

	Income struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Amount      Money     `json:"amount"`
		OwnedBy     string    `json:"ownedBy"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	Budget struct {
		ID          string     `json:"id"`
		Description string     `json:"description"`
		Month       string     `json:"month"`
		Limits      Allocation `json:"budget"`
		CreatedBy   string     `json:"createdBy"`
		CreatedAt   time.Time  `json:"createdAt"`
	}

	// CategoryTotal is one aggregated (category, total) pair inside a summary.
	CategoryTotal struct {
		Category string `json:"category"`
		Total    Money  `json:"total"`
	}

	// SummarySide is one half of a summary: the expense or income aggregate.
	SummarySide struct {
		Total      Money           `json:"total"`
		ByCategory []CategoryTotal `json:"byCategory"`
	}

	// Summary is the per-user, per-month merged snapshot of expense and
	// income category totals. Exactly one exists per (user, month).
	Summary struct {
		UserID    string      `json:"userId"`
		Month     string      `json:"month"`
		Expense   SummarySide `json:"expense"`
		Income    SummarySide `json:"income"`
		CreatedAt time.Time   `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 100 characters)")
	ErrEmptyCategory      = errors.New("provide a category")
	ErrEmptyProductList   = errors.New("provide at least one product")
	ErrInvalidMonth       = errors.New("invalid month format, expected YYYY-MM")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidName        = errors.New("name must be between 2 and 15 characters")
	ErrInvalidPassword    = errors.New("password length must be between 8 and 20 characters")
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

// MonthID renders the canonical month identifier (YYYY-MM) for a point in time.
func MonthID(t time.Time) string {
	return t.Format("2006-01")
}

// ValidateMonth checks the canonical YYYY-MM month identifier.
func ValidateMonth(month string) error {
	if !monthRe.MatchString(strings.TrimSpace(month)) {
		return ErrInvalidMonth
	}
	return nil
}

// Total sums all values of the allocation.
func (a Allocation) Total() Money {
	var cents int64
	for _, v := range a {
		cents += v.Cents
	}
	return Money{Cents: cents}
}

// Keys returns the allocation's keys in sorted order.
func (a Allocation) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects empty or blank-keyed allocations.
func (a Allocation) Validate() error {
	if len(a) == 0 {
		return ErrEmptyProductList
	}
	for k := range a {
		if strings.TrimSpace(k) == "" {
			return errors.New("allocation entries must be named")
		}
	}
	return nil
}

// InvalidAllocationKeys returns the allocation keys that are not declared
// categories of the owning user, in sorted order. An empty result means the
// allocation is valid. This replaces any implicit model-lifecycle check: the
// services call it explicitly before persisting.
func InvalidAllocationKeys(alloc Allocation, categories []string) []string {
	declared := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		declared[c] = struct{}{}
	}
	var invalid []string
	for k := range alloc {
		if _, ok := declared[k]; !ok {
			invalid = append(invalid, k)
		}
	}
	sort.Strings(invalid)
	return invalid
}

func validateDescription(desc string) error {
	if len(desc) > 100 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (u User) Validate() error {
	name := strings.TrimSpace(u.Name)
	if len(name) < 2 || len(name) > 15 {
		return ErrInvalidName
	}
	if !emailRe.MatchString(strings.TrimSpace(u.Email)) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the plaintext password length bounds. It lives
// apart from User.Validate because the struct only ever carries the hash.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return ErrInvalidPassword
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.ProductDetails.Validate(); err != nil {
		return err
	}
	if err := e.SplitAllocation.Validate(); err != nil {
		return fmt.Errorf("split allocation: %w", err)
	}
	if err := e.Total.Validate(); err != nil {
		return err
	}
	if got := e.SplitAllocation.Total(); got.Cents != e.Total.Cents {
		return fmt.Errorf("split allocation sums to %.2f, expense total is %.2f",
			got.Units(), e.Total.Units())
	}
	return nil
}

func (i Income) Validate() error {
	if err := validateDescription(i.Description); err != nil {
		return err
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	return i.Amount.Validate()
}

func (b Budget) Validate() error {
	if err := validateDescription(b.Description); err != nil {
		return err
	}
	if err := ValidateMonth(b.Month); err != nil {
		return err
	}
	if err := b.Limits.Validate(); err != nil {
		return fmt.Errorf("budget limits: %w", err)
	}
	return nil
}
