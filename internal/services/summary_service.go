package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/log"
)

// SummaryService computes the month-to-date summary for every user with
// recorded activity and upserts one document per (user, month). Concurrent
// generation requests for the same month share a single run.
type SummaryService struct {
	store  SummaryStore
	logger *log.Logger
	group  singleflight.Group
}

func NewSummaryService(store SummaryStore, logger *log.Logger) *SummaryService {
	return &SummaryService{
		store:  store,
		logger: logger,
	}
}

// RunReport describes one completed aggregation run.
type RunReport struct {
	Month       string    `json:"month"`
	Users       int       `json:"users"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Shared      bool      `json:"-"`
}

// Generate aggregates all expenses and incomes recorded between the first
// day of now's month and now, merges the two aggregates per user and upserts
// the results. Re-running for the same period replaces the stored summaries
// without creating duplicates.
func (s *SummaryService) Generate(ctx context.Context, now time.Time) (RunReport, error) {
	month := core.MonthID(now)

	v, err, shared := s.group.Do(month, func() (any, error) {
		return s.generate(ctx, now, month)
	})
	if err != nil {
		return RunReport{}, err
	}

	report := v.(RunReport)
	report.Shared = shared
	return report, nil
}

func (s *SummaryService) generate(ctx context.Context, now time.Time, month string) (RunReport, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now.UTC()

	expenses, err := s.store.AggregateExpenses(ctx, start, end)
	if err != nil {
		return RunReport{}, err
	}
	incomes, err := s.store.AggregateIncomes(ctx, start, end)
	if err != nil {
		return RunReport{}, err
	}

	summaries := mergeSides(expenses, incomes, month, end)
	if err := s.store.UpsertSummaries(ctx, summaries); err != nil {
		return RunReport{}, err
	}

	s.logger.InfoContext(ctx, "Summaries generated",
		log.FieldMonth, month,
		"users", len(summaries))
	return RunReport{
		Month:       month,
		Users:       len(summaries),
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

// mergeSides produces one summary per user appearing in either aggregate.
// A user with activity on only one side gets a zero-total empty aggregate
// for the other. Output is ordered by user id.
func mergeSides(expenses, incomes map[string]core.SummarySide, month string, now time.Time) []core.Summary {
	userIDs := make(map[string]struct{}, len(expenses)+len(incomes))
	for id := range expenses {
		userIDs[id] = struct{}{}
	}
	for id := range incomes {
		userIDs[id] = struct{}{}
	}

	summaries := make([]core.Summary, 0, len(userIDs))
	for id := range userIDs {
		summaries = append(summaries, core.Summary{
			UserID:    id,
			Month:     month,
			Expense:   expenses[id],
			Income:    incomes[id],
			CreatedAt: now,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UserID < summaries[j].UserID
	})
	return summaries
}

// Latest returns the most recent stored summary for a user.
func (s *SummaryService) Latest(ctx context.Context, userID string) (core.Summary, error) {
	summaries, err := s.store.ListSummaries(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	if len(summaries) == 0 {
		return core.Summary{}, apperr.New(apperr.CodeNotFound, "summary not found")
	}
	return summaries[0], nil
}

// List returns every stored summary for a user, newest month first.
func (s *SummaryService) List(ctx context.Context, userID string) ([]core.Summary, error) {
	return s.store.ListSummaries(ctx, userID)
}

// Get returns the stored summary for one specific month.
func (s *SummaryService) Get(ctx context.Context, userID, month string) (core.Summary, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Summary{}, apperr.New(apperr.CodeInvalid, err.Error())
	}
	return s.store.GetSummary(ctx, userID, month)
}
