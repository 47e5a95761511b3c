// Package http exposes the JSON API: authentication, per-user expense,
// income and budget CRUD, category management and summary reads.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/victor-uk/expense-tracker/internal/auth"
	"github.com/victor-uk/expense-tracker/internal/cache"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/log"
	"github.com/victor-uk/expense-tracker/internal/services"
)

type Services struct {
	Users     *services.UserService
	Expenses  *services.ExpenseService
	Incomes   *services.IncomeService
	Budgets   *services.BudgetService
	Summaries *services.SummaryService
}

type Server struct {
	http.Server

	logger *log.Logger
	tokens *auth.Tokens
	svc    Services

	rateLimiter  *rateLimiter
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, tokens *auth.Tokens, svc Services, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 64 << 10,
		},
		logger:       logger.WithComponent(log.ComponentHTTP),
		tokens:       tokens,
		svc:          svc,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.Summary](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/v1/signup", s.withMiddleware(s.handleSignup))
	mux.HandleFunc("POST /api/v1/login", s.withMiddleware(s.handleLogin))

	mux.HandleFunc("GET /api/v1/users", s.withAuth(s.handleListUsers))
	mux.HandleFunc("GET /api/v1/users/{id}", s.withAuth(s.handleGetUser))
	mux.HandleFunc("PATCH /api/v1/users/{id}", s.withAuth(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/v1/users/{id}", s.withAuth(s.handleDeleteUser))
	mux.HandleFunc("PATCH /api/v1/users/{id}/categories", s.withAuth(s.handleAddCategory))
	mux.HandleFunc("DELETE /api/v1/users/{id}/categories", s.withAuth(s.handleRemoveCategory))

	mux.HandleFunc("POST /api/v1/users/me/expenses", s.withAuth(s.handleCreateExpense))
	mux.HandleFunc("GET /api/v1/users/me/expenses", s.withAuth(s.handleListExpenses))
	mux.HandleFunc("GET /api/v1/users/me/expenses/{id}", s.withAuth(s.handleGetExpense))
	mux.HandleFunc("PATCH /api/v1/users/me/expenses/{id}", s.withAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/v1/users/me/expenses/{id}", s.withAuth(s.handleDeleteExpense))

	mux.HandleFunc("POST /api/v1/users/me/incomes", s.withAuth(s.handleCreateIncome))
	mux.HandleFunc("GET /api/v1/users/me/incomes", s.withAuth(s.handleListIncomes))
	mux.HandleFunc("GET /api/v1/users/me/incomes/{id}", s.withAuth(s.handleGetIncome))
	mux.HandleFunc("PATCH /api/v1/users/me/incomes/{id}", s.withAuth(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/v1/users/me/incomes/{id}", s.withAuth(s.handleDeleteIncome))

	mux.HandleFunc("POST /api/v1/users/me/budgets", s.withAuth(s.handleCreateBudget))
	mux.HandleFunc("GET /api/v1/users/me/budgets", s.withAuth(s.handleListBudgets))
	mux.HandleFunc("GET /api/v1/users/me/budgets/{id}", s.withAuth(s.handleGetBudget))
	mux.HandleFunc("PATCH /api/v1/users/me/budgets/{id}", s.withAuth(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/v1/users/me/budgets/{id}", s.withAuth(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/v1/users/me/summaries", s.withAuth(s.handleLatestSummary))
	mux.HandleFunc("GET /api/v1/users/me/summaries/all", s.withAuth(s.handleListSummaries))
	mux.HandleFunc("GET /api/v1/users/me/summaries/{month}", s.withAuth(s.handleGetSummary))

	return s
}

// Shutdown stops the background cleanup goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
