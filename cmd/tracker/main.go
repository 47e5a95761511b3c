package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/victor-uk/expense-tracker/internal/auth"
	"github.com/victor-uk/expense-tracker/internal/config"
	apphttp "github.com/victor-uk/expense-tracker/internal/http"
	applog "github.com/victor-uk/expense-tracker/internal/log"
	"github.com/victor-uk/expense-tracker/internal/services"
	"github.com/victor-uk/expense-tracker/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: "tracker",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath, cfg.StoreTimeout)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	svc := apphttp.Services{
		Users:     services.NewUserService(repo, tokens, logger),
		Expenses:  services.NewExpenseService(repo, repo),
		Incomes:   services.NewIncomeService(repo),
		Budgets:   services.NewBudgetService(repo),
		Summaries: services.NewSummaryService(repo, logger.WithComponent(applog.ComponentSummary)),
	}

	srv := apphttp.NewServer(":"+cfg.Port, tokens, svc, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		logger.Info("Shutdown signal received", "signal", (<-sigs).String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting tracker server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
