package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/victor-uk/expense-tracker/internal/amqp"
	"github.com/victor-uk/expense-tracker/internal/config"
	"github.com/victor-uk/expense-tracker/internal/core"
	"github.com/victor-uk/expense-tracker/internal/export"
	applog "github.com/victor-uk/expense-tracker/internal/log"
	"github.com/victor-uk/expense-tracker/internal/services"
	"github.com/victor-uk/expense-tracker/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting summary-worker")

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

	summaries := services.NewSummaryService(repo, logger.WithComponent(applog.ComponentSummary))

	// Run reports go out over AMQP when a broker is configured.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var exporter *export.SheetsExporter
	if cfg.ExportEnabled() {
		exporter, err = export.NewSheetsExporter(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// Catch up immediately, then follow the schedule.
	runOnce(ctx, summaries, repo, amqpClient, exporter, logger)

	ticker := time.NewTicker(cfg.SummaryInterval)
	defer ticker.Stop()

	logger.Info("Summary schedule started", "interval", cfg.SummaryInterval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped gracefully")
			return
		case <-ticker.C:
			runOnce(ctx, summaries, repo, amqpClient, exporter, logger)
		}
	}
}

// runOnce generates the month-to-date summaries and reports the outcome.
// A failed run is reported over AMQP but does not stop the schedule.
func runOnce(ctx context.Context, summaries *services.SummaryService, repo *storage.Repository, amqpClient *amqp.Client, exporter *export.SheetsExporter, logger *applog.Logger) {
	now := time.Now().UTC()
	report, err := summaries.Generate(ctx, now)
	if err != nil {
		logger.Error("Summary generation failed", applog.FieldError, err, applog.FieldMonth, core.MonthID(now))
		publishReport(ctx, amqpClient, amqp.NewFailureMessage(core.MonthID(now), err), logger)
		return
	}

	logger.Info("Summary generation completed",
		applog.FieldMonth, report.Month,
		"users", report.Users,
		"shared", report.Shared)
	publishReport(ctx, amqpClient, amqp.NewSuccessMessage(report.Month, report.Users), logger)

	if exporter != nil && !report.Shared {
		exportSummaries(ctx, repo, exporter, report.Month, logger)
	}
}

func publishReport(ctx context.Context, amqpClient *amqp.Client, msg *amqp.SummaryRunMessage, logger *applog.Logger) {
	if amqpClient == nil {
		return
	}
	if err := amqpClient.PublishSummaryRun(ctx, msg); err != nil {
		logger.Error("Failed to publish run report", applog.FieldError, err, applog.FieldMonth, msg.Month)
	}
}

func exportSummaries(ctx context.Context, repo *storage.Repository, exporter *export.SheetsExporter, month string, logger *applog.Logger) {
	users, err := repo.ListUsers(ctx)
	if err != nil {
		logger.Error("Failed to list users for export", applog.FieldError, err)
		return
	}

	var batch []core.Summary
	for _, u := range users {
		s, err := repo.GetSummary(ctx, u.ID, month)
		if err != nil {
			continue
		}
		batch = append(batch, s)
	}

	if err := exporter.AppendSummaries(ctx, batch); err != nil {
		logger.Error("Failed to export summaries", applog.FieldError, err, applog.FieldMonth, month)
		return
	}
	logger.Info("Summaries exported", applog.FieldMonth, month, "rows", len(batch))
}
