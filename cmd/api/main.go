package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/minhtran-dev/savings-ledger/internal/config"
	"github.com/minhtran-dev/savings-ledger/internal/events"
	"github.com/minhtran-dev/savings-ledger/internal/handler"
	"github.com/minhtran-dev/savings-ledger/internal/integrations/centralbank"
	"github.com/minhtran-dev/savings-ledger/internal/ledger"
	"github.com/minhtran-dev/savings-ledger/internal/notify"
	"github.com/minhtran-dev/savings-ledger/internal/repository"
	"github.com/minhtran-dev/savings-ledger/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		logger.Fatalf("Failed to ensure schema: %v", err)
	}

	engine := ledger.NewEngine(cfg.BaseRate, cfg.TZOffsetSeconds)
	states, err := repo.LoadAccountStates()
	if err != nil {
		logger.Fatalf("Failed to load ledger state: %v", err)
	}
	engine.Restore(states)
	logger.Infof("Restored ledger state for %d accounts", len(states))

	var notifier service.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSender(cfg, logger)
	}
	rates := centralbank.NewClient(cfg, logger)
	emitter := events.NewLogEmitter(logger)
	svc := service.NewService(repo, engine, emitter, rates, notifier, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Pull the penalty rate once at startup; the configured default applies
	// until the feed answers.
	if err := svc.RefreshBaseRate(); err != nil {
		logger.Warnf("Using configured base rate %d%%: %v", cfg.BaseRate, err)
	}

	// Scheduled jobs: base-rate refresh and matured-deposit reminders
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		if err := svc.RefreshBaseRate(); err != nil {
			logger.Errorf("Base rate refresh failed: %v", err)
		}
		svc.SweepMatured()
	}); err != nil {
		logger.Fatalf("Failed to schedule sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := handler.NewRouter(h, cfg)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
