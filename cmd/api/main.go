package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/ledger-service/internal/config"
	"github.com/Dan9191/ledger-service/internal/handler"
	"github.com/Dan9191/ledger-service/internal/metrics"
	"github.com/Dan9191/ledger-service/internal/notify"
	"github.com/Dan9191/ledger-service/internal/repository"
	"github.com/Dan9191/ledger-service/internal/repository/memory"
	"github.com/Dan9191/ledger-service/internal/scheduler"
	"github.com/Dan9191/ledger-service/internal/service"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// demoDBConn runs the service on a seeded in-memory store
const demoDBConn = "memory"

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
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	var store service.Store
	if cfg.DBConn == demoDBConn {
		mem := memory.New()
		memory.SeedDemo(mem, time.Now())
		store = mem
		logger.Warn("Using in-memory demo store; data is not persisted")
	} else {
		db, err := sqlx.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo := repository.NewRepository(db, cfg.DBTimeout)
		if err := repo.Ping(context.Background()); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		store = repo
	}

	// Initialize layers
	m := metrics.New()
	var notifier service.Notifier
	if cfg.AlertEmail != "" {
		notifier = notify.NewSender(cfg, logger)
	}
	svc := service.NewService(store, logger, cfg, m, notifier)
	h := handler.NewHandler(svc, logger)
	r := handler.NewRouter(h, cfg, m, logger)

	sched, err := scheduler.New(svc, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	sched.Stop(ctx)
}
