package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mazebank/mazebank-backend/internal/adapter/httpapi"
	"github.com/mazebank/mazebank-backend/internal/adapter/repository/memory"
	"github.com/mazebank/mazebank-backend/internal/adapter/repository/postgres"
	"github.com/mazebank/mazebank-backend/internal/config"
	"github.com/mazebank/mazebank-backend/internal/domain"
	"github.com/mazebank/mazebank-backend/internal/events"
	"github.com/mazebank/mazebank-backend/internal/observability"
	"github.com/mazebank/mazebank-backend/internal/usecase/processor"
	"github.com/mazebank/mazebank-backend/internal/usecase/transfer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(".")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics("mazebank")

	// 1. Storage
	var (
		accounts domain.AccountRepository
		ledger   domain.TransactionRepository
		store    domain.TransferStore
	)
	switch cfg.StorageDriver {
	case "memory":
		mem := memory.NewStore()
		accounts, ledger, store = mem, mem, mem
		logger.Info("using in-memory storage")
	default:
		db, err := postgres.NewDB(cfg.PostgresConnString())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		accounts = postgres.NewAccountRepository(db)
		ledger = postgres.NewTransactionRepository(db)
		store = postgres.NewTransferStore(db)
	}

	// 2. Transfer engine
	locks := transfer.NewLockTable(cfg.LockStripes)
	engine := transfer.NewService(store, locks, logger, metrics)

	// 3. Async processor with its outcome side channel
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.TransferEventExchange, cfg.TransferEventRoutingKey)
		if err != nil {
			logger.Warn("rabbitmq unavailable, transfer events disabled", "error", err)
		} else {
			publisher = rabbit
			defer rabbit.Close()
		}
	}
	proc := processor.New(engine, logger, metrics, publisher)

	// 4. HTTP server
	handlers := httpapi.NewHandlers(engine, proc, accounts, ledger, logger)
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: httpapi.Routes(handlers),
	}

	go func() {
		logger.Info("http server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, srv, proc, time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
}

// waitForShutdown waits for SIGTERM or SIGINT, then stops the HTTP
// server and drains the async processor within the grace period.
func waitForShutdown(logger *slog.Logger, srv *http.Server, proc *processor.Processor, grace time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	if err := proc.Shutdown(ctx); err != nil {
		logger.Error("processor shutdown incomplete", "error", err)
	}
	logger.Info("shutdown complete")
}
