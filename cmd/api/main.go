package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/Dan9191/family-ledger/internal/handler"
	"github.com/Dan9191/family-ledger/internal/middleware"
	"github.com/Dan9191/family-ledger/internal/reminder"
	"github.com/Dan9191/family-ledger/internal/repository"
	"github.com/Dan9191/family-ledger/internal/service"
	"github.com/Dan9191/family-ledger/internal/store"
	"github.com/Dan9191/family-ledger/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx := context.Background()

	// Initialize store
	docs, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	// Initialize layers
	repo := repository.NewRepository(docs)
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Reminders
	if cfg.MailEnabled() {
		job := reminder.NewJob(repo, email.NewSender(cfg, logger), logger, cfg)
		c, err := job.Schedule(cfg.ReminderCron)
		if err != nil {
			logger.Fatalf("Failed to schedule reminders: %v", err)
		}
		c.Start()
		defer c.Stop()
		logger.Infof("Payment reminders scheduled: %s (%s)", cfg.ReminderCron, cfg.Timezone)
	} else {
		logger.Warn("SMTP_HOST or SENDER_EMAIL not set, payment reminders disabled")
	}

	// Setup router
	r := handler.NewRouter(h, middleware.AuthMiddleware(cfg), middleware.RequestLogger(logger))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

// openStore builds the document store for the configured driver, wrapped in
// the Redis cache when REDIS_URL is set.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, func(), error) {
	var (
		docs    store.Store
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		docs = store.NewMemoryStore()
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		if err := db.PingContext(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		pg := store.NewPostgresStore(db, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		docs = pg
	}

	if cfg.RedisURL != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		docs = store.NewCachedStore(docs, rdb, cfg.CacheTTL, logger)
		logger.Infof("Redis cache enabled (ttl %s)", cfg.CacheTTL)
	}
	return docs, closeAll, nil
}
