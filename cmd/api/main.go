package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/config"
	"github.com/naileon/karte-api/internal/infra/database"
	"github.com/naileon/karte-api/internal/infra/http/handlers"
	"github.com/naileon/karte-api/internal/infra/http/router"
	"github.com/naileon/karte-api/internal/infra/integration/airtable"
	"github.com/naileon/karte-api/internal/infra/integration/line"
	"github.com/naileon/karte-api/internal/infra/logging"
	"github.com/naileon/karte-api/internal/infra/mail"
	"github.com/naileon/karte-api/internal/infra/notification"
	"github.com/naileon/karte-api/internal/infra/queue"
	"github.com/naileon/karte-api/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Record store
	store, db, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("record store unavailable", zap.String("store", cfg.Store), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	// 2. Notification path
	lineClient := line.NewClient(cfg.LINE.AccessToken, cfg.LINE.APIURL, cfg.UpstreamTimeout)
	if !lineClient.Configured() {
		logger.Warn("LINE_CHANNEL_ACCESS_TOKEN not set, push notifications disabled")
	}

	var staff notification.StaffMailer
	if cfg.Mail.Enabled() {
		staff = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.To)
	}
	notifier := notification.NewNotifier(lineClient, staff, logger)

	var (
		dispatcher usecase.NotificationDispatcher
		broker     handlers.Broker
		async      *notification.AsyncDispatcher
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if cfg.AMQPURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("rabbitmq unavailable", zap.Error(err))
		}
		defer rabbitMQ.Close()

		worker := queue.NewWorker(rabbitMQ.Ch, notifier, cfg.NotifyTimeout, logger)
		go func() {
			if err := worker.Start(workerCtx, queue.QueueName); err != nil {
				logger.Error("notification worker stopped", zap.Error(err))
			}
		}()

		dispatcher = queue.NewProducer(rabbitMQ.Ch, logger)
		broker = rabbitMQ
	} else {
		async = notification.NewAsyncDispatcher(notifier, cfg.NotifyTimeout, logger)
		dispatcher = async
	}

	// 3. Use cases
	locks := usecase.NewUserLocks()
	upsertUC := usecase.NewUpsertKarteUseCase(store, dispatcher, locks, logger)
	fetchUC := usecase.NewFetchKarteUseCase(store)
	replaceUC := usecase.NewReplaceKarteUseCase(store, dispatcher, locks, logger)

	// 4. HTTP
	handler := router.NewRouter(router.Deps{
		Karte:          handlers.NewKarteHandler(upsertUC, fetchUC, replaceUC, logger),
		Health:         handlers.NewHealthHandler(cfg.Store, db, broker, lineClient.Configured()),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("karte api listening", zap.String("addr", server.Addr), zap.String("store", cfg.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	stopWorker()
	if async != nil {
		async.Wait()
	}
}

// newStore returns the KarteStore selected by KARTE_STORE. db is non-nil
// only for the postgres driver.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (usecase.KarteStore, *sql.DB, error) {
	switch cfg.Store {
	case config.StoreAirtable:
		return airtable.NewClient(airtable.Config{
			BaseURL: cfg.Airtable.URL,
			BaseID:  cfg.Airtable.BaseID,
			Table:   cfg.Airtable.Table,
			APIKey:  cfg.Airtable.APIKey,
			Timeout: cfg.UpstreamTimeout,
		}, logger), nil, nil

	case config.StorePostgres:
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := database.NewKarteRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, db, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, kartes are lost on restart")
		return database.NewMemoryKarteRepository(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}
