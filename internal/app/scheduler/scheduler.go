// Package scheduler содержит приложение планировщика уведомлений о серии и пробном периоде.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/config"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/kv"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/rabbitmq"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	schedulerservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/scheduler"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	interval         time.Duration
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *storage.Storage
	store            *kv.Redis
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationsExchange, rabbitmq.NotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := db.WaitReady(ctx, 10, 3*time.Second); err != nil {
		closeResources(ch, conn, logger)
		_ = db.Close()
		return nil, err
	}

	store, err := kv.NewRedis(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		_ = db.Close()
		return nil, fmt.Errorf("kv store not initialized: %w", err)
	}

	publisher := &rabbitmq.Publisher{Ch: ch, Exchange: rabbitmq.NotificationsExchange}
	schedulerService := schedulerservice.NewSchedulerService(db, publisher, store, logger, cfg.BatchSize)

	return &App{
		schedulerService: schedulerService,
		interval:         cfg.Interval,
		conn:             conn,
		ch:               ch,
		db:               db,
		store:            store,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Start(ctx, a.interval)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.logger)
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
