// Package billing содержит приложение-потребитель событий биллинга из RabbitMQ.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/config"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/rabbitmq"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	billingservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/billing"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// App представляет приложение-потребитель.
type App struct {
	billingService *billingservice.BillingService
	conn           *amqp.Connection
	ch             *amqp.Channel
	db             *storage.Storage
	logger         *slog.Logger
}

// New подключается к брокеру и базе данных.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.BillingExchange, rabbitmq.BillingQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := db.WaitReady(ctx, 10, 3*time.Second); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	return &App{
		billingService: billingservice.NewBillingService(db, logger),
		conn:           conn,
		ch:             ch,
		db:             db,
		logger:         logger,
	}, nil
}

// Run читает очередь событий до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.BillingQueue, a.logger, a.billingService.Handle); err != nil {
		return err
	}
	a.logger.Info("billing consumer started", slog.String("queue", rabbitmq.BillingQueue))

	<-ctx.Done()

	a.logger.Info("shutting down billing consumer")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
