package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/infra/http/middleware"
	"github.com/naileon/karte-api/internal/infra/notification"
)

const publishTimeout = 5 * time.Second

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Producer is the queue-backed NotificationDispatcher.
type Producer struct {
	ch     publisher
	logger *zap.Logger
}

func NewProducer(ch publisher, logger *zap.Logger) *Producer {
	return &Producer{ch: ch, logger: logger}
}

// Dispatch enqueues the job. A failed publish is logged and dropped.
func (p *Producer) Dispatch(ctx context.Context, job notification.Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, job); err != nil {
		middleware.RecordNotification(job.Stage, "enqueue_failed")
		p.logger.Warn("notification not enqueued (ignored)",
			zap.String("user_id", job.UserID),
			zap.String("stage", job.Stage),
			zap.Error(err),
		)
	}
}

func (p *Producer) Publish(ctx context.Context, job notification.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode notification job: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}
