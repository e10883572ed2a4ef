package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/infra/notification"
)

var errDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consumes notification jobs and hands them to the Notifier.
type Worker struct {
	ch        consumer
	deliverer notification.Deliverer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewWorker(ch consumer, deliverer notification.Deliverer, timeout time.Duration, logger *zap.Logger) *Worker {
	return &Worker{ch: ch, deliverer: deliverer, timeout: timeout, logger: logger}
}

// Start blocks until ctx is done or the broker closes the channel.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.ch.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", queueName, err)
	}

	w.logger.Info("notification worker started", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks delivered jobs. Malformed or failed jobs are rejected without
// requeue so they land in the DLQ.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job notification.Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Error("malformed notification job", zap.Error(err))
		d.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.deliverer.Deliver(ctx, job); err != nil {
		w.logger.Warn("notification failed, dead-lettered",
			zap.String("user_id", job.UserID),
			zap.String("stage", job.Stage),
			zap.Error(err),
		)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}
