package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Deliverer interface {
	Deliver(ctx context.Context, job Job) error
}

// AsyncDispatcher delivers each job on its own goroutine. Delivery errors and
// panics are logged and dropped; they never reach the caller.
type AsyncDispatcher struct {
	deliverer Deliverer
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewAsyncDispatcher(deliverer Deliverer, timeout time.Duration, logger *zap.Logger) *AsyncDispatcher {
	return &AsyncDispatcher{deliverer: deliverer, timeout: timeout, logger: logger}
}

// Dispatch returns immediately. The delivery outlives ctx's cancellation
// but not the dispatcher timeout.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, job Job) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification panicked", zap.String("user_id", job.UserID), zap.String("panic", fmt.Sprint(r)))
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.deliverer.Deliver(ctx, job); err != nil {
			d.logger.Warn("notification failed (ignored)",
				zap.String("user_id", job.UserID),
				zap.String("stage", job.Stage),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
