package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/http/middleware"
	"github.com/naileon/karte-api/internal/infra/integration/line"
)

type Pusher interface {
	Configured() bool
	PushText(ctx context.Context, input line.PushMessageInput) error
}

type StaffMailer interface {
	SendKarteCompleted(k entity.Karte) error
}

// Notifier turns a Job into a LINE push and, for completed kartes, a staff mail.
type Notifier struct {
	pusher Pusher
	staff  StaffMailer
	logger *zap.Logger
}

// NewNotifier builds a Notifier. staff may be nil.
func NewNotifier(pusher Pusher, staff StaffMailer, logger *zap.Logger) *Notifier {
	return &Notifier{pusher: pusher, staff: staff, logger: logger}
}

// Deliver sends at most one push to the user. A missing channel token or a
// status without template is a silent no-op.
func (n *Notifier) Deliver(ctx context.Context, job Job) error {
	var errs []error

	text, ok, err := Render(job)
	switch {
	case err != nil:
		errs = append(errs, err)
	case !ok || !n.pusher.Configured():
		middleware.RecordNotification(job.Stage, "skipped")
	default:
		if err := n.pusher.PushText(ctx, line.PushMessageInput{To: job.UserID, Text: text}); err != nil {
			middleware.RecordNotification(job.Stage, "failed")
			errs = append(errs, fmt.Errorf("line push (%s): %w", job.Stage, err))
		} else {
			middleware.RecordNotification(job.Stage, "sent")
			n.logger.Info("line notification sent", zap.String("user_id", job.UserID), zap.String("stage", job.Stage))
		}
	}

	if job.Stage == entity.StageFull && n.staff != nil {
		if err := n.staff.SendKarteCompleted(job.Karte); err != nil {
			errs = append(errs, err)
		} else {
			n.logger.Info("staff alert mailed", zap.String("user_id", job.UserID))
		}
	}

	return errors.Join(errs...)
}
