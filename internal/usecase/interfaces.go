package usecase

import (
	"context"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/notification"
)

// KarteStore is the record store holding one karte per LINE user.
// FindByUserID returns entity.ErrKarteNotFound when nothing matches and the
// most recently updated record when several do.
type KarteStore interface {
	FindByUserID(ctx context.Context, userID string) (*entity.KarteRecord, error)
	Create(ctx context.Context, k *entity.Karte) (string, error)
	Update(ctx context.Context, recordID string, k *entity.Karte) error
}

// NotificationDispatcher hands a job to a fire-and-forget delivery path.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, job notification.Job)
}
