package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/notification"
)

// UpsertKarteUseCase backs POST /api/karte: find the user's karte, update it
// or create it, then notify for the submitted stage.
type UpsertKarteUseCase struct {
	Store      KarteStore
	Dispatcher NotificationDispatcher
	Locks      *UserLocks
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewUpsertKarteUseCase(
	store KarteStore,
	dispatcher NotificationDispatcher,
	locks *UserLocks,
	logger *zap.Logger,
) *UpsertKarteUseCase {
	return &UpsertKarteUseCase{
		Store:      store,
		Dispatcher: dispatcher,
		Locks:      locks,
		Logger:     logger,
		Now:        time.Now,
	}
}

func (uc *UpsertKarteUseCase) Execute(ctx context.Context, input KarteInput) (*UpsertKarteOutput, error) {
	unlock := uc.Locks.Lock(input.UserID)
	defer unlock()

	karte := input.toKarte(entity.StageLight)
	karte.Touch(uc.Now())

	id, created, err := uc.write(ctx, &karte)
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("karte saved",
		zap.String("user_id", karte.UserID),
		zap.String("record_id", id),
		zap.String("status", karte.Status),
		zap.Bool("created", created),
	)

	// Only an explicitly submitted stage notifies; a defaulted status does not.
	if entity.IsKnownStage(input.Status) {
		uc.Dispatcher.Dispatch(ctx, notification.Job{UserID: karte.UserID, Stage: input.Status, Karte: karte})
	}

	return &UpsertKarteOutput{Success: true, ID: id, Created: created}, nil
}

func (uc *UpsertKarteUseCase) write(ctx context.Context, karte *entity.Karte) (id string, created bool, err error) {
	existing, err := uc.Store.FindByUserID(ctx, karte.UserID)
	switch {
	case err == nil:
		return existing.ID, false, uc.update(ctx, existing.ID, karte)
	case !errors.Is(err, entity.ErrKarteNotFound):
		return "", false, upstreamError("find karte", err)
	}

	id, err = uc.Store.Create(ctx, karte)
	if errors.Is(err, entity.ErrDuplicateKarte) {
		// Lost a create race against another instance; the store kept theirs.
		existing, err := uc.Store.FindByUserID(ctx, karte.UserID)
		if err != nil {
			return "", false, upstreamError("find karte after duplicate create", err)
		}
		return existing.ID, false, uc.update(ctx, existing.ID, karte)
	}
	if err != nil {
		return "", false, upstreamError("create karte", err)
	}
	return id, true, nil
}

func (uc *UpsertKarteUseCase) update(ctx context.Context, recordID string, karte *entity.Karte) error {
	if err := uc.Store.Update(ctx, recordID, karte); err != nil {
		return upstreamError("update karte", err)
	}
	return nil
}
