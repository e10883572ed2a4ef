package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/notification"
)

// ReplaceKarteUseCase backs PUT /api/karte/{userId}. It never creates: a
// missing karte is a DomainError and nothing is written.
type ReplaceKarteUseCase struct {
	Store      KarteStore
	Dispatcher NotificationDispatcher
	Locks      *UserLocks
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewReplaceKarteUseCase(
	store KarteStore,
	dispatcher NotificationDispatcher,
	locks *UserLocks,
	logger *zap.Logger,
) *ReplaceKarteUseCase {
	return &ReplaceKarteUseCase{
		Store:      store,
		Dispatcher: dispatcher,
		Locks:      locks,
		Logger:     logger,
		Now:        time.Now,
	}
}

func (uc *ReplaceKarteUseCase) Execute(ctx context.Context, userID string, input KarteInput) (*ReplaceKarteOutput, error) {
	unlock := uc.Locks.Lock(userID)
	defer unlock()

	existing, err := uc.Store.FindByUserID(ctx, userID)
	if errors.Is(err, entity.ErrKarteNotFound) {
		return nil, errKarteNotFound(userID)
	}
	if err != nil {
		return nil, upstreamError("find karte", err)
	}

	karte := input.toKarte(entity.StageFull)
	karte.UserID = userID
	karte.Timestamp = existing.Karte.Timestamp
	karte.Touch(uc.Now())

	if err := uc.Store.Update(ctx, existing.ID, &karte); err != nil {
		return nil, upstreamError("update karte", err)
	}

	uc.Logger.Info("karte replaced",
		zap.String("user_id", userID),
		zap.String("record_id", existing.ID),
		zap.String("status", karte.Status),
	)

	if karte.Status == entity.StageFull {
		uc.Dispatcher.Dispatch(ctx, notification.Job{UserID: userID, Stage: entity.StageFull, Karte: karte})
	}

	return &ReplaceKarteOutput{Success: true}, nil
}
