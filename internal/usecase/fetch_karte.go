package usecase

import (
	"context"
	"errors"

	"github.com/naileon/karte-api/internal/entity"
)

type FetchKarteUseCase struct {
	Store KarteStore
}

func NewFetchKarteUseCase(store KarteStore) *FetchKarteUseCase {
	return &FetchKarteUseCase{Store: store}
}

// Execute returns the latest karte of the user.
func (uc *FetchKarteUseCase) Execute(ctx context.Context, userID string) (*KarteOutput, error) {
	rec, err := uc.Store.FindByUserID(ctx, userID)
	if errors.Is(err, entity.ErrKarteNotFound) {
		return nil, errKarteNotFound(userID)
	}
	if err != nil {
		return nil, upstreamError("find karte", err)
	}
	return &KarteOutput{Karte: rec.Karte, RecordID: rec.ID}, nil
}
