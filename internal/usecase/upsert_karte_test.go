package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/database"
)

func newUpsert(store KarteStore, d NotificationDispatcher) *UpsertKarteUseCase {
	uc := NewUpsertKarteUseCase(store, d, NewUserLocks(), zap.NewNop())
	uc.Now = fixedClock("2024-05-01T09:30:00+09:00")
	return uc
}

func TestUpsertCreatesWithDefaults(t *testing.T) {
	store := database.NewMemoryKarteRepository()
	d := &recordingDispatcher{}

	out, err := newUpsert(store, d).Execute(t.Context(), KarteInput{UserID: "U1", Prefecture: "東京都", EstimatedPrice: 5000})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.Created)

	recs := store.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, out.ID, recs[0].ID)
	assert.Equal(t, entity.StageLight, recs[0].Karte.Status)
	assert.Equal(t, "2024-05-01T00:30:00.000Z", recs[0].Karte.UpdatedAt)
	assert.Equal(t, "東京都", recs[0].Karte.Prefecture)
	assert.Empty(t, d.Jobs(), "defaulted status must not notify")
}

func TestUpsertSecondSubmissionUpdatesSameRecord(t *testing.T) {
	store := database.NewMemoryKarteRepository()
	d := &recordingDispatcher{}
	uc := newUpsert(store, d)

	first, err := uc.Execute(t.Context(), KarteInput{UserID: "U1", Status: entity.StageLight, Timestamp: "2024-05-01T00:00:00Z", EstimatedPrice: 5000})
	require.NoError(t, err)

	second, err := uc.Execute(t.Context(), KarteInput{UserID: "U1", Status: entity.StageMiddle, PreferredDate1: "2024-06-01 10:00"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Created)

	recs := store.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, entity.StageMiddle, recs[0].Karte.Status)
	assert.Equal(t, "2024-06-01 10:00", recs[0].Karte.PreferredDate1)
	assert.Equal(t, "2024-05-01T00:00:00Z", recs[0].Karte.Timestamp)

	jobs := d.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, entity.StageLight, jobs[0].Stage)
	assert.Equal(t, entity.StageMiddle, jobs[1].Stage)
	assert.Equal(t, "U1", jobs[1].UserID)
}

func TestUpsertUnknownStatusIsStoredWithoutNotification(t *testing.T) {
	store := database.NewMemoryKarteRepository()
	d := &recordingDispatcher{}

	_, err := newUpsert(store, d).Execute(t.Context(), KarteInput{UserID: "U1", Status: "draft"})

	require.NoError(t, err)
	assert.Equal(t, "draft", store.Records()[0].Karte.Status)
	assert.Empty(t, d.Jobs())
}

func TestUpsertRetriesDuplicateCreateAsUpdate(t *testing.T) {
	store := new(MockKarteStore)
	store.On("FindByUserID", mock.Anything, "U1").Return(nil, entity.ErrKarteNotFound).Once()
	store.On("Create", mock.Anything, mock.Anything).Return("", entity.ErrDuplicateKarte).Once()
	store.On("FindByUserID", mock.Anything, "U1").Return(&entity.KarteRecord{ID: "rec-other"}, nil).Once()
	store.On("Update", mock.Anything, "rec-other", mock.Anything).Return(nil).Once()

	out, err := newUpsert(store, &recordingDispatcher{}).Execute(t.Context(), KarteInput{UserID: "U1"})

	require.NoError(t, err)
	assert.Equal(t, "rec-other", out.ID)
	assert.False(t, out.Created)
	store.AssertExpectations(t)
}

func TestUpsertWrapsStoreFailures(t *testing.T) {
	upstream := &entity.UpstreamError{Service: "airtable", StatusCode: 422, Detail: map[string]any{"error": "INVALID"}}
	store := new(MockKarteStore)
	store.On("FindByUserID", mock.Anything, "U1").Return(nil, upstream)
	d := &recordingDispatcher{}

	_, err := newUpsert(store, d).Execute(t.Context(), KarteInput{UserID: "U1", Status: entity.StageFull})

	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.False(t, IsDomainError(err))

	var got *entity.UpstreamError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 422, got.StatusCode)
	assert.Empty(t, d.Jobs(), "failed writes must not notify")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpsertCreateFailureIsTechnical(t *testing.T) {
	store := new(MockKarteStore)
	store.On("FindByUserID", mock.Anything, "U1").Return(nil, entity.ErrKarteNotFound)
	store.On("Create", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	_, err := newUpsert(store, &recordingDispatcher{}).Execute(t.Context(), KarteInput{UserID: "U1"})

	assert.True(t, IsTechnicalError(err))
	assert.ErrorContains(t, err, "create karte")
}

// barrierStore holds every first lookup until n callers have looked, which
// forces the find-then-create interleaving.
type barrierStore struct {
	KarteStore
	once sync.Map
	wg   sync.WaitGroup
}

func newBarrierStore(inner KarteStore, n int) *barrierStore {
	s := &barrierStore{KarteStore: inner}
	s.wg.Add(n)
	return s
}

func (s *barrierStore) FindByUserID(ctx context.Context, userID string) (*entity.KarteRecord, error) {
	rec, err := s.KarteStore.FindByUserID(ctx, userID)
	if _, loaded := s.once.LoadOrStore(ctx.Value(callerKey{}), true); !loaded {
		s.wg.Done()
		s.wg.Wait()
	}
	return rec, err
}

type callerKey struct{}

func TestConcurrentUpsertsWithoutSharedLockDuplicate(t *testing.T) {
	mem := database.NewMemoryKarteRepository()
	store := newBarrierStore(mem, 2)

	var wg sync.WaitGroup
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc := newUpsert(store, &recordingDispatcher{})
			ctx := context.WithValue(t.Context(), callerKey{}, i)
			_, err := uc.Execute(ctx, KarteInput{UserID: "U1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, mem.Records(), 2)
}

func TestConcurrentUpsertsWithSharedLockCreateOnce(t *testing.T) {
	store := database.NewMemoryKarteRepository()
	locks := NewUserLocks()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc := NewUpsertKarteUseCase(store, &recordingDispatcher{}, locks, zap.NewNop())
			_, err := uc.Execute(t.Context(), KarteInput{UserID: "U1", Status: entity.StageLight})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Records(), 1)
	assert.Zero(t, locks.size())
}
