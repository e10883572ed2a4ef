package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/notification"
)

type MockKarteStore struct {
	mock.Mock
}

func (m *MockKarteStore) FindByUserID(ctx context.Context, userID string) (*entity.KarteRecord, error) {
	args := m.Called(ctx, userID)
	if rec := args.Get(0); rec != nil {
		return rec.(*entity.KarteRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKarteStore) Create(ctx context.Context, k *entity.Karte) (string, error) {
	args := m.Called(ctx, k)
	return args.String(0), args.Error(1)
}

func (m *MockKarteStore) Update(ctx context.Context, recordID string, k *entity.Karte) error {
	return m.Called(ctx, recordID, k).Error(0)
}

// recordingDispatcher collects jobs instead of delivering them.
type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []notification.Job
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, job notification.Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

func (d *recordingDispatcher) Jobs() []notification.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.Job(nil), d.jobs...)
}

func fixedClock(ts string) func() time.Time {
	return func() time.Time {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			panic(err)
		}
		return t
	}
}
