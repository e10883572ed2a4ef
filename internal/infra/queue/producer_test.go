package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/notification"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func TestPublishSendsPersistentJSONJob(t *testing.T) {
	pub := new(MockPublisher)
	var sent amqp.Publishing
	pub.On("PublishWithContext", ExchangeName, RoutingKey, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(amqp.Publishing) }).
		Return(nil)

	job := notification.Job{UserID: "U1", Stage: entity.StageFull, Karte: entity.Karte{UserID: "U1", FullName: "Jane"}}
	require.NoError(t, NewProducer(pub, zap.NewNop()).Publish(t.Context(), job))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)

	var got notification.Job
	require.NoError(t, json.Unmarshal(sent.Body, &got))
	assert.Equal(t, job, got)
	pub.AssertExpectations(t)
}

func TestDispatchSwallowsPublishErrors(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", ExchangeName, RoutingKey, mock.Anything).Return(errors.New("channel closed"))

	assert.NotPanics(t, func() {
		NewProducer(pub, zap.NewNop()).Dispatch(t.Context(), notification.Job{UserID: "U1", Stage: entity.StageLight})
	})
	pub.AssertNumberOfCalls(t, "PublishWithContext", 1)
}

func TestDispatchSurvivesCancelledRequestContext(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", ExchangeName, RoutingKey, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	NewProducer(pub, zap.NewNop()).Dispatch(ctx, notification.Job{UserID: "U1", Stage: entity.StageMiddle})

	pub.AssertExpectations(t)
}
