package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	generalDomain "github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/rabbitmq"
	orderDomain "github.com/sarmatovd/shop-services/services/order/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFulfillmentService struct {
	err     error
	calls   int
	payload *generalDomain.OrderPayload
}

func (f *fakeFulfillmentService) Fulfill(ctx context.Context, correlationID string, message generalDomain.PurchaseRequestMessage) (*generalDomain.OrderPayload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeFulfillmentService) ListByPurchaser(ctx context.Context, email string) ([]orderDomain.Order, error) {
	panic("not used")
}

type fakePublisher struct {
	err           error
	queue         string
	correlationID string
	payload       any
}

func (f *fakePublisher) Publish(ctx context.Context, queue string, correlationID string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.queue = queue
	f.correlationID = correlationID
	f.payload = payload
	return nil
}

func validRequestBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(generalDomain.PurchaseRequestMessage{
		Products: []generalDomain.PurchaseLineItem{
			{ProductID: 1, Price: 4500},
		},
		PurchaserEmail: "alice@example.com",
		RequestedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	return body
}

func TestHandle_SuccessPublishesResultAndAcks(t *testing.T) {
	svc := &fakeFulfillmentService{
		payload: &generalDomain.OrderPayload{ID: 9, TotalPrice: 4500},
	}
	publisher := &fakePublisher{}
	consumer := NewConsumer(svc, publisher, zap.NewNop())

	action := consumer.Handle(context.Background(), rabbitmq.Delivery{
		CorrelationID: "corr-9",
		Body:          validRequestBody(t),
	})

	require.Equal(t, rabbitmq.Ack, action)
	require.Equal(t, generalDomain.PurchaseResultQueue, publisher.queue)
	require.Equal(t, "corr-9", publisher.correlationID)

	result, ok := publisher.payload.(generalDomain.PurchaseResultMessage)
	require.True(t, ok)
	require.Equal(t, int64(9), result.Order.ID)
}

func TestHandle_MalformedBodyIsAcked(t *testing.T) {
	svc := &fakeFulfillmentService{}
	consumer := NewConsumer(svc, &fakePublisher{}, zap.NewNop())

	action := consumer.Handle(context.Background(), rabbitmq.Delivery{
		CorrelationID: "corr-1",
		Body:          []byte("{not json"),
	})

	require.Equal(t, rabbitmq.Ack, action)
	require.Zero(t, svc.calls)
}

func TestHandle_InvalidMessageIsAcked(t *testing.T) {
	svc := &fakeFulfillmentService{}
	consumer := NewConsumer(svc, &fakePublisher{}, zap.NewNop())

	body, err := json.Marshal(generalDomain.PurchaseRequestMessage{
		Products:       nil,
		PurchaserEmail: "not-an-email",
	})
	require.NoError(t, err)

	action := consumer.Handle(context.Background(), rabbitmq.Delivery{
		CorrelationID: "corr-1",
		Body:          body,
	})

	require.Equal(t, rabbitmq.Ack, action)
	require.Zero(t, svc.calls)
}

func TestHandle_MissingCorrelationIDIsAcked(t *testing.T) {
	svc := &fakeFulfillmentService{}
	consumer := NewConsumer(svc, &fakePublisher{}, zap.NewNop())

	action := consumer.Handle(context.Background(), rabbitmq.Delivery{
		Body: validRequestBody(t),
	})

	require.Equal(t, rabbitmq.Ack, action)
	require.Zero(t, svc.calls)
}

func TestHandle_StorageErrorRequeuesFirstThenDeadLetters(t *testing.T) {
	svc := &fakeFulfillmentService{err: errors.New("db is down")}
	consumer := NewConsumer(svc, &fakePublisher{}, zap.NewNop())

	action := consumer.Handle(context.Background(), rabbitmq.Delivery{
		CorrelationID: "corr-1",
		Body:          validRequestBody(t),
	})
	require.Equal(t, rabbitmq.Requeue, action)

	action = consumer.Handle(context.Background(), rabbitmq.Delivery{
		CorrelationID: "corr-1",
		Body:          validRequestBody(t),
		Redelivered:   true,
	})
	require.Equal(t, rabbitmq.DeadLetter, action)
}

func TestHandle_PublishErrorRequeues(t *testing.T) {
	svc := &fakeFulfillmentService{
		payload: &generalDomain.OrderPayload{ID: 9},
	}
	publisher := &fakePublisher{err: errors.New("broker is down")}
	consumer := NewConsumer(svc, publisher, zap.NewNop())

	action := consumer.Handle(context.Background(), rabbitmq.Delivery{
		CorrelationID: "corr-9",
		Body:          validRequestBody(t),
	})

	require.Equal(t, rabbitmq.Requeue, action)
}
