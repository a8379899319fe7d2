package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sarmatovd/shop-services/pkg/domain"
	productDomain "github.com/sarmatovd/shop-services/services/product/internal/domain"
	"github.com/sarmatovd/shop-services/services/product/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProductService struct {
	products map[int64]productDomain.Product
}

func (f *fakeProductService) Create(ctx context.Context, product *productDomain.Product) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeProductService) FindByID(ctx context.Context, id int64) (*productDomain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProductService) FindByIDs(ctx context.Context, ids []int64) ([]productDomain.Product, error) {
	res := make([]productDomain.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := f.products[id]
		if !ok {
			return nil, repository.ErrProductNotFound
		}
		res = append(res, p)
	}
	return res, nil
}

func (f *fakeProductService) List(ctx context.Context, limit, offset int64, search string) ([]productDomain.Product, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeProductService) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type publishedMessage struct {
	Queue         string
	CorrelationID string
	Payload       any
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, queue string, correlationID string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.published = append(f.published, publishedMessage{
		Queue:         queue,
		CorrelationID: correlationID,
		Payload:       payload,
	})
	return nil
}

func (f *fakePublisher) last() publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.published[len(f.published)-1]
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.published)
}

func newTestPurchaseService(products *fakeProductService, publisher *fakePublisher, timeout time.Duration) *purchaseService {
	return NewPurchaseService(products, publisher, timeout, zap.NewNop()).(*purchaseService)
}

func catalog() *fakeProductService {
	return &fakeProductService{
		products: map[int64]productDomain.Product{
			1: {ID: 1, Name: "keyboard", Price: 4500},
			2: {ID: 2, Name: "mouse", Price: 2500},
		},
	}
}

func TestBuy_Success(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestPurchaseService(catalog(), publisher, time.Second)

	done := make(chan struct{})
	var order *domain.OrderPayload
	var buyErr error

	go func() {
		defer close(done)
		order, buyErr = svc.Buy(context.Background(), []int64{1, 2}, "alice@example.com")
	}()

	require.Eventually(t, func() bool {
		return publisher.count() == 1
	}, time.Second, 5*time.Millisecond)

	msg := publisher.last()
	require.Equal(t, domain.PurchaseRequestQueue, msg.Queue)
	require.NotEmpty(t, msg.CorrelationID)

	request, ok := msg.Payload.(domain.PurchaseRequestMessage)
	require.True(t, ok)
	require.Equal(t, "alice@example.com", request.PurchaserEmail)
	require.Len(t, request.Products, 2)
	require.Equal(t, int64(4500), request.Products[0].Price)

	resolved := svc.HandleResult(context.Background(), msg.CorrelationID, domain.OrderPayload{
		ID:             7,
		ProductIDs:     []int64{1, 2},
		PurchaserEmail: "alice@example.com",
		TotalPrice:     7000,
	})
	require.True(t, resolved)

	<-done
	require.NoError(t, buyErr)
	require.Equal(t, int64(7), order.ID)
	require.Equal(t, int64(7000), order.TotalPrice)
	require.Equal(t, 0, svc.waiters.Len())
}

func TestBuy_EmptyProducts(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestPurchaseService(catalog(), publisher, time.Second)

	_, err := svc.Buy(context.Background(), nil, "alice@example.com")
	require.ErrorIs(t, err, ErrEmptyPurchase)
	require.Equal(t, 0, publisher.count())
}

func TestBuy_UnknownProductDoesNotPublish(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestPurchaseService(catalog(), publisher, time.Second)

	_, err := svc.Buy(context.Background(), []int64{1, 999}, "alice@example.com")
	require.ErrorIs(t, err, repository.ErrProductNotFound)
	require.Equal(t, 0, publisher.count())
	require.Equal(t, 0, svc.waiters.Len())
}

func TestBuy_PublishError(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker is down")}
	svc := newTestPurchaseService(catalog(), publisher, time.Second)

	_, err := svc.Buy(context.Background(), []int64{1}, "alice@example.com")
	require.ErrorIs(t, err, ErrPublishFailed)
	require.Equal(t, 0, svc.waiters.Len())
}

func TestBuy_Timeout(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestPurchaseService(catalog(), publisher, 20*time.Millisecond)

	_, err := svc.Buy(context.Background(), []int64{1}, "alice@example.com")
	require.ErrorIs(t, err, ErrFulfillmentTimeout)
	require.Equal(t, 0, svc.waiters.Len())

	// A result landing after the timeout finds no waiter and is dropped.
	msg := publisher.last()
	require.False(t, svc.HandleResult(context.Background(), msg.CorrelationID, domain.OrderPayload{ID: 1}))
}

func TestBuy_ContextCancelled(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestPurchaseService(catalog(), publisher, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Buy(ctx, []int64{1}, "alice@example.com")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return publisher.count() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, svc.waiters.Len())
}

func TestBuy_ConcurrentPurchasesDoNotCrossTalk(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestPurchaseService(catalog(), publisher, time.Second)

	const n = 10

	var wg sync.WaitGroup
	results := make([]*domain.OrderPayload, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Buy(context.Background(), []int64{1}, "alice@example.com")
		}(i)
	}

	require.Eventually(t, func() bool {
		return publisher.count() == n
	}, time.Second, 5*time.Millisecond)

	publisher.mu.Lock()
	published := append([]publishedMessage(nil), publisher.published...)
	publisher.mu.Unlock()

	seen := make(map[string]bool, n)
	for i, msg := range published {
		require.False(t, seen[msg.CorrelationID], "correlation ids must be unique")
		seen[msg.CorrelationID] = true

		require.True(t, svc.HandleResult(context.Background(), msg.CorrelationID, domain.OrderPayload{
			ID: int64(100 + i),
		}))
	}

	wg.Wait()

	orderIDs := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.False(t, orderIDs[results[i].ID], "each purchase must get its own order")
		orderIDs[results[i].ID] = true
	}

	require.Equal(t, 0, svc.waiters.Len())
}
