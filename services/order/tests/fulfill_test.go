package tests

import (
	"time"

	"github.com/google/uuid"
	"github.com/sarmatovd/shop-services/pkg/domain"
)

func purchaseRequest() domain.PurchaseRequestMessage {
	return domain.PurchaseRequestMessage{
		Products: []domain.PurchaseLineItem{
			{ProductID: 1, Price: 4500},
			{ProductID: 2, Price: 2500},
		},
		PurchaserEmail: "alice@example.com",
		RequestedAt:    time.Now().UTC(),
	}
}

func (s *IntegrationTestSuite) TestFulfill_Success() {
	correlationID := uuid.New().String()

	payload, err := s.FulfillmentService.Fulfill(s.Ctx, correlationID, purchaseRequest())
	s.Require().NoError(err)
	s.Require().NotZero(payload.ID)
	s.Require().Equal(int64(7000), payload.TotalPrice)
	s.Require().Equal([]int64{1, 2}, payload.ProductIDs)
	s.Require().Equal("alice@example.com", payload.PurchaserEmail)

	var productCount int
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM order_products WHERE order_id = $1`,
		payload.ID,
	).Scan(&productCount)
	s.Require().NoError(err)
	s.Require().Equal(2, productCount)

	var outboxCount int
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'OrderCreated'`,
	).Scan(&outboxCount)
	s.Require().NoError(err)
	s.Require().Equal(1, outboxCount)
}

func (s *IntegrationTestSuite) TestFulfill_RedeliveryReturnsSameOrder() {
	correlationID := uuid.New().String()
	request := purchaseRequest()

	first, err := s.FulfillmentService.Fulfill(s.Ctx, correlationID, request)
	s.Require().NoError(err)

	second, err := s.FulfillmentService.Fulfill(s.Ctx, correlationID, request)
	s.Require().NoError(err)
	s.Require().Equal(first.ID, second.ID)
	s.Require().Equal(first.TotalPrice, second.TotalPrice)
	s.Require().Equal(first.ProductIDs, second.ProductIDs)

	var orderCount int
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderCount)
	s.Require().NoError(err)
	s.Require().Equal(1, orderCount)

	// Only the first delivery writes an outbox event.
	var outboxCount int
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'OrderCreated'`,
	).Scan(&outboxCount)
	s.Require().NoError(err)
	s.Require().Equal(1, outboxCount)
}

func (s *IntegrationTestSuite) TestListByPurchaser() {
	_, err := s.FulfillmentService.Fulfill(s.Ctx, uuid.New().String(), purchaseRequest())
	s.Require().NoError(err)

	other := purchaseRequest()
	other.PurchaserEmail = "bob@example.com"
	_, err = s.FulfillmentService.Fulfill(s.Ctx, uuid.New().String(), other)
	s.Require().NoError(err)

	orders, err := s.FulfillmentService.ListByPurchaser(s.Ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Require().Equal("alice@example.com", orders[0].PurchaserEmail)
	s.Require().Len(orders[0].Products, 2)
}
