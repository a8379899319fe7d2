package tests

import (
	"errors"

	"github.com/sarmatovd/shop-services/pkg/domain"
)

func (s *IntegrationTestSuite) TestWelcomeEmailSentOnce() {
	event := domain.UserRegisteredEvent{
		UserID:  1,
		EventID: 101,
		Name:    "Dmitry",
		Email:   "dmitry@example.com",
	}

	err := s.NotificationService.HandleUserRegistered(s.Ctx, event)
	s.Require().NoError(err)

	// redelivery of the same event id must not send a second email
	err = s.NotificationService.HandleUserRegistered(s.Ctx, event)
	s.Require().NoError(err)

	s.Require().Equal([]string{"dmitry@example.com"}, s.Sender.welcome)
}

func (s *IntegrationTestSuite) TestOrderConfirmationSentOnce() {
	event := domain.OrderCreatedEvent{
		OrderID:        42,
		EventID:        202,
		PurchaserEmail: "buyer@example.com",
		TotalPrice:     7000,
	}

	err := s.NotificationService.HandleOrderCreated(s.Ctx, event)
	s.Require().NoError(err)

	err = s.NotificationService.HandleOrderCreated(s.Ctx, event)
	s.Require().NoError(err)

	s.Require().Equal([]int64{42}, s.Sender.orders)
}

func (s *IntegrationTestSuite) TestFailedSendLeavesEventUnprocessed() {
	s.Sender.sendErr = errors.New("smtp unavailable")

	event := domain.UserRegisteredEvent{
		UserID:  2,
		EventID: 303,
		Name:    "Ivan",
		Email:   "ivan@example.com",
	}

	err := s.NotificationService.HandleUserRegistered(s.Ctx, event)
	s.Require().Error(err)

	var count int
	err = s.DbPool.QueryRow(s.Ctx, "SELECT COUNT(*) FROM processed_events WHERE event_id = $1", event.EventID).Scan(&count)
	s.Require().NoError(err)
	s.Require().Zero(count)

	// once the sender recovers, the same event goes through
	s.Sender.sendErr = nil

	err = s.NotificationService.HandleUserRegistered(s.Ctx, event)
	s.Require().NoError(err)
	s.Require().Equal([]string{"ivan@example.com"}, s.Sender.welcome)
}
