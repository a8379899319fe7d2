package service

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sarmatovd/shop-services/pkg/domain"
	outboxUtils "github.com/sarmatovd/shop-services/pkg/outbox/utils"
	"github.com/sarmatovd/shop-services/services/notification/internal/infrastructure/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type NotificationService struct {
	emailSender email.Sender
	logger      *zap.Logger
	pool        *pgxpool.Pool
	tracer      trace.Tracer
}

func NewNotificationService(emailSender email.Sender, logger *zap.Logger, pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{
		emailSender: emailSender,
		logger:      logger,
		pool:        pool,
		tracer:      otel.Tracer("notification-service"),
	}
}

func (s *NotificationService) HandleUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleUserRegistered")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", event.EventID))

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, event.EventID, func() error {
		return s.emailSender.SendWelcomeEmail(ctx, event.Email, event.Name)
	})
}

func (s *NotificationService) HandleOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderCreated")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", event.EventID),
		attribute.Int64("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, event.EventID, func() error {
		return s.emailSender.SendOrderConfirmationEmail(ctx, event.PurchaserEmail, event.OrderID, event.TotalPrice)
	})
}
