package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sarmatovd/shop-services/pkg/domain"
	pkgkafka "github.com/sarmatovd/shop-services/pkg/kafka"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/services/notification/internal/service"
	"go.uber.org/zap"
)

const groupID = "notification-service-group"

type Consumer struct {
	group  *pkgkafka.ConsumerGroup
	logger *zap.Logger
}

func NewConsumer(brokers []string, svc *service.NotificationService, logger *zap.Logger) *Consumer {
	c := &Consumer{logger: logger}

	handler := func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		return c.dispatch(ctx, svc, msg)
	}

	c.group = pkgkafka.NewConsumerGroup(
		brokers,
		groupID,
		[]string{domain.UserEventsTopic, domain.OrderEventsTopic},
		handler,
		logger,
	)

	return c
}

func (c *Consumer) Run(ctx context.Context) {
	c.group.Run(ctx)
}

func (c *Consumer) dispatch(ctx context.Context, svc *service.NotificationService, msg *sarama.ConsumerMessage) error {
	switch msg.Topic {
	case domain.UserEventsTopic:
		var event domain.UserRegisteredEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logging.Error(ctx, c.logger, "Skipping malformed user event", zap.Error(err))
			return nil
		}

		return svc.HandleUserRegistered(ctx, event)
	case domain.OrderEventsTopic:
		var event domain.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logging.Error(ctx, c.logger, "Skipping malformed order event", zap.Error(err))
			return nil
		}

		return svc.HandleOrderCreated(ctx, event)
	default:
		return fmt.Errorf("unexpected topic: %s", msg.Topic)
	}
}
