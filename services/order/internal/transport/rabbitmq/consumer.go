package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/pkg/rabbitmq"
	"github.com/sarmatovd/shop-services/services/order/internal/service"
	"go.uber.org/zap"
)

// Consumer drains the purchase request queue, persists orders and
// publishes confirmations back on the result queue. A delivery is only
// acked after the order is durable; transient failures requeue once and
// dead-letter on the second attempt.
type Consumer struct {
	service   service.FulfillmentService
	publisher rabbitmq.Publisher
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewConsumer(service service.FulfillmentService, publisher rabbitmq.Publisher, logger *zap.Logger) *Consumer {
	return &Consumer{
		service:   service,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (c *Consumer) Run(ctx context.Context, client *rabbitmq.Client) {
	consumer := rabbitmq.NewConsumer(client, domain.PurchaseRequestQueue, c.Handle, c.logger)
	consumer.Run(ctx)
}

func (c *Consumer) Handle(ctx context.Context, d rabbitmq.Delivery) rabbitmq.Action {
	if d.CorrelationID == "" {
		logging.Warn(ctx, c.logger, "Purchase request without correlation id")

		return rabbitmq.Ack
	}

	var message domain.PurchaseRequestMessage
	if err := json.Unmarshal(d.Body, &message); err != nil {
		logging.Error(
			ctx,
			c.logger,
			"Malformed purchase request",
			zap.String("correlation_id", d.CorrelationID),
			zap.Error(err),
		)

		return rabbitmq.Ack
	}

	if err := c.validate.Struct(&message); err != nil {
		logging.Error(
			ctx,
			c.logger,
			"Invalid purchase request",
			zap.String("correlation_id", d.CorrelationID),
			zap.Error(err),
		)

		return rabbitmq.Ack
	}

	payload, err := c.service.Fulfill(ctx, d.CorrelationID, message)
	if err != nil {
		logging.Error(
			ctx,
			c.logger,
			"Failed to fulfill purchase request",
			zap.String("correlation_id", d.CorrelationID),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)

		if d.Redelivered {
			return rabbitmq.DeadLetter
		}

		return rabbitmq.Requeue
	}

	result := domain.PurchaseResultMessage{Order: *payload}
	if err := c.publisher.Publish(ctx, domain.PurchaseResultQueue, d.CorrelationID, result); err != nil {
		logging.Error(
			ctx,
			c.logger,
			"Failed to publish purchase result",
			zap.String("correlation_id", d.CorrelationID),
			zap.Error(err),
		)

		// The order is already persisted; on redelivery Fulfill finds it
		// by correlation id and only the publish is retried.
		if d.Redelivered {
			return rabbitmq.DeadLetter
		}

		return rabbitmq.Requeue
	}

	logging.Info(
		ctx,
		c.logger,
		"Purchase fulfilled",
		zap.String("correlation_id", d.CorrelationID),
		zap.Int64("order_id", payload.ID),
	)

	return rabbitmq.Ack
}
