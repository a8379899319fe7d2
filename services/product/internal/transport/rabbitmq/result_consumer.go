package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/pkg/rabbitmq"
	"github.com/sarmatovd/shop-services/services/product/internal/service"
	"go.uber.org/zap"
)

// ResultConsumer drains the confirmation queue and resolves purchase
// waiters. It is the only consumer on that queue for the process.
type ResultConsumer struct {
	purchases service.PurchaseService
	logger    *zap.Logger
}

func NewResultConsumer(purchases service.PurchaseService, logger *zap.Logger) *ResultConsumer {
	return &ResultConsumer{
		purchases: purchases,
		logger:    logger,
	}
}

func (c *ResultConsumer) Handle(ctx context.Context, d rabbitmq.Delivery) rabbitmq.Action {
	if d.CorrelationID == "" {
		logging.Warn(ctx, c.logger, "Purchase result without correlation id")

		return rabbitmq.Ack
	}

	var message domain.PurchaseResultMessage
	if err := json.Unmarshal(d.Body, &message); err != nil {
		logging.Error(
			ctx,
			c.logger,
			"Malformed purchase result",
			zap.String("correlation_id", d.CorrelationID),
			zap.Error(err),
		)

		return rabbitmq.Ack
	}

	c.purchases.HandleResult(ctx, d.CorrelationID, message.Order)

	// Late results are acked too: the waiter is gone and a redelivery
	// would find nobody either.
	return rabbitmq.Ack
}

func (c *ResultConsumer) Run(ctx context.Context, client *rabbitmq.Client) {
	consumer := rabbitmq.NewConsumer(client, domain.PurchaseResultQueue, c.Handle, c.logger)
	consumer.Run(ctx)
}
