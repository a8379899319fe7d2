package rabbitmq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"go.uber.org/zap"
)

// Action tells the consumer loop how to settle a delivery.
type Action int

const (
	// Ack removes the message from the queue. Used both for successfully
	// processed messages and for poison messages that must not loop.
	Ack Action = iota
	// Requeue returns the message to the queue for redelivery.
	Requeue
	// DeadLetter rejects the message so the broker routes it to the
	// queue's .dlq companion.
	DeadLetter
)

type Delivery struct {
	CorrelationID string
	Body          []byte
	Redelivered   bool
}

type HandlerFunc func(ctx context.Context, d Delivery) Action

// Consumer is a long-lived consumer loop on one queue, registered once for
// the lifetime of the process. Deliveries are settled explicitly based on the
// handler's verdict; nothing is auto-acked.
type Consumer struct {
	client  *Client
	queue   string
	handler HandlerFunc
	logger  *zap.Logger
}

func NewConsumer(client *Client, queue string, handler HandlerFunc, logger *zap.Logger) *Consumer {
	return &Consumer{
		client:  client,
		queue:   queue,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled. When the channel dies it re-registers
// against the client's reconnected channel.
func (c *Consumer) Run(ctx context.Context) {
	for {
		deliveries, err := c.client.Channel().ConsumeWithContext(ctx,
			c.queue,
			"",    // consumer tag
			false, // auto-ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			logging.Error(ctx, c.logger, "Failed to start consuming",
				zap.String("queue", c.queue),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				return
			case <-time.After(redialInterval):
				continue
			}
		}

		for d := range deliveries {
			c.dispatch(ctx, d)
		}

		if ctx.Err() != nil {
			logging.Info(ctx, c.logger, "Context cancelled, shutting down consumer",
				zap.String("queue", c.queue),
			)
			return
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery) {
	action := c.handler(ctx, Delivery{
		CorrelationID: d.CorrelationId,
		Body:          d.Body,
		Redelivered:   d.Redelivered,
	})

	if err := settle(d, action); err != nil {
		logging.Error(ctx, c.logger, "Failed to settle delivery",
			zap.String("queue", c.queue),
			zap.String("correlation_id", d.CorrelationId),
			zap.Error(err),
		)
	}
}

func settle(d amqp.Delivery, action Action) error {
	switch action {
	case Requeue:
		return d.Nack(false, true)
	case DeadLetter:
		return d.Nack(false, false)
	default:
		return d.Ack(false)
	}
}
