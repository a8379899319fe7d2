package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends one JSON message to a named queue. The correlation id ends
// up in the envelope, not the payload, so consumers can route replies without
// decoding the body first.
type Publisher interface {
	Publish(ctx context.Context, queue string, correlationID string, payload any) error
}

type publisher struct {
	client *Client
}

func NewPublisher(client *Client) Publisher {
	return &publisher{client: client}
}

func (p *publisher) Publish(ctx context.Context, queue string, correlationID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal payload: %w", err)
	}

	err = p.client.Channel().PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("could not publish to %s: %w", queue, err)
	}

	return nil
}
