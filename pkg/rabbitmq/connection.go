// Package rabbitmq owns the process-wide broker connection and the
// publish/consume primitives built on it. One Client is created at startup
// and shared by every code path; it redials with backoff when the broker
// drops the connection and redeclares the queues it knows about.
package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	dialAttempts   = 5
	redialInterval = 5 * time.Second
)

type Client struct {
	url    string
	logger *zap.Logger

	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	queues []string

	closed    chan struct{}
	closeOnce sync.Once
}

func Connect(url string, logger *zap.Logger) (*Client, error) {
	c := &Client{
		url:    url,
		logger: logger,
		closed: make(chan struct{}),
	}

	if err := c.dial(); err != nil {
		return nil, err
	}

	go c.watch()

	return c, nil
}

func (c *Client) dial() error {
	var conn *amqp.Connection
	var err error

	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err = amqp.Dial(c.url)
		if err == nil {
			break
		}

		c.logger.Warn("rabbitmq dial failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		return fmt.Errorf("could not connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("could not open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.ch = ch
	queues := append([]string(nil), c.queues...)
	c.mu.Unlock()

	for _, queue := range queues {
		if err := declareQueue(ch, queue); err != nil {
			return err
		}
	}

	return nil
}

// watch redials whenever the broker closes the connection underneath us.
func (c *Client) watch() {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		closeCh := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.closed:
			return
		case amqpErr := <-closeCh:
			if amqpErr == nil {
				return
			}

			c.logger.Warn("rabbitmq connection lost, reconnecting", zap.Error(amqpErr))

			for {
				if err := c.dial(); err == nil {
					break
				}

				select {
				case <-c.closed:
					return
				case <-time.After(redialInterval):
				}
			}
		}
	}
}

// DeclareQueue declares a durable queue together with its dead-letter
// companion <name>.dlq. Messages rejected without requeue end up there.
func (c *Client) DeclareQueue(name string) error {
	c.mu.Lock()
	c.queues = append(c.queues, name)
	ch := c.ch
	c.mu.Unlock()

	return declareQueue(ch, name)
}

func declareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(
		name+".dlq",
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("could not declare dead-letter queue for %s: %w", name, err)
	}

	if _, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": name + ".dlq",
		},
	); err != nil {
		return fmt.Errorf("could not declare queue %s: %w", name, err)
	}

	return nil
}

func (c *Client) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.ch
}

func (c *Client) Close() error {
	var err error

	c.closeOnce.Do(func() {
		close(c.closed)

		c.mu.Lock()
		defer c.mu.Unlock()

		if chErr := c.ch.Close(); chErr != nil {
			err = chErr
		}
		if connErr := c.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
	})

	return err
}
