package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// OrderQueue receives every order event published to the exchange.
const OrderQueue = "order_queue"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient connects to RabbitMQ, declares the topic exchange and binds the
// order queue to all "order.*" routing keys.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Exchange == "" {
		return nil, errors.New("rabbitmq exchange name is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", zap.String("exchange", cfg.Exchange), zap.String("queue", OrderQueue))

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if _, err := ch.QueueDeclare(
		OrderQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		return fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}

	if err := ch.QueueBind(OrderQueue, "order.*", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", OrderQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the exchange.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("published event", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// ConsumeOrderEvents delivers messages from the order queue to handler in a
// background goroutine until the channel closes. Messages are acked when
// handler returns nil and requeued otherwise.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		OrderQueue, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				c.logger.Warn("order event handling failed",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.Error(err))
				// Requeue only on first delivery so a poison message cannot loop forever.
				if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
					c.logger.Error("nack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("ack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
	}()

	return nil
}
