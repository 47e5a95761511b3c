// Package amqp publishes summary run reports to RabbitMQ so external
// schedulers and monitors can observe aggregation outcomes.
package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/victor-uk/expense-tracker/internal/log"
)

const publishTimeout = 5 * time.Second

// Client owns one connection and channel bound to the report queue. The
// routing key equals the queue name; the exchange is direct, so reports
// reach exactly the bound queue.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	logger   *log.Logger
}

func NewClient(url, exchange, queue string, logger *log.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		logger:   logger.WithComponent(log.ComponentAMQP),
	}

	if err := c.declareTopology(); err != nil {
		c.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	return c, nil
}

// declareTopology sets up a durable direct exchange and queue and binds them.
// Declarations are idempotent, so publisher and consumer can both run this.
func (c *Client) declareTopology() error {
	durable, autoDelete, internal, exclusive, noWait := true, false, false, false, false

	if err := c.channel.ExchangeDeclare(c.exchange, "direct", durable, autoDelete, internal, noWait, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", c.exchange, err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, durable, autoDelete, exclusive, noWait, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", c.queue, err)
	}
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, noWait, nil); err != nil {
		return fmt.Errorf("bind queue %q: %w", c.queue, err)
	}
	return nil
}

// PublishSummaryRun publishes one run report as a persistent message.
func (c *Client) PublishSummaryRun(ctx context.Context, msg *SummaryRunMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	c.logger.InfoContext(ctx, "Published summary run report",
		log.FieldMonth, msg.Month,
		"status", msg.Status,
		"queue", c.queue)
	return nil
}

// ConsumeSummaryRuns delivers run reports to the handler with manual acks.
// A handler error requeues the message; an unmarshalable message is dropped.
func (c *Client) ConsumeSummaryRuns(ctx context.Context, handler func(*SummaryRunMessage) error) error {
	autoAck := false
	deliveries, err := c.channel.Consume(c.queue, "", autoAck, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Consuming summary run reports", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping report consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler func(*SummaryRunMessage) error) {
	msg, err := SummaryRunMessageFromJSON(delivery.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping unreadable report", log.FieldError, err)
		delivery.Nack(false, false)
		return
	}

	if err := handler(msg); err != nil {
		c.logger.ErrorContext(ctx, "Report handler failed, requeueing",
			log.FieldError, err,
			log.FieldMonth, msg.Month,
			"status", msg.Status)
		delivery.Nack(false, true)
		return
	}

	delivery.Ack(false)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
