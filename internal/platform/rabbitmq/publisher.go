package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends persistent JSON jobs to durable queues on the default
// exchange. A channel is opened per publish since amqp channels are not
// safe for concurrent use.
type Publisher struct {
	open func() (Channel, error)
}

func NewPublisher(conn *amqp.Connection) *Publisher {
	return &Publisher{open: func() (Channel, error) { return conn.Channel() }}
}

// NewPublisherWithChannel publishes through channels returned by open.
func NewPublisherWithChannel(open func() (Channel, error)) *Publisher {
	return &Publisher{open: open}
}

func (p *Publisher) Publish(ctx context.Context, queue string, payload any) error {
	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareDurable(ch, queue); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload failed: %w", err)
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))

	if err := ch.PublishWithContext(
		ctx,
		"",
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Headers:      headers,
		},
	); err != nil {
		return fmt.Errorf("publish job failed: %w", err)
	}
	return nil
}

func DeclareDurable(ch Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue failed: %w", err)
	}
	return q, nil
}

// headerCarrier lets the otel propagator write trace headers into a message.
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
