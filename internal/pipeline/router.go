package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RPCChannel is the subset of *amqp.Channel used for request/reply.
type RPCChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// GetConfigFromRouter asks the pipeline router for its configuration. A
// router that does not answer within timeout yields nil and no error.
func GetConfigFromRouter(ctx context.Context, ch RPCChannel, api string, timeout time.Duration) (map[string]any, error) {
	replyQueue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare reply queue failed: %w", err)
	}
	replies, err := ch.Consume(replyQueue.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume reply queue failed: %w", err)
	}

	body, err := json.Marshal(map[string]string{"command": "get configuration"})
	if err != nil {
		return nil, fmt.Errorf("marshal router request failed: %w", err)
	}
	correlationID := uuid.NewString()
	if err := ch.PublishWithContext(ctx, "", api, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		ReplyTo:       replyQueue.Name,
		Body:          body,
	}); err != nil {
		return nil, fmt.Errorf("send router request failed: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case msg, ok := <-replies:
			if !ok {
				return nil, nil
			}
			if msg.CorrelationId != correlationID {
				continue
			}
			var reply map[string]any
			if err := json.Unmarshal(msg.Body, &reply); err != nil {
				return nil, fmt.Errorf("decode router reply failed: %w", err)
			}
			return reply, nil
		}
	}
}
