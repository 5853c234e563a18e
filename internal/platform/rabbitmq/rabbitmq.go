package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"pypln-web/internal/config"
)

// New dials the broker and declares the pipeline queues so jobs published
// before any worker starts are kept.
func New(ctx context.Context, cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Dial:       amqp.DefaultDial(3 * time.Second),
		Properties: amqp.Table{"connection_name": "pypln-web"},
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	done := make(chan error, 1)
	go func() {
		for _, queue := range []string{cfg.PipelineQueue, cfg.IndexingQueue, cfg.CorpusFreqDistQueue} {
			if queue == "" {
				continue
			}
			if _, err := DeclareDurable(ch, queue); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case <-checkCtx.Done():
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue setup timeout: %w", checkCtx.Err())
	case err := <-done:
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
