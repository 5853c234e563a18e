package search

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RunRequests lets a process that cannot open the index ask the process
// owning it for an indexing run.
type RunRequests struct {
	client  redis.UniversalClient
	channel string
}

func NewRunRequests(client redis.UniversalClient, channel string) *RunRequests {
	return &RunRequests{client: client, channel: channel}
}

// Request publishes a run request and returns how many owners received it.
func (r *RunRequests) Request(ctx context.Context) (int64, error) {
	n, err := r.client.Publish(ctx, r.channel, "update-index").Result()
	if err != nil {
		return 0, fmt.Errorf("request index run failed: %w", err)
	}
	return n, nil
}

// Subscribe delivers one value per received request until ctx is done. It
// returns once the subscription is active.
func (r *RunRequests) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to index run requests failed: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				// Requests arriving during a pending run collapse into it.
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
