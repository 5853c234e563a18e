package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrImproperlyConfigured is returned when a test run points at a database
// that does not look like a test database.
var ErrImproperlyConfigured = errors.New("improperly configured")

func New(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb failed: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb failed: %w", err)
	}

	return client, nil
}

// RequireTestDatabase refuses database names without "test" in them so a
// destructive test setup can never drop a production database.
func RequireTestDatabase(name string) error {
	if !strings.Contains(name, "test") {
		return fmt.Errorf("%w: mongodb database %q must contain the string \"test\"", ErrImproperlyConfigured, name)
	}
	return nil
}
