package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/config"
)

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler("").Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler("bogus").Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler("0.25").Description(), "TraceIDRatioBased{0.25}")
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TelemetryConfig{}, "pypln-web", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
