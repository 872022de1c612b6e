package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/config"
)

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.TelemetryConfig{Exporter: "none"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracingRejectsUnknownExporter(t *testing.T) {
	_, err := SetupTracing(context.Background(), config.TelemetryConfig{Exporter: "jaeger"}, zap.NewNop())
	assert.Error(t, err)

	_, err = SetupTracing(context.Background(), config.TelemetryConfig{Exporter: "otlp"}, zap.NewNop())
	assert.Error(t, err)
}
