package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/user-management/internal/config"
	"github.com/khoahotran/user-management/pkg/logger"
)

func TestNewTracerProvider_DisabledWithoutEndpoint(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.Config{}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestNewTracerProvider_WithEndpoint(t *testing.T) {
	var cfg config.Config
	cfg.App.ServiceName = "user-management-test"
	cfg.App.Env = "test"
	cfg.Tracing.OTLPEndpoint = "localhost:4317"

	// The gRPC client connects lazily, so no collector has to be running.
	tp, err := NewTracerProvider(context.Background(), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
