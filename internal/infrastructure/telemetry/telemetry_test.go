package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, "test", nil)
	require.NoError(t, err)
	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestStartSpan(t *testing.T) {
	recorder := withRecorder(t)
	userID := uuid.New()

	_, span := StartSpan(context.Background(), "invoice", "apply_late_fees",
		AttrUserID, userID, AttrInvoiceCount, 3, "dangling")
	SetAttributes(span, "proman.applied", true)
	RecordError(span, nil)
	RecordError(span, errors.New("save failed"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "invoice.apply_late_fees", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Contains(t, s.Attributes(), attribute.String(AttrUserID, userID.String()))
	assert.Contains(t, s.Attributes(), attribute.Int(AttrInvoiceCount, 3))
	assert.Contains(t, s.Attributes(), attribute.Bool("proman.applied", true))
	assert.Len(t, s.Events(), 1)
}

func TestRegisterDBTracing(t *testing.T) {
	recorder := withRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterDBTracing(db, "sqlite", false, nil))

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.NotEmpty(t, recorder.Ended())
}
