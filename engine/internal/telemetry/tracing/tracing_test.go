package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopTracerProducesNoopSpan(t *testing.T) {
	tr := NewTracer(false)
	assert.True(t, tr.Noop())
	_, span := tr.StartSpan(context.Background(), "tick")
	assert.True(t, span.IsEnded())
}

func TestSimpleTracerAssignsTraceAndSpanIDs(t *testing.T) {
	tr := NewTracer(true)
	ctx, span := tr.StartSpan(context.Background(), "tick")
	require.False(t, span.IsEnded())
	traceID, spanID := ExtractIDs(ctx)
	assert.NotEmpty(t, traceID)
	assert.NotEmpty(t, spanID)
	span.End()
	assert.True(t, span.IsEnded())
}

func TestChildSpanInheritsTraceID(t *testing.T) {
	tr := NewTracer(true)
	ctx, parent := tr.StartSpan(context.Background(), "tick")
	ctx, child := tr.StartSpan(ctx, "checklist_step")

	assert.Equal(t, parent.Context().TraceID, child.Context().TraceID)
	assert.NotEqual(t, parent.Context().SpanID, child.Context().SpanID)
	assert.Equal(t, parent.Context().SpanID, child.Context().ParentSpanID)
	_ = ctx
}

func TestAdaptiveTracerZeroPercentNeverSamples(t *testing.T) {
	tr := NewAdaptiveTracer(func() float64 { return 0 })
	_, span := tr.StartSpan(context.Background(), "tick")
	assert.True(t, span.IsEnded())
}

func TestAdaptiveTracerHundredPercentAlwaysSamples(t *testing.T) {
	tr := NewAdaptiveTracer(func() float64 { return 100 })
	ctx, span := tr.StartSpan(context.Background(), "tick")
	traceID, _ := ExtractIDs(ctx)
	assert.NotEmpty(t, traceID)
	assert.False(t, span.IsEnded())
}
