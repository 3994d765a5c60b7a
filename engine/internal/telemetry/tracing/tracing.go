// Package tracing provides a lightweight internal span tracer used to
// correlate log records across a tick (§7 propagation policy). It is not a
// full OTel SDK tracer; it reuses otel/trace's ID types purely for their
// well-tested hex formatting so correlation IDs match the wire format a
// downstream OTel collector would expect.
package tracing

import (
	"context"
	randcrypto "crypto/rand"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Span interface {
	End()
	SetAttribute(key string, value any)
	Context() SpanContext
	IsEnded() bool
}

type SpanContext struct {
	TraceID, SpanID, ParentSpanID string
	Start, End                   time.Time
}

type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	Noop() bool
}

type noopTracer struct{}
type noopSpan struct{}

func (n noopTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, noopSpan{}
}
func (n noopTracer) Noop() bool                             { return true }
func (n noopSpan) End()                                      {}
func (n noopSpan) SetAttribute(key string, value any)        {}
func (n noopSpan) Context() SpanContext                      { return SpanContext{} }
func (n noopSpan) IsEnded() bool                             { return true }

type simpleTracer struct{ enabled bool }

// adaptiveTracer samples a fraction of root spans via policyFn, returning
// the sampled fraction as a percentage each time a new root is started —
// grounded on the health Evaluator's TTL-refreshed policy pattern applied
// to tracing instead of probe results.
type adaptiveTracer struct{ policyFn func() float64 }

type simpleSpan struct {
	ctx   SpanContext
	mu    sync.Mutex
	ended bool
	attrs map[string]any
}

func NewTracer(enabled bool) Tracer {
	if !enabled {
		return noopTracer{}
	}
	return simpleTracer{enabled: true}
}

func NewAdaptiveTracer(percentFn func() float64) Tracer {
	if percentFn == nil {
		return noopTracer{}
	}
	return &adaptiveTracer{policyFn: percentFn}
}

func (t simpleTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	parent := SpanFromContext(ctx)
	traceID := parent.ctx.TraceID
	if traceID == "" {
		traceID = newTraceID()
	}
	sp := &simpleSpan{ctx: SpanContext{TraceID: traceID, SpanID: newSpanID(), ParentSpanID: parent.ctx.SpanID, Start: time.Now()}, attrs: make(map[string]any)}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	return ctx, sp
}
func (t simpleTracer) Noop() bool { return !t.enabled }

func (a *adaptiveTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	parent := SpanFromContext(ctx)
	traceID := parent.ctx.TraceID
	if traceID == "" {
		pct := a.policyFn()
		if pct <= 0 || rand.Float64()*100 > pct {
			return ctx, noopSpan{}
		}
		traceID = newTraceID()
	}
	sp := &simpleSpan{ctx: SpanContext{TraceID: traceID, SpanID: newSpanID(), ParentSpanID: parent.ctx.SpanID, Start: time.Now()}, attrs: make(map[string]any)}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	return ctx, sp
}
func (a *adaptiveTracer) Noop() bool { return false }

func (s *simpleSpan) End() {
	s.mu.Lock()
	if !s.ended {
		s.ctx.End = time.Now()
		s.ended = true
	}
	s.mu.Unlock()
}
func (s *simpleSpan) SetAttribute(key string, value any) {
	s.mu.Lock()
	if s.attrs != nil {
		s.attrs[key] = value
	}
	s.mu.Unlock()
}
func (s *simpleSpan) Context() SpanContext { return s.ctx }
func (s *simpleSpan) IsEnded() bool {
	s.mu.Lock()
	ended := s.ended
	s.mu.Unlock()
	return ended
}

type spanKey struct{}

func SpanFromContext(ctx context.Context) *simpleSpan {
	if ctx == nil {
		return &simpleSpan{}
	}
	if sp, ok := ctx.Value(spanKey{}).(*simpleSpan); ok {
		return sp
	}
	return &simpleSpan{}
}

func ExtractIDs(ctx context.Context) (traceID, spanID string) {
	sp := SpanFromContext(ctx)
	return sp.ctx.TraceID, sp.ctx.SpanID
}

// newTraceID and newSpanID generate random IDs and render them through
// otel/trace's TraceID/SpanID String() methods, so correlation IDs threaded
// into slog attributes are already in the format an OTel backend expects.
func newTraceID() string {
	var b [16]byte
	_, _ = randcrypto.Read(b[:])
	return trace.TraceID(b).String()
}

func newSpanID() string {
	var b [8]byte
	_, _ = randcrypto.Read(b[:])
	return trace.SpanID(b).String()
}
