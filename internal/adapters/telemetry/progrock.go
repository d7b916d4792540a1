package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/relock/internal/core/ports"
)

// ProgrockTracer implements ports.Tracer by recording each pipeline stage as
// a progrock vertex.
type ProgrockTracer struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// NewProgrockTracer creates a tracer recording onto a fresh tape.
func NewProgrockTracer() *ProgrockTracer {
	return NewProgrockRecorder(progrock.NewTape())
}

// NewProgrockRecorder creates a tracer recording to the given writer.
func NewProgrockRecorder(w progrock.Writer) *ProgrockTracer {
	return &ProgrockTracer{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins a vertex for the named stage.
func (t *ProgrockTracer) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	d := digest.FromString(name)
	v := t.rec.Vertex(d, name)
	return ctx, &progrockSpan{vertex: v}
}

// Close flushes and closes the recording session.
func (t *ProgrockTracer) Close() error {
	if c, ok := t.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// progrockSpan wraps a *progrock.VertexRecorder. The vertex is completed
// once, on End, with whichever error was recorded last.
type progrockSpan struct {
	vertex *progrock.VertexRecorder

	mu  sync.Mutex
	err error
}

func (s *progrockSpan) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}

func (s *progrockSpan) End() {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	s.vertex.Done(err)
}

func (s *progrockSpan) RecordError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *progrockSpan) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}
