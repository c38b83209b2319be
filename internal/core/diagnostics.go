package core

// diagnostics.go implements the leveled event stream the pipeline emits while
// it works. Sinks are observers only: nothing in the pipeline reads events back.

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Diagnostic components.
const (
	ComponentParser     = "parser"
	ComponentNormalizer = "normalizer"
	ComponentJoin       = "join"
	ComponentService    = "service"
)

// Diagnostic is a single structured event.
type Diagnostic struct {
	Time      time.Time      `json:"time"`
	Level     slog.Level     `json:"level"`
	Component string         `json:"component"`
	Message   string         `json:"message"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// DiagnosticSink receives diagnostics. Implementations must be safe for
// concurrent use when shared between runs.
type DiagnosticSink interface {
	Emit(Diagnostic)
}

// emit builds a Diagnostic from alternating key/value pairs and sends it to
// sink. A nil sink discards the event.
func emit(sink DiagnosticSink, level slog.Level, component, msg string, kv ...any) {
	if sink == nil {
		return
	}
	var attrs map[string]any
	if len(kv) > 1 {
		attrs = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				continue
			}
			attrs[key] = kv[i+1]
		}
	}
	sink.Emit(Diagnostic{
		Time:      time.Now(),
		Level:     level,
		Component: component,
		Message:   msg,
		Attrs:     attrs,
	})
}

// LogSink forwards diagnostics to a slog.Logger.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a sink writing to logger, or to slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

// Emit implements DiagnosticSink.
func (s *LogSink) Emit(d Diagnostic) {
	args := make([]any, 0, 2+len(d.Attrs)*2)
	args = append(args, "component", d.Component)
	for k, v := range d.Attrs {
		args = append(args, k, v)
	}
	s.Logger.Log(context.Background(), d.Level, d.Message, args...)
}

// Recorder keeps every diagnostic in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Diagnostic
}

// Emit implements DiagnosticSink.
func (r *Recorder) Emit(d Diagnostic) {
	r.mu.Lock()
	r.events = append(r.events, d)
	r.mu.Unlock()
}

// Events returns a copy of the recorded diagnostics.
func (r *Recorder) Events() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.events))
	copy(out, r.events)
	return out
}

// AtLeast returns recorded diagnostics with level >= min.
func (r *Recorder) AtLeast(min slog.Level) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Events() {
		if d.Level >= min {
			out = append(out, d)
		}
	}
	return out
}

// MultiSink fans out to several sinks, skipping nil entries.
type MultiSink []DiagnosticSink

// Emit implements DiagnosticSink.
func (m MultiSink) Emit(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Emit(d)
		}
	}
}
