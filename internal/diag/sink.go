// Package diag carries the diagnostic events of the dispatch core to their sinks:
// the zap log, the Redis journal, or both.
package diag

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dyluth/filedock/internal/logging"
	"github.com/dyluth/filedock/pkg/journal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink receives diagnostic events. Emit must not block the caller for long and
// never fails: a sink that cannot deliver logs the problem itself.
type Sink interface {
	Emit(ctx context.Context, e journal.Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(context.Context, journal.Event) {}

// levelFor maps event kinds onto log levels. Inert outcomes stay at debug,
// ordering problems are warnings.
func levelFor(k journal.Kind) zapcore.Level {
	switch k {
	case journal.KindConfigurationError:
		return zapcore.WarnLevel
	case journal.KindResourceAccessError:
		return zapcore.ErrorLevel
	case journal.KindDispatched:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a Sink logging through l (nil means no-op).
func NewLogSink(l *zap.Logger) *LogSink {
	return &LogSink{logger: logging.OrNop(l)}
}

// Emit implements Sink.
func (s *LogSink) Emit(_ context.Context, e journal.Event) {
	ce := s.logger.Check(levelFor(e.Kind), string(e.Kind))
	if ce == nil {
		return
	}

	fields := []zap.Field{zap.String("event_id", e.ID)}
	if e.Locator != "" {
		fields = append(fields, zap.String("locator", e.Locator))
	}
	if e.MIME != "" {
		fields = append(fields, zap.String("mime", e.MIME))
	}
	if e.HandlerID != "" {
		fields = append(fields, zap.String("handler", e.HandlerID))
	}
	if e.WindowID != "" {
		fields = append(fields, zap.String("window", e.WindowID))
	}
	if e.Route != "" {
		fields = append(fields, zap.String("route", e.Route))
	}
	if e.Detail != "" {
		fields = append(fields, zap.String("detail", e.Detail))
	}
	ce.Write(fields...)
}

// Recorder is the part of journal.Client used by JournalSink.
type Recorder interface {
	Record(ctx context.Context, e *journal.Event) error
}

// JournalSink records events in the Redis journal. Write failures are logged and
// otherwise ignored; diagnostics must never break a dispatch.
type JournalSink struct {
	rec    Recorder
	logger *zap.Logger
}

// NewJournalSink returns a Sink recording into rec.
func NewJournalSink(rec Recorder, l *zap.Logger) *JournalSink {
	return &JournalSink{rec: rec, logger: logging.OrNop(l)}
}

// Emit implements Sink.
func (s *JournalSink) Emit(ctx context.Context, e journal.Event) {
	// Detach from the caller's cancellation: a superseded load still gets its
	// events recorded.
	if err := s.rec.Record(context.WithoutCancel(ctx), &e); err != nil {
		s.logger.Warn("failed to record journal event",
			zap.String("kind", string(e.Kind)),
			zap.Error(err))
	}
}

// Close closes the underlying recorder when it is an io.Closer.
func (s *JournalSink) Close() error {
	if c, ok := s.rec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Fanout delivers each event to every sink in order.
type Fanout []Sink

// Emit implements Sink.
func (f Fanout) Emit(ctx context.Context, e journal.Event) {
	for _, s := range f {
		s.Emit(ctx, e)
	}
}

// Close closes every sink that is an io.Closer and joins their errors.
func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Memory keeps every emitted event in memory. Used by tests and by the CLI to
// summarise a run.
type Memory struct {
	mu     sync.Mutex
	events []journal.Event
}

// Emit implements Sink.
func (m *Memory) Emit(_ context.Context, e journal.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of the events emitted so far.
func (m *Memory) Events() []journal.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]journal.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Kinds returns the kinds of the events emitted so far, in order.
func (m *Memory) Kinds() []journal.Kind {
	events := m.Events()
	out := make([]journal.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
