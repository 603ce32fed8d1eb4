package filetype

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dyluth/filedock/internal/diag"
	"github.com/dyluth/filedock/internal/logging"
	"github.com/dyluth/filedock/pkg/journal"
	"go.uber.org/zap"
)

// Registry holds the recognizers contributed by plugins. It is append-only;
// the priority order is recomputed explicitly with ComputeOrder, or lazily by
// Order after a registration.
type Registry struct {
	mu       sync.RWMutex
	recs     []Recognizer
	order    []Recognizer // nil when stale
	orderErr error

	sink   diag.Sink
	logger *zap.Logger
}

// NewRegistry creates an empty registry reporting configuration problems to
// sink and logger (either may be nil).
func NewRegistry(sink diag.Sink, logger *zap.Logger) *Registry {
	if sink == nil {
		sink = diag.Discard
	}
	return &Registry{sink: sink, logger: logging.OrNop(logger)}
}

// Register appends a recognizer. IDs must be unique.
func (r *Registry) Register(rec Recognizer) error {
	if err := rec.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.recs {
		if existing.ID == rec.ID {
			return duplicateError(rec.ID)
		}
	}
	r.recs = append(r.recs, rec)
	r.order = nil

	r.logger.Debug("recognizer registered",
		zap.String("recognizer", rec.ID),
		zap.Strings("before", rec.Before),
		zap.Strings("after", rec.After),
		zap.Bool("wildcard", rec.Wildcard))
	return nil
}

// ComputeOrder recomputes the priority order from the current registrations.
// On cyclic constraints it reports a ConfigurationError and uses registration
// order for the whole set.
func (r *Registry) ComputeOrder() []Recognizer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.computeLocked()
}

func (r *Registry) computeLocked() []Recognizer {
	r.logDanglingLocked()
	order, err := Sort(r.recs)
	r.order, r.orderErr = order, err

	if err != nil {
		var cfgErr *ConfigurationError
		detail := err.Error()
		if errors.As(err, &cfgErr) {
			detail = cfgErr.Error()
		}
		r.logger.Warn("recognizer constraints unsatisfiable, using registration order",
			zap.Error(err),
			zap.Strings("order", ids(order)))
		r.sink.Emit(context.Background(), journal.Event{
			Kind:   journal.KindConfigurationError,
			Detail: detail,
		})
	} else {
		r.logger.Debug("recognizer order computed", zap.Strings("order", ids(order)))
	}

	out := make([]Recognizer, len(order))
	copy(out, order)
	return out
}

// Order returns the current priority order, computing it if registrations
// changed since the last computation.
func (r *Registry) Order() []Recognizer {
	r.mu.RLock()
	if r.order != nil || len(r.recs) == 0 {
		out := make([]Recognizer, len(r.order))
		copy(out, r.order)
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.order != nil {
		out := make([]Recognizer, len(r.order))
		copy(out, r.order)
		return out
	}
	return r.computeLocked()
}

// Err returns the configuration error of the last order computation, if any.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orderErr
}

// Len returns the number of registered recognizers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recs)
}

// logDanglingLocked notes constraints naming recognizers that were never
// registered; Sort ignores them.
func (r *Registry) logDanglingLocked() {
	known := make(map[string]bool, len(r.recs))
	for _, rec := range r.recs {
		known[rec.ID] = true
	}
	for _, rec := range r.recs {
		for _, id := range append(slices.Clip(rec.Before), rec.After...) {
			if !known[id] {
				r.logger.Debug("ignoring constraint on unregistered recognizer",
					zap.String("recognizer", rec.ID),
					zap.String("unknown", id))
			}
		}
	}
}
