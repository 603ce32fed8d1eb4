package filetype

import (
	"context"

	"github.com/dyluth/filedock/internal/bytesource"
	"github.com/dyluth/filedock/internal/diag"
	"github.com/dyluth/filedock/internal/logging"
	"github.com/dyluth/filedock/pkg/journal"
	"go.uber.org/zap"
)

// Driver classifies resources: it reads a bounded sample through a byte source
// and runs the registry's recognizers over it.
type Driver struct {
	registry *Registry
	source   bytesource.Source
	maxBytes int
	sink     diag.Sink
	logger   *zap.Logger
}

// DriverOptions tunes a Driver. Zero values select defaults.
type DriverOptions struct {
	MaxBytes int
	Sink     diag.Sink
	Logger   *zap.Logger
}

// NewDriver returns a Driver reading samples from source.
func NewDriver(registry *Registry, source bytesource.Source, opts DriverOptions) *Driver {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = bytesource.DefaultMaxBytes
	}
	if opts.Sink == nil {
		opts.Sink = diag.Discard
	}
	return &Driver{
		registry: registry,
		source:   source,
		maxBytes: opts.MaxBytes,
		sink:     opts.Sink,
		logger:   logging.OrNop(opts.Logger),
	}
}

// MaxBytes returns the sample cap.
func (d *Driver) MaxBytes() int {
	return d.maxBytes
}

// Classify samples the resource at locator and classifies it.
//
// A sample that cannot be read is a *bytesource.ResourceAccessError and yields
// no classification. An empty resource is Unclassified.
func (d *Driver) Classify(ctx context.Context, locator string) (Classification, error) {
	data, err := d.source.OpenPrefix(ctx, locator, d.maxBytes)
	if err != nil {
		if !bytesource.IsResourceAccessError(err) {
			err = &bytesource.ResourceAccessError{Locator: locator, Err: err}
		}
		d.sink.Emit(ctx, journal.Event{
			Kind:    journal.KindResourceAccessError,
			Locator: locator,
			Detail:  err.Error(),
		})
		return Unclassified, err
	}
	if len(data) > d.maxBytes {
		data = data[:d.maxBytes]
	}

	c := d.ClassifySample(Sample(data))
	d.sink.Emit(ctx, journal.Event{
		Kind:    journal.KindClassified,
		Locator: locator,
		MIME:    c.MIME(),
	})
	return c, nil
}

// ClassifySample runs the recognizers over s in priority order. It is pure given
// the sample and the registry contents.
func (d *Driver) ClassifySample(s Sample) Classification {
	if len(s) == 0 {
		return Unclassified
	}

	order := d.registry.Order()
	d.logger.Debug("trying recognizers", zap.Int("count", len(order)))
	for _, r := range order {
		if mime := r.Identifier.Identify(s); mime != "" {
			d.logger.Debug("recognized", zap.String("recognizer", r.ID), zap.String("mime", mime))
			return Classified(mime)
		}
	}

	d.logger.Debug("not recognized, using default", zap.String("mime", DefaultMIME))
	return Classified(DefaultMIME)
}
