package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/dyluth/filedock/internal/filetype"
	"github.com/dyluth/filedock/internal/logging"
	"github.com/dyluth/filedock/internal/workspace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned for a load abandoned because a newer load of the
// same locator started before it reached the workspace.
var ErrSuperseded = errors.New("superseded by a newer load of the same resource")

// DefaultConcurrency bounds the samples LoadAll reads at once.
const DefaultConcurrency = 4

// LoadOptions are the routing inputs of a load.
type LoadOptions struct {
	HandlerID     string
	PreferredTask *workspace.Task
	UseActiveTask bool
}

// Result is the outcome of loading one locator.
type Result struct {
	Locator        string
	Classification filetype.Classification
	Outcome        Outcome
	Err            error
}

type inflight struct {
	id     uint64
	cancel context.CancelFunc
}

// Loader classifies locators off the workspace lock and dispatches them.
type Loader struct {
	driver      *filetype.Driver
	resolver    *Resolver
	concurrency int
	logger      *zap.Logger

	mu       sync.Mutex
	seq      uint64
	inflight map[string]*inflight
}

// NewLoader returns a Loader. concurrency <= 0 selects DefaultConcurrency.
func NewLoader(driver *filetype.Driver, resolver *Resolver, concurrency int, logger *zap.Logger) *Loader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Loader{
		driver:      driver,
		resolver:    resolver,
		concurrency: concurrency,
		logger:      logging.OrNop(logger),
		inflight:    make(map[string]*inflight),
	}
}

// Load classifies locator and dispatches it. A later Load of the same locator
// cancels this one if it has not reached the workspace yet; it then returns
// ErrSuperseded. A *bytesource.ResourceAccessError aborts before dispatch.
func (l *Loader) Load(ctx context.Context, locator string, opts LoadOptions) (Result, error) {
	ctx, token := l.begin(ctx, locator)
	defer l.end(locator, token)

	res := Result{Locator: locator}
	res.Classification, res.Err = l.driver.Classify(ctx, locator)
	l.finish(ctx, token, &res, opts)
	return res, res.Err
}

// LoadAll samples and classifies the locators concurrently, then dispatches
// them one by one in argument order. Failures are reported per result.
func (l *Loader) LoadAll(ctx context.Context, locators []string, opts LoadOptions) []Result {
	results := make([]Result, len(locators))
	tokens := make([]*inflight, len(locators))
	ctxs := make([]context.Context, len(locators))
	for i, locator := range locators {
		results[i].Locator = locator
		ctxs[i], tokens[i] = l.begin(ctx, locator)
	}
	defer func() {
		for i, locator := range locators {
			l.end(locator, tokens[i])
		}
	}()

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, locator := range locators {
		g.Go(func() error {
			results[i].Classification, results[i].Err = l.driver.Classify(ctxs[i], locator)
			return nil
		})
	}
	_ = g.Wait()

	for i := range results {
		l.finish(ctxs[i], tokens[i], &results[i], opts)
	}
	return results
}

// finish runs the mutation phase for a classified result unless the load was
// superseded or failed.
func (l *Loader) finish(ctx context.Context, token *inflight, res *Result, opts LoadOptions) {
	if l.superseded(res.Locator, token) {
		l.logger.Debug("load superseded", zap.String("locator", res.Locator), zap.Uint64("load", token.id))
		res.Classification = filetype.Unclassified
		res.Err = ErrSuperseded
		return
	}
	if res.Err != nil {
		return
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return
	}

	req := Request{
		Locator:        res.Locator,
		Classification: res.Classification,
		PreferredTask:  opts.PreferredTask,
		UseActiveTask:  opts.UseActiveTask,
		HandlerID:      opts.HandlerID,
	}
	// A newer load may begin between the check above and taking the workspace
	// lock, so supersession is checked again under it.
	var stop error
	out, ok := l.resolver.dispatchIf(req, func() bool {
		if l.superseded(res.Locator, token) {
			stop = ErrSuperseded
		} else {
			stop = ctx.Err()
		}
		return stop == nil
	})
	if !ok {
		if errors.Is(stop, ErrSuperseded) {
			l.logger.Debug("load superseded", zap.String("locator", res.Locator), zap.Uint64("load", token.id))
			res.Classification = filetype.Unclassified
		}
		res.Err = stop
		return
	}
	res.Outcome = out
}

// begin registers a load of locator, cancelling any earlier one still running.
func (l *Loader) begin(ctx context.Context, locator string) (context.Context, *inflight) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	token := &inflight{id: l.seq, cancel: cancel}
	if prev, ok := l.inflight[locator]; ok {
		prev.cancel()
	}
	l.inflight[locator] = token
	return ctx, token
}

func (l *Loader) superseded(locator string, token *inflight) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight[locator] != token
}

func (l *Loader) end(locator string, token *inflight) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inflight[locator] == token {
		delete(l.inflight, locator)
	}
	token.cancel()
}
