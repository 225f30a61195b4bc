package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/kakusu/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of candidates evaluated at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// Observer is notified when a candidate evaluation starts and ends.
type Observer interface {
	CandidateStarted()
	CandidateFinished(elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) CandidateStarted()                      {}
func (nopObserver) CandidateFinished(time.Duration, error) {}

// BatchProcessor evaluates many patterns with bounded concurrency.
//
// Design decision: errgroup.SetLimit is the permit. A slot is taken when
// the goroutine starts and released when it returns, which is after the
// pipeline has run and the callback has recorded the result. At no point
// are more than the configured number of candidates between their first
// oracle call and their recording.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
	observer    Observer
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent evaluations.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithObserver sets an Observer, e.g. metrics.
func WithObserver(o Observer) BatchOption {
	return func(b *BatchProcessor) {
		if o != nil {
			b.observer = o
		}
	}
}

// NewBatchProcessor creates a BatchProcessor that runs p for every pattern.
func NewBatchProcessor(p *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipeline:    p,
		concurrency: DefaultConcurrency,
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatchWithCallback evaluates every pattern and calls record with
// each finished candidate. record runs in the evaluating goroutine while
// its slot is still held; it must be safe for concurrent use and must not
// block for long.
//
// Candidates whose evaluation was interrupted by cancellation are not
// recorded; other step errors are logged and the candidate is recorded
// with whatever the steps produced. The returned error is the context's error if the batch was
// cancelled, nil otherwise.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	patterns []model.StrokePattern,
	record func(c *model.CandidateResult),
) error {
	bp.logger.Debug("starting batch",
		"patterns", len(patterns),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, p := range patterns {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			bp.observer.CandidateStarted()
			began := time.Now()
			c := &model.CandidateResult{Index: i, Pattern: p.Clone()}
			err := bp.pipeline.Execute(gctx, c)
			bp.observer.CandidateFinished(time.Since(began), err)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				bp.logger.Warn("candidate evaluated with errors",
					"pattern", c.Pattern,
					"error", err,
				)
			}

			record(c)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Debug("batch finished",
		"patterns", len(patterns),
		"elapsed", time.Since(start),
		"error", err,
	)
	if err != nil {
		// Prefer the caller's view: a parent deadline shows up as
		// DeadlineExceeded rather than the group's Canceled.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
