package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/oracle"
	"github.com/nao1215/kakusu/internal/pattern"
	"github.com/nao1215/kakusu/internal/pipeline"
	"github.com/nao1215/kakusu/internal/score"
)

const (
	// DefaultConcurrency is the number of candidates evaluated at once.
	DefaultConcurrency = 4

	progressBuffer    = 256
	defaultDrainGrace = 2 * time.Second
)

// Analyzer runs analyses against a pair of oracles.
type Analyzer struct {
	enamae      oracle.Oracle
	namaeuranai oracle.Oracle
	translator  *score.Translator
	logger      *slog.Logger
	observer    pipeline.Observer
	concurrency int
	runTimeout  time.Duration
	drainGrace  time.Duration
	now         func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTranslator sets the score translator.
func WithTranslator(t *score.Translator) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.translator = t
		}
	}
}

// WithConcurrency sets the number of candidates evaluated at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithRunTimeout bounds every run. Zero means no limit.
func WithRunTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		a.runTimeout = d
	}
}

// WithObserver receives candidate start and finish events.
func WithObserver(o pipeline.Observer) Option {
	return func(a *Analyzer) {
		a.observer = o
	}
}

// WithDrainGrace sets how long Analyze waits for a slow progress callback
// before returning.
func WithDrainGrace(d time.Duration) Option {
	return func(a *Analyzer) {
		a.drainGrace = d
	}
}

// WithClock overrides time.Now for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// New creates an Analyzer that asks enamae (oracle A) and namaeuranai
// (oracle B).
func New(enamae, namaeuranai oracle.Oracle, opts ...Option) *Analyzer {
	a := &Analyzer{
		enamae:      enamae,
		namaeuranai: namaeuranai,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
		drainGrace:  defaultDrainGrace,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.translator == nil {
		a.translator = score.NewTranslator(score.WithLogger(a.logger))
	}
	return a
}

// RunOption configures a single Analyze call.
type RunOption func(*runSettings)

type runSettings struct {
	progress ProgressFunc
}

// WithProgress registers a progress callback for this run.
//
// fn runs on its own goroutine and never blocks the run. Analyze waits for
// queued events only up to the drain grace period (see WithDrainGrace); a
// callback still blocked after that keeps its goroutine until it returns,
// and the remaining queued events are delivered after Analyze has
// returned. Worker goroutines never outlive Analyze.
func WithProgress(fn ProgressFunc) RunOption {
	return func(s *runSettings) {
		s.progress = fn
	}
}

// candidatePipeline builds the per-candidate steps. withCharacters is false
// when the characters are given instead of derived from the pattern.
func (a *Analyzer) candidatePipeline(surname string, gender model.Gender, withCharacters bool) *pipeline.Pipeline {
	p := pipeline.New(pipeline.WithLogger(a.logger))
	if withCharacters {
		p.AddSteps(pipeline.CharacterStep{})
	}
	p.AddSteps(
		pipeline.NewOracleStep(a.enamae, surname, gender),
		pipeline.NewOracleStep(a.namaeuranai, surname, gender),
		pipeline.NewScoreStep(a.translator),
	)
	return p
}

// aggregator collects finished candidates and drives progress.
type aggregator struct {
	mu      sync.Mutex
	results []model.CandidateResult
	tracker *pipeline.Tracker
	sink    *progressSink
}

func (g *aggregator) record(c *model.CandidateResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results = append(g.results, *c)
	percent := g.tracker.Update()
	if g.sink != nil {
		g.sink.emit(model.ProgressEvent{Percent: percent, Pattern: c.Pattern})
	}
}

// Analyze evaluates every pattern of req.CharCount characters for
// req.Surname and returns the top results.
//
// Invalid requests return an error wrapping ErrInvalidArgument before any
// oracle is contacted. If the run timeout fires, the partial run is
// returned with an error wrapping ErrRunTimeout. If ctx is cancelled, the
// partial run is returned with ctx's error.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest, opts ...RunOption) (*model.AnalysisRun, error) {
	var rs runSettings
	for _, opt := range opts {
		opt(&rs)
	}

	req, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}
	patterns, err := pattern.Generate(req.CharCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	runCtx := ctx
	if a.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.runTimeout)
		defer cancel()
	}

	agg := &aggregator{
		results: make([]model.CandidateResult, 0, len(patterns)),
		tracker: pipeline.NewTracker(len(patterns)),
	}
	if rs.progress != nil {
		agg.sink = newProgressSink(rs.progress, progressBuffer, a.logger)
	}

	candidates := a.candidatePipeline(req.Surname, req.Gender, true)
	a.logger.Info("analysis started",
		"surname", req.Surname,
		"char_count", req.CharCount,
		"patterns", len(patterns),
		"concurrency", a.concurrency,
	)
	a.logger.Debug("candidate pipeline", "steps", candidates.StepNames())
	start := a.now()

	bp := pipeline.NewBatchProcessor(
		candidates,
		pipeline.WithConcurrency(a.concurrency),
		pipeline.WithBatchLogger(a.logger),
		pipeline.WithObserver(a.observer),
	)
	batchErr := bp.ProcessBatchWithCallback(runCtx, patterns, agg.record)

	if agg.sink != nil {
		agg.sink.close(a.drainGrace)
	}

	// Every goroutine has returned, so the aggregator is no longer shared.
	run := &model.AnalysisRun{
		ID:                uuid.NewString(),
		Surname:           req.Surname,
		CharCount:         req.CharCount,
		GeneratedAt:       start,
		TotalPatterns:     len(patterns),
		CompletedPatterns: len(agg.results),
		Partial:           len(agg.results) < len(patterns),
		TopResults:        Rank(agg.results, model.TopResultLimit),
	}

	switch {
	case batchErr == nil:
		a.logger.Info("analysis finished",
			"surname", req.Surname,
			"patterns", len(patterns),
			"elapsed", time.Since(start),
		)
		return run, nil
	case errors.Is(batchErr, context.DeadlineExceeded) && ctx.Err() == nil:
		a.logger.Warn("analysis timed out",
			"surname", req.Surname,
			"completed", run.CompletedPatterns,
			"total", run.TotalPatterns,
		)
		return run, fmt.Errorf("%w after %s: %d of %d patterns evaluated",
			ErrRunTimeout, a.runTimeout, run.CompletedPatterns, run.TotalPatterns)
	default:
		return run, fmt.Errorf("analysis interrupted: %w", batchErr)
	}
}

// Evaluate looks up a single full name on both oracles and scores it.
func (a *Analyzer) Evaluate(ctx context.Context, q model.Query) (*model.CandidateResult, error) {
	q.Surname = NormalizeName(q.Surname)
	q.GivenName = NormalizeName(q.GivenName)
	if q.Surname == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptySurname)
	}
	if q.GivenName == "" {
		return nil, fmt.Errorf("%w: given name is empty", ErrInvalidArgument)
	}
	if q.Gender == "" {
		q.Gender = model.GenderMale
	}

	c := &model.CandidateResult{Characters: q.GivenName}
	if err := a.candidatePipeline(q.Surname, q.Gender, false).Execute(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
