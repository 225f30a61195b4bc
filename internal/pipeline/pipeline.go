package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/kakusu/internal/model"
)

// Step is one stage of a candidate evaluation.
type Step interface {
	// Do executes the step on c. Returning an error stops the pipeline.
	Do(ctx context.Context, c *model.CandidateResult) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs Steps in order. It holds no per-candidate state, so one
// Pipeline can be executed from many goroutines at once.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps on c. The context is checked before each step; a
// cancelled context returns ctx.Err() and leaves c incomplete.
func (p *Pipeline) Execute(ctx context.Context, c *model.CandidateResult) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Debug("pipeline cancelled",
				"step", step.Name(),
				"pattern", c.Pattern,
				"reason", err,
			)
			return err
		}

		if err := step.Do(ctx, c); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"pattern", c.Pattern,
				"error", err,
			)
			return err
		}
		p.logger.Debug("step completed",
			"step", step.Name(),
			"pattern", c.Pattern,
		)
	}
	return nil
}

// StepNames returns the names of all steps in execution order, for logging.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
