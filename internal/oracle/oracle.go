package oracle

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/kakusu/internal/model"
)

// Source looks up the verdicts of one full name on one site.
type Source interface {
	ID() model.OracleID
	Lookup(ctx context.Context, q model.Query) (model.Verdicts, error)
}

// Oracle is a Source that never fails. An empty Verdicts means the site
// could not be used for this query.
type Oracle interface {
	ID() model.OracleID
	Fetch(ctx context.Context, q model.Query) model.Verdicts
}

// Observer receives lookup and cache events, typically for metrics.
type Observer interface {
	ObserveLookup(oracle model.OracleID, elapsed time.Duration, err error)
	ObserveCache(oracle model.OracleID, hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveLookup(model.OracleID, time.Duration, error) {}
func (nopObserver) ObserveCache(model.OracleID, bool)                  {}

// Option configures the wrappers in this package and the site sources.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	observer Observer
}

func newSettings(opts []Option) settings {
	s := settings{logger: slog.Default(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the Observer.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}
