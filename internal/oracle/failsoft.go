package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/nao1215/kakusu/internal/model"
)

type failSoft struct {
	source Source
	settings
}

// FailSoft wraps source so that lookup errors become an empty Verdicts.
// Errors are logged and passed to the Observer. Cancellation is logged at
// debug level only, since a run that times out cancels many lookups at once.
func FailSoft(source Source, opts ...Option) Oracle {
	return &failSoft{source: source, settings: newSettings(opts)}
}

func (f *failSoft) ID() model.OracleID {
	return f.source.ID()
}

func (f *failSoft) Fetch(ctx context.Context, q model.Query) model.Verdicts {
	start := time.Now()
	v, err := f.source.Lookup(ctx, q)
	f.observer.ObserveLookup(f.source.ID(), time.Since(start), err)

	if err == nil {
		return v
	}
	attrs := []any{
		"oracle", f.source.ID(),
		"surname", q.Surname,
		"given_name", q.GivenName,
		"error", err,
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		f.logger.Debug("oracle lookup cancelled", attrs...)
	} else {
		f.logger.Error("oracle lookup failed", attrs...)
	}
	return model.Verdicts{}
}
