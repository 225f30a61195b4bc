package score

import (
	"log/slog"

	"github.com/nao1215/kakusu/internal/model"
)

// tables maps each oracle to its verdict scores. A verdict missing from an
// oracle's table is unknown to that oracle even if the other one uses it.
var tables = map[model.OracleID]map[model.Verdict]float64{
	model.OracleEnamae: {
		model.VerdictVeryLucky:   100,
		model.VerdictLucky:       80,
		model.VerdictSpecial:     90,
		model.VerdictMixed:       60,
		model.VerdictUnlucky:     40,
		model.VerdictVeryUnlucky: 20,
	},
	model.OracleNamaeuranai: {
		model.VerdictSupremelyLucky: 100,
		model.VerdictVeryLucky:      90,
		model.VerdictLucky:          80,
		model.VerdictUnlucky:        40,
		model.VerdictVeryUnlucky:    20,
	},
}

// UnknownVerdictFunc is called for every verdict an oracle's table does not know.
type UnknownVerdictFunc func(oracle model.OracleID, category, verdict string)

// Translator turns Verdicts into scores. The zero value is not usable; use
// NewTranslator. A Translator is safe for concurrent use.
type Translator struct {
	logger    *slog.Logger
	onUnknown UnknownVerdictFunc
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used for unknown verdict warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithUnknownVerdictFunc registers a callback for unknown verdicts, e.g. a
// metrics counter.
func WithUnknownVerdictFunc(fn UnknownVerdictFunc) Option {
	return func(t *Translator) {
		t.onUnknown = fn
	}
}

// NewTranslator creates a Translator.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Value returns the score of a verdict word for an oracle and whether the
// word is in that oracle's table.
func Value(oracle model.OracleID, verdict string) (float64, bool) {
	v, ok := tables[oracle][model.ParseVerdict(verdict)]
	return v, ok
}

// Score returns the mean score of the oracle's categories present in
// verdicts. Absent categories are skipped; present ones with an unknown
// verdict count as 0. With no category present the score is 0.
func (t *Translator) Score(verdicts model.Verdicts, oracle model.OracleID) float64 {
	var sum float64
	var n int
	for _, category := range oracle.Categories() {
		raw, ok := verdicts[category]
		if !ok {
			continue
		}
		v, known := Value(oracle, raw)
		if !known {
			t.logger.Warn("unknown verdict",
				"oracle", oracle,
				"category", category,
				"verdict", raw,
			)
			if t.onUnknown != nil {
				t.onUnknown(oracle, category, raw)
			}
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Composite combines the two oracle scores. A score of 0 from a failed
// oracle is averaged in like any other score.
func Composite(a, b float64) float64 {
	return (a + b) / 2
}
