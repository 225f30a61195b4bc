package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/score"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// funcStep is a Step backed by a function.
type funcStep struct {
	name string
	fn   func(ctx context.Context, c *model.CandidateResult) error
}

func (s funcStep) Name() string { return s.name }
func (s funcStep) Do(ctx context.Context, c *model.CandidateResult) error {
	return s.fn(ctx, c)
}

// fixedOracle always answers with the same verdicts.
type fixedOracle struct {
	id model.OracleID
	v  model.Verdicts
	// queries receives every query when non-nil.
	queries chan model.Query
}

func (f *fixedOracle) ID() model.OracleID { return f.id }
func (f *fixedOracle) Fetch(_ context.Context, q model.Query) model.Verdicts {
	if f.queries != nil {
		f.queries <- q
	}
	return f.v
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(WithLogger(quietLogger()))
		for _, name := range []string{"a", "b", "c"} {
			p.AddSteps(funcStep{name: name, fn: func(context.Context, *model.CandidateResult) error {
				order = append(order, name)
				return nil
			}})
		}

		if err := p.Execute(context.Background(), &model.CandidateResult{}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, p.StepNames()); diff != "" {
			t.Errorf("StepNames mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		ran := false
		p := New(WithLogger(quietLogger()))
		p.AddSteps(
			funcStep{name: "fail", fn: func(context.Context, *model.CandidateResult) error { return boom }},
			funcStep{name: "after", fn: func(context.Context, *model.CandidateResult) error {
				ran = true
				return nil
			}},
		)

		if err := p.Execute(context.Background(), &model.CandidateResult{}); !errors.Is(err, boom) {
			t.Errorf("Execute() error = %v, want boom", err)
		}
		if ran {
			t.Error("step after failure should not run")
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		ran := false
		p := New(WithLogger(quietLogger()))
		p.AddSteps(
			funcStep{name: "cancel", fn: func(context.Context, *model.CandidateResult) error {
				cancel()
				return nil
			}},
			funcStep{name: "after", fn: func(context.Context, *model.CandidateResult) error {
				ran = true
				return nil
			}},
		)

		if err := p.Execute(ctx, &model.CandidateResult{}); !errors.Is(err, context.Canceled) {
			t.Errorf("Execute() error = %v, want context.Canceled", err)
		}
		if ran {
			t.Error("step after cancellation should not run")
		}
	})
}

func TestSteps(t *testing.T) {
	t.Parallel()

	queries := make(chan model.Query, 2)
	a := &fixedOracle{id: model.OracleEnamae, v: model.Verdicts{"天格": "大吉", "人格": "吉", "地格": "特殊格"}, queries: queries}
	b := &fixedOracle{id: model.OracleNamaeuranai, v: model.Verdicts{"天格": "大大吉", "人格": "大吉", "仕事運": "吉"}, queries: queries}

	p := New(WithLogger(quietLogger()))
	p.AddSteps(
		CharacterStep{},
		NewOracleStep(a, "田中", model.GenderMale),
		NewOracleStep(b, "田中", model.GenderMale),
		NewScoreStep(score.NewTranslator(score.WithLogger(quietLogger()))),
	)

	c := &model.CandidateResult{Pattern: model.StrokePattern{5, 12}}
	if err := p.Execute(context.Background(), c); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if c.Characters != "兄博" {
		t.Errorf("Characters = %q, want 兄博", c.Characters)
	}
	for range 2 {
		q := <-queries
		want := model.Query{Surname: "田中", GivenName: "兄博", Gender: model.GenderMale}
		if diff := cmp.Diff(want, q); diff != "" {
			t.Errorf("query mismatch (-want +got):\n%s", diff)
		}
	}
	if c.EnamaeResult["地格"] != "特殊格" || c.NamaeuranaiResult["仕事運"] != "吉" {
		t.Error("raw results not stored")
	}
	if math.Abs(c.EnamaeScore-90) > 1e-9 || math.Abs(c.NamaeuranaiScore-90) > 1e-9 {
		t.Errorf("scores = %v, %v, want 90, 90", c.EnamaeScore, c.NamaeuranaiScore)
	}
	if math.Abs(c.CompositeScore-90) > 1e-9 {
		t.Errorf("CompositeScore = %v, want 90", c.CompositeScore)
	}
	want := []string{"characters", "oracle:enamae", "oracle:namaeuranai", "score"}
	if diff := cmp.Diff(want, p.StepNames()); diff != "" {
		t.Errorf("StepNames mismatch (-want +got):\n%s", diff)
	}
}

func TestOracleStep_NilVerdictsBecomeEmpty(t *testing.T) {
	t.Parallel()

	c := &model.CandidateResult{Characters: "一"}
	step := NewOracleStep(&fixedOracle{id: model.OracleEnamae}, "田中", model.GenderMale)
	if err := step.Do(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if c.EnamaeResult == nil {
		t.Error("expected an empty, non-nil result")
	}
}

func TestTracker(t *testing.T) {
	t.Parallel()

	tr := NewTracker(20)
	prev := 0.0
	for i := 1; i <= 20; i++ {
		got := tr.Update()
		if got <= prev {
			t.Fatalf("update %d: %v is not greater than %v", i, got, prev)
		}
		prev = got
	}
	if prev != 100 {
		t.Errorf("final percent = %v, want exactly 100", prev)
	}
	if tr.Completed() != 20 || tr.Total() != 20 {
		t.Errorf("Completed()=%d Total()=%d", tr.Completed(), tr.Total())
	}

	for _, total := range []int{3, 7, 400, 8000} {
		tr := NewTracker(total)
		var last float64
		for range total {
			last = tr.Update()
		}
		if last != 100 {
			t.Errorf("total %d: final percent = %v, want 100", total, last)
		}
	}
}
