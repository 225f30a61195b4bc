package analyzer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/pattern"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeOracle answers with fn and counts calls.
type fakeOracle struct {
	id    model.OracleID
	fn    func(ctx context.Context, q model.Query) model.Verdicts
	calls atomic.Int32
}

func (f *fakeOracle) ID() model.OracleID { return f.id }

func (f *fakeOracle) Fetch(ctx context.Context, q model.Query) model.Verdicts {
	f.calls.Add(1)
	if f.fn == nil {
		return model.Verdicts{}
	}
	return f.fn(ctx, q)
}

func constant(id model.OracleID, v model.Verdicts) *fakeOracle {
	return &fakeOracle{id: id, fn: func(context.Context, model.Query) model.Verdicts { return v }}
}

// strokesOf maps the representative characters back to stroke counts.
func strokesOf(given string) int {
	total := 0
	for _, r := range given {
		for s := model.MinStrokes; s <= model.MaxStrokes; s++ {
			if model.CharacterFor(s) == string(r) {
				total += s
				break
			}
		}
	}
	return total
}

// byStrokes gives different verdicts depending on the total stroke count.
func byStrokes(id model.OracleID) *fakeOracle {
	words := []string{"大吉", "吉", "凶"}
	return &fakeOracle{id: id, fn: func(_ context.Context, q model.Query) model.Verdicts {
		return model.Verdicts{"天格": words[strokesOf(q.GivenName)%3]}
	}}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     model.AnalysisRequest
		wantErr error
	}{
		{name: "valid", req: model.AnalysisRequest{Surname: "田中", CharCount: 2}},
		{name: "empty surname", req: model.AnalysisRequest{Surname: "", CharCount: 1}, wantErr: ErrEmptySurname},
		{name: "blank surname", req: model.AnalysisRequest{Surname: " 　", CharCount: 1}, wantErr: ErrEmptySurname},
		{name: "zero chars", req: model.AnalysisRequest{Surname: "田中", CharCount: 0}, wantErr: pattern.ErrInvalidCharCount},
		{name: "four chars", req: model.AnalysisRequest{Surname: "田中", CharCount: 4}, wantErr: pattern.ErrInvalidCharCount},
		{name: "long surname", req: model.AnalysisRequest{Surname: "あいうえおかきくけこさ", CharCount: 1}, wantErr: ErrSurnameTooLong},
		{name: "bad gender", req: model.AnalysisRequest{Surname: "田中", CharCount: 1, Gender: "x"}, wantErr: model.ErrInvalidGender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateRequest(tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRequest() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error %v does not wrap ErrInvalidArgument", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequest_Normalizes(t *testing.T) {
	t.Parallel()

	got, err := ValidateRequest(model.AnalysisRequest{Surname: "  ＴＡＮＡＫＡ ", CharCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got.Surname != "TANAKA" {
		t.Errorf("Surname = %q, want TANAKA", got.Surname)
	}
	if got.Gender != model.GenderMale {
		t.Errorf("Gender = %q, want m", got.Gender)
	}
}

func TestAnalyze_InvalidArgumentSendsNothing(t *testing.T) {
	t.Parallel()

	a := constant(model.OracleEnamae, model.Verdicts{"天格": "吉"})
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "吉"})
	an := New(a, b, WithLogger(quietLogger()))

	for _, req := range []model.AnalysisRequest{
		{Surname: "", CharCount: 1},
		{Surname: "田中", CharCount: 0},
		{Surname: "田中", CharCount: 4},
	} {
		run, err := an.Analyze(context.Background(), req)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Analyze(%+v) error = %v, want ErrInvalidArgument", req, err)
		}
		if run != nil {
			t.Errorf("Analyze(%+v) returned a run", req)
		}
	}
	if a.calls.Load() != 0 || b.calls.Load() != 0 {
		t.Errorf("oracles were called: a=%d b=%d", a.calls.Load(), b.calls.Load())
	}
}

func TestAnalyze_SingleCharacter(t *testing.T) {
	t.Parallel()

	var queriesMu sync.Mutex
	var queries []model.Query
	a := &fakeOracle{id: model.OracleEnamae, fn: func(_ context.Context, q model.Query) model.Verdicts {
		queriesMu.Lock()
		queries = append(queries, q)
		queriesMu.Unlock()
		return model.Verdicts{"天格": "大吉", "人格": "吉", "地格": "特殊格"}
	}}
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "大大吉", "人格": "大吉", "仕事運": "吉"})

	var events []model.ProgressEvent
	var eventsMu sync.Mutex
	done := make(chan struct{})
	progress := func(ev model.ProgressEvent) {
		eventsMu.Lock()
		defer eventsMu.Unlock()
		events = append(events, ev)
		if ev.Percent == 100 {
			close(done)
		}
	}

	generated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	an := New(a, b, WithLogger(quietLogger()), WithClock(func() time.Time { return generated }))
	run, err := an.Analyze(context.Background(), model.AnalysisRequest{Surname: "田中", CharCount: 1}, WithProgress(progress))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if a.calls.Load() != 20 || b.calls.Load() != 20 {
		t.Errorf("oracle calls a=%d b=%d, want 20 each", a.calls.Load(), b.calls.Load())
	}
	for _, q := range queries {
		if q.Surname != "田中" || q.Gender != model.GenderMale {
			t.Errorf("unexpected query %+v", q)
		}
	}

	if run.TotalPatterns != 20 || run.CompletedPatterns != 20 || run.Partial {
		t.Errorf("run totals: total=%d completed=%d partial=%v", run.TotalPatterns, run.CompletedPatterns, run.Partial)
	}
	if len(run.TopResults) != 20 {
		t.Fatalf("TopResults has %d entries, want 20", len(run.TopResults))
	}
	if run.ID == "" || !run.GeneratedAt.Equal(generated) || run.Surname != "田中" || run.CharCount != 1 {
		t.Errorf("unexpected run header: %+v", run)
	}
	for i, r := range run.TopResults {
		if math.Abs(r.CompositeScore-90) > 1e-9 {
			t.Errorf("result %d composite = %v, want 90", i, r.CompositeScore)
		}
		// Equal scores keep generation order.
		if diff := cmp.Diff(model.StrokePattern{i + 1}, r.Pattern); diff != "" {
			t.Errorf("result %d pattern mismatch (-want +got):\n%s", i, diff)
		}
		if r.Characters != model.CharacterFor(i+1) {
			t.Errorf("result %d characters = %q", i, r.Characters)
		}
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("progress never reached 100")
	}
	eventsMu.Lock()
	defer eventsMu.Unlock()
	if len(events) != 20 {
		t.Errorf("got %d progress events, want 20", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent <= events[i-1].Percent {
			t.Errorf("progress not increasing at %d: %v then %v", i, events[i-1].Percent, events[i].Percent)
		}
	}
}

func TestAnalyze_TopResultsRankedAndBounded(t *testing.T) {
	t.Parallel()

	an := New(byStrokes(model.OracleEnamae), byStrokes(model.OracleNamaeuranai),
		WithLogger(quietLogger()), WithConcurrency(4))
	run, err := an.Analyze(context.Background(), model.AnalysisRequest{Surname: "佐藤", CharCount: 2})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if run.TotalPatterns != 400 || run.CompletedPatterns != 400 {
		t.Errorf("total=%d completed=%d", run.TotalPatterns, run.CompletedPatterns)
	}
	if len(run.TopResults) != model.TopResultLimit {
		t.Fatalf("len(TopResults) = %d, want %d", len(run.TopResults), model.TopResultLimit)
	}
	for i := 1; i < len(run.TopResults); i++ {
		prev, cur := run.TopResults[i-1], run.TopResults[i]
		if cur.CompositeScore > prev.CompositeScore {
			t.Errorf("results not sorted at %d", i)
		}
		if cur.CompositeScore == prev.CompositeScore && cur.Index < prev.Index {
			t.Errorf("tie at %d not in generation order", i)
		}
	}
	// 大吉 is worth 100 on enamae and 90 on namaeuranai.
	if run.TopResults[0].CompositeScore != 95 {
		t.Errorf("best score = %v, want 95", run.TopResults[0].CompositeScore)
	}
}

func TestAnalyze_ConcurrencyWidth(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	enter := func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				return
			}
		}
	}

	// A candidate is in flight from its oracle A call until its oracle B
	// call returns.
	a := &fakeOracle{id: model.OracleEnamae, fn: func(context.Context, model.Query) model.Verdicts {
		enter()
		time.Sleep(time.Millisecond)
		return model.Verdicts{"天格": "吉"}
	}}
	b := &fakeOracle{id: model.OracleNamaeuranai, fn: func(context.Context, model.Query) model.Verdicts {
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return model.Verdicts{"天格": "吉"}
	}}

	an := New(a, b, WithLogger(quietLogger()))
	run, err := an.Analyze(context.Background(), model.AnalysisRequest{Surname: "田中", CharCount: 2})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if run.CompletedPatterns != 400 {
		t.Errorf("completed %d, want 400", run.CompletedPatterns)
	}
	if p := peak.Load(); p > DefaultConcurrency {
		t.Errorf("peak in-flight candidates = %d, want <= %d", p, DefaultConcurrency)
	}
	if p := peak.Load(); p < 2 {
		t.Errorf("peak in-flight candidates = %d, expected candidates to overlap", p)
	}
}

func TestAnalyze_OracleFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	a := constant(model.OracleEnamae, model.Verdicts{"天格": "大吉"})
	b := constant(model.OracleNamaeuranai, model.Verdicts{})
	an := New(a, b, WithLogger(quietLogger()))

	run, err := an.Analyze(context.Background(), model.AnalysisRequest{Surname: "田中", CharCount: 1})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(run.TopResults) != 20 {
		t.Fatalf("len(TopResults) = %d", len(run.TopResults))
	}
	for _, r := range run.TopResults {
		if r.CompositeScore != 50 || r.NamaeuranaiScore != 0 {
			t.Errorf("composite = %v, namaeuranai = %v; want 50 and 0", r.CompositeScore, r.NamaeuranaiScore)
		}
	}
}

func TestAnalyze_UnknownVerdictScoresZero(t *testing.T) {
	t.Parallel()

	a := constant(model.OracleEnamae, model.Verdicts{"天格": "未定義"})
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "未定義"})
	run, err := New(a, b, WithLogger(quietLogger())).Analyze(context.Background(), model.AnalysisRequest{Surname: "田中", CharCount: 1})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for _, r := range run.TopResults {
		if r.CompositeScore != 0 {
			t.Errorf("composite = %v, want 0", r.CompositeScore)
		}
	}
}

func TestAnalyze_RunTimeout(t *testing.T) {
	t.Parallel()

	var served atomic.Int32
	blocking := func(ctx context.Context, _ model.Query) model.Verdicts {
		if served.Add(1) <= 6 {
			return model.Verdicts{"天格": "吉"}
		}
		<-ctx.Done()
		return model.Verdicts{}
	}
	a := &fakeOracle{id: model.OracleEnamae, fn: blocking}
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "吉"})

	an := New(a, b, WithLogger(quietLogger()), WithRunTimeout(100*time.Millisecond))
	start := time.Now()
	run, err := an.Analyze(context.Background(), model.AnalysisRequest{Surname: "田中", CharCount: 2})
	if !errors.Is(err, ErrRunTimeout) {
		t.Fatalf("Analyze() error = %v, want ErrRunTimeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout did not stop the run promptly")
	}
	if run == nil || !run.Partial {
		t.Fatalf("expected a partial run, got %+v", run)
	}
	if run.CompletedPatterns != 6 {
		t.Errorf("completed %d, want 6", run.CompletedPatterns)
	}
	if len(run.TopResults) != 6 {
		t.Errorf("len(TopResults) = %d, want 6", len(run.TopResults))
	}
}

func TestAnalyze_CallerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	a := &fakeOracle{id: model.OracleEnamae, fn: func(ctx context.Context, _ model.Query) model.Verdicts {
		if calls.Add(1) == 3 {
			cancel()
		}
		<-ctx.Done()
		return model.Verdicts{}
	}}
	b := constant(model.OracleNamaeuranai, model.Verdicts{})

	run, err := New(a, b, WithLogger(quietLogger())).Analyze(ctx, model.AnalysisRequest{Surname: "田中", CharCount: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrRunTimeout) {
		t.Error("cancellation reported as timeout")
	}
	if run == nil || !run.Partial {
		t.Errorf("expected a partial run, got %+v", run)
	}
}

func TestAnalyze_SlowProgressCallbackDoesNotBlock(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var delivered atomic.Int32
	progress := func(model.ProgressEvent) {
		<-release
		delivered.Add(1)
	}

	a := constant(model.OracleEnamae, model.Verdicts{"天格": "吉"})
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "吉"})
	an := New(a, b, WithLogger(quietLogger()), WithDrainGrace(10*time.Millisecond))

	run, err := an.Analyze(context.Background(), model.AnalysisRequest{Surname: "田中", CharCount: 1}, WithProgress(progress))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if run.CompletedPatterns != 20 {
		t.Errorf("completed %d, want 20", run.CompletedPatterns)
	}

	close(release)
	deadline := time.Now().Add(5 * time.Second)
	for delivered.Load() < 20 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if delivered.Load() != 20 {
		t.Errorf("delivered %d events, want 20", delivered.Load())
	}
}

func TestAnalyze_PanickingProgressCallback(t *testing.T) {
	t.Parallel()

	a := constant(model.OracleEnamae, model.Verdicts{"天格": "吉"})
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "吉"})
	run, err := New(a, b, WithLogger(quietLogger())).Analyze(context.Background(),
		model.AnalysisRequest{Surname: "田中", CharCount: 1},
		WithProgress(func(model.ProgressEvent) { panic("boom") }),
	)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(run.TopResults) != 20 {
		t.Errorf("len(TopResults) = %d", len(run.TopResults))
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	a := constant(model.OracleEnamae, model.Verdicts{"天格": "大吉", "人格": "吉", "地格": "特殊格"})
	b := constant(model.OracleNamaeuranai, model.Verdicts{"天格": "大大吉", "人格": "大吉", "仕事運": "吉"})
	an := New(a, b, WithLogger(quietLogger()))

	c, err := an.Evaluate(context.Background(), model.Query{Surname: "田中", GivenName: "太郎"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if c.Characters != "太郎" || math.Abs(c.CompositeScore-90) > 1e-9 {
		t.Errorf("unexpected result %+v", c)
	}

	if _, err := an.Evaluate(context.Background(), model.Query{Surname: "田中"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty given name, got %v", err)
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	results := []model.CandidateResult{
		{Index: 0, CompositeScore: 50},
		{Index: 1, CompositeScore: 90},
		{Index: 2, CompositeScore: 50},
		{Index: 3, CompositeScore: 100},
		{Index: 4, CompositeScore: 90},
	}
	got := Rank(results, 4)
	var order []int
	for _, r := range got {
		order = append(order, r.Index)
	}
	if diff := cmp.Diff([]int{3, 1, 4, 0}, order); diff != "" {
		t.Errorf("Rank() order mismatch (-want +got):\n%s", diff)
	}

	if got := Rank(nil, 20); len(got) != 0 {
		t.Errorf("Rank(nil) = %v", got)
	}
}
