package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nao1215/kakusu/internal/model"
)

func TestMetrics_Candidates(t *testing.T) {
	t.Parallel()

	m := New()
	m.CandidateStarted()
	m.CandidateStarted()
	if got := testutil.ToFloat64(m.inFlight); got != 2 {
		t.Errorf("in flight = %v, want 2", got)
	}

	m.CandidateFinished(time.Second, nil)
	m.CandidateFinished(time.Second, context.Canceled)
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.candidates.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok candidates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.candidates.WithLabelValues("cancelled")); got != 1 {
		t.Errorf("cancelled candidates = %v, want 1", got)
	}
}

func TestMetrics_Oracle(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveLookup(model.OracleEnamae, 10*time.Millisecond, nil)
	m.ObserveLookup(model.OracleEnamae, 10*time.Millisecond, errors.New("boom"))
	m.ObserveLookup(model.OracleNamaeuranai, 10*time.Millisecond, nil)
	m.ObserveCache(model.OracleEnamae, true)
	m.ObserveCache(model.OracleEnamae, false)
	m.ObserveCache(model.OracleEnamae, false)
	m.UnknownVerdict(model.OracleNamaeuranai, "天格", "未定義")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"enamae ok", testutil.ToFloat64(m.lookups.WithLabelValues("enamae", "ok")), 1},
		{"enamae error", testutil.ToFloat64(m.lookups.WithLabelValues("enamae", "error")), 1},
		{"namaeuranai ok", testutil.ToFloat64(m.lookups.WithLabelValues("namaeuranai", "ok")), 1},
		{"cache hit", testutil.ToFloat64(m.cache.WithLabelValues("enamae", "hit")), 1},
		{"cache miss", testutil.ToFloat64(m.cache.WithLabelValues("enamae", "miss")), 2},
		{"unknown", testutil.ToFloat64(m.unknownVerdicts.WithLabelValues("namaeuranai", "天格")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.CandidateFinished(time.Second, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"kakusu_analysis_candidates_total",
		"kakusu_analysis_candidate_duration_seconds",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestMetrics_Serve(t *testing.T) {
	t.Parallel()

	m := New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := m.Serve(context.Background(), "256.0.0.1:0", logger); err == nil {
		t.Error("expected a listen error for an invalid address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := m.Serve(ctx, "127.0.0.1:0", logger)
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	stop()
	// A second stop must not panic.
	stop()
}
