package score

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/kakusu/internal/model"
)

func newTestTranslator(buf *bytes.Buffer, opts ...Option) *Translator {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewTranslator(append([]Option{WithLogger(logger)}, opts...)...)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTranslator_Score(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		oracle   model.OracleID
		verdicts model.Verdicts
		want     float64
	}{
		{
			name:   "enamae mixed verdicts",
			oracle: model.OracleEnamae,
			verdicts: model.Verdicts{
				"天格": "大吉",
				"人格": "吉",
				"地格": "特殊格",
			},
			want: 90,
		},
		{
			name:   "namaeuranai mixed verdicts",
			oracle: model.OracleNamaeuranai,
			verdicts: model.Verdicts{
				"天格":  "大大吉",
				"人格":  "大吉",
				"仕事運": "吉",
			},
			want: 90,
		},
		{
			name:     "empty verdicts score zero",
			oracle:   model.OracleEnamae,
			verdicts: model.Verdicts{},
			want:     0,
		},
		{
			name:     "nil verdicts score zero",
			oracle:   model.OracleNamaeuranai,
			verdicts: nil,
			want:     0,
		},
		{
			name:   "keys outside the oracle's categories are ignored",
			oracle: model.OracleEnamae,
			verdicts: model.Verdicts{
				"天格":    "凶",
				"仕事運":   "大吉",
				"陰陽配列":  "吉",
				"天格_説明": "大吉",
			},
			want: 40,
		},
		{
			name:   "word valid for the other oracle is unknown",
			oracle: model.OracleEnamae,
			verdicts: model.Verdicts{
				"天格": "大大吉",
				"人格": "吉",
			},
			want: 40,
		},
		{
			name:   "all enamae categories",
			oracle: model.OracleEnamae,
			verdicts: model.Verdicts{
				"天格":   "大吉",
				"人格":   "吉",
				"地格":   "特殊格",
				"外格":   "吉凶混合",
				"総格":   "凶",
				"三才配置": "大凶",
			},
			want: (100 + 80 + 90 + 60 + 40 + 20) / 6.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			got := newTestTranslator(&buf).Score(tt.verdicts, tt.oracle)
			if !almostEqual(got, tt.want) {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslator_UnknownVerdict(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var calls atomic.Int32
	tr := newTestTranslator(&buf, WithUnknownVerdictFunc(func(oracle model.OracleID, category, verdict string) {
		calls.Add(1)
		if oracle != model.OracleEnamae || category != "天格" || verdict != "未定義" {
			t.Errorf("unexpected callback args: %v %v %v", oracle, category, verdict)
		}
	}))

	got := tr.Score(model.Verdicts{"天格": "未定義"}, model.OracleEnamae)
	if got != 0 {
		t.Errorf("Score() = %v, want 0", got)
	}
	if calls.Load() != 1 {
		t.Errorf("callback called %d times, want 1", calls.Load())
	}
	if !strings.Contains(buf.String(), "unknown verdict") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestTranslator_UnknownVerdictCountsInMean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	got := newTestTranslator(&buf).Score(model.Verdicts{"天格": "大吉", "人格": "未定義"}, model.OracleEnamae)
	if !almostEqual(got, 50) {
		t.Errorf("Score() = %v, want 50", got)
	}
}

func TestTranslator_OrderInvariant(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := newTestTranslator(&buf)

	build := func(keys []string) model.Verdicts {
		src := map[string]string{"天格": "大吉", "人格": "凶", "総格": "吉", "家庭運": "大凶"}
		v := make(model.Verdicts, len(keys))
		for _, k := range keys {
			v[k] = src[k]
		}
		return v
	}

	a := tr.Score(build([]string{"天格", "人格", "総格", "家庭運"}), model.OracleNamaeuranai)
	b := tr.Score(build([]string{"家庭運", "総格", "人格", "天格"}), model.OracleNamaeuranai)
	if !almostEqual(a, b) {
		t.Errorf("scores differ by insertion order: %v vs %v", a, b)
	}
}

func TestComposite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, want float64
	}{
		{90, 90, 90},
		{100, 0, 50},
		{0, 0, 0},
		{80, 60, 70},
	}
	for _, tt := range tests {
		if got := Composite(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Errorf("Composite(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValue(t *testing.T) {
	t.Parallel()

	if v, ok := Value(model.OracleEnamae, "大吉"); !ok || v != 100 {
		t.Errorf("enamae 大吉 = %v, %v", v, ok)
	}
	if v, ok := Value(model.OracleNamaeuranai, "大吉"); !ok || v != 90 {
		t.Errorf("namaeuranai 大吉 = %v, %v", v, ok)
	}
	if _, ok := Value(model.OracleNamaeuranai, "特殊格"); ok {
		t.Error("特殊格 should be unknown to namaeuranai")
	}
	// Whitespace left over from page markup does not change the score.
	if v, ok := Value(model.OracleEnamae, " 大吉\n"); !ok || v != 100 {
		t.Errorf("enamae padded 大吉 = %v, %v", v, ok)
	}
}
