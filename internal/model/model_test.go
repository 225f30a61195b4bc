package model

import (
	"errors"
	"testing"
)

func TestCharacterFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strokes int
		want    string
	}{
		{1, "一"}, {4, "中"}, {5, "兄"}, {12, "博"}, {20, "競"},
		{0, DefaultCharacter}, {21, DefaultCharacter}, {-3, DefaultCharacter},
	}
	for _, tt := range tests {
		if got := CharacterFor(tt.strokes); got != tt.want {
			t.Errorf("CharacterFor(%d) = %q, want %q", tt.strokes, got, tt.want)
		}
	}
}

func TestStrokePattern(t *testing.T) {
	t.Parallel()

	p := StrokePattern{5, 12}

	t.Run("characters", func(t *testing.T) {
		t.Parallel()
		if got := p.Characters(); got != "兄博" {
			t.Errorf("Characters() = %q, want 兄博", got)
		}
	})

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		if got := p.String(); got != "[5 12]" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("total", func(t *testing.T) {
		t.Parallel()
		if got := p.Total(); got != 17 {
			t.Errorf("Total() = %d", got)
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		t.Parallel()
		c := p.Clone()
		c[0] = 1
		if p[0] != 5 {
			t.Error("Clone shares the backing array")
		}
	})
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Verdict
	}{
		{"大大吉", VerdictSupremelyLucky},
		{"大吉", VerdictVeryLucky},
		{" 吉 ", VerdictLucky},
		{"特殊格", VerdictSpecial},
		{"吉凶混合", VerdictMixed},
		{"凶", VerdictUnlucky},
		{"大凶", VerdictVeryUnlucky},
		{"未定義", VerdictUnknown},
		{"", VerdictUnknown},
	}
	for _, tt := range tests {
		got := ParseVerdict(tt.in)
		if got != tt.want {
			t.Errorf("ParseVerdict(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got != VerdictUnknown && got.String() != tt.want.String() {
			t.Errorf("String() round trip failed for %q", tt.in)
		}
	}
}

func TestOracleCategories(t *testing.T) {
	t.Parallel()

	if n := len(OracleEnamae.Categories()); n != 6 {
		t.Errorf("enamae categories = %d, want 6", n)
	}
	if n := len(OracleNamaeuranai.Categories()); n != 7 {
		t.Errorf("namaeuranai categories = %d, want 7", n)
	}
	if OracleID("other").Categories() != nil {
		t.Error("unknown oracle should have no categories")
	}
}

func TestDescriptionKey(t *testing.T) {
	t.Parallel()

	k := DescriptionKey(CategoryHeaven)
	if k != "天格_説明" {
		t.Errorf("DescriptionKey() = %q", k)
	}
	if !IsDescriptionKey(k) || IsDescriptionKey(CategoryHeaven) {
		t.Error("IsDescriptionKey() mismatch")
	}
}

func TestParseGender(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"m", "M", "male", "男性"} {
		if g, err := ParseGender(in); err != nil || g != GenderMale {
			t.Errorf("ParseGender(%q) = %v, %v", in, g, err)
		}
	}
	for _, in := range []string{"f", "female", "女性"} {
		if g, err := ParseGender(in); err != nil || g != GenderFemale {
			t.Errorf("ParseGender(%q) = %v, %v", in, g, err)
		}
	}
	if _, err := ParseGender("x"); !errors.Is(err, ErrInvalidGender) {
		t.Errorf("expected ErrInvalidGender, got %v", err)
	}
	if GenderFemale.Japanese() != "女性" || GenderMale.Word() != "male" {
		t.Error("unexpected gender rendering")
	}
}

func TestCandidateResultAccessors(t *testing.T) {
	t.Parallel()

	var c CandidateResult
	c.SetResult(OracleEnamae, Verdicts{CategoryHeaven: "吉"})
	c.SetResult(OracleNamaeuranai, Verdicts{CategoryWork: "凶"})
	c.EnamaeScore, c.NamaeuranaiScore = 80, 40

	if c.Result(OracleEnamae)[CategoryHeaven] != "吉" {
		t.Error("enamae result not stored")
	}
	if c.Result(OracleNamaeuranai)[CategoryWork] != "凶" {
		t.Error("namaeuranai result not stored")
	}
	if c.Score(OracleEnamae) != 80 || c.Score(OracleNamaeuranai) != 40 {
		t.Error("Score() mismatch")
	}
}

func TestNameCandidatePattern(t *testing.T) {
	t.Parallel()

	n := NameCandidate{Chars: 2, Strokes: [3]int{5, 12, 0}}
	p := n.Pattern()
	if len(p) != 2 || p[0] != 5 || p[1] != 12 {
		t.Errorf("Pattern() = %v", p)
	}
}
