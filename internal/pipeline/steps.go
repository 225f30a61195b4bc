package pipeline

import (
	"context"

	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/oracle"
	"github.com/nao1215/kakusu/internal/score"
)

// CharacterStep fills in the representative characters of the pattern.
type CharacterStep struct{}

// Name implements Step.
func (CharacterStep) Name() string { return "characters" }

// Do implements Step.
func (CharacterStep) Do(_ context.Context, c *model.CandidateResult) error {
	c.Characters = c.Pattern.Characters()
	return nil
}

// OracleStep asks one oracle about the surname combined with the
// candidate's characters and stores the raw verdicts.
type OracleStep struct {
	oracle  oracle.Oracle
	surname string
	gender  model.Gender
}

// NewOracleStep creates an OracleStep.
func NewOracleStep(o oracle.Oracle, surname string, gender model.Gender) *OracleStep {
	return &OracleStep{oracle: o, surname: surname, gender: gender}
}

// Name implements Step.
func (s *OracleStep) Name() string { return "oracle:" + s.oracle.ID().String() }

// Do implements Step. The oracle never fails, so neither does the step.
func (s *OracleStep) Do(ctx context.Context, c *model.CandidateResult) error {
	v := s.oracle.Fetch(ctx, model.Query{
		Surname:   s.surname,
		GivenName: c.Characters,
		Gender:    s.gender,
	})
	if v == nil {
		v = model.Verdicts{}
	}
	c.SetResult(s.oracle.ID(), v)
	return nil
}

// ScoreStep computes both oracle scores and the composite score.
type ScoreStep struct {
	translator *score.Translator
}

// NewScoreStep creates a ScoreStep.
func NewScoreStep(t *score.Translator) *ScoreStep {
	return &ScoreStep{translator: t}
}

// Name implements Step.
func (s *ScoreStep) Name() string { return "score" }

// Do implements Step.
func (s *ScoreStep) Do(_ context.Context, c *model.CandidateResult) error {
	c.EnamaeScore = s.translator.Score(c.EnamaeResult, model.OracleEnamae)
	c.NamaeuranaiScore = s.translator.Score(c.NamaeuranaiResult, model.OracleNamaeuranai)
	c.CompositeScore = score.Composite(c.EnamaeScore, c.NamaeuranaiScore)
	return nil
}
