package model

// Query is a single full name sent to an oracle.
type Query struct {
	Surname   string
	GivenName string
	Gender    Gender
}

// CandidateResult is the evaluation of one stroke pattern.
type CandidateResult struct {
	// Index is the position of Pattern in generation order. It breaks ties
	// when results are ranked.
	Index int `json:"-"`

	Pattern           StrokePattern `json:"strokes"`
	Characters        string        `json:"characters"`
	EnamaeResult      Verdicts      `json:"enamae_result"`
	NamaeuranaiResult Verdicts      `json:"namaeuranai_result"`
	EnamaeScore       float64       `json:"enamae_score"`
	NamaeuranaiScore  float64       `json:"namaeuranai_score"`
	CompositeScore    float64       `json:"total_score"`
}

// Result returns the raw verdicts of the given oracle.
func (c *CandidateResult) Result(o OracleID) Verdicts {
	switch o {
	case OracleEnamae:
		return c.EnamaeResult
	case OracleNamaeuranai:
		return c.NamaeuranaiResult
	default:
		return nil
	}
}

// SetResult stores the raw verdicts of the given oracle.
func (c *CandidateResult) SetResult(o OracleID, v Verdicts) {
	switch o {
	case OracleEnamae:
		c.EnamaeResult = v
	case OracleNamaeuranai:
		c.NamaeuranaiResult = v
	}
}

// Score returns the per-oracle score.
func (c *CandidateResult) Score(o OracleID) float64 {
	switch o {
	case OracleEnamae:
		return c.EnamaeScore
	case OracleNamaeuranai:
		return c.NamaeuranaiScore
	default:
		return 0
	}
}
