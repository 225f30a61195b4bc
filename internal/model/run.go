package model

import "time"

// TopResultLimit is the number of results kept by an analysis run.
const TopResultLimit = 20

// AnalysisRequest is the input of an analysis run.
type AnalysisRequest struct {
	// Surname is fixed for every candidate.
	Surname string `json:"surname" validate:"required,max=10"`
	// CharCount is the number of characters of the given name.
	CharCount int `json:"char_count" validate:"min=1,max=3"`
	// Gender is sent to both oracles for every candidate. Empty means GenderMale.
	Gender Gender `json:"gender,omitempty" validate:"omitempty,oneof=m f"`
}

// AnalysisRun is the outcome of one analysis. Partial is set when the run
// stopped before every pattern was evaluated.
type AnalysisRun struct {
	ID                string            `json:"id"`
	Surname           string            `json:"surname"`
	CharCount         int               `json:"char_count"`
	GeneratedAt       time.Time         `json:"generated_at"`
	TotalPatterns     int               `json:"total_patterns"`
	CompletedPatterns int               `json:"completed_patterns"`
	Partial           bool              `json:"partial,omitempty"`
	TopResults        []CandidateResult `json:"results"`
}

// ProgressEvent reports that one more candidate has been evaluated.
type ProgressEvent struct {
	Percent float64       `json:"percent"`
	Pattern StrokePattern `json:"pattern"`
}
