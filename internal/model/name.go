package model

import "time"

// NameCandidate is a real given name with its per-character stroke counts.
// Strokes beyond the length of the name are zero.
type NameCandidate struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Yomi         string    `json:"yomi"`
	Chars        int       `json:"chars"`
	Strokes      [3]int    `json:"strokes"`
	TotalStrokes int       `json:"total_strokes"`
	Gender       string    `json:"gender"`
	SourceURL    string    `json:"source_url"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// Pattern returns the stroke pattern of the name.
func (n NameCandidate) Pattern() StrokePattern {
	c := min(max(n.Chars, 0), len(n.Strokes))
	p := make(StrokePattern, c)
	copy(p, n.Strokes[:c])
	return p
}
