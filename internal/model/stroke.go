package model

import (
	"fmt"
	"slices"
	"strings"
)

// Stroke count bounds of a single character position.
const (
	MinStrokes = 1
	MaxStrokes = 20
)

// DefaultCharacter is used for stroke counts outside the representative table.
const DefaultCharacter = "一"

// representativeCharacters maps a stroke count to one kanji with exactly that
// many strokes. The oracles only look at stroke counts, so any character
// with the right count yields the same verdicts.
var representativeCharacters = [MaxStrokes + 1]string{
	"", "一", "二", "三", "中", "兄", "両", "乱", "並", "乗", "俺",
	"停", "博", "働", "僕", "劇", "疑", "優", "儲", "爆", "競",
}

// CharacterFor returns the representative character for a stroke count.
func CharacterFor(strokes int) string {
	if strokes < MinStrokes || strokes > MaxStrokes {
		return DefaultCharacter
	}
	return representativeCharacters[strokes]
}

// StrokePattern is an ordered tuple of stroke counts, one per character of
// a given name. Patterns are not modified after generation; use Clone when
// a copy must be kept.
type StrokePattern []int

// Characters returns the given name formed by the representative character
// of each position.
func (p StrokePattern) Characters() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(CharacterFor(s))
	}
	return b.String()
}

// Total returns the sum of all stroke counts.
func (p StrokePattern) Total() int {
	total := 0
	for _, s := range p {
		total += s
	}
	return total
}

// Clone returns an independent copy of p.
func (p StrokePattern) Clone() StrokePattern {
	return slices.Clone(p)
}

// String renders the pattern like "[5 12]".
func (p StrokePattern) String() string {
	return fmt.Sprint([]int(p))
}
