package pattern

import (
	"errors"
	"fmt"

	"github.com/nao1215/kakusu/internal/model"
)

// Bounds of the number of characters of a given name.
const (
	MinCharCount = 1
	MaxCharCount = 3
)

// ErrInvalidCharCount is returned for character counts outside 1..3.
var ErrInvalidCharCount = errors.New("invalid character count: must be 1, 2 or 3")

// Count returns the number of patterns for charCount without generating them.
func Count(charCount int) (int, error) {
	if charCount < MinCharCount || charCount > MaxCharCount {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidCharCount, charCount)
	}
	n := 1
	for range charCount {
		n *= model.MaxStrokes - model.MinStrokes + 1
	}
	return n, nil
}

// Generate returns the Cartesian product of the stroke range over
// charCount positions in lexicographic order, the last position varying
// fastest: [1 1], [1 2], ... [1 20], [2 1], ...
func Generate(charCount int) ([]model.StrokePattern, error) {
	total, err := Count(charCount)
	if err != nil {
		return nil, err
	}

	// One backing array for all patterns; each pattern is a capped sub-slice
	// so appending to it cannot clobber its neighbour.
	backing := make([]int, total*charCount)
	patterns := make([]model.StrokePattern, total)
	current := make([]int, charCount)
	for i := range current {
		current[i] = model.MinStrokes
	}

	for i := range total {
		start := i * charCount
		copy(backing[start:], current)
		patterns[i] = model.StrokePattern(backing[start : start+charCount : start+charCount])
		advance(current)
	}
	return patterns, nil
}

// advance increments current like an odometer over the stroke range.
func advance(current []int) {
	for pos := len(current) - 1; pos >= 0; pos-- {
		if current[pos] < model.MaxStrokes {
			current[pos]++
			return
		}
		current[pos] = model.MinStrokes
	}
}
