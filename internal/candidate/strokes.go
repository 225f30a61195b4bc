package candidate

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCharStrokes is the largest stroke count accepted for one character.
const MaxCharStrokes = 30

// ParseStrokes parses a comma separated list such as "5,12" into one stroke
// count per character. One to three entries are accepted.
func ParseStrokes(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '-' })
	if len(fields) < 1 || len(fields) > 3 {
		return nil, fmt.Errorf("%w: need 1 to 3 values, got %q", ErrInvalidStrokes, s)
	}
	strokes := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidStrokes, f)
		}
		if n < 1 || n > MaxCharStrokes {
			return nil, fmt.Errorf("%w: %d is outside 1-%d", ErrInvalidStrokes, n, MaxCharStrokes)
		}
		strokes[i] = n
	}
	return strokes, nil
}

// FormatStrokes is the inverse of ParseStrokes.
func FormatStrokes(strokes []int) string {
	parts := make([]string, len(strokes))
	for i, s := range strokes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}
