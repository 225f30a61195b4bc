package model

import (
	"errors"
	"fmt"
	"strings"
)

// Gender is the gender flag sent to the oracles.
type Gender string

const (
	// GenderMale is the flag used by analysis runs.
	GenderMale Gender = "m"
	// GenderFemale is accepted by single-name lookups and candidate queries.
	GenderFemale Gender = "f"
)

// ErrInvalidGender is returned by ParseGender.
var ErrInvalidGender = errors.New("invalid gender: use m or f")

// ParseGender accepts m/f, male/female and 男性/女性.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "男性", "男":
		return GenderMale, nil
	case "f", "female", "女性", "女":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

// Japanese returns 男性 or 女性.
func (g Gender) Japanese() string {
	if g == GenderFemale {
		return "女性"
	}
	return "男性"
}

// Word returns "male" or "female", the form stored in the candidate database.
func (g Gender) Word() string {
	if g == GenderFemale {
		return "female"
	}
	return "male"
}
