package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/pattern"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeName trims surrounding whitespace and applies NFKC, so full-width
// and half-width input map to the same query.
func NormalizeName(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// ValidateRequest normalizes req and checks it. Every error wraps
// ErrInvalidArgument together with a more specific cause.
func ValidateRequest(req model.AnalysisRequest) (model.AnalysisRequest, error) {
	req.Surname = NormalizeName(req.Surname)
	if req.Gender == "" {
		req.Gender = model.GenderMale
	}

	err := validate.Struct(req)
	if err == nil {
		return req, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return req, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Surname":
		if fe.Tag() == "required" {
			return req, fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptySurname)
		}
		return req, fmt.Errorf("%w: %w", ErrInvalidArgument, ErrSurnameTooLong)
	case "CharCount":
		return req, fmt.Errorf("%w: %w: got %d", ErrInvalidArgument, pattern.ErrInvalidCharCount, req.CharCount)
	case "Gender":
		return req, fmt.Errorf("%w: %w", ErrInvalidArgument, model.ErrInvalidGender)
	default:
		return req, fmt.Errorf("%w: %s", ErrInvalidArgument, fe.Error())
	}
}
