package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	apperrors "anubis/internal/errors"
)

var (
	// ErrNoFields is the cause of a parse error on a record with no fields
	ErrNoFields = errors.New("record has no fields")
	// ErrNotFinite is the cause of a parse error on NaN or infinite values
	ErrNotFinite = errors.New("value is not finite")
)

// ParseValue coerces the first field to a float64.
// It fails with a PARSING AppError when there are no fields, when the first
// field is not a numeric literal, or when it parses to NaN or ±Inf.
func ParseValue(fields []string) (float64, error) {
	if len(fields) == 0 {
		return 0, apperrors.NewParsingError("missing value field", ErrNoFields)
	}

	field := fields[0]
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, apperrors.NewParsingError(fmt.Sprintf("value %q is not numeric", field), err).
			WithContext("field", field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewParsingError(fmt.Sprintf("value %q is not usable", field), ErrNotFinite).
			WithContext("field", field)
	}

	return v, nil
}
