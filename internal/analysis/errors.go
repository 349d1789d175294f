package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or insufficient input: a bad portfolio
// shape, an empty price series, zero-sum weights. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DataUnavailableError reports that required market data could not be
// obtained after retries and fallbacks. Fatal for the current analysis.
type DataUnavailableError struct {
	Symbols []string
	Reason  string
}

func (e *DataUnavailableError) Error() string {
	if len(e.Symbols) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Symbols, ", "))
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDataUnavailable reports whether err is (or wraps) a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var de *DataUnavailableError
	return errors.As(err, &de)
}
