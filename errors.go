package pubsite

import (
	"errors"
	"fmt"
)

// MissingFieldError reports that a required ContentDocument field is absent.
type MissingFieldError struct {
	Field  string
	Source string
}

func (e *MissingFieldError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("pubsite: missing required field %q", e.Field)
	}
	return fmt.Sprintf("pubsite: %s: missing required field %q", e.Source, e.Field)
}

// IsMissingField reports whether err is (or wraps) a MissingFieldError.
func IsMissingField(err error) bool {
	var mf *MissingFieldError
	return errors.As(err, &mf)
}

// PageError ties a failure to the content file that caused it.
type PageError struct {
	Source string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.Source, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
