// Package apperr defines the error taxonomy shared by the core services.
// Handlers map these onto HTTP statuses; anything unrecognized is a 500.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError marks a referenced entity (event, composer, work, report)
// that does not exist. Entity names the missing thing for the caller.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// NotFound builds a NotFoundError for the named entity.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// BadInputError marks a request the caller can fix: missing identification
// fields, missing title for a new catalog work, malformed scope.
type BadInputError struct {
	Reason string
}

func (e *BadInputError) Error() string {
	return e.Reason
}

// BadInput builds a BadInputError with a human-readable reason.
func BadInput(reason string) error {
	return &BadInputError{Reason: reason}
}

// IsBadInput reports whether err is a BadInputError.
func IsBadInput(err error) bool {
	var bi *BadInputError
	return errors.As(err, &bi)
}

// ExternalLookupError wraps a failure talking to an external authority.
// It is never folded into "not found": the caller must see the cause.
type ExternalLookupError struct {
	Source string
	Err    error
}

func (e *ExternalLookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
}

func (e *ExternalLookupError) Unwrap() error {
	return e.Err
}

// ExternalLookup wraps err as an ExternalLookupError for the given source.
func ExternalLookup(source string, err error) error {
	return &ExternalLookupError{Source: source, Err: err}
}

// IsExternalLookup reports whether err is an ExternalLookupError.
func IsExternalLookup(err error) bool {
	var el *ExternalLookupError
	return errors.As(err, &el)
}
