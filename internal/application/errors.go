package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when an email/password pair does not match the demo account.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSubmissionCancelled is returned when a simulated submission is abandoned before completing.
	ErrSubmissionCancelled = errors.New("application: submission cancelled")
	// ErrAlreadySubmitted is returned when a form that already succeeded is submitted again.
	ErrAlreadySubmitted = errors.New("application: already submitted")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message recorded for
// a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func validationErrorFrom(fields map[string]string) *ValidationError {
	v := &ValidationError{}
	for field, msg := range fields {
		v.add(field, msg)
	}
	return v
}
