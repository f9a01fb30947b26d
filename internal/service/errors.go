package service

import (
	"errors"
	"fmt"

	"github.com/page-comments-api/internal/validation"
)

var (
	// ErrSpamRejected is returned when the spam gate refuses a submission
	ErrSpamRejected = errors.New("comment rejected as spam")

	// ErrInvalidDocument is returned when an import document is not a JSON array of page groups
	ErrInvalidDocument = errors.New("invalid import document")

	// ErrUnknownStatus is returned for control status keys outside the known set
	ErrUnknownStatus = errors.New("unknown control status")
)

// SubmitError is a rejected submission with a machine-readable reason
type SubmitError struct {
	Reason validation.Reason
	Detail string
}

func (e *SubmitError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
	}
	return string(e.Reason)
}

func newSubmitError(reason validation.Reason) *SubmitError {
	return &SubmitError{Reason: reason, Detail: reason.Message()}
}

// AsSubmitError extracts a SubmitError from err
func AsSubmitError(err error) (*SubmitError, bool) {
	var se *SubmitError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
