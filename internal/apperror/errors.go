// Package apperror holds the error taxonomy shared by the summary and reprocess flows.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream request failed")
	ErrEmptyCompletion = errors.New("completion returned no content")
	ErrPersistence     = errors.New("persistence failed")
	ErrConfiguration   = errors.New("missing configuration")
)

const (
	ResourceCall       = "call"
	ResourceTranscript = "transcript"
)

type NotFoundError struct {
	Resource string
}

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UpstreamError carries the status code returned by the completion service.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Err.Error())
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func Configuration(setting string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, setting)
}
