package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	NotFound = stderrors.New("not found")

	// ErrNoPartition is returned by writes issued without an authenticated user.
	ErrNoPartition = stderrors.New("no authenticated user partition")
)

// ValidationError reports a model response that does not satisfy an output contract.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Reason)
}

type ExtractionKind string

const (
	KindTransport       ExtractionKind = "transport"
	KindTimeout         ExtractionKind = "timeout"
	KindAuth            ExtractionKind = "auth"
	KindRateLimit       ExtractionKind = "rate_limit"
	KindInvalidRequest  ExtractionKind = "invalid_request"
	KindInvalidResponse ExtractionKind = "invalid_response"
)

// ExtractionError is the single failure mode of an extraction invocation.
type ExtractionError struct {
	Kind ExtractionKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// StoreError wraps any failure of the record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// LimitExceeded is returned when a bounded collection would grow past its ceiling.
// It is always raised before any side effect.
type LimitExceeded struct {
	What  string
	Limit int
}

func (e *LimitExceeded) Error() string {
	return fmt.Sprintf("%s limit of %d exceeded", e.What, e.Limit)
}

func NewExtractionError(kind ExtractionKind, err error) error {
	return &ExtractionError{Kind: kind, Err: err}
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// KindOf returns the extraction kind carried by err, or "" if err is not an ExtractionError.
func KindOf(err error) ExtractionKind {
	var e *ExtractionError
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, NotFound)
}
