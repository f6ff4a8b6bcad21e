package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderErrorKind classifies why a provider could not answer.
type ProviderErrorKind string

const (
	KindTimeout         ProviderErrorKind = "timeout"
	KindRateLimited     ProviderErrorKind = "rate_limited"
	KindInvalidResponse ProviderErrorKind = "invalid_response"
	KindUnavailable     ProviderErrorKind = "unavailable"
)

var (
	// ErrAllProvidersExhausted is matched by every *ExhaustedError.
	ErrAllProvidersExhausted = errors.New("all recommendation providers exhausted")
	// ErrInvalidInput is matched by every *InputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownMood is wrapped by the InputError returned for slugs missing
	// from the mood catalog.
	ErrUnknownMood = errors.New("unknown mood")
)

// ProviderError is a recoverable failure of a single provider adapter.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Err      error
}

// NewProviderError wraps err with a provider name and kind.
func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ProviderErrorKindOf extracts the kind from err, defaulting to Unavailable.
func ProviderErrorKindOf(err error) ProviderErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnavailable
}

// ExhaustedError is returned when every configured provider failed.
type ExhaustedError struct {
	LastKind ProviderErrorKind
	Errs     []error
}

func (e *ExhaustedError) Error() string {
	if len(e.Errs) == 0 {
		return ErrAllProvidersExhausted.Error()
	}
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s (last: %s): %s", ErrAllProvidersExhausted, e.LastKind, strings.Join(msgs, "; "))
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllProvidersExhausted
}

func (e *ExhaustedError) Unwrap() []error {
	return e.Errs
}

// InputError rejects a request before any resolution work happens.
type InputError struct {
	Field  string
	Reason string
	Err    error
}

// NewInputError builds an InputError for field.
func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewUnknownMoodError rejects a slug missing from the mood catalog. It
// matches both ErrInvalidInput and ErrUnknownMood.
func NewUnknownMoodError(slug string) *InputError {
	return &InputError{
		Field:  "slug",
		Reason: fmt.Sprintf("%s %q", ErrUnknownMood, slug),
		Err:    ErrUnknownMood,
	}
}

// CacheStoreError wraps a failing store operation. It is logged, never
// surfaced to callers of the cache-aside loader.
type CacheStoreError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheStoreError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheStoreError) Unwrap() error {
	return e.Err
}
