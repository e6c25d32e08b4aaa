package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled is returned by NewProvider when no provider is configured.
// Task and roadmap generation then use their offline templates.
var ErrDisabled = errors.New("LLM provider disabled")

// ErrRateLimit means the provider answered 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the model answered, but not with a document
// that matches the requested schema.
type ErrInvalidResponse struct {
	Schema  string
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("invalid LLM response: %v", e.Err)
	}
	return fmt.Sprintf("invalid %s response: %v", e.Schema, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable wraps transport and API failures.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means a structured response was cut off. Raising
// the request's MaxTokens is the only cure, so it is never retried.
type ErrMaxTokensExceeded struct {
	Schema  string
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Schema == "" {
		return "LLM response truncated: max tokens exceeded"
	}
	return fmt.Sprintf("%s response truncated: max tokens exceeded", e.Schema)
}

// retryClass says how RetryProvider treats a failed generation.
type retryClass int

const (
	retryNever retryClass = iota
	// retryOnce gives the model one more chance to match the schema.
	retryOnce
	retryBackoff
)

func classify(err error) retryClass {
	var (
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrDisabled),
		errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	default:
		return retryBackoff
	}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return classify(err) != retryNever
}
