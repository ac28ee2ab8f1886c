package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrProviderFatal indicates a non-transient provider failure such as bad
// credentials or a malformed request. It is never retried.
type ErrProviderFatal struct {
	StatusCode int
	Err        error
}

func (e *ErrProviderFatal) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("LLM provider rejected request (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("LLM provider rejected request: %v", e.Err)
}

func (e *ErrProviderFatal) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit. Content holds the text produced before the cut,
// if the provider returned any. Retrying the same request cuts it again.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// IsFatal reports whether err is a non-retryable provider failure.
func IsFatal(err error) bool {
	var fatal *ErrProviderFatal
	return errors.As(err, &fatal)
}

// Truncated returns the partial text of a response cut at the token
// limit. ok is false when err is not a truncation or nothing was produced.
func Truncated(err error) (text string, ok bool) {
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		return "", false
	}
	text = strings.TrimSpace(string(maxTok.Content))
	return text, text != ""
}

// IsTransient reports whether err belongs to the retryable family
// (rate limits, outages, connection faults).
func IsTransient(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// IsOutage reports whether err is a provider outage that survived
// retries: rate limits, unavailability, unusable or empty truncated
// responses, and deadlines.
func IsOutage(err error) bool {
	var (
		rl     *ErrRateLimit
		un     *ErrProviderUnavailable
		inv    *ErrInvalidResponse
		maxTok *ErrMaxTokensExceeded
	)
	return errors.As(err, &rl) || errors.As(err, &un) || errors.As(err, &inv) ||
		errors.As(err, &maxTok) || errors.Is(err, context.DeadlineExceeded)
}
