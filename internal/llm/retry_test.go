package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(Text("hello"))
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "hello" {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TwoRateLimitsThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		Fail(&ErrRateLimit{Err: errors.New("slow down")}),
		Fail(&ErrRateLimit{Err: errors.New("slow down")}),
		Text("final reply"),
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "final reply" {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockProvider()
	for range 6 {
		mock.AddResponse(Fail(&ErrProviderUnavailable{Err: errors.New("down")}))
	}
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if mock.CallCount() != 5 {
		t.Fatalf("expected 5 calls, got %d", mock.CallCount())
	}
}

func TestRetry_FatalNotRetried(t *testing.T) {
	mock := NewMockProvider(
		Fail(&ErrProviderFatal{StatusCode: 401, Err: errors.New("bad key")}),
		Text("unreachable"),
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var fatal *ErrProviderFatal
	if !errors.As(err, &fatal) {
		t.Fatalf("expected ErrProviderFatal, got: %T", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
	}
}

func TestRetry_MaxTokensNotRetried(t *testing.T) {
	mock := NewMockProvider(Fail(&ErrMaxTokensExceeded{}))
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		Fail(&ErrInvalidResponse{Err: errors.New("bad")}),
		Fail(&ErrInvalidResponse{Err: errors.New("bad")}),
		Text("ok"),
	)
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		Fail(&ErrProviderUnavailable{Err: errors.New("down")}),
		Text("ok"),
	)
	p := WithRetry(mock, retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_AttemptTimeoutIsTransient(t *testing.T) {
	cfg := retryConfig()
	cfg.MaxAttempts = 2
	cfg.AttemptTimeout = 5 * time.Millisecond

	calls := 0
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after timed-out attempt, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestBackoff_CappedWithJitter(t *testing.T) {
	cfg := DefaultRetryConfig()
	for attempt := range 10 {
		wait := backoff(cfg, attempt, errors.New("x"))
		if wait > time.Duration(float64(cfg.MaxWait)*1.2) {
			t.Fatalf("attempt %d: wait %s exceeds cap", attempt, wait)
		}
		if wait < 0 {
			t.Fatalf("attempt %d: negative wait", attempt)
		}
	}

	first := backoff(cfg, 0, errors.New("x"))
	if first < 800*time.Millisecond || first > 1200*time.Millisecond {
		t.Fatalf("first wait %s outside 1s ±20%%", first)
	}
}

func TestBackoff_RespectsRetryAfter(t *testing.T) {
	cfg := DefaultRetryConfig()
	wait := backoff(cfg, 0, &ErrRateLimit{RetryAfter: 3 * time.Second})
	if wait != 3*time.Second {
		t.Fatalf("expected 3s, got %s", wait)
	}
	wait = backoff(cfg, 0, &ErrRateLimit{RetryAfter: 10 * time.Minute})
	if wait != cfg.MaxWait {
		t.Fatalf("expected cap %s, got %s", cfg.MaxWait, wait)
	}
}
