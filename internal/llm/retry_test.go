package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRetry(p Provider) (*RetryProvider, *[]time.Duration) {
	r := WithRetry(p, RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     150 * time.Millisecond,
		Multiplier:  2,
	})
	var waits []time.Duration
	r.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry_SucceedsFirstTime(t *testing.T) {
	mock := NewMockProvider(MockReply(`"ok"`))
	r, waits := newTestRetry(mock)

	resp, err := r.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if resp.Text() != `"ok"` {
		t.Errorf("Text() = %s", resp.Text())
	}
	if mock.CallCount() != 1 || len(*waits) != 0 {
		t.Errorf("calls = %d, waits = %v", mock.CallCount(), *waits)
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), MockReply(`"ok"`))
	r, waits := newTestRetry(mock)

	if _, err := r.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
	if len(*waits) != 2 {
		t.Fatalf("waits = %v, want 2", *waits)
	}
	// Second wait is capped at MaxWait before jitter.
	if w := (*waits)[1]; w < 120*time.Millisecond || w > 180*time.Millisecond {
		t.Errorf("second wait = %v, want 150ms ±20%%", w)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), unavailable(), MockReply(`"late"`))
	r, _ := newTestRetry(mock)

	_, err := r.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}}
	mock := NewMockProvider(invalid, invalid, MockReply(`"ok"`))
	r, _ := newTestRetry(mock)

	_, err := r.Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetry_NotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"truncated", &ErrMaxTokensExceeded{}},
		{"cancelled", context.Canceled},
		{"not configured", ErrNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, MockReply(`"ok"`))
			r, _ := newTestRetry(mock)

			if _, err := r.Generate(context.Background(), Request{}); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if mock.CallCount() != 1 {
				t.Errorf("calls = %d, want 1", mock.CallCount())
			}
		})
	}
}

func TestRetry_RespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 3 * time.Second, Err: errors.New("slow down")}},
		MockReply(`"ok"`),
	)
	r, waits := newTestRetry(mock)

	if _, err := r.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 3*time.Second {
		t.Errorf("waits = %v, want [3s]", *waits)
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	mock := NewMockProvider(unavailable(), MockReply(`"ok"`))
	r := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
