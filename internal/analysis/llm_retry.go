package analysis

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"shopsearch-backend/internal/llm"
)

const (
	llmRetryBaseDelay   = 500 * time.Millisecond
	llmRetryMaxAttempts = 3
)

// retryingLLM wraps an llm.Client with bounded retries and exponential
// backoff for transport-level failures. Content failures (invalid JSON)
// are not its concern; those are handled by the chunk-level ladder.
type retryingLLM struct {
	base  llm.Client
	runID string
}

func newRetryingLLM(base llm.Client, runID string) retryingLLM {
	return retryingLLM{base: base, runID: runID}
}

func (r retryingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	delay := llmRetryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= llmRetryMaxAttempts; attempt++ {
		resp, err := r.base.Complete(ctx, prompt)
		if err == nil || !shouldRetryLLM(err) {
			return resp, err
		}
		lastErr = err
		if attempt == llmRetryMaxAttempts {
			break
		}
		log.Printf("llm retry attempt=%d run_id=%s error=%v", attempt, r.runID, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
	return "", lastErr
}

func (r retryingLLM) Embed(ctx context.Context, text string) ([]float64, error) {
	return r.base.Embed(ctx, text)
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, llm.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
