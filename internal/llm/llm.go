package llm

import (
	"context"
	"errors"
)

// Client abstracts text-generation and embedding providers.
type Client interface {
	// Complete sends a prompt and returns the raw model output text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Embed returns an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ErrTimeout marks a request that ran out of time. Callers may retry.
var ErrTimeout = errors.New("llm request timeout")

// ErrService marks a provider-side failure distinct from a timeout.
var ErrService = errors.New("llm service failure")

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// Embed returns ErrNotConfigured.
func (PlaceholderClient) Embed(ctx context.Context, text string) ([]float64, error) {
	_ = ctx
	_ = text
	return nil, ErrNotConfigured
}
