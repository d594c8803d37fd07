package analysis

import (
	"strings"
	"testing"
)

func TestEstimateEmptyText(t *testing.T) {
	e := NewTokenEstimator("cl100k_base")
	if got := e.Estimate(""); got != 0 {
		t.Fatalf("expected 0 tokens for empty text, got %d", got)
	}
}

func TestEstimateNonEmptyTextIsPositive(t *testing.T) {
	e := NewTokenEstimator("cl100k_base")
	if got := e.Estimate("a"); got < 1 {
		t.Fatalf("expected at least 1 token, got %d", got)
	}
	if got := e.Estimate("stainless steel water bottle with vacuum insulation"); got < 5 {
		t.Fatalf("expected a multi-token estimate, got %d", got)
	}
}

func TestEstimateUnknownEncodingFallsBack(t *testing.T) {
	e := NewTokenEstimator("no-such-encoding")
	text := strings.Repeat("abcd", 10)
	if got := e.Estimate(text); got != 10 {
		t.Fatalf("expected heuristic len/4 = 10, got %d", got)
	}
}

func TestHeuristicTokensMinimumOne(t *testing.T) {
	if got := heuristicTokens("ab"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := heuristicTokens("abcdefgh"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
