package analysis

import (
	"log"

	"github.com/pkoukk/tiktoken-go"
)

const defaultTiktokenEncoding = "cl100k_base"

// TokenEstimator approximates the token cost of prompt text. When the
// configured tiktoken encoding cannot be loaded it degrades to a ~4
// characters per token heuristic instead of failing.
type TokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTokenEstimator loads the named tiktoken encoding, falling back to the
// heuristic estimator when it is unavailable.
func NewTokenEstimator(encoding string) *TokenEstimator {
	if encoding == "" {
		encoding = defaultTiktokenEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		log.Printf("tiktoken encoding %q unavailable, using heuristic estimator: %v", encoding, err)
		return &TokenEstimator{}
	}
	return &TokenEstimator{enc: enc}
}

// Estimate returns a non-negative token count for the text. It never
// fails: tokenizer errors fall through to the heuristic.
func (e *TokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	if e != nil && e.enc != nil {
		if n := e.encode(text); n > 0 {
			return n
		}
	}
	return heuristicTokens(text)
}

func (e *TokenEstimator) encode(text string) (n int) {
	// Tokenizer faults must not take down a request.
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return len(e.enc.Encode(text, nil, nil))
}

func heuristicTokens(text string) int {
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
