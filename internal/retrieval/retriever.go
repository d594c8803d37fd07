package retrieval

import (
	"context"
	"errors"
)

// ErrEmptyQuery is returned when the search query is empty or whitespace.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Retriever returns ranked products with nested review samples for a query.
type Retriever interface {
	Search(ctx context.Context, query string, productCount, reviewsPerProduct int) ([]Product, error)
}

// Embedder converts query text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ScoreWeights blends product similarity, review similarity and average
// rating into the combined relevance score.
type ScoreWeights struct {
	Similarity float64
	Reviews    float64
	Rating     float64
}

// DefaultScoreWeights returns the standard 0.7/0.2/0.1 blend.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Similarity: 0.7, Reviews: 0.2, Rating: 0.1}
}
