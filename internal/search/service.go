package search

import (
	"context"
	"fmt"
	"time"

	"shopsearch-backend/internal/analysis"
	"shopsearch-backend/internal/llm"
	"shopsearch-backend/internal/retrieval"
	"shopsearch-backend/internal/shared/metrics"
	"shopsearch-backend/internal/shared/telemetry"
)

// Service runs the retrieval and analysis stages for a search request.
type Service struct {
	Retriever         retrieval.Retriever
	Pipeline          *analysis.Pipeline
	LLM               llm.Client
	ReviewsPerProduct int
	DefaultProductsK  int
}

// Search retrieves matching products and generates one analysis per product.
// The results slice preserves retrieval order.
func (s *Service) Search(ctx context.Context, query string, productsK int) (SearchResponse, error) {
	metrics.IncSearchRequest()
	start := time.Now()

	if productsK <= 0 {
		productsK = s.DefaultProductsK
	}
	reviewsPerProduct := s.ReviewsPerProduct
	if reviewsPerProduct <= 0 {
		reviewsPerProduct = 3
	}

	products, err := s.Retriever.Search(ctx, query, productsK, reviewsPerProduct)
	if err != nil {
		metrics.IncSearchFailed()
		return SearchResponse{}, fmt.Errorf("retrieve products: %w", err)
	}

	analyses := s.Pipeline.GenerateBatchAnalyses(ctx, query, products)

	results := make([]ProductSearchResult, 0, len(products))
	for i, product := range products {
		result := ProductSearchResult{Product: product}
		if i < len(analyses) {
			a := analyses[i]
			result.Analysis = &a
		}
		results = append(results, result)
	}

	elapsed := time.Since(start)
	metrics.ObserveSearchDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("search.complete", map[string]interface{}{
		"query":       query,
		"products_k":  productsK,
		"count":       len(results),
		"duration_ms": elapsed.Milliseconds(),
	})

	return SearchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	}, nil
}
