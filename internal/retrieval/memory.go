package retrieval

import (
	"context"
	"sort"
	"strings"
)

// MemoryRetriever is an in-memory Retriever for tests and for running the
// API without a database. Ranking is naive term overlap on title,
// description and categories.
type MemoryRetriever struct {
	Products []Product
}

// NewMemoryRetriever constructs a MemoryRetriever over the given catalog.
func NewMemoryRetriever(products []Product) *MemoryRetriever {
	return &MemoryRetriever{Products: products}
}

// Search returns the top products ranked by term overlap with the query.
func (m *MemoryRetriever) Search(ctx context.Context, query string, productCount, reviewsPerProduct int) ([]Product, error) {
	_ = ctx
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if productCount < 1 {
		productCount = 1
	}
	if reviewsPerProduct < 1 {
		reviewsPerProduct = 1
	}

	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		product Product
		score   float64
		idx     int
	}
	candidates := make([]scored, 0, len(m.Products))
	for i, p := range m.Products {
		haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Categories)
		var hits float64
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				hits++
			}
		}
		candidates = append(candidates, scored{product: p, score: hits, idx: i})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].idx < candidates[j].idx
	})

	if len(candidates) > productCount {
		candidates = candidates[:productCount]
	}

	out := make([]Product, 0, len(candidates))
	for _, c := range candidates {
		p := c.product
		if len(p.Reviews) > reviewsPerProduct {
			p.Reviews = p.Reviews[:reviewsPerProduct]
		}
		score := c.score
		p.CombinedScore = &score
		out = append(out, p)
	}
	return out, nil
}

var _ Retriever = (*MemoryRetriever)(nil)
