package analysis

import (
	"strings"
	"testing"

	"shopsearch-backend/internal/retrieval"
)

// heuristicChunker builds a chunker whose estimator always uses the
// deterministic len/4 heuristic.
func heuristicChunker(maxPromptTokens int) *Chunker {
	return NewChunker(NewTokenEstimator("no-such-encoding"), maxPromptTokens)
}

func TestChunkRespectsMaxItems(t *testing.T) {
	c := heuristicChunker(100000)
	products := testProducts("A1", "A2", "A3", "A4", "A5")

	chunks := c.Chunk(products, 2)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("unexpected chunk sizes: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestChunkPreservesOrderAndDropsNothing(t *testing.T) {
	c := heuristicChunker(100000)
	products := testProducts("A1", "A2", "A3", "A4", "A5")

	chunks := c.Chunk(products, 2)

	var flat []string
	for _, chunk := range chunks {
		for _, p := range chunk {
			flat = append(flat, p.ASIN)
		}
	}
	if len(flat) != len(products) {
		t.Fatalf("expected %d products, got %d", len(products), len(flat))
	}
	for i, asin := range flat {
		if asin != products[i].ASIN {
			t.Fatalf("position %d: expected %s, got %s", i, products[i].ASIN, asin)
		}
	}
}

func TestChunkRespectsTokenBudget(t *testing.T) {
	// Each product costs 200 overhead plus content; a 450-token budget
	// fits one product but not two.
	c := heuristicChunker(450)
	products := []retrieval.Product{
		{ASIN: "A1", Description: strings.Repeat("a", 400)},
		{ASIN: "A2", Description: strings.Repeat("b", 400)},
	}

	chunks := c.Chunk(products, 10)

	if len(chunks) != 2 {
		t.Fatalf("expected token budget to split into 2 chunks, got %d", len(chunks))
	}
}

func TestChunkOversizedProductGetsOwnChunk(t *testing.T) {
	c := heuristicChunker(100)
	products := []retrieval.Product{
		{ASIN: "A1", Description: strings.Repeat("a", 4000)},
		{ASIN: "A2", Description: strings.Repeat("b", 4000)},
	}

	chunks := c.Chunk(products, 10)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 singleton chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1 || chunks[0][0].ASIN != "A1" {
		t.Fatalf("oversized product should still be chunked alone: %+v", chunks[0])
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c := heuristicChunker(1000)
	if chunks := c.Chunk(nil, 3); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestProductTokensIncludesReviewsAndOverhead(t *testing.T) {
	c := heuristicChunker(1000)
	base := c.ProductTokens(retrieval.Product{ASIN: "A1", Title: "Bottle"})
	withReview := c.ProductTokens(retrieval.Product{
		ASIN:    "A1",
		Title:   "Bottle",
		Reviews: []retrieval.Review{{Content: strings.Repeat("x", 40)}},
	})

	if base <= chunkOverheadTokens {
		t.Fatalf("expected overhead plus content, got %d", base)
	}
	if withReview != base+10 {
		t.Fatalf("expected review to add 10 heuristic tokens, got %d vs %d", withReview, base)
	}
}
