package analysis

import "shopsearch-backend/internal/retrieval"

// chunkOverheadTokens reserves room for instructions and block formatting
// on top of each product's estimated content cost.
const chunkOverheadTokens = 200

// Chunker partitions products into batches bounded by a maximum item
// count and an estimated prompt token budget, preserving order.
type Chunker struct {
	estimator       *TokenEstimator
	maxPromptTokens int
}

// NewChunker constructs a Chunker with the given token budget.
func NewChunker(estimator *TokenEstimator, maxPromptTokens int) *Chunker {
	return &Chunker{estimator: estimator, maxPromptTokens: maxPromptTokens}
}

// Chunk greedily packs products in order. A chunk closes when it reaches
// maxItems or when the next product would push it over the token budget.
// A single product over budget still gets its own chunk; products are
// never dropped or split.
func (c *Chunker) Chunk(products []retrieval.Product, maxItems int) [][]retrieval.Product {
	if maxItems < 1 {
		maxItems = 1
	}

	var chunks [][]retrieval.Product
	var current []retrieval.Product
	currentTokens := 0

	for _, product := range products {
		productTokens := c.ProductTokens(product)

		fitsSize := len(current) < maxItems
		fitsTokens := currentTokens+productTokens <= c.maxPromptTokens

		if len(current) > 0 && (!fitsSize || !fitsTokens) {
			chunks = append(chunks, current)
			current = nil
			currentTokens = 0
		}

		current = append(current, product)
		currentTokens += productTokens
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// ProductTokens estimates the prompt cost of one product: title,
// description, categories and each review's content, plus fixed overhead.
func (c *Chunker) ProductTokens(p retrieval.Product) int {
	tokens := c.estimator.Estimate(p.Title + "\n" + p.Description + "\n" + p.Categories)
	for _, review := range p.Reviews {
		tokens += c.estimator.Estimate(review.Content)
	}
	return tokens + chunkOverheadTokens
}
