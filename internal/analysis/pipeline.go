package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopsearch-backend/internal/llm"
	"shopsearch-backend/internal/retrieval"
	"shopsearch-backend/internal/shared/metrics"
	"shopsearch-backend/internal/shared/telemetry"
)

const (
	maxChunkAttempts = 2

	placeholderBestFor = "Information unavailable"
	placeholderWarning = "LLM was unable to produce structured output. This entry contains placeholder values."
)

// Config holds the immutable pipeline settings, captured at construction.
type Config struct {
	BatchingEnabled  bool
	BatchSize        int
	MaxPromptTokens  int
	MaxReviewChars   int
	TiktokenEncoding string
}

// Pipeline turns retrieved products into structured analyses via batched
// LLM calls with a batch -> per-product -> placeholder degradation ladder.
type Pipeline struct {
	llm       llm.Client
	cfg       Config
	chunker   *Chunker
	formatter *BlockFormatter
}

// NewPipeline constructs a Pipeline. Changing configuration requires
// constructing a new instance.
func NewPipeline(client llm.Client, cfg Config) *Pipeline {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	estimator := NewTokenEstimator(cfg.TiktokenEncoding)
	return &Pipeline{
		llm:       client,
		cfg:       cfg,
		chunker:   NewChunker(estimator, cfg.MaxPromptTokens),
		formatter: NewBlockFormatter(cfg.MaxReviewChars),
	}
}

// GenerateBatchAnalyses produces exactly one analysis per input product,
// in input order. Structured-output failures never propagate: they
// degrade to per-product retries and finally to placeholder analyses.
func (p *Pipeline) GenerateBatchAnalyses(ctx context.Context, query string, products []retrieval.Product) []ProductAnalysis {
	if len(products) == 0 {
		return []ProductAnalysis{}
	}

	runID := uuid.NewString()
	client := newRetryingLLM(p.llm, runID)

	productLookup := make(map[string]*retrieval.Product, len(products))
	for i := range products {
		if asin := products[i].ASIN; asin != "" {
			productLookup[asin] = &products[i]
		}
	}

	batchingEnabled := p.cfg.BatchingEnabled && p.cfg.BatchSize > 1

	if !batchingEnabled {
		telemetry.Info("analysis.batching_disabled", map[string]any{
			"run_id":        runID,
			"product_count": len(products),
		})
		perProduct := p.generatePerProduct(ctx, client, query, products)
		return Reconcile(products, keyByASIN(perProduct))
	}

	byASIN := make(map[string]ProductAnalysis, len(products))
	chunks := p.chunker.Chunk(products, p.cfg.BatchSize)
	telemetry.Info("analysis.chunks_submitted", map[string]any{
		"run_id":            runID,
		"product_count":     len(products),
		"chunk_count":       len(chunks),
		"batch_size":        p.cfg.BatchSize,
		"max_prompt_tokens": p.cfg.MaxPromptTokens,
	})

	for idx, chunk := range chunks {
		success := false
		for attempt := 0; attempt < maxChunkAttempts; attempt++ {
			results, err := p.invokeBatch(ctx, client, query, chunk, attempt)
			if err != nil {
				telemetry.Error("analysis.batch_parse_failure", map[string]any{
					"run_id":      runID,
					"chunk_index": idx,
					"chunk_size":  len(chunk),
					"attempt":     attempt + 1,
					"error":       err.Error(),
				})
				continue
			}
			for _, result := range results {
				if result.ASIN == "" {
					continue
				}
				byASIN[result.ASIN] = p.postProcess(productLookup[result.ASIN], result)
			}
			success = true
			break
		}

		if !success {
			metrics.IncBatchFallback()
			telemetry.Error("analysis.chunk_fallback", map[string]any{
				"run_id":      runID,
				"chunk_index": idx,
				"chunk_size":  len(chunk),
			})
			for _, result := range p.generatePerProduct(ctx, client, query, chunk) {
				if result.ASIN != "" {
					byASIN[result.ASIN] = result
				}
			}
		}
	}

	return Reconcile(products, byASIN)
}

// invokeBatch renders the prompt for one chunk, calls the model and
// parses the batch schema. Transport and parse failures both surface as
// errors so the chunk-level ladder treats them uniformly.
func (p *Pipeline) invokeBatch(ctx context.Context, client retryingLLM, query string, chunk []retrieval.Product, attempt int) ([]ProductAnalysis, error) {
	blocks := make([]string, 0, len(chunk))
	for _, product := range chunk {
		blocks = append(blocks, p.formatter.Format(product))
	}
	prompt := buildBatchPrompt(query, blocks, attempt)

	start := time.Now()
	metrics.IncLLMCall()
	raw, err := client.Complete(ctx, prompt)
	latency := time.Since(start)
	if err != nil {
		metrics.IncLLMCallFailed()
		return nil, err
	}
	telemetry.Info("analysis.llm_batch_call", map[string]any{
		"chunk_size": len(chunk),
		"attempt":    attempt + 1,
		"latency_ms": float64(latency.Microseconds()) / 1000.0,
	})

	batch, err := parseBatch(raw)
	if err != nil {
		return nil, err
	}
	return batch.Results, nil
}

// generatePerProduct repeats the batch protocol with singleton chunks,
// synthesizing a placeholder for any product that still fails.
func (p *Pipeline) generatePerProduct(ctx context.Context, client retryingLLM, query string, products []retrieval.Product) []ProductAnalysis {
	results := make([]ProductAnalysis, 0, len(products))
	for _, product := range products {
		generated := false
		for attempt := 0; attempt < maxChunkAttempts; attempt++ {
			batchResults, err := p.invokeBatch(ctx, client, query, []retrieval.Product{product}, attempt)
			if err != nil {
				telemetry.Error("analysis.per_product_parse_failure", map[string]any{
					"asin":    product.ASIN,
					"attempt": attempt + 1,
					"error":   err.Error(),
				})
				continue
			}
			if len(batchResults) > 0 {
				results = append(results, p.postProcess(&product, batchResults[0]))
				generated = true
				break
			}
		}

		if !generated {
			telemetry.Error("analysis.placeholder", map[string]any{"asin": product.ASIN})
			results = append(results, placeholderAnalysis(product))
		}
	}
	return results
}

// postProcess cleans model-produced key specs and substitutes the
// deterministic fallback extraction when none survive.
func (p *Pipeline) postProcess(product *retrieval.Product, a ProductAnalysis) ProductAnalysis {
	a.KeySpecs = cleanKeySpecs(a.KeySpecs)
	if len(a.KeySpecs) == 0 && product != nil {
		a.KeySpecs = deriveKeySpecs(product.Description)
	}
	if a.KeySpecs == nil {
		a.KeySpecs = []KeySpec{}
	}
	return a
}

// Reconcile merges analyses back onto the original product list: one
// entry per input in input order, placeholders for anything missing.
func Reconcile(products []retrieval.Product, byASIN map[string]ProductAnalysis) []ProductAnalysis {
	ordered := make([]ProductAnalysis, 0, len(products))
	for _, product := range products {
		if a, ok := byASIN[product.ASIN]; ok && product.ASIN != "" {
			ordered = append(ordered, a)
			continue
		}
		ordered = append(ordered, placeholderAnalysis(product))
	}
	return ordered
}

func keyByASIN(analyses []ProductAnalysis) map[string]ProductAnalysis {
	byASIN := make(map[string]ProductAnalysis, len(analyses))
	for _, a := range analyses {
		if a.ASIN != "" {
			byASIN[a.ASIN] = a
		}
	}
	return byASIN
}

// placeholderAnalysis synthesizes a clearly-flagged degraded result. Key
// specs still come from the fallback extractor.
func placeholderAnalysis(product retrieval.Product) ProductAnalysis {
	metrics.IncPlaceholderAnalysis()
	asin := product.ASIN
	if asin == "" {
		asin = "unknown"
	}
	return ProductAnalysis{
		ASIN:              asin,
		MainSellingPoints: []SellingPoint{},
		BestFor:           placeholderBestFor,
		ReviewHighlights: ReviewHighlights{
			OverallSentiment: SentimentUnknown,
			Positive:         []ReviewHighlight{},
			Negative:         []ReviewHighlight{},
		},
		KeySpecs: deriveKeySpecs(product.Description),
		Warnings: []string{placeholderWarning},
	}
}
