package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
)

// JSON schema requested from the model for a batch:
// {
//   "results": [
//     {
//       "asin": "string",
//       "main_selling_points": [
//         {"title": "string (optional)", "description": "string"}
//       ],
//       "best_for": "string",
//       "review_highlights": {
//         "overall_sentiment": "positive | negative | mixed | unknown",
//         "positive": [{"summary": "string", "explanation": "string", "quote": "string or null"}],
//         "negative": [{"summary": "string", "explanation": "string", "quote": "string or null"}]
//       },
//       "key_specs": [
//         {"feature": "string (<= 6 words)", "detail": "string (<= 200 chars)"}
//       ],
//       "warnings": ["string"],
//       "confidence": "number (optional)"
//     }
//   ]
// }

// Sentiment values allowed in ReviewHighlights.OverallSentiment.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
	SentimentUnknown  = "unknown"
)

// KeySpec is one feature/detail pair summarizing a tangible attribute.
type KeySpec struct {
	Feature string `json:"feature"`
	Detail  string `json:"detail"`
}

// SellingPoint is one ranked selling point for a product.
type SellingPoint struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// ReviewHighlight is one summarized review theme with supporting evidence.
type ReviewHighlight struct {
	Summary     string  `json:"summary"`
	Explanation string  `json:"explanation"`
	Quote       *string `json:"quote"`
}

// ReviewHighlights groups sentiment-derived highlights for a product.
type ReviewHighlights struct {
	OverallSentiment string            `json:"overall_sentiment"`
	Positive         []ReviewHighlight `json:"positive"`
	Negative         []ReviewHighlight `json:"negative"`
}

// ProductAnalysis is the structured analysis for a single product.
// A non-empty Warnings entry signals a degraded or placeholder result.
type ProductAnalysis struct {
	ASIN              string           `json:"asin"`
	MainSellingPoints []SellingPoint   `json:"main_selling_points"`
	BestFor           string           `json:"best_for"`
	ReviewHighlights  ReviewHighlights `json:"review_highlights"`
	KeySpecs          []KeySpec        `json:"key_specs"`
	Warnings          []string         `json:"warnings,omitempty"`
	Confidence        *float64         `json:"confidence,omitempty"`
}

// BatchProductAnalysis is the wire envelope for a batch response.
type BatchProductAnalysis struct {
	Results []ProductAnalysis `json:"results"`
}

var errMissingResults = errors.New(`response missing "results" array`)

// parseBatch decodes and validates raw model output against the batch
// schema. Sentiment values outside the enum are coerced to unknown rather
// than rejected; a missing results array is a schema violation.
func parseBatch(raw string) (BatchProductAnalysis, error) {
	var parsed struct {
		Results *[]ProductAnalysis `json:"results"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return BatchProductAnalysis{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if parsed.Results == nil {
		return BatchProductAnalysis{}, errMissingResults
	}

	batch := BatchProductAnalysis{Results: *parsed.Results}
	for i := range batch.Results {
		normalizeAnalysis(&batch.Results[i])
	}
	return batch, nil
}

func normalizeAnalysis(a *ProductAnalysis) {
	switch a.ReviewHighlights.OverallSentiment {
	case SentimentPositive, SentimentNegative, SentimentMixed, SentimentUnknown:
	default:
		a.ReviewHighlights.OverallSentiment = SentimentUnknown
	}
	if a.MainSellingPoints == nil {
		a.MainSellingPoints = []SellingPoint{}
	}
	if a.ReviewHighlights.Positive == nil {
		a.ReviewHighlights.Positive = []ReviewHighlight{}
	}
	if a.ReviewHighlights.Negative == nil {
		a.ReviewHighlights.Negative = []ReviewHighlight{}
	}
	if a.KeySpecs == nil {
		a.KeySpecs = []KeySpec{}
	}
}
