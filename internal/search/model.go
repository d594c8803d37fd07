package search

import (
	"shopsearch-backend/internal/analysis"
	"shopsearch-backend/internal/retrieval"
)

// ProductSearchResult pairs a retrieved product with its generated analysis.
type ProductSearchResult struct {
	retrieval.Product
	Analysis *analysis.ProductAnalysis `json:"analysis,omitempty"`
}

// SearchResponse is the payload returned by the search endpoint.
type SearchResponse struct {
	Query   string                `json:"query"`
	Count   int                   `json:"count"`
	Results []ProductSearchResult `json:"results"`
}

// SentimentResponse is the payload returned by the sentiment endpoint.
type SentimentResponse struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}
