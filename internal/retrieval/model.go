package retrieval

import "time"

// Review is one sampled customer review attached to a retrieved product.
// Reviews are read-only inputs to the analysis pipeline.
type Review struct {
	Content          string     `json:"content"`
	Rating           *float64   `json:"rating"`
	VerifiedPurchase *bool      `json:"verified_purchase"`
	UserID           string     `json:"user_id,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	Similarity       *float64   `json:"similarity"`
	HasRating        *int       `json:"has_rating,omitempty"`
}

// Product is a ranked retrieval result with its sampled reviews.
type Product struct {
	ASIN            string   `json:"asin"`
	Title           string   `json:"product_title"`
	Description     string   `json:"cleaned_item_description"`
	Categories      string   `json:"product_categories"`
	Similarity      *float64 `json:"similarity"`
	AvgRating       *float64 `json:"avg_rating"`
	RatingCount     *int     `json:"rating_count"`
	DisplayedRating string   `json:"displayed_rating,omitempty"`
	CombinedScore   *float64 `json:"combined_score"`
	Reviews         []Review `json:"reviews"`
}
