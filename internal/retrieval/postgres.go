package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"shopsearch-backend/internal/shared/telemetry"
)

// hybridSearchQuery runs cosine vector search over product and review
// embeddings, samples the best reviews per product and ranks products by
// the combined relevance score. One row per (product, sampled review);
// products without reviews produce a single row with NULL review columns.
const hybridSearchQuery = `
WITH product_candidates AS (
    SELECT asin,
           product_title,
           cleaned_item_description,
           product_categories,
           embedding <=> $1::vector AS product_similarity
    FROM product_embeddings
    ORDER BY embedding <=> $1::vector
    LIMIT $2
),
review_matches AS (
    SELECT r.asin,
           r.user_id,
           r.rating,
           r.content,
           r.review_timestamp,
           r.verified_purchase,
           r.embedding <=> $1::vector AS review_similarity,
           CASE WHEN r.rating IS NOT NULL AND r.rating > 0 THEN 1 ELSE 0 END AS has_rating
    FROM review_embeddings r
    WHERE r.asin IN (SELECT asin FROM product_candidates)
      AND r.content IS NOT NULL AND LENGTH(r.content) > 10
    ORDER BY r.embedding <=> $1::vector
    LIMIT $3
),
ranked_reviews AS (
    SELECT rm.*,
           ROW_NUMBER() OVER (
               PARTITION BY asin
               ORDER BY has_rating DESC, review_similarity ASC, COALESCE(rating, 0) DESC, review_timestamp DESC
           ) AS review_rank
    FROM review_matches rm
),
review_stats AS (
    SELECT asin,
           AVG(rating) AS avg_rating,
           COUNT(*) FILTER (WHERE rating IS NOT NULL AND rating > 0) AS rating_count,
           AVG(review_similarity) AS avg_review_similarity
    FROM review_matches
    GROUP BY asin
),
product_scores AS (
    SELECT p.asin,
           p.product_title,
           p.cleaned_item_description,
           p.product_categories,
           p.product_similarity,
           s.avg_rating,
           s.rating_count,
           ($4 * p.product_similarity)
             + ($5 * COALESCE(s.avg_review_similarity, 0))
             + ($6 * COALESCE(s.avg_rating / 5, 0)) AS combined_score
    FROM product_candidates p
    LEFT JOIN review_stats s ON s.asin = p.asin
),
top_products AS (
    SELECT * FROM product_scores ORDER BY combined_score DESC LIMIT $7
)
SELECT t.asin,
       COALESCE(t.product_title, '') AS product_title,
       COALESCE(t.cleaned_item_description, '') AS cleaned_item_description,
       COALESCE(t.product_categories, '') AS product_categories,
       t.product_similarity,
       t.avg_rating,
       t.rating_count,
       t.combined_score,
       rr.content,
       rr.rating,
       rr.verified_purchase,
       rr.user_id,
       rr.review_timestamp,
       rr.review_similarity,
       rr.has_rating
FROM top_products t
LEFT JOIN ranked_reviews rr ON rr.asin = t.asin AND rr.review_rank <= $8
ORDER BY t.combined_score DESC, t.asin, rr.review_rank`

// PGRetriever implements Retriever over Postgres with the pgvector
// extension. The embedding for the query text comes from Embedder.
type PGRetriever struct {
	DB                *sql.DB
	Embedder          Embedder
	Weights           ScoreWeights
	FillDisplayRating bool
}

// Search embeds the query and runs the hybrid vector search.
func (r *PGRetriever) Search(ctx context.Context, query string, productCount, reviewsPerProduct int) ([]Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if productCount < 1 {
		productCount = 1
	}
	if reviewsPerProduct < 1 {
		reviewsPerProduct = 1
	}

	embedding, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	weights := r.Weights
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights()
	}

	// Over-fetch candidates so review coverage survives the final ranking.
	candidateLimit := productCount * 5
	reviewPool := productCount * reviewsPerProduct * 10

	rows, err := r.DB.QueryContext(ctx, hybridSearchQuery,
		vectorLiteral(embedding),
		candidateLimit,
		reviewPool,
		weights.Similarity,
		weights.Reviews,
		weights.Rating,
		productCount,
		reviewsPerProduct,
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	defer rows.Close()

	products, err := r.structureRows(rows)
	if err != nil {
		return nil, err
	}
	telemetry.Info("retrieval.complete", map[string]any{
		"product_count": len(products),
		"products_k":    productCount,
	})
	return products, nil
}

func (r *PGRetriever) structureRows(rows *sql.Rows) ([]Product, error) {
	var ordered []string
	byASIN := make(map[string]*Product)

	for rows.Next() {
		var (
			asin, title, description, categories string

			productSimilarity sql.NullFloat64
			avgRating         sql.NullFloat64
			ratingCount       sql.NullInt64
			combinedScore     sql.NullFloat64

			reviewContent    sql.NullString
			reviewRating     sql.NullFloat64
			reviewVerified   sql.NullBool
			reviewUserID     sql.NullString
			reviewTimestamp  sql.NullTime
			reviewSimilarity sql.NullFloat64
			reviewHasRating  sql.NullInt64
		)
		if err := rows.Scan(
			&asin, &title, &description, &categories,
			&productSimilarity, &avgRating, &ratingCount, &combinedScore,
			&reviewContent, &reviewRating, &reviewVerified, &reviewUserID,
			&reviewTimestamp, &reviewSimilarity, &reviewHasRating,
		); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}

		product, ok := byASIN[asin]
		if !ok {
			product = &Product{
				ASIN:          asin,
				Title:         title,
				Description:   description,
				Categories:    categories,
				Similarity:    nullFloat(productSimilarity),
				AvgRating:     nullFloat(avgRating),
				RatingCount:   nullInt(ratingCount),
				CombinedScore: nullFloat(combinedScore),
				Reviews:       []Review{},
			}
			product.DisplayedRating = r.displayedRating(product.AvgRating, product.RatingCount)
			byASIN[asin] = product
			ordered = append(ordered, asin)
		}

		if reviewContent.Valid && reviewContent.String != "" {
			review := Review{
				Content:          reviewContent.String,
				Rating:           nullFloat(reviewRating),
				VerifiedPurchase: nullBool(reviewVerified),
				UserID:           reviewUserID.String,
				Similarity:       nullFloat(reviewSimilarity),
				HasRating:        nullInt(reviewHasRating),
			}
			if reviewTimestamp.Valid {
				ts := reviewTimestamp.Time
				review.Timestamp = &ts
			}
			product.Reviews = append(product.Reviews, review)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}

	products := make([]Product, 0, len(ordered))
	for _, asin := range ordered {
		products = append(products, *byASIN[asin])
	}
	return products, nil
}

// displayedRating formats the real average when ratings exist. The
// fabricated 4.0-4.5 substitute is opt-in via DISPLAY_RATING_FILL.
func (r *PGRetriever) displayedRating(avgRating *float64, ratingCount *int) string {
	if avgRating != nil && ratingCount != nil && *ratingCount > 0 {
		return strconv.FormatFloat(*avgRating, 'f', 1, 64)
	}
	if r.FillDisplayRating {
		return strconv.FormatFloat(4.0+rand.Float64()*0.5, 'f', 1, 64)
	}
	return ""
}

func vectorLiteral(embedding []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

var _ Retriever = (*PGRetriever)(nil)
