package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"shopsearch-backend/internal/retrieval"
)

const defaultMaxReviewChars = 600

// BlockFormatter renders a product into the canonical text block embedded
// in analysis prompts. Formatting is pure: the same product always yields
// the same block.
type BlockFormatter struct {
	maxReviewChars int
}

// NewBlockFormatter constructs a formatter with the given per-review
// character cap.
func NewBlockFormatter(maxReviewChars int) *BlockFormatter {
	if maxReviewChars <= 0 {
		maxReviewChars = defaultMaxReviewChars
	}
	return &BlockFormatter{maxReviewChars: maxReviewChars}
}

// Format renders the per-product prompt section.
func (f *BlockFormatter) Format(p retrieval.Product) string {
	title := sanitizeText(p.Title)
	if title == "" {
		title = "Unknown Title"
	}
	description := sanitizeText(p.Description)
	categories := sanitizeText(p.Categories)

	var reviewText string
	if len(p.Reviews) == 0 {
		// This instruction steers the model away from fabricating sentiment.
		reviewText = "    None provided. Return empty arrays for review highlights."
	} else {
		lines := make([]string, 0, len(p.Reviews))
		for i, review := range p.Reviews {
			content := f.truncate(sanitizeText(review.Content))
			rating := "NA"
			if review.Rating != nil {
				rating = strconv.FormatFloat(*review.Rating, 'f', -1, 64)
			}
			verified := review.VerifiedPurchase != nil && *review.VerifiedPurchase
			lines = append(lines, fmt.Sprintf("    %d. rating=%s, verified=%t\n       %s", i+1, rating, verified, content))
		}
		reviewText = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(
		"Product ASIN: %s\nTitle: %s\nDescription: %s\nCategories: %s\nReviews (truncated to %d chars each):\n%s",
		p.ASIN, title, description, categories, f.maxReviewChars, reviewText,
	)
}

func (f *BlockFormatter) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= f.maxReviewChars {
		return text
	}
	return string(runes[:f.maxReviewChars]) + "…"
}

// sanitizeText normalizes line endings to LF and strips control
// characters, keeping newline only.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
