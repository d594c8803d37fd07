package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopsearch-backend/internal/shared/server/respond"
	"shopsearch-backend/internal/shared/telemetry"
)

const maxSentimentTextChars = 4000

const sentimentPrompt = `Classify the sentiment of the following product review text.
Respond with a JSON object of the shape {"sentiment": "positive" | "negative" | "neutral"}.
Return ONLY valid JSON.

Text:
%s`

// Sentiment classifies free text as positive, negative, or neutral.
// Any model or parse failure degrades to neutral rather than an error.
func (s *Service) Sentiment(ctx context.Context, text string) string {
	if s.LLM == nil {
		return "neutral"
	}

	raw, err := s.LLM.Complete(ctx, fmt.Sprintf(sentimentPrompt, text))
	if err != nil {
		telemetry.Error("sentiment.llm_failed", map[string]any{"error": err.Error()})
		return "neutral"
	}

	var parsed struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		telemetry.Error("sentiment.parse_failed", map[string]any{"error": err.Error()})
		return "neutral"
	}

	switch strings.ToLower(strings.TrimSpace(parsed.Sentiment)) {
	case "positive":
		return "positive"
	case "negative":
		return "negative"
	default:
		return "neutral"
	}
}

func (h *Handler) sentiment(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", []map[string]string{
			{"field": "text", "issue": "required"},
		})
		return
	}
	if runes := []rune(text); len(runes) > maxSentimentTextChars {
		text = string(runes[:maxSentimentTextChars])
	}

	sentiment := h.Svc.Sentiment(c.Request.Context(), text)
	respond.OK(c, SentimentResponse{Text: text, Sentiment: sentiment})
}
