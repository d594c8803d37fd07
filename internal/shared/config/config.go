package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration, read once at startup.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	LLMProvider    string
	LLMModel       string
	EmbeddingModel string

	BatchingEnabled  bool
	BatchSize        int
	MaxPromptTokens  int
	MaxReviewChars   int
	TiktokenEncoding string

	ReviewsPerProduct int
	DefaultProductsK  int

	ScoreWeightSimilarity float64
	ScoreWeightReviews    float64
	ScoreWeightRating     float64

	// DisplayRatingFill enables the fabricated 4.0-4.5 display rating for
	// products without real ratings. Off by default pending a product
	// decision.
	DisplayRatingFill bool
}

// Load reads configuration from environment variables with sensible
// defaults. A local .env file is loaded best-effort for dev convenience.
func Load() Config {
	_ = godotenv.Load()

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseURL:     dbURL,

		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		LLMModel:       getEnv("LLM_MODEL", ""),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		BatchingEnabled:  getEnvBool("RAG_BATCHING_ENABLED", true),
		BatchSize:        getEnvInt("RAG_BATCH_SIZE", 3, 1),
		MaxPromptTokens:  getEnvInt("RAG_MAX_PROMPT_TOKENS", 6000, 1),
		MaxReviewChars:   getEnvInt("RAG_MAX_REVIEW_CHARS", 600, 1),
		TiktokenEncoding: getEnv("RAG_TIKTOKEN_ENCODING", "cl100k_base"),

		ReviewsPerProduct: getEnvInt("REVIEWS_PER_PRODUCT", 3, 1),
		DefaultProductsK:  getEnvInt("DEFAULT_PRODUCTS_K", 3, 1),

		ScoreWeightSimilarity: getEnvFloat("SCORE_W_SIMILARITY", 0.7),
		ScoreWeightReviews:    getEnvFloat("SCORE_W_REVIEWS", 0.2),
		ScoreWeightRating:     getEnvFloat("SCORE_W_RATING", 0.1),

		DisplayRatingFill: getEnvBool("DISPLAY_RATING_FILL", false),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def, min int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	if val < min {
		return min
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float %q, using %g", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
