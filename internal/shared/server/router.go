package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"shopsearch-backend/internal/analysis"
	"shopsearch-backend/internal/llm"
	"shopsearch-backend/internal/llm/openai"
	"shopsearch-backend/internal/retrieval"
	"shopsearch-backend/internal/search"
	"shopsearch-backend/internal/shared/config"
	"shopsearch-backend/internal/shared/metrics"
	"shopsearch-backend/internal/shared/server/middleware"
	"shopsearch-backend/internal/shared/server/respond"
	"shopsearch-backend/internal/shared/storage/db"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	llmClient := newLLMClient(cfg)

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn.Close()
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var retriever retrieval.Retriever
	if sqlDB != nil {
		retriever = &retrieval.PGRetriever{
			DB:       sqlDB,
			Embedder: llmClient,
			Weights: retrieval.ScoreWeights{
				Similarity: cfg.ScoreWeightSimilarity,
				Reviews:    cfg.ScoreWeightReviews,
				Rating:     cfg.ScoreWeightRating,
			},
			FillDisplayRating: cfg.DisplayRatingFill,
		}
	} else {
		retriever = retrieval.NewMemoryRetriever(nil)
	}

	pipeline := analysis.NewPipeline(llmClient, analysis.Config{
		BatchingEnabled:  cfg.BatchingEnabled,
		BatchSize:        cfg.BatchSize,
		MaxPromptTokens:  cfg.MaxPromptTokens,
		MaxReviewChars:   cfg.MaxReviewChars,
		TiktokenEncoding: cfg.TiktokenEncoding,
	})

	searchSvc := &search.Service{
		Retriever:         retriever,
		Pipeline:          pipeline,
		LLM:               llmClient,
		ReviewsPerProduct: cfg.ReviewsPerProduct,
		DefaultProductsK:  cfg.DefaultProductsK,
	}
	searchHandler := search.NewHandler(searchSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	searchHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	return r
}

func newLLMClient(cfg config.Config) llm.Client {
	if cfg.LLMProvider != "openai" {
		log.Printf("unknown LLM provider %q, using placeholder client", cfg.LLMProvider)
		return llm.PlaceholderClient{}
	}
	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel, cfg.EmbeddingModel)
	if err != nil {
		log.Printf("openai client unavailable, using placeholder client: %v", err)
		return llm.PlaceholderClient{}
	}
	return client
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
