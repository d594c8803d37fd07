package search

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopsearch-backend/internal/retrieval"
	"shopsearch-backend/internal/shared/server/respond"
)

const maxProductsK = 20

// Handler wires HTTP handlers to the search service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches search routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
	rg.GET("/sentiment", h.sentiment)
}

func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", []map[string]string{
			{"field": "query", "issue": "required"},
		})
		return
	}

	productsK := 0
	if raw := c.Query("products_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "products_k must be a positive integer", []map[string]string{
				{"field": "products_k", "issue": "invalid"},
			})
			return
		}
		productsK = parsed
	}
	if productsK > maxProductsK {
		productsK = maxProductsK
	}

	resp, err := h.Svc.Search(c.Request.Context(), query, productsK)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "search failed", nil)
		return
	}

	respond.OK(c, resp)
}
