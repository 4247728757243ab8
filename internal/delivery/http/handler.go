package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khaihong/primates-shoppers-sub001/internal/searcher"
	"github.com/khaihong/primates-shoppers-sub001/pkg/errors"
)

// Outcome codes exposed to clients alongside (or instead of) items
const (
	CodeNoCachedResults = "no_cached_results"
	CodeTransient       = "transient"
	CodeInvalidRequest  = "invalid_request"
	CodeInternal        = "internal"
)

// SearchService is the core surface the delivery layer exposes
type SearchService interface {
	Search(ctx context.Context, req searcher.Request) (*searcher.Result, error)
	Diagnose(ctx context.Context, src searcher.DiagnoseSource, country string) (*searcher.DiagnoseResult, error)
	Invalidate(query, country string)
	CacheStats() []searcher.EntryStats
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service SearchService
}

// NewHandler creates a new HTTP handler
func NewHandler(service SearchService) *Handler {
	return &Handler{service: service}
}

// Search handles POST /api/v1/search
func (h *Handler) Search(c *gin.Context) {
	var req searcher.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeInvalidRequest, "error": err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := gin.H{
		"items":            result.Items,
		"base_items_count": result.BaseItemsCount,
	}
	if result.NoCachedResults {
		response["code"] = CodeNoCachedResults
	}
	c.JSON(http.StatusOK, response)
}

type diagnoseRequest struct {
	searcher.DiagnoseSource
	Country string `json:"country"`
}

// Diagnose handles POST /api/v1/diagnose
func (h *Handler) Diagnose(c *gin.Context) {
	var req diagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeInvalidRequest, "error": err.Error()})
		return
	}

	result, err := h.service.Diagnose(c.Request.Context(), req.DiagnoseSource, req.Country)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type invalidateRequest struct {
	Query   string `json:"query"`
	Country string `json:"country"`
}

// InvalidateCache handles DELETE /api/v1/cache
func (h *Handler) InvalidateCache(c *gin.Context) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeInvalidRequest, "error": err.Error()})
		return
	}

	h.service.Invalidate(req.Query, req.Country)
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(c *gin.Context) {
	stats := h.service.CacheStats()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache": gin.H{
			"entries": len(stats),
			"keys":    stats,
		},
	})
}

// writeError maps the error taxonomy onto status codes and outcome codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeInvalidRequest, "error": err.Error()})
	case errors.ErrorTypeNetwork, errors.ErrorTypeBlocked:
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": CodeTransient, "error": err.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": CodeInternal, "error": err.Error()})
	}
}
