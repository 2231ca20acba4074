// Package transport wires the HTTP-facing API: the inbound turn operation
// plus the administrative endpoints (rebuild-index, session-debug,
// vector-store-status) that sit outside the turn path.
package transport

import (
	"net/http"
	"strings"

	"zuscore/internal/catalog"
	"zuscore/internal/domain"
	"zuscore/internal/engine"
	"zuscore/internal/session"
	"zuscore/platform/ai/embeddingapi"
	"zuscore/platform/httpkit"
	"zuscore/platform/logger"
	"zuscore/platform/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Deps is everything the router needs to build handlers.
type Deps struct {
	Engine          *engine.Engine
	Store           session.Store
	Logger          *logger.Logger
	Validator       *validator.Validator
	SemanticEnabled bool
	RateLimitRPS    float64
	RateLimitBurst  int

	// Products and Indexer back /v1/admin/rebuild-index: Products supplies
	// the current catalogue snapshot, Indexer pushes it to the product
	// embedding API so the semantic retriever's vector store stays in sync.
	// Both may be nil when the semantic capability is disabled.
	Products catalog.ProductIndex
	Indexer  *embeddingapi.Client
}

// New builds the gin.Engine exposing the turn endpoint and the
// administrative endpoints.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpkit.RequestLogger(deps.Logger))
	r.Use(httpkit.SecurityHeaders())

	if deps.RateLimitRPS > 0 {
		limiter := httpkit.NewIPRateLimiter(rate.Limit(deps.RateLimitRPS), deps.RateLimitBurst, deps.Logger)
		r.Use(limiter.RateLimit())
	}

	h := &handlers{deps: deps}

	r.GET("/healthz", h.health)
	r.POST("/v1/turn", h.turn)

	admin := r.Group("/v1/admin")
	{
		admin.POST("/rebuild-index", h.rebuildIndex)
		admin.GET("/sessions/:id", h.sessionDebug)
		admin.GET("/vector-store-status", h.vectorStoreStatus)
	}

	return r
}

type handlers struct {
	deps Deps
}

func (h *handlers) health(c *gin.Context) {
	httpkit.OK(c, gin.H{"status": "ok"})
}

// turnRequest is the inbound turn operation's input shape.
type turnRequest struct {
	Message   string `json:"message" validate:"required,min=1,max=1000"`
	SessionID string `json:"session_id,omitempty"`
}

// turnResponse is the inbound turn operation's output shape.
type turnResponse struct {
	Message    string  `json:"message"`
	SessionID  string  `json:"session_id"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func (h *handlers) turn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "message must be between 1 and 1000 characters", nil)
		return
	}
	if err := h.deps.Validator.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "message must be between 1 and 1000 characters", nil)
		return
	}

	result, err := h.deps.Engine.Process(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.deps.Logger.HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err, c.ClientIP())
		httpkit.Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}

	httpkit.OK(c, turnResponse{
		Message:    result.Reply,
		SessionID:  result.SessionID,
		Intent:     string(result.Intent),
		Confidence: result.Confidence,
	})
}

// rebuildIndex is an administrative operation that does not enter the
// turn path: it pushes the current product catalogue to the product
// embedding API so the semantic retriever's vector store reflects it. It
// does not touch the local lexical/fuzzy fallback, which reads the
// catalogue snapshot directly.
func (h *handlers) rebuildIndex(c *gin.Context) {
	if h.deps.Indexer == nil || h.deps.Products == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "catalog embedding indexer is not configured", nil)
		return
	}

	products := h.deps.Products.All()
	docs := make([]map[string]any, 0, len(products))
	for _, p := range products {
		words := []string{p.Name, p.Category}
		for _, f := range p.Features {
			words = append(words, string(f))
		}
		docs = append(docs, map[string]any{
			"name":        p.Name,
			"category":    p.Category,
			"material":    string(p.Material),
			"capacity":    p.Capacity,
			"collection":  p.Collection,
			"description": strings.Join(words, " "),
		})
	}

	resp, err := h.deps.Indexer.AddDocuments(c.Request.Context(), embeddingapi.AddDocumentsRequest{
		Documents:  docs,
		TextFields: []string{"name", "category", "material", "collection", "description"},
		IDField:    "name",
	})
	if err != nil {
		h.deps.Logger.HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusBadGateway, err, c.ClientIP())
		httpkit.Error(c, http.StatusBadGateway, "failed to rebuild the semantic index", nil)
		return
	}

	httpkit.OK(c, gin.H{"status": "accepted", "documents_added": resp.DocumentsAdded})
}

// sessionDebug is an administrative, read-only peek at a session's state.
// It reuses WithSession (the store's only entry point) with a no-op
// mutator purely to obtain a point-in-time snapshot.
func (h *handlers) sessionDebug(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.deps.Store.WithSession(c.Request.Context(), id, func(_ *domain.Session) error { return nil })
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	httpkit.OK(c, snap)
}

func (h *handlers) vectorStoreStatus(c *gin.Context) {
	httpkit.OK(c, gin.H{"enabled": h.deps.SemanticEnabled})
}
