// Package handler provides the HTTP command surface of the AI router.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nativex/ai-router/internal/dispatch"
)

const (
	// DefaultTemperature applies when a command omits temperature.
	DefaultTemperature = 0.2

	// DefaultMaxTokens applies when a command omits max_tokens.
	DefaultMaxTokens = 800

	// MaxSuggestions bounds autocomplete results.
	MaxSuggestions = 25
)

// Context keys read by the logging and console middleware.
const (
	ctxProvider = "provider"
	ctxModel    = "model"
	ctxOutcome  = "outcome"
	ctxDeferred = "deferred"
)

// Router is the dispatch capability the handler needs.
type Router interface {
	Route(ctx context.Context, cmd dispatch.Command) dispatch.Outcome
	Providers() []string
	Personas() []string
}

// AIRequest is the body of POST /v1/ai.
type AIRequest struct {
	Prompt      string   `json:"prompt" binding:"required"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Role        string   `json:"role"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=1"`
	MaxTokens   *int     `json:"max_tokens" binding:"omitempty,gte=32,lte=4000"`
	Public      bool     `json:"public"`
	Thread      bool     `json:"thread"`
	Origin      string   `json:"origin" binding:"required"`
	UserID      string   `json:"user_id"`
	UserName    string   `json:"user_name"`
}

// AIHandler serves the ai command and its autocomplete hooks.
type AIHandler struct {
	router Router
	logger *slog.Logger
}

// AIHandlerOption is a functional option for configuring AIHandler.
type AIHandlerOption func(*AIHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) AIHandlerOption {
	return func(h *AIHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(router Router, opts ...AIHandlerOption) *AIHandler {
	h := &AIHandler{
		router: router,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register mounts the handler's routes on r.
func (h *AIHandler) Register(r gin.IRoutes) {
	r.POST("/v1/ai", h.HandleAI)
	r.GET("/v1/providers", h.HandleProviders)
	r.GET("/v1/personas", h.HandlePersonas)
	r.GET("/health", h.HandleHealth)
}

// HandleAI handles POST /v1/ai.
func (h *AIHandler) HandleAI(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	cmd := dispatch.Command{
		Provider:    req.Provider,
		Model:       req.Model,
		Role:        req.Role,
		Prompt:      req.Prompt,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Origin:      req.Origin,
		Public:      req.Public,
		Thread:      req.Thread,
		UserID:      req.UserID,
		UserName:    req.UserName,
		Deferrer:    contextDeferrer{c},
	}
	if req.Temperature != nil {
		cmd.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		cmd.MaxTokens = *req.MaxTokens
	}

	out := h.router.Route(c.Request.Context(), cmd)

	c.Set(ctxProvider, out.Provider)
	c.Set(ctxModel, out.Model)
	c.Set(ctxOutcome, string(out.Kind))

	c.JSON(statusFor(out.Kind), out)
}

// HandleProviders handles GET /v1/providers?q=
func (h *AIHandler) HandleProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": suggest(h.router.Providers(), c.Query("q")),
	})
}

// HandlePersonas handles GET /v1/personas?q=
func (h *AIHandler) HandlePersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"personas": suggest(h.router.Personas(), c.Query("q")),
	})
}

// HandleHealth handles GET /health.
func (h *AIHandler) HandleHealth(c *gin.Context) {
	providers := h.router.Providers()

	status := "healthy"
	if len(providers) == 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"providers": providers,
		"personas":  len(h.router.Personas()),
	})
}

// statusFor maps an outcome kind to its HTTP status.
func statusFor(kind dispatch.Kind) int {
	switch kind {
	case dispatch.KindSuccess, dispatch.KindThreadNotPermitted:
		return http.StatusOK
	case dispatch.KindUnknownProvider:
		return http.StatusNotFound
	case dispatch.KindRateLimited:
		return http.StatusTooManyRequests
	case dispatch.KindProviderError:
		return http.StatusBadGateway
	case dispatch.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// suggest returns the names containing query, ignoring case, capped at MaxSuggestions.
func suggest(names []string, query string) []string {
	query = strings.ToLower(query)
	matches := make([]string, 0, min(len(names), MaxSuggestions))
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, name)
			if len(matches) == MaxSuggestions {
				break
			}
		}
	}
	return matches
}

// contextDeferrer records the acknowledgement on the request context. HTTP
// callers hold the connection open, so there is nothing to send early.
type contextDeferrer struct {
	c *gin.Context
}

func (d contextDeferrer) Defer(_ context.Context, public bool) error {
	visibility := "private"
	if public {
		visibility = "public"
	}
	d.c.Set(ctxDeferred, visibility)
	return nil
}

// sendError sends an error response in the router's JSON error format.
func sendError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"type":    errType,
		},
	})
}
