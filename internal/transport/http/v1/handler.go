// Package v1 provides the HTTP handlers for the agent pipeline API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imageone/agentpress/internal/domain"
	"github.com/imageone/agentpress/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/agents/process", h.Process)
	e.POST("/api/agents/feedback", h.Feedback)
	e.GET("/api/agents/sessions/:session_id", h.GetSession)
	e.GET("/api/agents/sessions/:session_id/diagram", h.GetDiagram)

	e.GET("/api/agents/health", h.Health)
	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Multi-agent system is running",
	})
}

// errorResponse maps a domain error to its HTTP status and body. The
// caller displays the error field verbatim.
func errorResponse(c echo.Context, err error) error {
	var (
		validationErr   *domain.ValidationError
		notFoundErr     *domain.NotFoundError
		invalidStateErr *domain.InvalidStateError
		externalErr     *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFoundErr.Error()})
	case errors.As(err, &invalidStateErr):
		return c.JSON(http.StatusConflict, map[string]string{"error": invalidStateErr.Error()})
	case errors.As(err, &externalErr):
		// Generic message only; the cause stays in the server log.
		return c.JSON(http.StatusBadGateway, map[string]string{"error": externalErr.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
