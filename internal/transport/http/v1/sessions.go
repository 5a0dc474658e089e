package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imageone/agentpress/internal/diagram"
	"github.com/imageone/agentpress/internal/domain"
)

// Process creates a session and runs the research stage.
// POST /api/agents/process
func (h *Handler) Process(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	view, err := h.service.StartSession(ctx, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Feedback advances or retries a session.
// POST /api/agents/feedback
func (h *Handler) Feedback(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	view, err := h.service.SubmitFeedback(ctx, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetSession returns the current session view.
// GET /api/agents/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.service.GetSession(ctx, c.Param("session_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetDiagram renders the session trace as text.
// GET /api/agents/sessions/:session_id/diagram?format=ascii|mermaid
func (h *Handler) GetDiagram(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.service.GetSession(ctx, c.Param("session_id"))
	if err != nil {
		return errorResponse(c, err)
	}

	var rendered string
	switch c.QueryParam("format") {
	case "mermaid":
		rendered = diagram.RenderMermaid(view.Visualization)
	case "", "ascii":
		rendered = diagram.RenderASCII(view.Visualization)
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown diagram format"})
	}
	return c.String(http.StatusOK, rendered)
}
