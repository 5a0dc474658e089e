// Package http provides the HTTP server for the agentpress backend.
package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/imageone/agentpress/internal/service"
	v1 "github.com/imageone/agentpress/internal/transport/http/v1"
	"github.com/imageone/agentpress/internal/transport/ws"
)

// NewServer creates and configures the HTTP server serving the agent API
// and the WebSocket trace stream.
func NewServer(svc *service.Service, hub *ws.Hub, corsOrigins string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	origins := splitOrigins(corsOrigins)

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(origins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	// Handlers
	v1Handler := v1.NewHandler(svc)
	wsHandler := ws.NewHandler(hub, origins)

	v1Handler.RegisterRoutes(e)
	wsHandler.RegisterRoutes(e)

	return e
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
