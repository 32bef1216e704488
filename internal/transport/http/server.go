// Package http assembles the HTTP server for the conversational API.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/service"
	"github.com/Timtroll/llm/internal/store"
	v1 "github.com/Timtroll/llm/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server. Login and health stay
// open; everything else sits behind bearer authentication.
func NewServer(svc *service.Service, tokens *auth.Manager, st store.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	handler := v1.NewHandler(svc)

	// Register Routes
	handler.RegisterRoutes(e, tokens.Middleware(st))

	return e
}
