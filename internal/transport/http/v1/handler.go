// Package v1 provides the HTTP handlers for the conversational API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Timtroll/llm/internal/domain"
	"github.com/Timtroll/llm/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server. Routes registered in
// the authenticated group require a valid bearer token.
func (h *Handler) RegisterRoutes(e *echo.Echo, authenticated echo.MiddlewareFunc) {
	// Open API
	e.GET("/api/health", h.Health)
	e.POST("/api/user/login", h.Login)

	// Conversation API
	g := e.Group("/api", authenticated)
	g.POST("/generate", h.Generate)
	g.POST("/history/clear", h.ClearHistory)
	g.GET("/models", h.ListModels)

	// Account API
	g.GET("/user", h.GetUser)
	g.GET("/users", h.ListUsers)
	g.POST("/user/create", h.CreateUser)
	g.POST("/user/update", h.UpdateUser)
	g.POST("/user/delete", h.DeleteUser)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps domain errors to HTTP status codes.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownModel),
		errors.Is(err, domain.ErrTokenBudget):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGenerationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
