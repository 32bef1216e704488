package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/domain"
)

// Generate handles one conversational turn.
func (h *Handler) Generate(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req domain.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	result, err := h.service.Generate(ctx, identity.Username, &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ClearHistory drops the caller's session history.
func (h *Handler) ClearHistory(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.ClearHistory(c.Request().Context(), identity.Username, req.SessionID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}
