package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListModels returns the model directory keyed by model name.
func (h *Handler) ListModels(c echo.Context) error {
	models, err := h.service.ListModels(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"models": models})
}
