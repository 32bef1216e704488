package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/domain"
)

// Login authenticates an account and returns a signed token.
func (h *Handler) Login(c echo.Context) error {
	var req domain.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.Login(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// GetUser returns the authenticated caller's own account.
func (h *Handler) GetUser(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	user, err := h.service.GetUser(c.Request().Context(), identity.Username)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// ListUsers lists usernames matching an attribute filter. Admin only.
func (h *Handler) ListUsers(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	ctx := c.Request().Context()
	if err := h.service.Authorize(ctx, identity.Role, "user.list", ""); err != nil {
		return writeError(c, err)
	}

	field := c.QueryParam("field")
	if field == "" {
		field = "role"
	}
	value := c.QueryParam("value")
	if value == "" {
		value = string(domain.UserRoleUser)
	}

	users, err := h.service.FindUsers(ctx, field, value)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

// CreateUser registers a new account. Admin only.
func (h *Handler) CreateUser(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req domain.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if err := h.service.Authorize(ctx, identity.Role, "user.create", req.Username); err != nil {
		return writeError(c, err)
	}

	if err := h.service.CreateUser(ctx, &req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"status": "created", "username": req.Username})
}

// UpdateUser changes the password and/or role of an account. Admin only.
func (h *Handler) UpdateUser(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req domain.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if err := h.service.Authorize(ctx, identity.Role, "user.update", req.Username); err != nil {
		return writeError(c, err)
	}

	if err := h.service.UpdateUser(ctx, &req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "updated", "username": req.Username})
}

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(c echo.Context) error {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req domain.DeleteUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if err := h.service.Authorize(ctx, identity.Role, "user.delete", req.Username); err != nil {
		return writeError(c, err)
	}

	if err := h.service.DeleteUser(ctx, req.Username); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "username": req.Username})
}
