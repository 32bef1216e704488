package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/config"
	"github.com/Timtroll/llm/internal/domain"
	"github.com/Timtroll/llm/internal/history"
	"github.com/Timtroll/llm/internal/policy"
	"github.com/Timtroll/llm/internal/service"
	"github.com/Timtroll/llm/internal/store"
)

type stubRunner struct {
	output string
	err    error
}

func (r *stubRunner) Run(_ context.Context, _ string, _ ...string) (string, error) {
	return r.output, r.err
}

type stubSearch struct{}

func (stubSearch) Search(_ context.Context, _ string) string { return "справка" }

func newTestHandler(t *testing.T) (*Handler, store.Store) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "llama-7b.gguf"), []byte("weights"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	exe := filepath.Join(dir, "llama-cli")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write exe: %v", err)
	}

	cfg := &config.Config{
		ModelDir:        dir,
		ExecCandidates:  []string{exe},
		GenerateTimeout: time.Second,
		HistoryTTL:      time.Hour,
		TokenExpiry:     time.Hour,
		SecretKey:       "test-secret",
	}

	st := store.NewMemory()
	runner := &stubRunner{output: "assistant Готово.\n> EOF by user"}
	tokens := auth.NewManager(cfg.SecretKey, cfg.TokenExpiry)
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("policy engine: %v", err)
	}

	svc := service.New(st, history.NewManager(st, cfg.HistoryTTL), runner, stubSearch{}, tokens, engine, cfg)
	return NewHandler(svc), st
}

func newContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, username string, role domain.UserRole) {
	auth.SetIdentity(c, auth.Identity{Username: username, Role: role})
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodGet, "/api/health", "")
	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGenerateSuccess(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/generate", `{"text":"Привет"}`)
	asUser(c, "alice", domain.UserRoleUser)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.GenerateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "Готово." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(resp.History))
	}
	if resp.SessionID != "user:alice" {
		t.Fatalf("unexpected session: %s", resp.SessionID)
	}
}

func TestGenerateMissingText(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/generate", `{}`)
	asUser(c, "alice", domain.UserRoleUser)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateUnauthenticated(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/generate", `{"text":"Привет"}`)
	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGenerateUnknownModel(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/generate", `{"text":"Привет","model":"nope"}`)
	asUser(c, "alice", domain.UserRoleUser)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestClearHistory(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, _ := newContext(e, http.MethodPost, "/api/generate", `{"text":"Привет"}`)
	asUser(c, "alice", domain.UserRoleUser)
	if err := h.Generate(c); err != nil {
		t.Fatalf("generate: %v", err)
	}

	c, rec := newContext(e, http.MethodPost, "/api/history/clear", `{}`)
	asUser(c, "alice", domain.UserRoleUser)
	if err := h.ClearHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListModels(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodGet, "/api/models", "")
	asUser(c, "alice", domain.UserRoleUser)

	if err := h.ListModels(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Models map[string]domain.ModelInfo `json:"models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp.Models["llama-7b"]; !ok {
		t.Fatalf("expected llama-7b in %+v", resp.Models)
	}
}

func TestLoginFlow(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"s3cret"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	c, rec = newContext(e, http.MethodPost, "/api/user/login", `{"username":"alice","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, _ := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"s3cret"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, rec := newContext(e, http.MethodPost, "/api/user/login", `{"username":"alice","password":"nope"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateUserForbiddenForNonAdmin(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/user/create", `{"username":"bob","password":"x"}`)
	asUser(c, "alice", domain.UserRoleUser)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateUserDuplicateConflict(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, _ := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"a"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, rec := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"b"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := newContext(e, http.MethodPost, "/api/user/update", `{"username":"ghost","role":"admin"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.UpdateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, _ := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"a"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, rec := newContext(e, http.MethodPost, "/api/user/delete", `{"username":"alice"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetUserSelf(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, _ := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"a"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, rec := newContext(e, http.MethodGet, "/api/user", "")
	asUser(c, "alice", domain.UserRoleUser)
	if err := h.GetUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, _ := newContext(e, http.MethodPost, "/api/user/create", `{"username":"alice","password":"a"}`)
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, rec := newContext(e, http.MethodGet, "/api/users", "")
	asUser(c, "alice", domain.UserRoleUser)
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	c, rec = newContext(e, http.MethodGet, "/api/users", "")
	asUser(c, "root", domain.UserRoleAdmin)
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Users []string `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0] != "alice" {
		t.Fatalf("unexpected users: %v", resp.Users)
	}
}
