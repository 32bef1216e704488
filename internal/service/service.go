// Package service implements the application logic behind the HTTP surface:
// generation orchestration, user accounts, model directory and login.
package service

import (
	"context"
	"fmt"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/config"
	"github.com/Timtroll/llm/internal/domain"
	"github.com/Timtroll/llm/internal/history"
	"github.com/Timtroll/llm/internal/llama"
	"github.com/Timtroll/llm/internal/policy"
	"github.com/Timtroll/llm/internal/store"
)

// Searcher is the internet-search collaborator. Implementations never return
// an error; failures degrade to a fixed notice string.
type Searcher interface {
	Search(ctx context.Context, query string) string
}

type Service struct {
	store   store.Store
	history *history.Manager
	runner  llama.Runner
	search  Searcher
	tokens  *auth.Manager
	policy  *policy.Engine
	config  *config.Config
}

func New(st store.Store, hist *history.Manager, runner llama.Runner, search Searcher, tokens *auth.Manager, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:   st,
		history: hist,
		runner:  runner,
		search:  search,
		tokens:  tokens,
		policy:  policyEngine,
		config:  cfg,
	}
}

// Authorize asks the access policy whether a caller role may perform an
// action. A denial is reported as ErrForbidden so callers can map it to a
// status code directly.
func (s *Service) Authorize(ctx context.Context, role domain.UserRole, action, target string) error {
	allowed, err := s.policy.Allow(ctx, policy.Input{Role: string(role), Action: action, Target: target})
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: действие %s запрещено для роли %s", domain.ErrForbidden, action, role)
	}
	return nil
}
