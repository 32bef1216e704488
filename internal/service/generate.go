package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Timtroll/llm/internal/domain"
	"github.com/Timtroll/llm/internal/history"
	"github.com/Timtroll/llm/internal/llama"
)

// defaultMaxTokens bounds the prompt when a model config carries no explicit
// maximum.
const defaultMaxTokens = 2048

// anonymousSession is the session id used when neither the request nor the
// caller identity provides one.
const anonymousSession = "default"

// Generate drives one request through the full pipeline: validation, optional
// search enrichment, token budget checks, subprocess invocation, reply
// extraction and history persistence.
//
// The user turn is persisted before the subprocess runs. A failed generation
// therefore leaves the user's message recorded, so a retry continues the
// conversation instead of duplicating it.
func (s *Service) Generate(ctx context.Context, username string, req *domain.GenerateRequest) (*domain.GenerateResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: поле 'text' обязательно в запросе", domain.ErrValidation)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		if username != "" {
			sessionID = "user:" + username
		} else {
			sessionID = anonymousSession
		}
	}
	key := history.Key(username, sessionID)

	if req.Reset {
		if err := s.history.Reset(ctx, key); err != nil {
			return nil, err
		}
		log.Printf("history cleared for session %s", sessionID)
	}

	text := llama.StripSpecialTokens(req.Text)

	if req.UseSearch {
		info := s.search.Search(ctx, text)
		text += "\n\n<%info%>Информация из интернета: " + info + "<%info%>"
	}

	model, err := s.resolveModel(ctx, req.Model)
	if err != nil {
		return nil, err
	}
	maxTokens := model.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	if count := llama.EstimateTokens(text); count > maxTokens {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrTokenBudget, count, maxTokens)
	}

	params := mergeParams(req, model)

	if err := s.history.Append(ctx, key, domain.NewMessage(domain.RoleUser, text)); err != nil {
		return nil, err
	}

	messages, err := s.history.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	prompt := llama.BuildPrompt(messages)
	if count := llama.EstimateTokens(prompt); count > maxTokens {
		return nil, fmt.Errorf("%w: полный prompt %d > %d", domain.ErrTokenBudget, count, maxTokens)
	}

	exe, err := llama.FindExecutable(s.config.ExecCandidates)
	if err != nil {
		return nil, err
	}

	args := llama.BuildCommand(exe, model, prompt, params)
	log.Printf("running %s for session %s (model %s, %d prompt tokens)",
		exe, sessionID, model.Name, llama.EstimateTokens(prompt))

	runCtx, cancel := context.WithTimeout(ctx, s.config.GenerateTimeout)
	defer cancel()
	raw, err := s.runner.Run(runCtx, args[0], args[1:]...)
	if err != nil {
		return nil, err
	}

	response := llama.ExtractResponse(raw, prompt)
	if response == "" {
		return nil, fmt.Errorf("%w: не удалось извлечь ответ модели", domain.ErrEmptyResponse)
	}

	if !s.config.KeepAllAssistantTurns {
		if err := s.history.PruneRole(ctx, key, domain.RoleAssistant); err != nil {
			return nil, err
		}
	}
	if err := s.history.Append(ctx, key, domain.NewMessage(domain.RoleAssistant, response)); err != nil {
		return nil, err
	}

	transcript, err := s.history.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	return &domain.GenerateResult{
		Response:   response,
		History:    transcript,
		Model:      model.Name,
		SessionID:  sessionID,
		Parameters: params,
	}, nil
}

// ClearHistory deletes the caller's session namespace.
func (s *Service) ClearHistory(ctx context.Context, username, sessionID string) error {
	if sessionID == "" {
		sessionID = "user:" + username
	}
	return s.history.Reset(ctx, history.Key(username, sessionID))
}

// resolveModel looks the requested model up in the directory. An empty name
// selects the lexicographically first model so the default is deterministic.
func (s *Service) resolveModel(ctx context.Context, name string) (domain.ModelInfo, error) {
	models, err := s.ListModels(ctx)
	if err != nil {
		return domain.ModelInfo{}, err
	}
	if len(models) == 0 {
		return domain.ModelInfo{}, fmt.Errorf("%w: модели не найдены", domain.ErrUnknownModel)
	}

	if name == "" {
		names := make([]string, 0, len(models))
		for n := range models {
			names = append(names, n)
		}
		sort.Strings(names)
		name = names[0]
	}

	model, ok := models[name]
	if !ok {
		return domain.ModelInfo{}, fmt.Errorf("%w: модель '%s' не найдена", domain.ErrUnknownModel, name)
	}
	return model, nil
}

// mergeParams layers request values over model defaults. Optional sampling
// parameters stay nil when the caller did not supply them.
func mergeParams(req *domain.GenerateRequest, model domain.ModelInfo) domain.GenerateParams {
	params := domain.GenerateParams{
		NTokens:       model.DefaultTokens,
		Temperature:   model.DefaultTemp,
		TopP:          req.TopP,
		TopK:          req.TopK,
		RepeatPenalty: req.RepeatPenalty,
		Seed:          req.Seed,
	}
	if params.NTokens <= 0 {
		params.NTokens = 512
	}
	if params.Temperature <= 0 {
		params.Temperature = 0.7
	}
	if req.NTokens != nil {
		params.NTokens = *req.NTokens
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	return params
}
