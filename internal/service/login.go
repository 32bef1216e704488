package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/domain"
)

// Login verifies credentials and issues a signed token. The token is also
// mirrored into the store under token:<jwt> with the same expiry, so sessions
// can be enumerated and revoked server-side.
func (s *Service) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	attrs, err := s.store.GetAllAttributes(ctx, userEntity(req.Username))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(attrs) == 0 || !auth.VerifyPassword(attrs["password"], req.Password) {
		return nil, fmt.Errorf("%w: неверные данные", domain.ErrUnauthorized)
	}
	role := attrs["role"]
	if role == "" {
		return nil, fmt.Errorf("%w: нет роли", domain.ErrUnauthorized)
	}

	token, err := s.tokens.IssueToken(req.Username, domain.UserRole(role))
	if err != nil {
		return nil, err
	}

	entity := "token:" + token
	expires := time.Now().Add(s.config.TokenExpiry).UTC().Format(time.RFC3339)
	if err := s.store.SetAttribute(ctx, entity, "user", req.Username, s.config.TokenExpiry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := s.store.SetAttribute(ctx, entity, "expires", expires, s.config.TokenExpiry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &domain.LoginResponse{
		Token: token,
		User: domain.User{
			Username: req.Username,
			Role:     domain.UserRole(role),
		},
	}, nil
}
