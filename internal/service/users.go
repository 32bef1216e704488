package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/domain"
)

func userEntity(username string) string {
	return "user:" + username
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, req *domain.CreateUserRequest) error {
	if req.Username == "" || req.Password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	existing, err := s.store.GetAllAttributes(ctx, userEntity(req.Username))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: пользователь %s", domain.ErrAlreadyExists, req.Username)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	role := req.Role
	if role == "" {
		role = string(domain.UserRoleUser)
	}
	attrs := map[string]string{
		"username":   req.Username,
		"password":   hash,
		"role":       role,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	for attr, val := range attrs {
		if err := s.store.SetAttribute(ctx, userEntity(req.Username), attr, val, 0); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// UpdateUser changes the password and/or role of an account. Empty fields are
// left untouched.
func (s *Service) UpdateUser(ctx context.Context, req *domain.UpdateUserRequest) error {
	attrs, err := s.store.GetAllAttributes(ctx, userEntity(req.Username))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(attrs) == 0 {
		return fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, req.Username)
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return err
		}
		if err := s.store.SetAttribute(ctx, userEntity(req.Username), "password", hash, 0); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	if req.Role != "" {
		if err := s.store.SetAttribute(ctx, userEntity(req.Username), "role", req.Role, 0); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// DeleteUser removes an account entity.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if err := s.store.DeleteEntity(ctx, userEntity(username)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetUser reads one account.
func (s *Service) GetUser(ctx context.Context, username string) (*domain.User, error) {
	attrs, err := s.store.GetAllAttributes(ctx, userEntity(username))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, username)
	}
	role := attrs["role"]
	if role == "" {
		role = string(domain.UserRoleUser)
	}
	return &domain.User{
		Username:  username,
		Role:      domain.UserRole(role),
		CreatedAt: attrs["created_at"],
	}, nil
}

// FindUsers lists usernames whose given attribute equals the given value.
func (s *Service) FindUsers(ctx context.Context, field, value string) ([]string, error) {
	entities, err := s.store.ScanEntities(ctx, "user:")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var matched []string
	for _, entity := range entities {
		attr, ok, err := s.store.GetAttribute(ctx, entity, field)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if ok && attr == value {
			matched = append(matched, strings.TrimPrefix(entity, "user:"))
		}
	}
	return matched, nil
}
