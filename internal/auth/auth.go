// Package auth handles password hashing, token issuance and caller identity
// extraction for the HTTP surface.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Timtroll/llm/internal/domain"
	"github.com/Timtroll/llm/internal/store"
)

const issuer = "llm"

// identityKey is the echo context key carrying the authenticated identity.
const identityKey = "auth.identity"

// Identity is the authenticated caller.
type Identity struct {
	Username string
	Role     domain.UserRole
}

// Manager issues and verifies HS256 tokens.
type Manager struct {
	secret []byte
	expiry time.Duration
}

func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{secret: []byte(secret), expiry: expiry}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken creates a signed token for the given identity.
func (m *Manager) IssueToken(username string, role domain.UserRole) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  username,
		"role": string(role),
		"iss":  issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(m.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the identity it carries.
func (m *Manager) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: invalid claims", domain.ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", domain.ErrUnauthorized)
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = string(domain.UserRoleUser)
	}
	return Identity{Username: sub, Role: domain.UserRole(role)}, nil
}

// Middleware authenticates requests via a bearer token and rejects callers
// whose account no longer exists in the store.
func (m *Manager) Middleware(st store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			identity, err := m.ParseToken(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if err := m.checkAccount(c.Request().Context(), st, &identity); err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			}
			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// checkAccount confirms the user entity still exists and refreshes the role
// from the store, which is authoritative over the token claim.
func (m *Manager) checkAccount(ctx context.Context, st store.Store, identity *Identity) error {
	attrs, err := st.GetAllAttributes(ctx, "user:"+identity.Username)
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return domain.ErrNotFound
	}
	if role := attrs["role"]; role != "" {
		identity.Role = domain.UserRole(role)
	}
	return nil
}

// SetIdentity attaches an authenticated identity to the request context.
func SetIdentity(c echo.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// CurrentIdentity returns the authenticated identity set by Middleware.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(identityKey).(Identity)
	return identity, ok
}
