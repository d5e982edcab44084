package auth

import (
	"context"
	"strings"
	"time"
)

// TokenService issues and verifies the bearer tokens that establish a
// request's principal.
type TokenService interface {
	// IssueToken creates a signed token for username carrying roles.
	IssueToken(ctx context.Context, username string, roles []string) (string, error)

	// ParseToken verifies tokenString and returns its claims. The error is one
	// of ErrInvalidToken, ErrExpiredToken, ErrUnsupportedToken or ErrEmptyClaims.
	ParseToken(ctx context.Context, tokenString string) (*Claims, error)

	// ValidateToken reports whether tokenString would parse. It never returns
	// the underlying failure; the cause is logged instead.
	ValidateToken(ctx context.Context, tokenString string) bool
}

// Claims is the verified content of a token.
type Claims struct {
	Username  string    `json:"sub"`
	Roles     []string  `json:"roles,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti,omitempty"`
}

// joinRoles encodes roles into the single comma-separated "roles" claim.
func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

// splitRoles decodes the "roles" claim, dropping empty entries.
func splitRoles(claim string) []string {
	if claim == "" {
		return nil
	}
	parts := strings.Split(claim, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}
