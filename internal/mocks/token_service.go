package mocks

import (
	"context"
	"errors"

	"github.com/proteccion/taskboard-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService with function fields.
// Without overrides it issues "token-<username>" and rejects everything on parse.
type MockTokenService struct {
	IssueTokenFn    func(ctx context.Context, username string, roles []string) (string, error)
	ParseTokenFn    func(ctx context.Context, tokenString string) (*auth.Claims, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) bool

	// Tokens maps accepted token strings to the claims they parse to.
	Tokens map[string]*auth.Claims
}

var _ auth.TokenService = (*MockTokenService)(nil)

// NewMockTokenService creates a mock whose accepted tokens come from Tokens.
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{Tokens: make(map[string]*auth.Claims)}
}

// Accept registers tokenString as valid for username with roles.
func (m *MockTokenService) Accept(tokenString, username string, roles ...string) {
	m.Tokens[tokenString] = &auth.Claims{Username: username, Roles: roles}
}

// IssueToken implements auth.TokenService.
func (m *MockTokenService) IssueToken(ctx context.Context, username string, roles []string) (string, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(ctx, username, roles)
	}
	if username == "" {
		return "", errors.New("empty username")
	}
	token := "token-" + username
	if m.Tokens != nil {
		m.Tokens[token] = &auth.Claims{Username: username, Roles: roles}
	}
	return token, nil
}

// ParseToken implements auth.TokenService.
func (m *MockTokenService) ParseToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ParseTokenFn != nil {
		return m.ParseTokenFn(ctx, tokenString)
	}
	if c, ok := m.Tokens[tokenString]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, auth.ErrInvalidToken
}

// ValidateToken implements auth.TokenService.
func (m *MockTokenService) ValidateToken(ctx context.Context, tokenString string) bool {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	_, err := m.ParseToken(ctx, tokenString)
	return err == nil
}
