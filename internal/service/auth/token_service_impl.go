package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/proteccion/taskboard-api/internal/config"
	"github.com/proteccion/taskboard-api/internal/platform/logger"
)

// MinSecretLength is the shortest HMAC secret accepted.
const MinSecretLength = 32

// HMACTokenService implements TokenService with HS256-signed JWTs.
type HMACTokenService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration
}

// tokenClaims is the JWT body: sub, iat, exp, jti and a comma-joined roles claim.
type tokenClaims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

var _ TokenService = (*HMACTokenService)(nil)

// Option customizes an HMACTokenService.
type Option func(*HMACTokenService)

// WithTimeFunc replaces the clock used for issuing and validating tokens.
func WithTimeFunc(fn func() time.Time) Option {
	return func(s *HMACTokenService) {
		if fn != nil {
			s.timeFunc = fn
		}
	}
}

// NewTokenService creates an HS256 token service from cfg.
func NewTokenService(cfg config.AuthConfig, opts ...Option) (*HMACTokenService, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if cfg.TokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %d minutes", cfg.TokenLifetimeMinutes)
	}

	s := &HMACTokenService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      time.Now,
		clockSkew:     time.Duration(cfg.ClockSkewSeconds) * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lifetime returns how long issued tokens stay valid.
func (s *HMACTokenService) Lifetime() time.Duration {
	return s.tokenLifetime
}

// IssueToken creates a signed token whose expiry is issue time plus the configured lifetime.
func (s *HMACTokenService) IssueToken(ctx context.Context, username string, roles []string) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := tokenClaims{
		Roles: joinRoles(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign token",
			"error", err,
			"username", username,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return signed, nil
}

// ValidateToken reports whether tokenString is a valid, unexpired token.
func (s *HMACTokenService) ValidateToken(ctx context.Context, tokenString string) bool {
	_, err := s.ParseToken(ctx, tokenString)
	return err == nil
}

// ParseToken verifies tokenString and extracts the username and roles.
func (s *HMACTokenService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		failure, mapped := classify(token, err)
		log.Debug("token validation failed",
			"failure", failure,
			"error", err)
		return nil, mapped
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed", "failure", FailureMalformed)
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		log.Debug("token validation failed", "failure", FailureEmptyClaims, "token_id", claims.ID)
		return nil, ErrEmptyClaims
	}

	result := &Claims{
		Username: claims.Subject,
		Roles:    splitRoles(claims.Roles),
		ID:       claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}

// classify maps a jwt parse error to a log category and one of the package errors.
func classify(token *jwt.Token, err error) (string, error) {
	if token != nil && token.Method != nil && token.Method.Alg() != jwt.SigningMethodHS256.Name {
		return FailureUnsupported, ErrUnsupportedToken
	}
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return FailureExpired, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return FailureSignature, ErrInvalidToken
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return FailureUnsupported, ErrUnsupportedToken
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return FailureEmptyClaims, ErrEmptyClaims
	default:
		// Malformed segments, bad JSON, not-before violations and the like.
		return FailureMalformed, ErrInvalidToken
	}
}
