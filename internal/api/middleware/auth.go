package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/proteccion/taskboard-api/internal/api/shared"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/platform/logger"
	"github.com/proteccion/taskboard-api/internal/service/auth"
)

// AuthMiddleware authenticates bearer tokens.
type AuthMiddleware struct {
	tokens auth.TokenService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	if tokens == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("token service cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate parses the bearer token in the Authorization header and
// stores the resulting principal in the request context. Every failure is a
// 401; the specific cause is only logged.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err == nil {
			var claims *auth.Claims
			claims, err = m.tokens.ParseToken(r.Context(), token)
			if err == nil {
				ctx := shared.WithPrincipal(r.Context(), domain.Principal{
					Username: claims.Username,
					Roles:    claims.Roles,
				})
				ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(slog.String("username", claims.Username)))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		message := "Unauthorized: " + auth.ErrInvalidToken.Error()
		if errors.Is(err, auth.ErrMissingToken) {
			message = "Unauthorized: " + auth.ErrMissingToken.Error()
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, err)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", auth.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}
