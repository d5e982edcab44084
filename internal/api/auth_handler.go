package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/proteccion/taskboard-api/internal/api/shared"
	"github.com/proteccion/taskboard-api/internal/config"
	"github.com/proteccion/taskboard-api/internal/platform/logger"
	"github.com/proteccion/taskboard-api/internal/service/auth"
	"github.com/proteccion/taskboard-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	authConfig       *config.AuthConfig
	logger           *slog.Logger
	timeFunc         func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	tokenService auth.TokenService,
	passwordVerifier auth.PasswordVerifier,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if userStore == nil || tokenService == nil || passwordVerifier == nil || authConfig == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("AuthHandler requires a user store, token service, password verifier and auth config")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		userStore:        userStore,
		tokenService:     tokenService,
		passwordVerifier: passwordVerifier,
		authConfig:       authConfig,
		logger:           logger.With(slog.String("component", "auth_handler")),
		timeFunc:         time.Now,
	}
}

// WithTimeFunc replaces the clock used to report token expiry.
func (h *AuthHandler) WithTimeFunc(fn func() time.Time) *AuthHandler {
	h.timeFunc = fn
	return h
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				auth.ErrInvalidCredentials.Error(), err, shared.WithElevatedLogLevel())
			return
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			auth.ErrInvalidCredentials.Error(), err, shared.WithElevatedLogLevel())
		return
	}

	issuedAt := h.timeFunc()
	token, err := h.tokenService.IssueToken(r.Context(), user.Username, user.Roles)
	if err != nil {
		log.Error("failed to issue token", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}

	log.Info("user logged in", slog.String("username", user.Username))
	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: issuedAt.Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute).UTC(),
		Username:  user.Username,
		Roles:     roles,
	})
}
