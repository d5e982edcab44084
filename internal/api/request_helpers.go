package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/proteccion/taskboard-api/internal/api/shared"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/service/auth"
)

// requirePrincipal returns the principal set by the authentication
// middleware, writing a 401 when it is absent.
func requirePrincipal(w http.ResponseWriter, r *http.Request, log *slog.Logger) (domain.Principal, bool) {
	p, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		log.Warn("principal not found in request context")
		HandleAPIError(w, r, auth.ErrMissingToken)
		return domain.Principal{}, false
	}
	return p, true
}

// getPathID parses a positive integer path parameter.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", err)
	}
	return id, nil
}

// handlePrincipalAndPathID extracts both the principal and the id path
// parameter, writing an error response if either is missing or invalid.
func handlePrincipalAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (domain.Principal, int64, bool) {
	p, ok := requirePrincipal(w, r, log)
	if !ok {
		return domain.Principal{}, 0, false
	}

	id, err := getPathID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err)
		return domain.Principal{}, 0, false
	}
	return p, id, true
}
