package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/proteccion/taskboard-api/internal/api/shared"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/service"
	"github.com/proteccion/taskboard-api/internal/service/auth"
	"github.com/proteccion/taskboard-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Access
// denial is a not-found condition and maps to 404.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrUnsupportedToken),
		errors.Is(err, auth.ErrEmptyClaims),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Messages
// never include driver or SQL text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return auth.ErrInvalidCredentials.Error()

	case errors.Is(err, auth.ErrMissingToken):
		return "Unauthorized: " + auth.ErrMissingToken.Error()

	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Unauthorized: " + auth.ErrInvalidToken.Error()

	case errors.Is(err, service.ErrTaskNotFound):
		return "task not found"

	case errors.Is(err, service.ErrAssigneeNotFound):
		return "assigned user not found"

	case errors.Is(err, service.ErrPrincipalNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return "user not found"

	case errors.As(err, &verr):
		return verr.Error()

	case errors.Is(err, domain.ErrValidation):
		return domain.ErrValidation.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "invalid task data"

	case errors.Is(err, store.ErrDuplicate):
		return "resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err and logs it.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// SanitizeValidationError turns validator struct errors into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.ErrValidation.Error()
	}

	fe := fieldErrs[0]
	return fmt.Sprintf("%s: %s %s", domain.ErrValidation, strings.ToLower(fe.Field()), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "oneof":
		return "has an invalid value"
	default:
		return "is invalid"
	}
}
