package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// getPrincipal extracts the authenticated principal from the request
// context. When absent it writes a 401 response and returns false; the
// middleware should have rejected the request already.
func getPrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok || principal.ID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return domain.Principal{}, false
	}
	return principal, true
}

// getPathUUID extracts and parses a UUID path parameter. Malformed IDs
// produce a validation error without any store round trip.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName + " is required")
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName + " has invalid format")
	}
	return id, nil
}

// decodeAndValidate decodes the JSON body into v and validates it. On
// failure it writes the appropriate error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithValidationErrors(w, r, validationMessages(err))
		return false
	}
	return true
}

// respondOK writes a 200 success envelope wrapping data.
func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	shared.RespondWithData(w, r, http.StatusOK, data)
}

// respondCreated writes a 201 success envelope wrapping data.
func respondCreated(w http.ResponseWriter, r *http.Request, data any) {
	shared.RespondWithData(w, r, http.StatusCreated, data)
}

// validationMessages flattens a validator error into per-field messages for
// the errors array of the failure envelope.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve.Messages
		}
		return []string{"validation failed"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return messages
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "uuid":
		return field + " must be a valid id"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
