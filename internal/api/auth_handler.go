package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/service"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
	errorDetail bool
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// errorDetail enables internal error messages in responses outside
// production.
func NewAuthHandler(authService service.AuthService, logger *slog.Logger, errorDetail bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger.With(slog.String("component", "auth_handler")),
		errorDetail: errorDetail,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondCreated(w, r, AuthData{User: user, Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, AuthData{User: user, Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// RefreshToken handles POST /api/auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, AuthData{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(r.Context(), principal.ID)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, user)
}
