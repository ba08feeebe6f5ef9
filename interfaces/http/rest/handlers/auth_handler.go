package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"graphdoc/application/services"
	"graphdoc/interfaces/http/rest/middleware"
	"graphdoc/pkg/auth"
	"graphdoc/pkg/common"
	apperrors "graphdoc/pkg/errors"
	"graphdoc/pkg/observability"
)

// AuthHandler serves login and token refresh.
type AuthHandler struct {
	service *services.AuthService
	tokens  *auth.TokenService
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *services.AuthService, tokens *auth.TokenService, metrics *observability.Collector, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens, metrics: metrics, logger: logger}
}

type loginRequest struct {
	UID      *string `json:"uid"`
	Password *string `json:"password"`
}

func (h *AuthHandler) respondToken(w http.ResponseWriter, token string) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   h.tokens.TokenTTL(),
	})
}

// Login handles POST /auth: verifies the credentials against the directory
// and answers with a fresh bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == nil || req.Password == nil {
		common.RespondError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	session, err := h.service.Authenticate(r.Context(), *req.UID, *req.Password)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			h.metrics.AuthFailures.Inc()
			middleware.Unauthorized(w, h.tokens, nil)
			return
		}
		respondAppError(w, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(session.UID, session.Role, session.Name, nil)
	if err != nil {
		respondAppError(w, h.logger, apperrors.NewInternal("issue token", err))
		return
	}
	h.respondToken(w, token)
}

// Refresh handles GET /auth: re-issues a token from the one presented, even
// an expired one, as long as the session window is still open. The session
// start survives refreshes, so the window closes at a fixed point no matter
// how often the client refreshes.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil || token == "" {
		middleware.Unauthorized(w, h.tokens, nil)
		return
	}

	fresh, _, err := h.tokens.Refresh(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotYetValid):
			middleware.Unauthorized(w, h.tokens, map[string]string{"error": "unsynchronized"})
		default:
			middleware.Unauthorized(w, h.tokens, map[string]string{"error": "invalid_token"})
		}
		return
	}
	h.respondToken(w, fresh)
}
