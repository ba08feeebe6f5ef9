package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"graphdoc/interfaces/http/rest/middleware"
	"graphdoc/pkg/auth"
	"graphdoc/pkg/common"
)

// UserHandler echoes the authenticated session, mostly for client-side
// debugging of token state.
type UserHandler struct {
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(tokens *auth.TokenService, logger *zap.Logger) *UserHandler {
	return &UserHandler{tokens: tokens, logger: logger}
}

// GetUser handles GET /user: the session identity plus the raw claims of
// the token that carried it.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, h.tokens, nil)
		return
	}

	payload := map[string]interface{}{"session": session}
	if token, err := middleware.BearerToken(r); err == nil && token != "" {
		if claims, err := h.tokens.Validate(token, true); err == nil {
			payload["claims"] = map[string]interface{}{
				"sub": claims.Subject,
				"r":   claims.Role,
				"n":   claims.Name,
				"nbf": claims.NotBefore.Unix(),
				"exp": claims.ExpiresAt.Unix(),
			}
		}
	}
	common.RespondJSON(w, http.StatusOK, payload)
}
