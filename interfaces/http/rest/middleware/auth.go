package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"graphdoc/application/services"
	"graphdoc/pkg/auth"
	"graphdoc/pkg/common"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the authenticated session stored by Authorize.
func SessionFromContext(ctx context.Context) (services.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(services.Session)
	return s, ok
}

// SetSession stores a session in the context; used by Authorize and by
// handler tests.
func SetSession(ctx context.Context, s services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// BearerToken extracts the bearer token from a request. An Authorization
// header with any other scheme is an error; an absent header yields an
// empty token.
func BearerToken(r *http.Request) (string, error) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	if !strings.HasPrefix(header, prefix) {
		return "", errors.New("authorization header is not a bearer token")
	}
	return header[len(prefix):], nil
}

// Authorize restricts access to requests carrying a valid session token.
// Failures answer 401 with a Bearer challenge naming the realm.
func Authorize(tokens *auth.TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil || token == "" {
				Unauthorized(w, tokens, nil)
				return
			}

			claims, err := tokens.Validate(token, true)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrNotYetValid):
					Unauthorized(w, tokens, map[string]string{"error": "unsynchronized"})
				default:
					Unauthorized(w, tokens, map[string]string{"error": "invalid_token"})
				}
				return
			}

			session := services.Session{
				UID:  claims.UID(),
				Role: claims.Role,
				Name: claims.Name,
			}
			next.ServeHTTP(w, r.WithContext(SetSession(r.Context(), session)))
		})
	}
}

// Unauthorized answers 401 with a single Bearer challenge in the
// WWW-Authenticate header. The params map adds challenge parameters.
func Unauthorized(w http.ResponseWriter, tokens *auth.TokenService, params map[string]string) {
	w.Header().Set("WWW-Authenticate", tokens.Challenge(params))
	common.RespondError(w, http.StatusUnauthorized, "unauthorized", nil)
}
