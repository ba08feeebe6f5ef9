// Package auth issues and validates the short-lived session tokens that
// guard the write endpoints. Tokens are HS256 JWTs carrying the user id,
// role and display name; a token lives five minutes and can be refreshed
// for thirty days from the first issue.
package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrNotYetValid      = errors.New("token is not yet valid")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrSessionExpired   = errors.New("session refresh window has closed")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Claims represents the session claims carried in a token.
type Claims struct {
	Role string `json:"r,omitempty"`
	Name string `json:"n,omitempty"`
	jwt.RegisteredClaims
}

// UID returns the authenticated user id.
func (c *Claims) UID() string {
	return c.Subject
}

// TokenService issues, validates and refreshes session tokens.
type TokenService struct {
	secret     []byte
	realm      string
	tokenTTL   time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

// Option tweaks a TokenService; used by tests to control the clock.
type Option func(*TokenService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a token service for the given protection realm.
func NewTokenService(secret, realm string, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	s := &TokenService{
		secret:     []byte(secret),
		realm:      realm,
		tokenTTL:   5 * time.Minute,
		sessionTTL: 30 * 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Realm returns the protection space name used in challenge headers.
func (s *TokenService) Realm() string {
	return s.realm
}

// TokenTTL returns the lifetime of a single token in seconds, as reported
// in the expires_in field of auth responses.
func (s *TokenService) TokenTTL() int {
	return int(s.tokenTTL / time.Second)
}

// Issue creates a token for the session. A nil nbf stamps the session start
// at now; a refresh passes the original nbf through so the thirty-day
// session window keeps counting from first authentication.
func (s *TokenService) Issue(uid, role, name string, nbf *time.Time) (string, error) {
	now := s.now()
	start := now
	if nbf != nil {
		start = *nbf
	}
	claims := &Claims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			NotBefore: jwt.NewNumericDate(start),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token, returning its claims. With checkExp
// false an expired token still validates, which is how the refresh endpoint
// reads the session out of a stale token.
func (s *TokenService) Validate(tokenString string, checkExp bool) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	now := s.now()
	if claims.Subject == "" || claims.ExpiresAt == nil || claims.NotBefore == nil {
		return nil, fmt.Errorf("%w: missing required claim", ErrInvalidToken)
	}
	if now.Before(claims.NotBefore.Time) {
		return nil, ErrNotYetValid
	}
	if checkExp && now.After(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

// Refresh issues a fresh token from an existing one, expired or not, as
// long as the session window from the original nbf has not closed.
func (s *TokenService) Refresh(tokenString string) (string, *Claims, error) {
	claims, err := s.Validate(tokenString, false)
	if err != nil {
		return "", nil, err
	}
	nbf := claims.NotBefore.Time
	if s.now().Sub(nbf) > s.sessionTTL {
		return "", nil, ErrSessionExpired
	}
	token, err := s.Issue(claims.Subject, claims.Role, claims.Name, &nbf)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Challenge builds the WWW-Authenticate header value for a 401 response:
// a single Bearer challenge naming the realm plus any extra parameters.
func (s *TokenService) Challenge(params map[string]string) string {
	parts := []string{fmt.Sprintf("realm=%q", s.realm)}
	for _, k := range sortedKeys(params) {
		parts = append(parts, fmt.Sprintf("%s=%q", k, params[k]))
	}
	return "Bearer " + strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
