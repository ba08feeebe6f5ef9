package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewTokenService("secret", "gd", WithClock(fixedClock(now)))
	require.NoError(t, err)

	token, err := svc.Issue("alice", "admin", "Alice A.", nil)
	require.NoError(t, err)

	claims, err := svc.Validate(token, true)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UID())
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Alice A.", claims.Name)
	assert.Equal(t, now.Unix(), claims.NotBefore.Unix())
	assert.Equal(t, now.Add(5*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "gd")
	assert.Error(t, err)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc, err := NewTokenService("secret", "gd", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	token, err := svc.Issue("alice", "admin", "", nil)
	require.NoError(t, err)

	clock = now.Add(6 * time.Minute)
	_, err = svc.Validate(token, true)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// The refresh path reads expired tokens deliberately.
	claims, err := svc.Validate(token, false)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UID())
}

func TestTokenService_NotYetValid(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc, err := NewTokenService("secret", "gd", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	token, err := svc.Issue("alice", "admin", "", nil)
	require.NoError(t, err)

	// A client with a fast clock sees tokens from our future.
	clock = now.Add(-time.Minute)
	_, err = svc.Validate(token, true)
	assert.ErrorIs(t, err, ErrNotYetValid)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-one", "gd")
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-two", "gd")
	require.NoError(t, err)

	token, err := issuer.Issue("alice", "admin", "", nil)
	require.NoError(t, err)

	_, err = verifier.Validate(token, true)
	assert.Error(t, err)
}

func TestTokenService_RefreshKeepsSessionStart(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	svc, err := NewTokenService("secret", "gd", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	token, err := svc.Issue("alice", "admin", "", nil)
	require.NoError(t, err)

	// Refresh an expired token within the session window.
	clock = start.Add(10 * time.Minute)
	fresh, claims, err := svc.Refresh(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UID())

	freshClaims, err := svc.Validate(fresh, true)
	require.NoError(t, err)
	// The session start rides along, so the window keeps counting from the
	// first authentication no matter how often the client refreshes.
	assert.Equal(t, start.Unix(), freshClaims.NotBefore.Unix())
	assert.Equal(t, clock.Add(5*time.Minute).Unix(), freshClaims.ExpiresAt.Unix())
}

func TestTokenService_RefreshAfterSessionWindowCloses(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	svc, err := NewTokenService("secret", "gd", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	token, err := svc.Issue("alice", "admin", "", nil)
	require.NoError(t, err)

	clock = start.Add(30*24*time.Hour + time.Minute)
	_, _, err = svc.Refresh(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestTokenService_Challenge(t *testing.T) {
	svc, err := NewTokenService("secret", "gd")
	require.NoError(t, err)

	assert.Equal(t, `Bearer realm="gd"`, svc.Challenge(nil))
	assert.Equal(t, `Bearer realm="gd", error="invalid_token"`,
		svc.Challenge(map[string]string{"error": "invalid_token"}))
}

func TestTokenService_ValidateRejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("secret", "gd")
	require.NoError(t, err)

	_, err = svc.Validate("", true)
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.Validate("not-a-token", true)
	assert.Error(t, err)
}
