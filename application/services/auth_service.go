// Package services holds the application services between the HTTP layer
// and the infrastructure.
package services

import (
	"context"

	"go.uber.org/zap"

	"graphdoc/application/ports"
	"graphdoc/infrastructure/auth/ldapauth"
	apperrors "graphdoc/pkg/errors"
)

// Session is the authenticated identity carried in tokens and request
// contexts.
type Session struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	Name string `json:"name"`
}

// Directory is the credential verifier behind the auth service.
type Directory interface {
	Authenticate(user, password string) (ldapauth.UserData, error)
}

// AuthService authenticates users against the directory and records the
// login in the relational store.
type AuthService struct {
	directory Directory
	users     ports.UserStore
	logger    *zap.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(directory Directory, users ports.UserStore, logger *zap.Logger) *AuthService {
	return &AuthService{directory: directory, users: users, logger: logger}
}

// Authenticate verifies the credentials and returns the session identity.
// Unknown users and bad passwords both collapse into a generic
// invalid-credentials failure; directory outages surface as internal.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (Session, error) {
	data, err := s.directory.Authenticate(username, password)
	switch err {
	case nil:
	case ldapauth.ErrUserNotFound, ldapauth.ErrInvalidCredentials:
		return Session{}, apperrors.NewUnauthorized("invalid credentials")
	default:
		s.logger.Error("Directory authentication failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return Session{}, apperrors.NewInternal("directory unavailable", err)
	}

	if err := s.users.UpsertUser(ctx, username); err != nil {
		return Session{}, apperrors.Wrap(err, "record authentication")
	}

	return Session{
		UID:  username,
		Role: "admin",
		Name: data.Attr("cn"),
	}, nil
}
