// Package di wires the application together. Construction is explicit:
// each dependency has a provider and InitializeContainer calls them in
// order.
package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"graphdoc/application/services"
	"graphdoc/infrastructure/auth/ldapauth"
	"graphdoc/infrastructure/config"
	"graphdoc/infrastructure/persistence/postgres"
	"graphdoc/interfaces/http/web"
	"graphdoc/pkg/auth"
	"graphdoc/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       *postgres.Store
	Directory   services.Directory
	AuthService *services.AuthService
	Tokens      *auth.TokenService
	Metrics     *observability.Collector
	Viewer      *web.Viewer
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// ProvideStore connects to postgres and applies pending migrations.
func ProvideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*postgres.Store, error) {
	store, err := postgres.New(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// ProvideDirectory creates the credential verifier. Development without a
// directory configured gets a stub that accepts any credentials, loudly.
func ProvideDirectory(cfg *config.Config, logger *zap.Logger) (services.Directory, error) {
	if cfg.LDAPDSN != "" {
		return ldapauth.New(cfg.LDAPDSN)
	}
	if !cfg.IsDevelopment() {
		return nil, fmt.Errorf("GD_LDAP_DSN is required outside development")
	}
	logger.Warn("No directory configured; accepting any credentials")
	return openDirectory{}, nil
}

type openDirectory struct{}

func (openDirectory) Authenticate(user, password string) (ldapauth.UserData, error) {
	return ldapauth.UserData{DN: "uid=" + user}, nil
}

// ProvideTokenService creates the session token service.
func ProvideTokenService(cfg *config.Config, logger *zap.Logger) (*auth.TokenService, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("GD_JWT_SECRET is required outside development")
		}
		logger.Warn("No token secret configured; using an insecure development secret")
		secret = "insecure-development-secret"
	}
	return auth.NewTokenService(secret, cfg.Realm)
}

// ProvideViewer pre-renders the embedded visualization page.
func ProvideViewer(cfg *config.Config, logger *zap.Logger) (*web.Viewer, error) {
	return web.NewViewer(web.ViewerConfig{CanvasHeight: cfg.CanvasHeight}, logger)
}

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, err := ProvideStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	directory, err := ProvideDirectory(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	tokens, err := ProvideTokenService(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	viewer, err := ProvideViewer(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	metrics := observability.NewCollector("graphdoc")
	authService := services.NewAuthService(directory, store, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Directory:   directory,
		AuthService: authService,
		Tokens:      tokens,
		Metrics:     metrics,
		Viewer:      viewer,
	}, nil
}

// Shutdown releases held resources.
func (c *Container) Shutdown() {
	if c.Store != nil {
		c.Store.Close()
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
}
