// Package rest wires the HTTP surface: public graph reads, the login and
// refresh endpoints, and token-guarded write routes.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"graphdoc/application/ports"
	"graphdoc/application/services"
	"graphdoc/infrastructure/config"
	"graphdoc/interfaces/http/rest/handlers"
	"graphdoc/interfaces/http/rest/middleware"
	"graphdoc/pkg/auth"
	"graphdoc/pkg/observability"
)

// Store is the full persistence surface the router serves.
type Store interface {
	ports.GraphStore
	ports.NodeStore
	ports.EdgeStore
	ports.DocumentStore
	ports.SnapshotStore
}

// Router creates and configures the HTTP router
type Router struct {
	cfg         *config.Config
	store       Store
	authService *services.AuthService
	tokens      *auth.TokenService
	metrics     *observability.Collector
	viewer      http.Handler
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	store Store,
	authService *services.AuthService,
	tokens *auth.TokenService,
	metrics *observability.Collector,
	viewer http.Handler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:         cfg,
		store:       store,
		authService: authService,
		tokens:      tokens,
		metrics:     metrics,
		viewer:      viewer,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"WWW-Authenticate", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/healthz", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	authHandler := handlers.NewAuthHandler(rt.authService, rt.tokens, rt.metrics, rt.logger)
	graphHandler := handlers.NewGraphHandler(rt.store, rt.metrics, rt.logger)
	nodeHandler := handlers.NewNodeHandler(rt.store, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.store, rt.logger)
	documentHandler := handlers.NewDocumentHandler(rt.store, rt.metrics, rt.logger)
	snapshotHandler := handlers.NewSnapshotHandler(rt.store, rt.metrics, rt.logger)
	userHandler := handlers.NewUserHandler(rt.tokens, rt.logger)

	// Public surface: the viewer, whole-graph reads and single-record
	// reads stay open so shared links work without a session.
	if rt.viewer != nil {
		router.Method(http.MethodGet, "/", rt.viewer)
	}
	router.Post("/auth", authHandler.Login)
	router.Get("/auth", authHandler.Refresh)
	router.Get("/graph/{hid}", graphHandler.GetGraph)
	router.Get("/node/{hid}", nodeHandler.GetNode)
	router.Get("/edge/{parent}/{hist}", edgeHandler.GetEdge)
	router.Get("/edge/null/{hist}", edgeHandler.GetEdge)

	// Everything that writes, plus the listings, needs a session token.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(rt.tokens))

		r.Get("/user", userHandler.GetUser)

		r.Post("/document", documentHandler.CreateDocument)
		r.Post("/document/{parent}", documentHandler.CreateDocument)

		r.Get("/node", nodeHandler.ListNodes)
		r.Post("/node", nodeHandler.CreateNode)
		r.Patch("/node/{hid}", nodeHandler.UpdateNode)
		r.Put("/node/{hid}", nodeHandler.ReplaceNode)
		r.Delete("/node/{hid}", nodeHandler.DeleteNode)

		r.Get("/edge", edgeHandler.ListEdges)
		for _, pattern := range []string{"/edge/{parent}/{hist}", "/edge/null/{hist}"} {
			r.Post(pattern, edgeHandler.CreateEdge)
			r.Patch(pattern, edgeHandler.UpdateEdge)
			r.Put(pattern, edgeHandler.ReplaceEdge)
			r.Delete(pattern, edgeHandler.DeleteEdge)
		}

		r.Post("/snapshot", snapshotHandler.CreateSnapshot)
		r.Post("/snapshot/batch", snapshotHandler.CreateSnapshotBatch)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
