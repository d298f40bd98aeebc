// Package httpserver wires the HTTP API: routing, middleware, and the
// adapter that maps typed errors onto status codes.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/httpserver/handlers"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/store"
)

// Config holds the dependencies and settings of the HTTP server.
type Config struct {
	BindAddr       string
	Base           *handlers.Base
	Docs           store.DocStore
	TracingEnabled bool
	AuditLog       AuditLogConfig
}

// HTTPServer serves the session replay API.
type HTTPServer struct {
	config Config
	router *mux.Router
	server *http.Server
}

// NewHTTPServer creates the server and registers all routes.
func NewHTTPServer(config Config) *HTTPServer {
	s := &HTTPServer{config: config}
	s.router = s.buildRouter()

	// CORS wraps outside the router: preflight OPTIONS requests carry no
	// registered route, so mux would 404 them before any router-level
	// middleware could answer.
	var handler http.Handler = corsMiddleware(s.router)
	if config.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "replay-api")
	}
	s.server = &http.Server{
		Addr:              config.BindAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *HTTPServer) buildRouter() *mux.Router {
	router := mux.NewRouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	router.Use(
		recoveryMiddleware,
		loggingMiddleware,
		metricsMiddleware,
		contentTypeMiddleware,
		auditLoggingMiddleware(s.config.AuditLog),
	)

	healthHandler := handlers.NewHealthHandler()
	sessionsHandler := handlers.NewSessionsHandler(s.config.Base)
	projectsHandler := handlers.NewProjectsHandler(s.config.Base)
	actionsHandler := handlers.NewActionsHandler(s.config.Base, s.config.Docs)
	insightsHandler := handlers.NewInsightsHandler(s.config.Base, s.config.Docs)
	accountsHandler := handlers.NewAccountsHandler(s.config.Base)

	router.HandleFunc("/", healthHandler.HandleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler.HandleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions/{session_id}/events", adapt(sessionsHandler.HandleGetSessionEvents)).Methods(http.MethodGet)
	api.HandleFunc("/session-events", adapt(sessionsHandler.HandleIngestEvents)).Methods(http.MethodPost)
	api.HandleFunc("/session-ids", adapt(sessionsHandler.HandleListSessionIDs)).Methods(http.MethodGet)

	api.HandleFunc("/projects", adapt(projectsHandler.HandleCreateProject)).Methods(http.MethodPost)
	api.HandleFunc("/projects", adapt(projectsHandler.HandleListProjects)).Methods(http.MethodGet)
	api.HandleFunc("/projects/insights", adapt(insightsHandler.HandleGenerateInsights)).Methods(http.MethodPost)
	api.HandleFunc("/projects/{project_id}", adapt(projectsHandler.HandleGetProject)).Methods(http.MethodGet)
	api.HandleFunc("/projects/{project_id}/action-ids", adapt(actionsHandler.HandleListActionIDs)).Methods(http.MethodGet)
	api.HandleFunc("/projects/{project_id}/insights", adapt(insightsHandler.HandleGetInsights)).Methods(http.MethodGet)

	api.HandleFunc("/rag/query", adapt(actionsHandler.HandleActionQuery)).Methods(http.MethodPost)
	api.HandleFunc("/webhooks/accounts", adapt(accountsHandler.HandleAccountWebhook)).Methods(http.MethodPost)

	return router
}

// Router exposes the configured router, primarily for tests.
func (s *HTTPServer) Router() http.Handler {
	return s.server.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	logger.Get().Info("Starting HTTP server", zap.String("addr", s.config.BindAddr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// errorResponseWriter adapts http.ResponseWriter with typed error mapping.
type errorResponseWriter struct {
	http.ResponseWriter
}

func (w *errorResponseWriter) RespondWithError(err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		handlers.RespondWithError(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	handlers.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}

func adapt(fn func(handlers.ErrorResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(&errorResponseWriter{w}, r)
	}
}
