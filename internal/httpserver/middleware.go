package httpserver

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/replaydeck/replaydeck/internal/httpserver/handlers"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/pkg/env"
)

// AuditLogConfig holds configuration for the audit logging middleware
type AuditLogConfig struct {
	// Enabled controls whether audit logging is active
	Enabled bool
	// IncludeHeaders specifies which headers to include in audit logs
	IncludeHeaders []string
}

// DefaultAuditLogConfig returns the default audit logging configuration
func DefaultAuditLogConfig() AuditLogConfig {
	return AuditLogConfig{
		Enabled:        env.AuditLogEnabled.Get(),
		IncludeHeaders: []string{},
	}
}

// auditLoggingMiddleware logs a compliance-ready audit trail with request ID,
// action, result category, and duration.
func auditLoggingMiddleware(config AuditLogConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			auditLog := logger.Get().Named("audit").With(
				zap.String("request_id", requestID),
				zap.String("timestamp", start.UTC().Format(time.RFC3339Nano)),
				zap.String("action", r.Method+" "+r.URL.Path),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.Header.Get("User-Agent")),
			)
			for _, header := range config.IncludeHeaders {
				if val := r.Header.Get(header); val != "" {
					auditLog = auditLog.With(zap.String("header_"+header, val))
				}
			}

			ww := newStatusResponseWriter(w)
			auditLog.Debug("Audit: request started")
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			auditLog.Info("Audit: request completed",
				zap.Int("status", ww.status),
				zap.String("result", categorizeResult(ww.status)),
				zap.Int64("duration_ms", duration.Milliseconds()),
				zap.String("duration", duration.String()),
			)
		})
	}
}

// categorizeResult returns a human-readable result category for the status code
func categorizeResult(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "success"
	case status >= 300 && status < 400:
		return "redirect"
	case status >= 400 && status < 500:
		return "client_error"
	case status >= 500:
		return "server_error"
	default:
		return "unknown"
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger.Get().Named("http").With(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			log = log.With(zap.String("user_id", userID))
		}

		ww := newStatusResponseWriter(w)
		ctx := logger.IntoContext(r.Context(), log)
		log.Debug("Request started")
		next.ServeHTTP(ww, r.WithContext(ctx))
		log.Info("Request completed",
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// recoveryMiddleware converts handler panics into 500 responses.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("Recovered from handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				handlers.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var _ http.Flusher = &statusResponseWriter{}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{w, http.StatusOK}
}

func (w *statusResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Forward RespondWithError to underlying writer if it implements ErrorResponseWriter
func (w *statusResponseWriter) RespondWithError(err error) {
	if errWriter, ok := w.ResponseWriter.(handlers.ErrorResponseWriter); ok {
		errWriter.RespondWithError(err)
		w.status = http.StatusInternalServerError
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) >= 4 && r.URL.Path[:4] == "/api" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}
