package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/project"
	"github.com/replaydeck/replaydeck/internal/replay"
	"github.com/replaydeck/replaydeck/pkg/api"
)

// SessionsHandler handles session event retrieval and ingest.
type SessionsHandler struct {
	*Base
}

// NewSessionsHandler creates a new SessionsHandler
func NewSessionsHandler(base *Base) *SessionsHandler {
	return &SessionsHandler{Base: base}
}

// HandleGetSessionEvents handles GET /api/sessions/{session_id}/events
// requests. The response body is the bare JSON array of recorded events, in
// stored order; unknown sessions yield an empty array.
func (h *SessionsHandler) HandleGetSessionEvents(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "get-session-events"))

	sessionID, err := GetPathParam(r, "session_id")
	if err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Failed to get session_id from path", err))
		return
	}
	log = log.With(zap.String("session_id", sessionID))

	events, err := h.Replay.Events(r.Context(), sessionID)
	if err != nil {
		log.Error("Failed to retrieve session events", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to retrieve session events", err))
		return
	}

	log.Info("Successfully retrieved session events", zap.Int("count", len(events)))
	RespondWithJSON(w, http.StatusOK, events)
}

// HandleIngestEvents handles POST /api/session-events requests.
func (h *SessionsHandler) HandleIngestEvents(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "ingest-events"))

	var req api.IngestRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Invalid request body", err))
		return
	}

	if req.SessionID == "" {
		w.RespondWithError(apierrors.NewBadRequestError("Missing required field sessionId", nil))
		return
	}

	proj, err := h.Projects.Authorize(r.Context(), req.APIKey)
	if err != nil {
		if errors.Is(err, project.ErrInvalidAPIKey) {
			w.RespondWithError(apierrors.NewUnauthorizedError("Invalid API key", nil))
			return
		}
		log.Error("Failed to authorize API key", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to authorize API key", err))
		return
	}

	log = log.With(
		zap.String("project_id", proj.ID),
		zap.String("session_id", req.SessionID),
	)

	path, err := h.Replay.Ingest(r.Context(), proj.ID, req.SessionID, req.Events, req.Timestamp)
	if errors.Is(err, replay.ErrSessionTooLong) {
		log.Warn("Recording exceeds maximum duration, refusing batch")
		RespondWithJSON(w, http.StatusOK, api.IngestResponse{Status: api.IngestStatusTooLong})
		return
	}
	if err != nil {
		log.Error("Failed to store session events", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to store session events", err))
		return
	}

	if h.Intelligence != nil && len(req.Events) > 0 {
		// Analysis runs after the response; its failures never affect ingest.
		go func() {
			ctx := logger.IntoContext(context.Background(), log)
			if err := h.Intelligence.AnalyzeSession(ctx, proj.ID, req.SessionID, req.Events); err != nil {
				log.Error("Session analysis failed", zap.Error(err))
			}
		}()
	}

	log.Info("Successfully stored session events", zap.Int("count", len(req.Events)))
	RespondWithJSON(w, http.StatusOK, api.IngestResponse{Status: api.IngestStatusSuccess, File: path})
}

// HandleListSessionIDs handles GET /api/session-ids requests.
func (h *SessionsHandler) HandleListSessionIDs(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "list-session-ids"))

	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		w.RespondWithError(apierrors.NewBadRequestError("Missing required query parameter project_id", nil))
		return
	}
	log = log.With(zap.String("project_id", projectID))

	sessions, err := h.Replay.ListSessions(r.Context(), projectID)
	if err != nil {
		log.Error("Failed to list sessions", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to list sessions", err))
		return
	}

	summaries := make([]api.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, api.SessionSummary{
			SessionID: s.SessionID,
			Timestamp: s.Timestamp,
			URL:       s.URL,
			GCSPath:   s.GCSPath,
		})
	}

	log.Info("Successfully listed sessions", zap.Int("count", len(summaries)))
	data := api.NewResponse(summaries, "Successfully listed sessions", false)
	RespondWithJSON(w, http.StatusOK, data)
}
