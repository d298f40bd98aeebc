package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/pkg/api"
)

// ActionsHandler serves the derived action records produced by analysis.
type ActionsHandler struct {
	*Base
	Docs store.DocStore
}

// NewActionsHandler creates a new ActionsHandler
func NewActionsHandler(base *Base, docs store.DocStore) *ActionsHandler {
	return &ActionsHandler{Base: base, Docs: docs}
}

func actionEventResponse(e *store.ActionEvent) api.ActionEventResponse {
	return api.ActionEventResponse{
		ActionID:     e.ActionID,
		ActionString: e.ActionString,
		SessionID:    e.SessionID,
		ElementType:  e.ElementType,
		Attributes:   e.Attributes,
		Timestamp:    e.Timestamp,
	}
}

// HandleListActionIDs handles GET /api/projects/{project_id}/action-ids
// requests. Optional start and end query parameters (epoch milliseconds)
// recount occurrences within the window instead of using lifetime totals.
func (h *ActionsHandler) HandleListActionIDs(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "list-action-ids"))

	projectID, err := GetPathParam(r, "project_id")
	if err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Failed to get project_id from path", err))
		return
	}
	log = log.With(zap.String("project_id", projectID))

	window, err := parseTimeRange(r)
	if err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Invalid start or end parameter", err))
		return
	}

	counts, err := h.Docs.ListActionIDs(r.Context(), projectID)
	if err != nil {
		log.Error("Failed to list action IDs", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to list action IDs", err))
		return
	}

	results := make([]api.ActionIDCount, 0, len(counts))
	for _, c := range counts {
		count := c.Count
		if window.Start != nil || window.End != nil {
			count, err = h.Docs.CountActionEvents(r.Context(), projectID, c.ID, window)
			if err != nil {
				log.Error("Failed to count action events", zap.Error(err), zap.String("action_id", c.ID))
				w.RespondWithError(apierrors.NewInternalServerError("Failed to count action events", err))
				return
			}
			if count == 0 {
				continue
			}
		}
		results = append(results, api.ActionIDCount{ID: c.ID, Count: count})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Count > results[j].Count })

	log.Info("Successfully listed action IDs", zap.Int("count", len(results)))
	data := api.NewResponse(results, "Successfully listed action IDs", false)
	RespondWithJSON(w, http.StatusOK, data)
}

// HandleActionQuery handles POST /api/rag/query requests: the events
// matching an action ID plus the surrounding activity of each session that
// produced one.
func (h *ActionsHandler) HandleActionQuery(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "action-query"))

	var req api.ActionQueryRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Invalid request body", err))
		return
	}
	if req.ProjectID == "" || req.ActionID == "" {
		w.RespondWithError(apierrors.NewBadRequestError("Missing required fields (project_id, action_id)", nil))
		return
	}
	log = log.With(
		zap.String("project_id", req.ProjectID),
		zap.String("action_id", req.ActionID),
	)

	targets, err := h.Docs.ActionEventsByActionID(r.Context(), req.ProjectID, req.ActionID)
	if err != nil {
		log.Error("Failed to query action events", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to query action events", err))
		return
	}

	targetResponses := make([]api.ActionEventResponse, 0, len(targets))
	sessionSet := make(map[string]struct{})
	for i := range targets {
		targetResponses = append(targetResponses, actionEventResponse(&targets[i]))
		sessionSet[targets[i].SessionID] = struct{}{}
	}
	sessionIDs := make([]string, 0, len(sessionSet))
	for id := range sessionSet {
		sessionIDs = append(sessionIDs, id)
	}
	sort.Strings(sessionIDs)

	contextBySession := make(map[string][]api.ActionEventResponse, len(sessionIDs))
	totalContext := 0
	sessionsWithContext := 0
	for _, sessionID := range sessionIDs {
		events, err := h.Docs.ActionEventsBySession(r.Context(), req.ProjectID, sessionID)
		if err != nil {
			log.Error("Failed to load session context", zap.Error(err), zap.String("session_id", sessionID))
			w.RespondWithError(apierrors.NewInternalServerError("Failed to load session context", err))
			return
		}
		contextEvents := make([]api.ActionEventResponse, 0, len(events))
		for i := range events {
			if events[i].ActionID == req.ActionID {
				continue
			}
			contextEvents = append(contextEvents, actionEventResponse(&events[i]))
		}
		contextBySession[sessionID] = contextEvents
		totalContext += len(contextEvents)
		if len(contextEvents) > 0 {
			sessionsWithContext++
		}
	}

	response := api.ActionQueryResponse{
		TargetEvents:           targetResponses,
		ContextEventsBySession: contextBySession,
		SessionIDs:             sessionIDs,
		ActionID:               req.ActionID,
		Summary: api.ActionQuerySummary{
			TotalTargetEvents:   len(targetResponses),
			TotalContextEvents:  totalContext,
			SessionsInvolved:    len(sessionIDs),
			SessionsWithContext: sessionsWithContext,
		},
	}

	log.Info("Successfully queried action events",
		zap.Int("target_events", len(targetResponses)),
		zap.Int("sessions", len(sessionIDs)),
	)
	data := api.NewResponse(response, "Successfully queried action events", false)
	RespondWithJSON(w, http.StatusOK, data)
}

func parseTimeRange(r *http.Request) (store.TimeRange, error) {
	var window store.TimeRange
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return store.TimeRange{}, err
		}
		window.Start = &start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return store.TimeRange{}, err
		}
		window.End = &end
	}
	return window, nil
}
