package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/project"
	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/pkg/api"
)

const (
	defaultInsightSessionCount = 5
	maxInsightSessionCount     = 10
	defaultInsightLimit        = 3
	maxInsightLimit            = 10
)

// InsightsHandler runs and serves AI-generated project insight reports.
type InsightsHandler struct {
	*Base
	Docs store.DocStore
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(base *Base, docs store.DocStore) *InsightsHandler {
	return &InsightsHandler{Base: base, Docs: docs}
}

func insightResponses(insights []store.Insight) []api.Insight {
	out := make([]api.Insight, 0, len(insights))
	for _, in := range insights {
		out = append(out, api.Insight{Title: in.Title, Summary: in.Summary, Category: in.Category})
	}
	return out
}

// HandleGenerateInsights handles POST /api/projects/insights requests: every
// project gets up to session_count sampled sessions analyzed, and the
// resulting reports are persisted and returned.
func (h *InsightsHandler) HandleGenerateInsights(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "generate-insights"))

	if h.Intelligence == nil {
		w.RespondWithError(apierrors.NewBadRequestError("Insight generation is disabled", nil))
		return
	}

	var req api.GenerateInsightsRequest
	if r.ContentLength > 0 {
		if err := DecodeJSONBody(r, &req); err != nil {
			w.RespondWithError(apierrors.NewBadRequestError("Invalid request body", err))
			return
		}
	}
	sessionCount := req.SessionCount
	if sessionCount <= 0 {
		sessionCount = defaultInsightSessionCount
	}
	if sessionCount > maxInsightSessionCount {
		sessionCount = maxInsightSessionCount
	}

	projects, err := h.Projects.List(r.Context())
	if err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to list projects", err))
		return
	}

	results := make([]api.ProjectInsightsResult, 0, len(projects))
	var createdAt int64
	for i := range projects {
		proj := &projects[i]
		projLog := log.With(zap.String("project_id", proj.ID))

		sessions, err := h.Replay.SampleSessionsWithEvents(r.Context(), proj.ID, sessionCount)
		if err != nil {
			projLog.Error("Failed to sample sessions, skipping project", zap.Error(err))
			continue
		}
		if len(sessions) == 0 {
			projLog.Info("No sessions with events, skipping project")
			continue
		}

		report, err := h.Intelligence.GenerateProjectInsights(r.Context(), proj.ID, sessions)
		if err != nil {
			projLog.Error("Failed to generate insights, skipping project", zap.Error(err))
			continue
		}
		if report == nil {
			projLog.Info("No analyzable activity, skipping project")
			continue
		}
		createdAt = report.CreatedAt

		totalEvents := 0
		for _, events := range sessions {
			totalEvents += len(events)
		}
		results = append(results, api.ProjectInsightsResult{
			ProjectID:        proj.ID,
			ProjectName:      proj.Name,
			Insights:         insightResponses(report.Insights),
			SessionsAnalyzed: report.SessionIDs,
			TotalEvents:      totalEvents,
		})
		projLog.Info("Generated project insights",
			zap.Int("insights", len(report.Insights)),
			zap.Int("sessions", len(report.SessionIDs)),
		)
	}

	response := api.BulkInsightsResponse{
		ProjectsProcessed: len(results),
		Results:           results,
		CreatedAt:         createdAt,
	}

	log.Info("Successfully generated insights", zap.Int("projects_processed", len(results)))
	data := api.NewResponse(response, "Successfully generated insights", false)
	RespondWithJSON(w, http.StatusOK, data)
}

// HandleGetInsights handles GET /api/projects/{project_id}/insights
// requests, returning the latest persisted reports.
func (h *InsightsHandler) HandleGetInsights(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "get-insights"))

	projectID, err := GetPathParam(r, "project_id")
	if err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Failed to get project_id from path", err))
		return
	}
	log = log.With(zap.String("project_id", projectID))

	limit := defaultInsightLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			w.RespondWithError(apierrors.NewBadRequestError("Invalid limit parameter", err))
			return
		}
		if limit < 1 {
			limit = 1
		}
		if limit > maxInsightLimit {
			limit = maxInsightLimit
		}
	}

	if _, err := h.Projects.Get(r.Context(), projectID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			w.RespondWithError(apierrors.NewNotFoundError("Project not found", nil))
			return
		}
		log.Error("Failed to get project", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to get project", err))
		return
	}

	reports, err := h.Docs.LatestInsightReports(r.Context(), projectID, limit)
	if err != nil {
		log.Error("Failed to load insight reports", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to load insight reports", err))
		return
	}

	responses := make([]api.InsightReport, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, api.InsightReport{
			ProjectID:  projectID,
			Insights:   insightResponses(report.Insights),
			SessionIDs: report.SessionIDs,
			CreatedAt:  report.CreatedAt,
		})
	}

	log.Info("Successfully retrieved insight reports", zap.Int("count", len(responses)))
	data := api.NewResponse(responses, "Successfully retrieved insight reports", false)
	RespondWithJSON(w, http.StatusOK, data)
}
