package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/project"
	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/pkg/api"
)

// ProjectsHandler handles project management requests.
type ProjectsHandler struct {
	*Base
}

// NewProjectsHandler creates a new ProjectsHandler
func NewProjectsHandler(base *Base) *ProjectsHandler {
	return &ProjectsHandler{Base: base}
}

func projectResponse(p *store.Project) api.ProjectResponse {
	return api.ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		CreatedAt:    p.CreatedAt,
		CreatedBy:    p.CreatedBy,
		PublicAPIKey: p.PublicAPIKey,
	}
}

// HandleCreateProject handles POST /api/projects requests.
func (h *ProjectsHandler) HandleCreateProject(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "create-project"))

	var req api.CreateProjectRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Invalid request body", err))
		return
	}

	if req.Name == "" || req.UserID == "" {
		w.RespondWithError(apierrors.NewBadRequestError("Missing required fields (name, user_id)", nil))
		return
	}

	proj, err := h.Projects.Create(r.Context(), req.Name, req.UserID)
	if err != nil {
		log.Error("Failed to create project", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to create project", err))
		return
	}

	log.Info("Successfully created project",
		zap.String("project_id", proj.ID),
		zap.String("user_id", req.UserID),
	)
	data := api.NewResponse(projectResponse(proj), "Successfully created project", false)
	RespondWithJSON(w, http.StatusCreated, data)
}

// HandleListProjects handles GET /api/projects requests. With a user_id
// query parameter only that user's projects are returned.
func (h *ProjectsHandler) HandleListProjects(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "list-projects"))

	var (
		projects []store.Project
		err      error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		log = log.With(zap.String("user_id", userID))
		projects, err = h.Projects.ListForUser(r.Context(), userID)
	} else {
		projects, err = h.Projects.List(r.Context())
	}
	if err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to list projects", err))
		return
	}

	responses := make([]api.ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, projectResponse(&projects[i]))
	}

	log.Info("Successfully listed projects", zap.Int("count", len(responses)))
	data := api.NewResponse(responses, "Successfully listed projects", false)
	RespondWithJSON(w, http.StatusOK, data)
}

// HandleGetProject handles GET /api/projects/{project_id} requests.
func (h *ProjectsHandler) HandleGetProject(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "get-project"))

	projectID, err := GetPathParam(r, "project_id")
	if err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Failed to get project_id from path", err))
		return
	}
	log = log.With(zap.String("project_id", projectID))

	proj, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			w.RespondWithError(apierrors.NewNotFoundError("Project not found", nil))
			return
		}
		log.Error("Failed to get project", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to get project", err))
		return
	}

	log.Info("Successfully retrieved project")
	data := api.NewResponse(projectResponse(proj), "Successfully retrieved project", false)
	RespondWithJSON(w, http.StatusOK, data)
}
