package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/replaydeck/replaydeck/pkg/api"
)

// Project defines the project operations
type Project interface {
	CreateProject(ctx context.Context, request *api.CreateProjectRequest) (*api.StandardResponse[api.ProjectResponse], error)
	ListProjects(ctx context.Context, userID string) (*api.StandardResponse[[]api.ProjectResponse], error)
	GetProject(ctx context.Context, projectID string) (*api.StandardResponse[api.ProjectResponse], error)
	ListActionIDs(ctx context.Context, projectID string, start, end *int64) (*api.StandardResponse[[]api.ActionIDCount], error)
	QueryActionEvents(ctx context.Context, request *api.ActionQueryRequest) (*api.StandardResponse[api.ActionQueryResponse], error)
	GenerateInsights(ctx context.Context, request *api.GenerateInsightsRequest) (*api.StandardResponse[api.BulkInsightsResponse], error)
	GetInsights(ctx context.Context, projectID string, limit int) (*api.StandardResponse[[]api.InsightReport], error)
}

// projectClient handles project-related requests
type projectClient struct {
	client *BaseClient
}

// NewProjectClient creates a new project client
func NewProjectClient(client *BaseClient) Project {
	return &projectClient{client: client}
}

// CreateProject creates a new project
func (c *projectClient) CreateProject(ctx context.Context, request *api.CreateProjectRequest) (*api.StandardResponse[api.ProjectResponse], error) {
	resp, err := c.client.Post(ctx, "/api/projects", request, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[api.ProjectResponse]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListProjects lists projects, scoped to a user when userID is set
func (c *projectClient) ListProjects(ctx context.Context, userID string) (*api.StandardResponse[[]api.ProjectResponse], error) {
	userID = c.client.GetUserIDOrDefault(userID)
	resp, err := c.client.Get(ctx, "/api/projects", userID)
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[[]api.ProjectResponse]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetProject retrieves a specific project
func (c *projectClient) GetProject(ctx context.Context, projectID string) (*api.StandardResponse[api.ProjectResponse], error) {
	path := fmt.Sprintf("/api/projects/%s", projectID)
	resp, err := c.client.Get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[api.ProjectResponse]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListActionIDs lists a project's action IDs with occurrence counts,
// optionally recounted within the [start, end] window. Bounds are epoch
// milliseconds, the same clock as the recorded event timestamps
func (c *projectClient) ListActionIDs(ctx context.Context, projectID string, start, end *int64) (*api.StandardResponse[[]api.ActionIDCount], error) {
	query := url.Values{}
	if start != nil {
		query.Set("start", strconv.FormatInt(*start, 10))
	}
	if end != nil {
		query.Set("end", strconv.FormatInt(*end, 10))
	}
	path := fmt.Sprintf("/api/projects/%s/action-ids", projectID)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.client.Get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[[]api.ActionIDCount]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// QueryActionEvents retrieves the events matching an action ID with their
// session context
func (c *projectClient) QueryActionEvents(ctx context.Context, request *api.ActionQueryRequest) (*api.StandardResponse[api.ActionQueryResponse], error) {
	resp, err := c.client.Post(ctx, "/api/rag/query", request, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[api.ActionQueryResponse]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GenerateInsights runs insight generation across all projects
func (c *projectClient) GenerateInsights(ctx context.Context, request *api.GenerateInsightsRequest) (*api.StandardResponse[api.BulkInsightsResponse], error) {
	resp, err := c.client.Post(ctx, "/api/projects/insights", request, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[api.BulkInsightsResponse]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetInsights retrieves a project's latest insight reports
func (c *projectClient) GetInsights(ctx context.Context, projectID string, limit int) (*api.StandardResponse[[]api.InsightReport], error) {
	path := fmt.Sprintf("/api/projects/%s/insights", projectID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := c.client.Get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[[]api.InsightReport]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
