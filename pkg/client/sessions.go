package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/replaydeck/replaydeck/pkg/api"
)

// Session defines the session operations
type Session interface {
	GetSessionEvents(ctx context.Context, sessionID string) ([]json.RawMessage, error)
	IngestEvents(ctx context.Context, request *api.IngestRequest) (*api.IngestResponse, error)
	ListSessionIDs(ctx context.Context, projectID string) (*api.StandardResponse[[]api.SessionSummary], error)
}

// sessionClient handles session-related requests
type sessionClient struct {
	client *BaseClient
}

// NewSessionClient creates a new session client
func NewSessionClient(client *BaseClient) Session {
	return &sessionClient{client: client}
}

// GetSessionEvents retrieves the recorded events of a session. The endpoint
// returns a bare JSON array; unknown sessions yield an empty one.
func (c *sessionClient) GetSessionEvents(ctx context.Context, sessionID string) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/api/sessions/%s/events", sessionID)
	resp, err := c.client.Get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var events []json.RawMessage
	if err := DecodeResponse(resp, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// IngestEvents uploads a batch of recorded events
func (c *sessionClient) IngestEvents(ctx context.Context, request *api.IngestRequest) (*api.IngestResponse, error) {
	resp, err := c.client.Post(ctx, "/api/session-events", request, "")
	if err != nil {
		return nil, err
	}

	var response api.IngestResponse
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListSessionIDs lists the recorded sessions of a project, newest first
func (c *sessionClient) ListSessionIDs(ctx context.Context, projectID string) (*api.StandardResponse[[]api.SessionSummary], error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}
	path := fmt.Sprintf("/api/session-ids?project_id=%s", projectID)
	resp, err := c.client.Get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var response api.StandardResponse[[]api.SessionSummary]
	if err := DecodeResponse(resp, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
