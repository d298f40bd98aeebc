package api

import "encoding/json"

// StandardResponse is the envelope for all JSON API responses except the raw
// session event stream.
type StandardResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Error   bool   `json:"error"`
}

// NewResponse creates a new StandardResponse with the given data and message
func NewResponse[T any](data T, message string, isError bool) StandardResponse[T] {
	return StandardResponse[T]{
		Message: message,
		Data:    data,
		Error:   isError,
	}
}

// IngestRequest is the body of POST /api/session-events. Events are kept as
// raw JSON; the server never reinterprets recorded payloads.
type IngestRequest struct {
	APIKey    string            `json:"apiKey"`
	SessionID string            `json:"sessionId"`
	Events    []json.RawMessage `json:"events"`
	Timestamp int64             `json:"timestamp,omitempty"`
}

// IngestResponse reports the outcome of a session event upload.
type IngestResponse struct {
	Status string `json:"status"`
	File   string `json:"file,omitempty"`
}

const (
	// IngestStatusSuccess indicates the batch was stored.
	IngestStatusSuccess = "success"
	// IngestStatusTooLong indicates the recording exceeded the duration cap
	// and was refused.
	IngestStatusTooLong = "too_long"
)

// SessionSummary describes one recorded session of a project.
type SessionSummary struct {
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url,omitempty"`
	GCSPath   string `json:"gcs_path"`
}

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

// ProjectResponse describes a project.
type ProjectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
	CreatedBy    string `json:"createdBy,omitempty"`
	PublicAPIKey string `json:"publicApiKey,omitempty"`
}

// ActionIDCount pairs a semantic action ID with its occurrence count.
type ActionIDCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// ActionEventResponse is one derived action record.
type ActionEventResponse struct {
	ActionID     string            `json:"action_id"`
	ActionString string            `json:"action_string"`
	SessionID    string            `json:"session_id"`
	ElementType  string            `json:"element_type"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Timestamp    int64             `json:"timestamp"`
}

// ActionQueryRequest is the body of POST /api/rag/query.
type ActionQueryRequest struct {
	ProjectID string `json:"project_id"`
	ActionID  string `json:"action_id"`
}

// ActionQueryResponse groups the events matching an action ID with the
// surrounding activity of each involved session.
type ActionQueryResponse struct {
	TargetEvents           []ActionEventResponse            `json:"target_events"`
	ContextEventsBySession map[string][]ActionEventResponse `json:"context_events_by_session"`
	SessionIDs             []string                         `json:"session_ids"`
	ActionID               string                           `json:"action_id"`
	Summary                ActionQuerySummary               `json:"summary"`
}

// ActionQuerySummary carries aggregate counts for an action query.
type ActionQuerySummary struct {
	TotalTargetEvents   int `json:"total_target_events"`
	TotalContextEvents  int `json:"total_context_events"`
	SessionsInvolved    int `json:"sessions_involved"`
	SessionsWithContext int `json:"sessions_with_context"`
}

// GenerateInsightsRequest is the body of POST /api/projects/insights.
type GenerateInsightsRequest struct {
	SessionCount int `json:"session_count,omitempty"`
}

// Insight is a single AI-generated observation about a project's sessions.
type Insight struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category,omitempty"`
}

// InsightReport is a persisted batch of insights for a project.
type InsightReport struct {
	ProjectID  string    `json:"project_id"`
	Insights   []Insight `json:"insights"`
	SessionIDs []string  `json:"sessions_analyzed"`
	CreatedAt  int64     `json:"created_at"`
}

// ProjectInsightsResult is the per-project outcome of a bulk insight run.
type ProjectInsightsResult struct {
	ProjectID        string    `json:"project_id"`
	ProjectName      string    `json:"project_name"`
	Insights         []Insight `json:"insights"`
	SessionsAnalyzed []string  `json:"sessions_analyzed"`
	TotalEvents      int       `json:"total_events"`
}

// BulkInsightsResponse is the body of POST /api/projects/insights.
type BulkInsightsResponse struct {
	ProjectsProcessed int                     `json:"projects_processed"`
	Results           []ProjectInsightsResult `json:"results"`
	CreatedAt         int64                   `json:"created_at"`
}

// AccountWebhookEvent is an identity-provider webhook payload.
type AccountWebhookEvent struct {
	Data   json.RawMessage `json:"data"`
	Object string          `json:"object"`
	Type   string          `json:"type"`
}

// WebhookUser is the subset of the identity provider's user payload that
// gets persisted.
type WebhookUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	CreatedAt             int64  `json:"created_at"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}
