// Package store defines the persistence interfaces for session replay data.
// Event payloads live as one JSON blob per session in an object-storage
// bucket; everything else (session metadata, projects, users, derived action
// records, insight reports) lives in a document database.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// SessionBlob is the object stored at sessions/{session_id}.json. Events are
// kept as raw JSON so recorded payloads round-trip byte-for-byte.
type SessionBlob struct {
	SessionID string            `json:"sessionId"`
	Events    []json.RawMessage `json:"events"`
	Timestamp int64             `json:"timestamp,omitempty"`
}

// SessionMetadata is the document describing one recorded session.
type SessionMetadata struct {
	SessionID string `json:"sessionId" firestore:"sessionId"`
	GCSPath   string `json:"gcs_path" firestore:"gcs_path"`
	ProjectID string `json:"projectId" firestore:"projectId"`
	Timestamp int64  `json:"timestamp" firestore:"timestamp"`
	URL       string `json:"url,omitempty" firestore:"url,omitempty"`
}

// Project is an API tenant. The public API key authorizes event ingest.
type Project struct {
	ID           string `json:"id" firestore:"id"`
	Name         string `json:"name" firestore:"name"`
	CreatedAt    int64  `json:"createdAt" firestore:"createdAt"`
	CreatedBy    string `json:"createdBy" firestore:"createdBy"`
	PublicAPIKey string `json:"publicApiKey" firestore:"publicApiKey"`
}

// User is an account synced from the identity provider.
type User struct {
	ID        string   `json:"id" firestore:"id"`
	Email     string   `json:"email" firestore:"email"`
	FirstName string   `json:"firstName" firestore:"firstName"`
	LastName  string   `json:"lastName" firestore:"lastName"`
	CreatedAt int64    `json:"createdAt" firestore:"createdAt"`
	Projects  []string `json:"projects" firestore:"projects"`
}

// ActionEvent is one derived semantic action extracted from raw events.
type ActionEvent struct {
	ActionID     string            `json:"action_id" firestore:"action_id"`
	ActionString string            `json:"action_string" firestore:"action_string"`
	SessionID    string            `json:"session_id" firestore:"session_id"`
	ElementType  string            `json:"element_type" firestore:"element_type"`
	Attributes   map[string]string `json:"attributes,omitempty" firestore:"attributes,omitempty"`
	Timestamp    int64             `json:"timestamp" firestore:"timestamp"`
}

// ActionIDCount pairs an action ID with how often it has been observed.
type ActionIDCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Insight is a single AI-generated observation about a project.
type Insight struct {
	Title    string `json:"title" firestore:"title"`
	Summary  string `json:"summary" firestore:"summary"`
	Category string `json:"category,omitempty" firestore:"category,omitempty"`
}

// InsightReport is one persisted insight-generation run for a project.
type InsightReport struct {
	Insights   []Insight `json:"insights" firestore:"insights"`
	SessionIDs []string  `json:"sessions_analyzed" firestore:"sessions_analyzed"`
	CreatedAt  int64     `json:"created_at" firestore:"created_at"`
}

// TimeRange restricts a query to [Start, End] in epoch milliseconds. A nil
// bound is unbounded.
type TimeRange struct {
	Start *int64
	End   *int64
}

// BlobStore stores session event blobs in an object-storage bucket.
type BlobStore interface {
	// GetSession downloads the blob for a session. The second return is
	// false when no blob exists, which is not an error.
	GetSession(ctx context.Context, sessionID string) (*SessionBlob, bool, error)

	// PutSession uploads the blob for a session, replacing any existing one.
	// It returns the storage path of the written object.
	PutSession(ctx context.Context, blob *SessionBlob) (string, error)
}

// DocStore stores everything except raw event payloads.
type DocStore interface {
	// Sessions
	SaveSessionMetadata(ctx context.Context, meta *SessionMetadata) error
	ListSessions(ctx context.Context, projectID string) ([]SessionMetadata, error)

	// Projects
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, projectID string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	GetProjectByAPIKey(ctx context.Context, apiKey string) (*Project, error)

	// Users
	SaveUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	AttachProject(ctx context.Context, userID, projectID string) error

	// Derived action records
	SaveActionEvents(ctx context.Context, projectID string, events []ActionEvent) error
	IncrementActionIDs(ctx context.Context, projectID string, counts map[string]int) error
	ListActionIDs(ctx context.Context, projectID string) ([]ActionIDCount, error)
	CountActionEvents(ctx context.Context, projectID, actionID string, window TimeRange) (int, error)
	ActionEventsByActionID(ctx context.Context, projectID, actionID string) ([]ActionEvent, error)
	ActionEventsBySession(ctx context.Context, projectID, sessionID string) ([]ActionEvent, error)

	// Insights
	SaveInsightReport(ctx context.Context, projectID string, report *InsightReport) error
	LatestInsightReports(ctx context.Context, projectID string, limit int) ([]InsightReport, error)
}
