// Package firestore implements store.DocStore on Google Cloud Firestore.
//
// Collection layout:
//
//	session_replays/{session_id}            session metadata
//	projects/{project_id}                   project documents
//	projects/{project_id}/action_ids/{id}   per-action occurrence counts
//	projects/{project_id}/action_events/*   derived action records
//	projects/{project_id}/insights/*        insight reports
//	users/{user_id}                         accounts
package firestore

import (
	"context"
	"fmt"

	cloudfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/replaydeck/replaydeck/internal/store"
)

const (
	collSessions     = "session_replays"
	collProjects     = "projects"
	collUsers        = "users"
	collActionIDs    = "action_ids"
	collActionEvents = "action_events"
	collInsights     = "insights"
)

// DocStore is a Firestore-backed document store.
type DocStore struct {
	client *cloudfirestore.Client
}

// Options configures the document store.
type Options struct {
	// ProjectID of the hosting Google Cloud project. Empty detects the
	// project from the credentials.
	ProjectID string
	// CredentialsFile is the path to a service account JSON key. Empty
	// falls back to Application Default Credentials.
	CredentialsFile string
}

// NewDocStore connects to Firestore.
func NewDocStore(ctx context.Context, opts Options) (*DocStore, error) {
	projectID := opts.ProjectID
	if projectID == "" {
		projectID = cloudfirestore.DetectProjectID
	}
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	client, err := cloudfirestore.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &DocStore{client: client}, nil
}

func (d *DocStore) SaveSessionMetadata(ctx context.Context, meta *store.SessionMetadata) error {
	_, err := d.client.Collection(collSessions).Doc(meta.SessionID).Set(ctx, meta)
	if err != nil {
		return fmt.Errorf("failed to save session metadata for %q: %w", meta.SessionID, err)
	}
	return nil
}

func (d *DocStore) ListSessions(ctx context.Context, projectID string) ([]store.SessionMetadata, error) {
	iter := d.client.Collection(collSessions).
		Where("projectId", "==", projectID).
		OrderBy("timestamp", cloudfirestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var sessions []store.SessionMetadata
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions for project %q: %w", projectID, err)
		}
		var meta store.SessionMetadata
		if err := snap.DataTo(&meta); err != nil {
			return nil, fmt.Errorf("failed to decode session metadata %q: %w", snap.Ref.ID, err)
		}
		sessions = append(sessions, meta)
	}
	return sessions, nil
}

func (d *DocStore) CreateProject(ctx context.Context, project *store.Project) error {
	_, err := d.client.Collection(collProjects).Doc(project.ID).Set(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to create project %q: %w", project.ID, err)
	}
	return nil
}

func (d *DocStore) GetProject(ctx context.Context, projectID string) (*store.Project, error) {
	snap, err := d.client.Collection(collProjects).Doc(projectID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %q: %w", projectID, err)
	}
	var project store.Project
	if err := snap.DataTo(&project); err != nil {
		return nil, fmt.Errorf("failed to decode project %q: %w", projectID, err)
	}
	project.ID = snap.Ref.ID
	return &project, nil
}

func (d *DocStore) ListProjects(ctx context.Context) ([]store.Project, error) {
	iter := d.client.Collection(collProjects).Documents(ctx)
	defer iter.Stop()

	var projects []store.Project
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		var project store.Project
		if err := snap.DataTo(&project); err != nil {
			return nil, fmt.Errorf("failed to decode project %q: %w", snap.Ref.ID, err)
		}
		project.ID = snap.Ref.ID
		projects = append(projects, project)
	}
	return projects, nil
}

func (d *DocStore) GetProjectByAPIKey(ctx context.Context, apiKey string) (*store.Project, error) {
	iter := d.client.Collection(collProjects).
		Where("publicApiKey", "==", apiKey).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project by API key: %w", err)
	}
	var project store.Project
	if err := snap.DataTo(&project); err != nil {
		return nil, fmt.Errorf("failed to decode project %q: %w", snap.Ref.ID, err)
	}
	project.ID = snap.Ref.ID
	return &project, nil
}

func (d *DocStore) SaveUser(ctx context.Context, user *store.User) error {
	_, err := d.client.Collection(collUsers).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.ID, err)
	}
	return nil
}

func (d *DocStore) GetUser(ctx context.Context, userID string) (*store.User, error) {
	snap, err := d.client.Collection(collUsers).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", userID, err)
	}
	var user store.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %q: %w", userID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

// AttachProject records project membership on the user document. A missing
// user document is created on the fly so webhook ordering does not matter.
func (d *DocStore) AttachProject(ctx context.Context, userID, projectID string) error {
	ref := d.client.Collection(collUsers).Doc(userID)
	_, err := ref.Update(ctx, []cloudfirestore.Update{
		{Path: "projects", Value: cloudfirestore.ArrayUnion(projectID)},
	})
	if status.Code(err) == codes.NotFound {
		_, err = ref.Set(ctx, map[string]interface{}{
			"id":       userID,
			"projects": []string{projectID},
		}, cloudfirestore.MergeAll)
	}
	if err != nil {
		return fmt.Errorf("failed to attach project %q to user %q: %w", projectID, userID, err)
	}
	return nil
}

func (d *DocStore) SaveActionEvents(ctx context.Context, projectID string, events []store.ActionEvent) error {
	if len(events) == 0 {
		return nil
	}
	coll := d.client.Collection(collProjects).Doc(projectID).Collection(collActionEvents)
	bw := d.client.BulkWriter(ctx)
	jobs := make([]*cloudfirestore.BulkWriterJob, 0, len(events))
	for i := range events {
		job, err := bw.Create(coll.NewDoc(), &events[i])
		if err != nil {
			return fmt.Errorf("failed to enqueue action event write: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	// End flushes without reporting; per-document failures only surface
	// through the job results.
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write action event: %w", err)
		}
	}
	return nil
}

func (d *DocStore) IncrementActionIDs(ctx context.Context, projectID string, counts map[string]int) error {
	coll := d.client.Collection(collProjects).Doc(projectID).Collection(collActionIDs)
	for actionID, n := range counts {
		_, err := coll.Doc(actionID).Set(ctx, map[string]interface{}{
			"count": cloudfirestore.Increment(n),
		}, cloudfirestore.MergeAll)
		if err != nil {
			return fmt.Errorf("failed to increment action id %q: %w", actionID, err)
		}
	}
	return nil
}

func (d *DocStore) ListActionIDs(ctx context.Context, projectID string) ([]store.ActionIDCount, error) {
	iter := d.client.Collection(collProjects).Doc(projectID).Collection(collActionIDs).Documents(ctx)
	defer iter.Stop()

	var ids []store.ActionIDCount
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list action ids for project %q: %w", projectID, err)
		}
		count := 0
		if raw, err := snap.DataAt("count"); err == nil {
			if n, ok := raw.(int64); ok {
				count = int(n)
			}
		}
		ids = append(ids, store.ActionIDCount{ID: snap.Ref.ID, Count: count})
	}
	return ids, nil
}

func (d *DocStore) CountActionEvents(ctx context.Context, projectID, actionID string, window store.TimeRange) (int, error) {
	q := d.client.Collection(collProjects).Doc(projectID).Collection(collActionEvents).
		Where("action_id", "==", actionID)
	if window.Start != nil {
		q = q.Where("timestamp", ">=", *window.Start)
	}
	if window.End != nil {
		q = q.Where("timestamp", "<=", *window.End)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count action events for %q: %w", actionID, err)
		}
		count++
	}
	return count, nil
}

func (d *DocStore) ActionEventsByActionID(ctx context.Context, projectID, actionID string) ([]store.ActionEvent, error) {
	q := d.client.Collection(collProjects).Doc(projectID).Collection(collActionEvents).
		Where("action_id", "==", actionID)
	return d.collectActionEvents(ctx, q)
}

func (d *DocStore) ActionEventsBySession(ctx context.Context, projectID, sessionID string) ([]store.ActionEvent, error) {
	q := d.client.Collection(collProjects).Doc(projectID).Collection(collActionEvents).
		Where("session_id", "==", sessionID)
	return d.collectActionEvents(ctx, q)
}

func (d *DocStore) collectActionEvents(ctx context.Context, q cloudfirestore.Query) ([]store.ActionEvent, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var events []store.ActionEvent
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query action events: %w", err)
		}
		var event store.ActionEvent
		if err := snap.DataTo(&event); err != nil {
			return nil, fmt.Errorf("failed to decode action event %q: %w", snap.Ref.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (d *DocStore) SaveInsightReport(ctx context.Context, projectID string, report *store.InsightReport) error {
	_, _, err := d.client.Collection(collProjects).Doc(projectID).Collection(collInsights).Add(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save insight report for project %q: %w", projectID, err)
	}
	return nil
}

func (d *DocStore) LatestInsightReports(ctx context.Context, projectID string, limit int) ([]store.InsightReport, error) {
	iter := d.client.Collection(collProjects).Doc(projectID).Collection(collInsights).
		OrderBy("created_at", cloudfirestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var reports []store.InsightReport
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list insight reports for project %q: %w", projectID, err)
		}
		var report store.InsightReport
		if err := snap.DataTo(&report); err != nil {
			return nil, fmt.Errorf("failed to decode insight report %q: %w", snap.Ref.ID, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Close releases the underlying Firestore client.
func (d *DocStore) Close() error {
	return d.client.Close()
}

var _ store.DocStore = (*DocStore)(nil)
