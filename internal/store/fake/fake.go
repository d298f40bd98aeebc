// Package fake provides in-memory store implementations for tests.
package fake

import (
	"context"
	"sort"
	"sync"

	"github.com/replaydeck/replaydeck/internal/store"
)

// BlobStore is an in-memory store.BlobStore.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[string]*store.SessionBlob

	// Err, when set, is returned by every operation.
	Err error
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]*store.SessionBlob)}
}

func (b *BlobStore) GetSession(_ context.Context, sessionID string) (*store.SessionBlob, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, false, b.Err
	}
	blob, ok := b.blobs[sessionID]
	if !ok {
		return nil, false, nil
	}
	cp := *blob
	return &cp, true, nil
}

func (b *BlobStore) PutSession(_ context.Context, blob *store.SessionBlob) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return "", b.Err
	}
	cp := *blob
	b.blobs[blob.SessionID] = &cp
	return "gs://fake-bucket/sessions/" + blob.SessionID + ".json", nil
}

var _ store.BlobStore = (*BlobStore)(nil)

// DocStore is an in-memory store.DocStore.
type DocStore struct {
	mu           sync.Mutex
	sessions     map[string]*store.SessionMetadata
	projects     map[string]*store.Project
	users        map[string]*store.User
	actionIDs    map[string]map[string]int           // projectID -> actionID -> count
	actionEvents map[string][]store.ActionEvent      // projectID -> events
	insights     map[string][]*store.InsightReport   // projectID -> reports, append order
	order        []string                            // session insertion order

	// Err, when set, is returned by every operation.
	Err error
	// SaveActionEventsErr, when set, fails only SaveActionEvents.
	SaveActionEventsErr error
}

// NewDocStore creates an empty in-memory document store.
func NewDocStore() *DocStore {
	return &DocStore{
		sessions:     make(map[string]*store.SessionMetadata),
		projects:     make(map[string]*store.Project),
		users:        make(map[string]*store.User),
		actionIDs:    make(map[string]map[string]int),
		actionEvents: make(map[string][]store.ActionEvent),
		insights:     make(map[string][]*store.InsightReport),
	}
}

func (d *DocStore) SaveSessionMetadata(_ context.Context, meta *store.SessionMetadata) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	if _, ok := d.sessions[meta.SessionID]; !ok {
		d.order = append(d.order, meta.SessionID)
	}
	cp := *meta
	d.sessions[meta.SessionID] = &cp
	return nil
}

func (d *DocStore) ListSessions(_ context.Context, projectID string) ([]store.SessionMetadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var sessions []store.SessionMetadata
	for _, id := range d.order {
		meta := d.sessions[id]
		if meta.ProjectID == projectID {
			sessions = append(sessions, *meta)
		}
	}
	// Newest first, like the Firestore query.
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Timestamp > sessions[j].Timestamp })
	return sessions, nil
}

func (d *DocStore) CreateProject(_ context.Context, project *store.Project) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	cp := *project
	d.projects[project.ID] = &cp
	return nil
}

func (d *DocStore) GetProject(_ context.Context, projectID string) (*store.Project, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	project, ok := d.projects[projectID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *project
	return &cp, nil
}

func (d *DocStore) ListProjects(_ context.Context) ([]store.Project, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	ids := make([]string, 0, len(d.projects))
	for id := range d.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	projects := make([]store.Project, 0, len(ids))
	for _, id := range ids {
		projects = append(projects, *d.projects[id])
	}
	return projects, nil
}

func (d *DocStore) GetProjectByAPIKey(_ context.Context, apiKey string) (*store.Project, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	for _, project := range d.projects {
		if project.PublicAPIKey == apiKey {
			cp := *project
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *DocStore) SaveUser(_ context.Context, user *store.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	cp := *user
	cp.Projects = append([]string(nil), user.Projects...)
	d.users[user.ID] = &cp
	return nil
}

func (d *DocStore) GetUser(_ context.Context, userID string) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	user, ok := d.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *user
	cp.Projects = append([]string(nil), user.Projects...)
	return &cp, nil
}

func (d *DocStore) AttachProject(_ context.Context, userID, projectID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	user, ok := d.users[userID]
	if !ok {
		user = &store.User{ID: userID}
		d.users[userID] = user
	}
	for _, id := range user.Projects {
		if id == projectID {
			return nil
		}
	}
	user.Projects = append(user.Projects, projectID)
	return nil
}

func (d *DocStore) SaveActionEvents(_ context.Context, projectID string, events []store.ActionEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	if d.SaveActionEventsErr != nil {
		return d.SaveActionEventsErr
	}
	d.actionEvents[projectID] = append(d.actionEvents[projectID], events...)
	return nil
}

func (d *DocStore) IncrementActionIDs(_ context.Context, projectID string, counts map[string]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	if d.actionIDs[projectID] == nil {
		d.actionIDs[projectID] = make(map[string]int)
	}
	for id, n := range counts {
		d.actionIDs[projectID][id] += n
	}
	return nil
}

func (d *DocStore) ListActionIDs(_ context.Context, projectID string) ([]store.ActionIDCount, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var ids []store.ActionIDCount
	for id, count := range d.actionIDs[projectID] {
		ids = append(ids, store.ActionIDCount{ID: id, Count: count})
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })
	return ids, nil
}

func (d *DocStore) CountActionEvents(_ context.Context, projectID, actionID string, window store.TimeRange) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	count := 0
	for _, event := range d.actionEvents[projectID] {
		if event.ActionID != actionID {
			continue
		}
		if window.Start != nil && event.Timestamp < *window.Start {
			continue
		}
		if window.End != nil && event.Timestamp > *window.End {
			continue
		}
		count++
	}
	return count, nil
}

func (d *DocStore) ActionEventsByActionID(_ context.Context, projectID, actionID string) ([]store.ActionEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var events []store.ActionEvent
	for _, event := range d.actionEvents[projectID] {
		if event.ActionID == actionID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (d *DocStore) ActionEventsBySession(_ context.Context, projectID, sessionID string) ([]store.ActionEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var events []store.ActionEvent
	for _, event := range d.actionEvents[projectID] {
		if event.SessionID == sessionID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (d *DocStore) SaveInsightReport(_ context.Context, projectID string, report *store.InsightReport) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	cp := *report
	d.insights[projectID] = append(d.insights[projectID], &cp)
	return nil
}

func (d *DocStore) LatestInsightReports(_ context.Context, projectID string, limit int) ([]store.InsightReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	reports := d.insights[projectID]
	var out []store.InsightReport
	for i := len(reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *reports[i])
	}
	return out, nil
}

var _ store.DocStore = (*DocStore)(nil)
