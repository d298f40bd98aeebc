// Package replay implements the session event service: retrieval of
// recorded events, ingest of new batches, and session listing.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/store"
	"go.uber.org/zap"
)

// ErrSessionTooLong is returned by Ingest when the combined recording spans
// more than the configured maximum duration. The batch is not stored.
var ErrSessionTooLong = errors.New("session exceeds maximum duration")

// Service coordinates the blob store and document store for session data.
type Service struct {
	blobs       store.BlobStore
	docs        store.DocStore
	maxDuration time.Duration
	now         func() time.Time
}

// NewService creates a session service. maxDuration caps the recording span
// accepted on ingest; zero disables the cap.
func NewService(blobs store.BlobStore, docs store.DocStore, maxDuration time.Duration) *Service {
	return &Service{
		blobs:       blobs,
		docs:        docs,
		maxDuration: maxDuration,
		now:         time.Now,
	}
}

// Events returns the ordered event sequence of a session. An unknown
// session yields an empty (non-nil) slice; only backend failures error.
func (s *Service) Events(ctx context.Context, sessionID string) ([]json.RawMessage, error) {
	log := logger.FromContext(ctx).With(zap.String("session_id", sessionID))

	blob, found, err := s.blobs.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events for session %q: %w", sessionID, err)
	}
	if !found {
		log.Info("Session not found in storage")
		return []json.RawMessage{}, nil
	}
	if len(blob.Events) == 0 {
		log.Info("No events found for session")
		return []json.RawMessage{}, nil
	}
	log.Info("Retrieved session events", zap.Int("count", len(blob.Events)))
	return blob.Events, nil
}

// Ingest appends a batch of events to a session's blob and upserts the
// session metadata document. It returns the storage path of the blob.
func (s *Service) Ingest(ctx context.Context, projectID, sessionID string, newEvents []json.RawMessage, recordedAt int64) (string, error) {
	blob, found, err := s.blobs.GetSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load existing session %q: %w", sessionID, err)
	}
	if !found {
		blob = &store.SessionBlob{SessionID: sessionID}
	}
	blob.Events = append(blob.Events, newEvents...)
	blob.Timestamp = recordedAt

	if s.maxDuration > 0 {
		if span, ok := recordingSpan(blob.Events); ok && span > s.maxDuration {
			return "", ErrSessionTooLong
		}
	}

	path, err := s.blobs.PutSession(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("failed to store session %q: %w", sessionID, err)
	}

	meta := &store.SessionMetadata{
		SessionID: sessionID,
		GCSPath:   path,
		ProjectID: projectID,
		Timestamp: s.now().Unix(),
		URL:       pageURL(newEvents),
	}
	if err := s.docs.SaveSessionMetadata(ctx, meta); err != nil {
		return "", fmt.Errorf("failed to save metadata for session %q: %w", sessionID, err)
	}
	return path, nil
}

// ListSessions returns a project's session metadata, newest first.
func (s *Service) ListSessions(ctx context.Context, projectID string) ([]store.SessionMetadata, error) {
	sessions, err := s.docs.ListSessions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for project %q: %w", projectID, err)
	}
	return sessions, nil
}

// SampleSessionsWithEvents picks up to n random sessions of a project that
// have recorded events, returning their raw event sequences by session ID.
func (s *Service) SampleSessionsWithEvents(ctx context.Context, projectID string, n int) (map[string][]json.RawMessage, error) {
	sessions, err := s.docs.ListSessions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for project %q: %w", projectID, err)
	}
	rand.Shuffle(len(sessions), func(i, j int) { sessions[i], sessions[j] = sessions[j], sessions[i] })

	sampled := make(map[string][]json.RawMessage)
	for _, meta := range sessions {
		if len(sampled) >= n {
			break
		}
		blob, found, err := s.blobs.GetSession(ctx, meta.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %q: %w", meta.SessionID, err)
		}
		if !found || len(blob.Events) == 0 {
			continue
		}
		sampled[meta.SessionID] = blob.Events
	}
	return sampled, nil
}

// timestampPeek reads just the timestamp of an opaque event.
type timestampPeek struct {
	Timestamp int64 `json:"timestamp"`
}

// recordingSpan computes the wall-clock span between the first and last
// event timestamps (milliseconds). ok is false when no timestamps are
// present.
func recordingSpan(events []json.RawMessage) (time.Duration, bool) {
	if len(events) == 0 {
		return 0, false
	}
	var first, last timestampPeek
	if err := json.Unmarshal(events[0], &first); err != nil || first.Timestamp == 0 {
		return 0, false
	}
	if err := json.Unmarshal(events[len(events)-1], &last); err != nil || last.Timestamp == 0 {
		return 0, false
	}
	return time.Duration(last.Timestamp-first.Timestamp) * time.Millisecond, true
}

// metaPeek reads just enough of an event to spot a page navigation.
type metaPeek struct {
	Type int `json:"type"`
	Data struct {
		Href string `json:"href"`
	} `json:"data"`
}

// pageURL returns the URL of the first page-load event in the batch, if any.
func pageURL(events []json.RawMessage) string {
	for _, raw := range events {
		var peek metaPeek
		if err := json.Unmarshal(raw, &peek); err != nil {
			continue
		}
		if peek.Type == 4 && peek.Data.Href != "" {
			return peek.Data.Href
		}
	}
	return ""
}
