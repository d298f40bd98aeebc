package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/internal/store/fake"
)

func event(ts int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"type":3,"timestamp":%d,"data":{}}`, ts))
}

func TestEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownSessionIsEmptyNotError", func(t *testing.T) {
		svc := NewService(fake.NewBlobStore(), fake.NewDocStore(), 0)

		events, err := svc.Events(ctx, "missing")
		require.NoError(t, err)
		require.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("ReturnsEventsInStoredOrder", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		_, err := blobs.PutSession(ctx, &store.SessionBlob{
			SessionID: "sess-1",
			Events:    []json.RawMessage{event(1), event(2), event(3)},
		})
		require.NoError(t, err)
		svc := NewService(blobs, fake.NewDocStore(), 0)

		events, err := svc.Events(ctx, "sess-1")
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, event(1), events[0])
		assert.Equal(t, event(3), events[2])
	})

	t.Run("EmptyBlobIsEmpty", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		_, err := blobs.PutSession(ctx, &store.SessionBlob{SessionID: "sess-1"})
		require.NoError(t, err)
		svc := NewService(blobs, fake.NewDocStore(), 0)

		events, err := svc.Events(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("BackendFailureSurfaces", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		blobs.Err = errors.New("bucket unreachable")
		svc := NewService(blobs, fake.NewDocStore(), 0)

		_, err := svc.Events(ctx, "sess-1")
		require.Error(t, err)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesBlobAndMetadata", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		docs := fake.NewDocStore()
		svc := NewService(blobs, docs, time.Hour)

		path, err := svc.Ingest(ctx, "proj-1", "sess-1", []json.RawMessage{event(1000)}, 42)
		require.NoError(t, err)
		assert.Contains(t, path, "sess-1")

		blob, found, err := blobs.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, blob.Events, 1)
		assert.Equal(t, int64(42), blob.Timestamp)

		sessions, err := docs.ListSessions(ctx, "proj-1")
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "sess-1", sessions[0].SessionID)
		assert.Equal(t, path, sessions[0].GCSPath)
	})

	t.Run("AppendsToExistingBlob", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		svc := NewService(blobs, fake.NewDocStore(), time.Hour)

		_, err := svc.Ingest(ctx, "proj-1", "sess-1", []json.RawMessage{event(1000)}, 1)
		require.NoError(t, err)
		_, err = svc.Ingest(ctx, "proj-1", "sess-1", []json.RawMessage{event(2000), event(3000)}, 2)
		require.NoError(t, err)

		blob, _, err := blobs.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		require.Len(t, blob.Events, 3)
		assert.Equal(t, event(1000), blob.Events[0])
		assert.Equal(t, event(3000), blob.Events[2])
	})

	t.Run("TooLongRecordingRefused", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		svc := NewService(blobs, fake.NewDocStore(), time.Hour)

		start := int64(1_000_000)
		overCap := start + (61 * time.Minute).Milliseconds()
		_, err := svc.Ingest(ctx, "proj-1", "sess-1", []json.RawMessage{event(start), event(overCap)}, 1)
		require.ErrorIs(t, err, ErrSessionTooLong)

		// The refused batch must not be stored.
		_, found, err := blobs.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ExactlyAtCapAccepted", func(t *testing.T) {
		svc := NewService(fake.NewBlobStore(), fake.NewDocStore(), time.Hour)

		start := int64(1_000_000)
		atCap := start + time.Hour.Milliseconds()
		_, err := svc.Ingest(ctx, "proj-1", "sess-1", []json.RawMessage{event(start), event(atCap)}, 1)
		require.NoError(t, err)
	})

	t.Run("ZeroMaxDurationDisablesCap", func(t *testing.T) {
		svc := NewService(fake.NewBlobStore(), fake.NewDocStore(), 0)

		_, err := svc.Ingest(ctx, "proj-1", "sess-1", []json.RawMessage{event(0), event((100 * time.Hour).Milliseconds())}, 1)
		require.NoError(t, err)
	})

	t.Run("MetadataCarriesPageURL", func(t *testing.T) {
		docs := fake.NewDocStore()
		svc := NewService(fake.NewBlobStore(), docs, time.Hour)

		events := []json.RawMessage{
			event(1000),
			json.RawMessage(`{"type":4,"timestamp":1500,"data":{"href":"https://example.com/app"}}`),
		}
		_, err := svc.Ingest(ctx, "proj-1", "sess-1", events, 1)
		require.NoError(t, err)

		sessions, err := docs.ListSessions(ctx, "proj-1")
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "https://example.com/app", sessions[0].URL)
	})
}

func TestSampleSessionsWithEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("SkipsEmptySessionsAndCapsAtN", func(t *testing.T) {
		blobs := fake.NewBlobStore()
		docs := fake.NewDocStore()
		svc := NewService(blobs, docs, 0)

		for i := 0; i < 5; i++ {
			sessionID := fmt.Sprintf("sess-%d", i)
			var events []json.RawMessage
			if i != 2 { // one session has no events
				events = []json.RawMessage{event(int64(i))}
			}
			_, err := blobs.PutSession(ctx, &store.SessionBlob{SessionID: sessionID, Events: events})
			require.NoError(t, err)
			require.NoError(t, docs.SaveSessionMetadata(ctx, &store.SessionMetadata{
				SessionID: sessionID,
				ProjectID: "proj-1",
				Timestamp: int64(i),
			}))
		}

		sampled, err := svc.SampleSessionsWithEvents(ctx, "proj-1", 3)
		require.NoError(t, err)
		assert.Len(t, sampled, 3)
		assert.NotContains(t, sampled, "sess-2")
		for _, events := range sampled {
			assert.NotEmpty(t, events)
		}
	})

	t.Run("NoSessions", func(t *testing.T) {
		svc := NewService(fake.NewBlobStore(), fake.NewDocStore(), 0)
		sampled, err := svc.SampleSessionsWithEvents(ctx, "proj-1", 3)
		require.NoError(t, err)
		assert.Empty(t, sampled)
	})
}
