package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaydeck/replaydeck/internal/httpserver/handlers"
	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/pkg/api"
)

func TestGetSessionEvents(t *testing.T) {
	getEvents := func(f *fixture, sessionID string) *mockErrorResponseWriter {
		handler := handlers.NewSessionsHandler(f.base)
		w := newMockErrorResponseWriter()
		req := httptest.NewRequest("GET", "/api/sessions/"+sessionID+"/events", nil)
		req = mux.SetURLVars(req, map[string]string{"session_id": sessionID})
		handler.HandleGetSessionEvents(w, req)
		return w
	}

	t.Run("UnknownSessionReturnsEmptyArray", func(t *testing.T) {
		f := newFixture(nil)
		w := getEvents(f, "missing")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("ReturnsBareArrayInStoredOrder", func(t *testing.T) {
		f := newFixture(nil)
		stored := []json.RawMessage{
			json.RawMessage(`{"type":4,"timestamp":1,"data":{"href":"https://a"}}`),
			json.RawMessage(`{"type":3,"timestamp":2,"data":{"source":2}}`),
		}
		_, err := f.blobs.PutSession(context.Background(), &store.SessionBlob{SessionID: "sess-1", Events: stored})
		require.NoError(t, err)

		w := getEvents(f, "sess-1")
		assert.Equal(t, http.StatusOK, w.Code)

		var got []json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.JSONEq(t, string(stored[0]), string(got[0]))
		assert.JSONEq(t, string(stored[1]), string(got[1]))
	})

	t.Run("BackendFailureIsGeneric500", func(t *testing.T) {
		f := newFixture(nil)
		f.blobs.Err = errors.New("bucket unreachable: credentials expired")

		w := getEvents(f, "sess-1")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		// The backend detail must not leak into the response body.
		assert.NotContains(t, w.Body.String(), "credentials")
	})
}

func TestIngestEvents(t *testing.T) {
	ingest := func(f *fixture, body interface{}) *mockErrorResponseWriter {
		handler := handlers.NewSessionsHandler(f.base)
		w := newMockErrorResponseWriter()
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/session-events", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		handler.HandleIngestEvents(w, req)
		return w
	}

	newProject := func(t *testing.T, f *fixture) *store.Project {
		t.Helper()
		proj, err := f.base.Projects.Create(context.Background(), "App", "user-1")
		require.NoError(t, err)
		return proj
	}

	t.Run("Success", func(t *testing.T) {
		f := newFixture(nil)
		proj := newProject(t, f)

		w := ingest(f, api.IngestRequest{
			APIKey:    proj.PublicAPIKey,
			SessionID: "sess-1",
			Events:    []json.RawMessage{json.RawMessage(`{"type":3,"timestamp":100}`)},
			Timestamp: 100,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.IngestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, api.IngestStatusSuccess, resp.Status)
		assert.Contains(t, resp.File, "sess-1")

		blob, found, err := f.blobs.GetSession(context.Background(), "sess-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, blob.Events, 1)
	})

	t.Run("InvalidAPIKey", func(t *testing.T) {
		f := newFixture(nil)

		w := ingest(f, api.IngestRequest{
			APIKey:    "pk_bogus",
			SessionID: "sess-1",
			Events:    []json.RawMessage{json.RawMessage(`{}`)},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		f := newFixture(nil)
		proj := newProject(t, f)

		w := ingest(f, api.IngestRequest{APIKey: proj.PublicAPIKey})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		f := newFixture(nil)
		handler := handlers.NewSessionsHandler(f.base)
		w := newMockErrorResponseWriter()
		req := httptest.NewRequest("POST", "/api/session-events", bytes.NewBufferString("not json"))
		handler.HandleIngestEvents(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("TooLongRecording", func(t *testing.T) {
		f := newFixture(nil)
		proj := newProject(t, f)

		w := ingest(f, api.IngestRequest{
			APIKey:    proj.PublicAPIKey,
			SessionID: "sess-1",
			Events: []json.RawMessage{
				json.RawMessage(`{"type":3,"timestamp":1000}`),
				json.RawMessage(`{"type":3,"timestamp":7201000}`),
			},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.IngestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, api.IngestStatusTooLong, resp.Status)

		_, found, err := f.blobs.GetSession(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestListSessionIDs(t *testing.T) {
	t.Run("MissingProjectID", func(t *testing.T) {
		f := newFixture(nil)
		handler := handlers.NewSessionsHandler(f.base)
		w := newMockErrorResponseWriter()
		req := httptest.NewRequest("GET", "/api/session-ids", nil)
		handler.HandleListSessionIDs(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NewestFirst", func(t *testing.T) {
		f := newFixture(nil)
		ctx := context.Background()
		for i, id := range []string{"old", "new"} {
			require.NoError(t, f.docs.SaveSessionMetadata(ctx, &store.SessionMetadata{
				SessionID: id,
				ProjectID: "proj-1",
				Timestamp: int64(i + 1),
			}))
		}

		handler := handlers.NewSessionsHandler(f.base)
		w := newMockErrorResponseWriter()
		req := httptest.NewRequest("GET", "/api/session-ids?project_id=proj-1", nil)
		handler.HandleListSessionIDs(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.StandardResponse[[]api.SessionSummary]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "new", resp.Data[0].SessionID)
		assert.Equal(t, "old", resp.Data[1].SessionID)
	})
}
