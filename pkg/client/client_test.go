package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaydeck/replaydeck/pkg/api"
	"github.com/replaydeck/replaydeck/pkg/client"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *client.ClientSet) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, client.New(srv.URL, "default-user")
}

func TestGetSessionEvents(t *testing.T) {
	t.Run("DecodesBareArray", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/sessions/sess-1/events", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"type":4},{"type":3}]`))
		})

		events, err := cs.Sessions.GetSessionEvents(context.Background(), "sess-1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.JSONEq(t, `{"type":4}`, string(events[0]))
	})

	t.Run("UnknownSessionYieldsEmpty", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		events, err := cs.Sessions.GetSessionEvents(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ServerError", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		_, err := cs.Sessions.GetSessionEvents(context.Background(), "sess-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestIngestEvents(t *testing.T) {
	_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/session-events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.IngestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pk_test", req.APIKey)
		assert.Equal(t, "sess-1", req.SessionID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.IngestResponse{
			Status: api.IngestStatusSuccess,
			File:   "sessions/sess-1.json",
		})
	})

	resp, err := cs.Sessions.IngestEvents(context.Background(), &api.IngestRequest{
		APIKey:    "pk_test",
		SessionID: "sess-1",
		Events:    []json.RawMessage{json.RawMessage(`{"type":4}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, api.IngestStatusSuccess, resp.Status)
	assert.Equal(t, "sessions/sess-1.json", resp.File)
}

func TestListSessionIDs(t *testing.T) {
	t.Run("RequiresProjectID", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := cs.Sessions.ListSessionIDs(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("DecodesEnvelope", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "proj-1", r.URL.Query().Get("project_id"))
			_ = json.NewEncoder(w).Encode(api.NewResponse([]api.SessionSummary{
				{SessionID: "sess-2", Timestamp: 2000},
				{SessionID: "sess-1", Timestamp: 1000},
			}, "Successfully listed sessions", false))
		})

		resp, err := cs.Sessions.ListSessionIDs(context.Background(), "proj-1")
		require.NoError(t, err)
		assert.False(t, resp.Error)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "sess-2", resp.Data[0].SessionID)
	})
}

func TestCreateProject(t *testing.T) {
	_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/projects", r.URL.Path)

		var req api.CreateProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Checkout Funnel", req.Name)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.NewResponse(api.ProjectResponse{
			ID:           "proj-1",
			Name:         req.Name,
			PublicAPIKey: "pk_abc",
		}, "Successfully created project", false))
	})

	resp, err := cs.Projects.CreateProject(context.Background(), &api.CreateProjectRequest{
		Name:   "Checkout Funnel",
		UserID: "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "proj-1", resp.Data.ID)
	assert.Equal(t, "pk_abc", resp.Data.PublicAPIKey)
}

func TestListProjects(t *testing.T) {
	t.Run("DefaultUserScope", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "default-user", r.URL.Query().Get("user_id"))
			_ = json.NewEncoder(w).Encode(api.NewResponse([]api.ProjectResponse{
				{ID: "proj-1", Name: "One"},
			}, "Successfully listed projects", false))
		})

		resp, err := cs.Projects.ListProjects(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
	})

	t.Run("ExplicitUserOverridesDefault", func(t *testing.T) {
		_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "other-user", r.URL.Query().Get("user_id"))
			_ = json.NewEncoder(w).Encode(api.NewResponse([]api.ProjectResponse{}, "Successfully listed projects", false))
		})

		_, err := cs.Projects.ListProjects(context.Background(), "other-user")
		require.NoError(t, err)
	})
}

func TestListActionIDs(t *testing.T) {
	start, end := int64(1000), int64(5000)
	_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/proj-1/action-ids", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("start"))
		assert.Equal(t, "5000", r.URL.Query().Get("end"))
		_ = json.NewEncoder(w).Encode(api.NewResponse([]api.ActionIDCount{
			{ID: "clicked_checkout", Count: 3},
		}, "Successfully listed action IDs", false))
	})

	resp, err := cs.Projects.ListActionIDs(context.Background(), "proj-1", &start, &end)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "clicked_checkout", resp.Data[0].ID)
}

func TestQueryActionEvents(t *testing.T) {
	_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rag/query", r.URL.Path)

		var req api.ActionQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "clicked_checkout", req.ActionID)

		_ = json.NewEncoder(w).Encode(api.NewResponse(api.ActionQueryResponse{
			ActionID:   req.ActionID,
			SessionIDs: []string{"sess-1"},
			Summary:    api.ActionQuerySummary{TotalTargetEvents: 2, SessionsInvolved: 1},
		}, "Successfully queried action events", false))
	})

	resp, err := cs.Projects.QueryActionEvents(context.Background(), &api.ActionQueryRequest{
		ProjectID: "proj-1",
		ActionID:  "clicked_checkout",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Data.Summary.TotalTargetEvents)
}

func TestGetInsights(t *testing.T) {
	_, cs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/proj-1/insights", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(api.NewResponse([]api.InsightReport{
			{ProjectID: "proj-1", CreatedAt: 3000},
		}, "Successfully listed insights", false))
	})

	resp, err := cs.Projects.GetInsights(context.Background(), "proj-1", 5)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(3000), resp.Data[0].CreatedAt)
}
