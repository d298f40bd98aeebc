package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/httpserver/handlers"
	"github.com/replaydeck/replaydeck/internal/intelligence"
	"github.com/replaydeck/replaydeck/internal/project"
	"github.com/replaydeck/replaydeck/internal/replay"
	"github.com/replaydeck/replaydeck/internal/store/fake"
)

// Mock ErrorResponseWriter implementation
type mockErrorResponseWriter struct {
	*httptest.ResponseRecorder
	errorReceived error
}

func newMockErrorResponseWriter() *mockErrorResponseWriter {
	return &mockErrorResponseWriter{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

func (m *mockErrorResponseWriter) RespondWithError(err error) {
	m.errorReceived = err
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		handlers.RespondWithError(m, apiErr.StatusCode, apiErr.Message)
		return
	}
	handlers.RespondWithError(m, http.StatusInternalServerError, err.Error())
}

type fixture struct {
	blobs *fake.BlobStore
	docs  *fake.DocStore
	base  *handlers.Base
}

func newFixture(intelligenceSvc *intelligence.Service) *fixture {
	blobs := fake.NewBlobStore()
	docs := fake.NewDocStore()
	return &fixture{
		blobs: blobs,
		docs:  docs,
		base: handlers.NewBase(
			replay.NewService(blobs, docs, time.Hour),
			project.NewService(docs),
			intelligenceSvc,
		),
	}
}
