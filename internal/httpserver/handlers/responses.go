package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/pkg/api"
	"go.uber.org/zap"
)

// ErrorResponseWriter extends http.ResponseWriter with typed error
// responses. The concrete implementation maps APIError status codes.
type ErrorResponseWriter interface {
	http.ResponseWriter
	RespondWithError(err error)
}

// RespondWithJSON writes payload as the JSON response body.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Error("Failed to marshal JSON response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"Failed to encode response","error":true}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a JSON error envelope with the given status code.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, api.NewResponse(struct{}{}, message, true))
}

// DecodeJSONBody decodes the request body into target.
func DecodeJSONBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// GetPathParam extracts a mux path variable, erroring when absent.
func GetPathParam(r *http.Request, name string) (string, error) {
	vars := mux.Vars(r)
	value, ok := vars[name]
	if !ok || value == "" {
		return "", fmt.Errorf("missing path parameter %q", name)
	}
	return value, nil
}
