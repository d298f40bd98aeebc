package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apierrors "github.com/replaydeck/replaydeck/internal/httpserver/errors"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/pkg/api"
)

// AccountsHandler ingests identity-provider webhooks.
type AccountsHandler struct {
	*Base
}

// NewAccountsHandler creates a new AccountsHandler
func NewAccountsHandler(base *Base) *AccountsHandler {
	return &AccountsHandler{Base: base}
}

// HandleAccountWebhook handles POST /api/webhooks/accounts requests.
// user.created events persist a user document; everything else is
// acknowledged and ignored.
func (h *AccountsHandler) HandleAccountWebhook(w ErrorResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(zap.String("operation", "account-webhook"))

	var event api.AccountWebhookEvent
	if err := DecodeJSONBody(r, &event); err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Invalid request body", err))
		return
	}
	log = log.With(zap.String("event_type", event.Type))

	if event.Type != "user.created" {
		log.Info("Ignoring webhook event")
		RespondWithJSON(w, http.StatusOK, api.NewResponse(struct{}{}, "Event ignored", false))
		return
	}

	var payload api.WebhookUser
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		w.RespondWithError(apierrors.NewBadRequestError("Invalid user payload", err))
		return
	}
	if payload.ID == "" {
		w.RespondWithError(apierrors.NewBadRequestError("Missing user id", nil))
		return
	}

	email := ""
	for _, addr := range payload.EmailAddresses {
		if addr.ID == payload.PrimaryEmailAddressID {
			email = addr.EmailAddress
			break
		}
	}
	if email == "" && len(payload.EmailAddresses) > 0 {
		email = payload.EmailAddresses[0].EmailAddress
	}

	user := &store.User{
		ID:        payload.ID,
		Email:     email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		CreatedAt: payload.CreatedAt,
		Projects:  []string{},
	}
	if err := h.Projects.SaveUser(r.Context(), user); err != nil {
		log.Error("Failed to save user", zap.Error(err))
		w.RespondWithError(apierrors.NewInternalServerError("Failed to save user", err))
		return
	}

	log.Info("Successfully saved user", zap.String("user_id", user.ID))
	data := api.NewResponse(struct{}{}, "Successfully saved user", false)
	RespondWithJSON(w, http.StatusOK, data)
}
