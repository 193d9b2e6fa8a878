package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/sakif/codecraft/internal/service"
)

// Headers the identity provider signs every delivery with.
const (
	headerSvixID        = "svix-id"
	headerSvixTimestamp = "svix-timestamp"
	headerSvixSignature = "svix-signature"
)

// WebhookHandler receives identity-provider events and mirrors users into
// the local store.
//
// SIGNATURE VERIFICATION:
// The provider signs "<svix-id>.<svix-timestamp>.<body>" with HMAC-SHA256
// using the endpoint secret ("whsec_..."). The svix library does the
// comparison and also rejects stale timestamps, which stops replays.
type WebhookHandler struct {
	verifier *svix.Webhook
	users    *service.UserService
	logger   *slog.Logger
}

// NewWebhookHandler fails if secret is not a valid svix endpoint secret.
func NewWebhookHandler(secret string, users *service.UserService, logger *slog.Logger) (*WebhookHandler, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &WebhookHandler{verifier: wh, users: users, logger: logger}, nil
}

// webhookEvent is the subset of the provider's envelope we read.
type webhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type webhookUser struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// HandleWebhook verifies and processes one delivery.
//
// HTTP: POST /clerk-webhook
// RESPONSES:
//   - 400 missing svix headers or bad signature
//   - 500 a verified body that is not the expected JSON, or the user could
//     not be stored
//   - 200 everything else, including event types we ignore
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(headerSvixID) == "" ||
		r.Header.Get(headerSvixTimestamp) == "" ||
		r.Header.Get(headerSvixSignature) == "" {
		http.Error(w, "Error occurred -- no svix headers", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	if err := h.verifier.Verify(body, r.Header); err != nil {
		h.logger.Warn("webhook verification failed", slog.String("error", err.Error()))
		http.Error(w, "Error occurred", http.StatusBadRequest)
		return
	}

	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Error("webhook payload undecodable", slog.String("error", err.Error()))
		http.Error(w, "Error occurred -- invalid payload", http.StatusInternalServerError)
		return
	}

	if evt.Type != "user.created" {
		h.logger.Debug("webhook event ignored", slog.String("type", evt.Type))
		w.WriteHeader(http.StatusOK)
		return
	}

	var u webhookUser
	if err := json.Unmarshal(evt.Data, &u); err != nil {
		h.logger.Error("webhook user payload undecodable", slog.String("error", err.Error()))
		http.Error(w, "Error occurred -- invalid user payload", http.StatusInternalServerError)
		return
	}

	email := ""
	if len(u.EmailAddresses) > 0 {
		email = u.EmailAddresses[0].EmailAddress
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)

	if _, err := h.users.SyncUser(r.Context(), u.ID, email, name); err != nil {
		h.logger.Error("error creating user from webhook",
			slog.String("userId", u.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
