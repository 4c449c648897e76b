package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/signlyhq/signly/internal/billing"
	"github.com/stripe/stripe-go/v84"
)

const webhookBodyLimit = 1 << 20 // 1 MiB

// EventProcessor is satisfied by billing.Projector.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *stripe.Event) error
}

// WebhookHandler ingests payment-provider webhooks. The provider retries on
// any non-2xx, so failures during projection intentionally surface as 500.
type WebhookHandler struct {
	provider  billing.ProviderClient
	projector EventProcessor
	log       *slog.Logger
}

func NewWebhookHandler(provider billing.ProviderClient, projector EventProcessor, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		provider:  provider,
		projector: projector,
		log:       log,
	}
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": "Missing request body"})
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": "Missing signature from header"})
		return
	}

	event, err := h.provider.VerifyWebhookSignature(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrConfiguration) {
			h.log.Error("webhook secret is not configured")
			writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Webhook is not configured"})
			return
		}
		h.log.Warn("webhook signature verification failed", "error", err)
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
		return
	}

	h.log.Info("webhook event received",
		"event_id", event.ID,
		"event_type", string(event.Type))

	if err := h.projector.ProcessEvent(r.Context(), event); err != nil {
		h.log.Error("webhook event processing failed",
			"event_id", event.ID,
			"event_type", string(event.Type),
			"error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Webhook processing failed"})
		return
	}

	h.log.Info("webhook event processed",
		"event_id", event.ID,
		"event_type", string(event.Type))

	writeJSONStatus(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"eventName": string(event.Type),
	})
}
