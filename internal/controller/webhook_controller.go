package controller

import (
	"net/http"

	"github.com/cassiomorais/checkout-bridge/internal/infrastructure/observability"
	"github.com/cassiomorais/checkout-bridge/internal/webhook"
	"github.com/rs/zerolog"
)

// WebhookController receives state change notifications from the remote
// gateway and hands them to the dispatcher. Responses are deliberately
// minimal; the remote system only cares about the status code.
type WebhookController struct {
	dispatcher *webhook.Dispatcher
	logger     zerolog.Logger
}

func NewWebhookController(dispatcher *webhook.Dispatcher, logger zerolog.Logger) *WebhookController {
	return &WebhookController{dispatcher: dispatcher, logger: logger}
}

func (c *WebhookController) Receive(w http.ResponseWriter, r *http.Request) {
	req, err := webhook.ParseRequest(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := c.dispatcher.Dispatch(r.Context(), req); err != nil {
		logger := observability.TraceLogger(r.Context(), c.logger)
		logger.Error().
			Err(err).
			Str("listener", req.ListenerEntityTechnicalName).
			Int64("entity_id", req.EntityID).
			Msg("webhook dispatch failed")
		// Non-2xx makes the remote system redeliver later.
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
