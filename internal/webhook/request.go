package webhook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cassiomorais/checkout-bridge/internal/domain/errors"
)

// Request is the notification payload the remote gateway POSTs on entity
// state changes. It only names the changed entity; the current state is
// always fetched back from the remote system, never trusted from the payload.
type Request struct {
	EventID                     int64  `json:"eventId"`
	EntityID                    int64  `json:"entityId"`
	ListenerEntityID            int64  `json:"listenerEntityId"`
	ListenerEntityTechnicalName string `json:"listenerEntityTechnicalName"`
	SpaceID                     int64  `json:"spaceId"`
	WebhookListenerID           int64  `json:"webhookListenerId"`
	Timestamp                   string `json:"timestamp"`
}

// ParseRequest decodes and validates a webhook request body.
func ParseRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: decode webhook request: %v", errors.ErrInvalidInput, err)
	}
	if req.EntityID <= 0 {
		return nil, errors.NewValidationError("entityId", "entity id is required")
	}
	if req.SpaceID <= 0 {
		return nil, errors.NewValidationError("spaceId", "space id is required")
	}
	if req.ListenerEntityTechnicalName == "" {
		return nil, errors.NewValidationError("listenerEntityTechnicalName", "listener entity technical name is required")
	}
	return &req, nil
}
