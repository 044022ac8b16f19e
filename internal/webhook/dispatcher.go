package webhook

import (
	"context"

	"github.com/cassiomorais/checkout-bridge/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// Handler processes webhook events for one listener entity.
type Handler interface {
	Handle(ctx context.Context, req *Request) error
}

// Dispatcher routes webhook requests to handlers by listener entity technical
// name. Unknown names are acknowledged and logged so the remote system does
// not keep redelivering events nobody consumes.
type Dispatcher struct {
	handlers map[string]Handler
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

func NewDispatcher(metrics *observability.Metrics, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		metrics:  metrics,
		logger:   logger,
	}
}

// Register binds a handler to a listener entity technical name.
func (d *Dispatcher) Register(technicalName string, h Handler) {
	d.handlers[technicalName] = h
}

// Dispatch hands the request to the registered handler, if any.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) error {
	h, ok := d.handlers[req.ListenerEntityTechnicalName]
	if !ok {
		d.logger.Info().
			Str("listener", req.ListenerEntityTechnicalName).
			Int64("entity_id", req.EntityID).
			Msg("no handler registered for webhook listener")
		d.countEvent(req.ListenerEntityTechnicalName, "unhandled")
		return nil
	}

	if err := h.Handle(ctx, req); err != nil {
		d.countEvent(req.ListenerEntityTechnicalName, "error")
		return err
	}
	d.countEvent(req.ListenerEntityTechnicalName, "ok")
	return nil
}

func (d *Dispatcher) countEvent(listener, status string) {
	if d.metrics != nil {
		d.metrics.WebhookEventsTotal.WithLabelValues(listener, status).Inc()
	}
}
