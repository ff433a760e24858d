// Package service implements the feed use cases on top of the repositories.
package service

import (
	"context"

	"framez/internal/middleware"
	"framez/internal/notifications"
)

// EventPublisher delivers domain events to live feed clients.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev notifications.Event) error
}

// publish is best effort: a lost live event never fails the request.
func publish(ctx context.Context, events EventPublisher, eventType string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.PublishEvent(ctx, notifications.Event{Type: eventType, Payload: payload}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish feed event", "type", eventType, "error", err)
	}
}
