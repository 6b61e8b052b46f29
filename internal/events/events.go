package events

import (
	"context"
	"time"
)

const (
	PropertyCreated       = "property.created"
	PropertyStatusChanged = "property.status_changed"
	PropertyDeleted       = "property.deleted"
	MessageSent           = "message.sent"
)

type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

func New(eventType string, data map[string]any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
