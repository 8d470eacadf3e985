// Package events carries the in-process event bus that the sales modules
// use to react to each other without importing one another. Events describe
// things that already happened (lead created, deal won), never commands.
package events

import (
	"context"
	"time"
)

// Event is implemented by every notification published on the bus.
type Event interface {
	// EventName identifies the event type; subscriptions key on it.
	EventName() string
	// OccurredAt is the moment the event happened, not when it was handled.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp so concrete events only add their payload.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports the moment the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to a published event. Returning an error never undoes the
// event; it only surfaces through the bus's own reporting.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe without a wrapper type.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle invokes f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus connects publishers to the handlers subscribed to an event name.
type Bus interface {
	// Publish fans the event out without waiting; handler errors are logged,
	// not returned, so publishers cannot be failed by a listener.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every handler and joins their errors. Used where
	// the caller must know delivery happened, such as tests.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers handler under the name the event reports from
	// EventName.
	Subscribe(eventName string, handler Handler)
}
