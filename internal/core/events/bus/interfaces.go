package bus

import "time"

// EventBus is an in-process pub/sub bus used to fan simulator activity out
// to loggers, metrics and remote sessions.
//
// Delivery is synchronous: Publish runs every matching handler in the
// caller's goroutine, in subscription order, and joins their errors.
// Handlers subscribed to Wildcard receive every event type.
// All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// PublishWithFilters drops the event silently if any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// Subscribe registers a handler for eventType.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. Nil is allowed.
	Unsubscribe(sub Subscription) error
	// Subscribers counts the active subscriptions for eventType.
	Subscribers(eventType string) int
}

// Wildcard subscribes to every event type.
const Wildcard = "*"

// Event is an immutable message carried by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked once per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription is a registered handler.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}
