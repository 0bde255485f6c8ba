package bus

import "time"

// EventBus is a synchronous, in-process pub/sub bus.
//
// Handlers subscribe by Event.Type(). Publish calls every active handler for
// that type in the caller goroutine, in subscription order, and joins the
// errors they return. The simulation publishes from its tick goroutine while
// servers subscribe from others, so all methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers event to every subscriber of event.Type().
	Publish(event Event) error
	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(events ...Event) error
	// Subscribe registers handler for eventType. The returned Subscription
	// cancels it.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics is only populated while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
