package bus

// Listener receives the payload passed to Trigger. The number and types of
// arguments are a contract between the producer and the consumers of an event
// name; the typed Listen helpers check that contract at delivery time.
type Listener func(args ...any)

// Subscription represents a registered listener bound to one event name.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// Event returns the event name this subscription listens to.
	Event() string
	// IsActive reports whether the listener will still receive events.
	IsActive() bool
	// Cancel removes the listener. Delivery stops immediately, including for a
	// Trigger that is already in progress. Multiple calls are safe.
	Cancel()
}

// Observer is notified about every Trigger on a bus. It is used by the
// telemetry feed and by tests; observers should return quickly.
type Observer interface {
	OnTrigger(event string, listeners int, args []any)
}
