package notification

// Dispatcher accepts events without blocking. Delivery happens in the
// background; failures are logged and never reported to the caller.
type Dispatcher interface {
	Dispatch(event Event)
}
