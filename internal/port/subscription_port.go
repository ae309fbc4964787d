package port

// Subscription is the disposal handle of a live listener. The owner must call Stop
// exactly once; Stop blocks until the listener has exited.
type Subscription interface {
	Stop() error
}
