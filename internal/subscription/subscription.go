// Package subscription runs live listeners behind single-owner disposal handles.
package subscription

import (
	"context"
	"errors"
	"sync"
)

var ErrStopped = errors.New("subscription already stopped")

// Handle owns one listener goroutine.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	err     error
}

// Start runs listen in its own goroutine until ctx is cancelled, the handle is
// stopped, or listen returns. listen must return promptly once its context is done.
func Start(ctx context.Context, listen func(ctx context.Context) error) *Handle {
	ctx, cancel := context.WithCancel(ctx)

	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)

		err := listen(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			h.mu.Lock()
			h.err = err
			h.mu.Unlock()
		}
	}()

	return h
}

// Stop cancels the listener and waits for it to exit. It returns the listener's
// terminal error, if any. Calling Stop a second time returns ErrStopped.
func (h *Handle) Stop() error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return ErrStopped
	}
	h.stopped = true
	h.mu.Unlock()

	h.cancel()
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}

// Done is closed once the listener has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
