package client

import (
	"context"
	"errors"
	"sync"
)

// errDisconnectedMidOperation is the cancellation cause broadcast to every
// outstanding operation when the link drops.
var errDisconnectedMidOperation = errors.New("disconnected during operation")

// waiterSet tracks the cancellation hooks of in-flight operations. Each
// wrapped operation registers before issuing its remote call and releases on
// every exit path; link-drop cleanup resolves all registered waiters at once
// so no operation can hang after the link is gone.
type waiterSet struct {
	mu      sync.Mutex
	waiters map[*waiterHandle]struct{}
}

type waiterHandle struct {
	cancel context.CancelCauseFunc
}

func newWaiterSet() *waiterSet {
	return &waiterSet{waiters: make(map[*waiterHandle]struct{})}
}

// Register derives an operation context from ctx that is cancelled when the
// link drops. The returned release func must be called when the operation
// completes, regardless of outcome.
func (w *waiterSet) Register(ctx context.Context) (context.Context, func()) {
	opCtx, cancel := context.WithCancelCause(ctx)
	h := &waiterHandle{cancel: cancel}

	w.mu.Lock()
	w.waiters[h] = struct{}{}
	w.mu.Unlock()

	release := func() {
		w.mu.Lock()
		delete(w.waiters, h)
		w.mu.Unlock()
		cancel(nil)
	}
	return opCtx, release
}

// ResolveAll cancels every registered waiter with the mid-operation
// disconnect cause and empties the set.
func (w *waiterSet) ResolveAll() {
	w.mu.Lock()
	handles := make([]*waiterHandle, 0, len(w.waiters))
	for h := range w.waiters {
		handles = append(handles, h)
	}
	w.waiters = make(map[*waiterHandle]struct{})
	w.mu.Unlock()

	for _, h := range handles {
		h.cancel(errDisconnectedMidOperation)
	}
}

// Len returns the number of outstanding waiters.
func (w *waiterSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters)
}
