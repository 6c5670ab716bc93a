package client

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/bleproxy/pkg/rpc"
)

// subscription is one active characteristic subscription: the remote stop
// action and the local abort action returned by the transport.
type subscription struct {
	stop  rpc.NotifyStopFunc
	abort rpc.NotifyAbortFunc
}

// notifyRegistry is the per-session map of active subscriptions, keyed by
// characteristic handle. At most one subscription may exist per handle.
// Insertion order is preserved so link-drop teardown aborts subscriptions in
// the order they were created.
type notifyRegistry struct {
	mu   sync.Mutex
	subs *orderedmap.OrderedMap[uint16, subscription]
}

func newNotifyRegistry() *notifyRegistry {
	return &notifyRegistry{subs: orderedmap.New[uint16, subscription]()}
}

func (r *notifyRegistry) has(handle uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs.Get(handle)
	return ok
}

func (r *notifyRegistry) put(handle uint16, sub subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs.Set(handle, sub)
}

// remove deletes and returns the subscription for handle, if present.
func (r *notifyRegistry) remove(handle uint16) (subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs.Get(handle)
	if ok {
		r.subs.Delete(handle)
	}
	return sub, ok
}

// abortAll runs every stored abort action (local teardown only, no network
// calls) and empties the registry. Invoked by disconnect and link-drop
// cleanup when the link is already gone.
func (r *notifyRegistry) abortAll() {
	r.mu.Lock()
	aborts := make([]rpc.NotifyAbortFunc, 0, r.subs.Len())
	for pair := r.subs.Oldest(); pair != nil; pair = pair.Next() {
		aborts = append(aborts, pair.Value.abort)
	}
	r.subs = orderedmap.New[uint16, subscription]()
	r.mu.Unlock()

	for _, abort := range aborts {
		abort()
	}
}

func (r *notifyRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs.Len()
}
