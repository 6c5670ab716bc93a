package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noopSubscription() subscription {
	return subscription{
		stop:  func(ctx context.Context) error { return nil },
		abort: func() {},
	}
}

func TestNotifyRegistryPutHasRemove(t *testing.T) {
	r := newNotifyRegistry()

	assert.False(t, r.has(2))
	assert.Equal(t, 0, r.len())

	r.put(2, noopSubscription())
	assert.True(t, r.has(2))
	assert.Equal(t, 1, r.len())

	_, ok := r.remove(2)
	assert.True(t, ok)
	assert.False(t, r.has(2))

	_, ok = r.remove(2)
	assert.False(t, ok)
}

func TestNotifyRegistryAbortAllOrder(t *testing.T) {
	r := newNotifyRegistry()

	var order []uint16
	abortFor := func(handle uint16) subscription {
		return subscription{
			stop:  func(ctx context.Context) error { return nil },
			abort: func() { order = append(order, handle) },
		}
	}

	r.put(30, abortFor(30))
	r.put(10, abortFor(10))
	r.put(20, abortFor(20))

	r.abortAll()

	// Oldest-first, by insertion order rather than handle order
	assert.Equal(t, []uint16{30, 10, 20}, order)
	assert.Equal(t, 0, r.len())
}

func TestNotifyRegistryUsableAfterAbortAll(t *testing.T) {
	r := newNotifyRegistry()
	r.put(5, noopSubscription())
	r.abortAll()

	r.put(7, noopSubscription())
	assert.True(t, r.has(7))
	assert.Equal(t, 1, r.len())
}

func TestNotifyRegistryAbortDoesNotStop(t *testing.T) {
	r := newNotifyRegistry()

	stopped := false
	r.put(1, subscription{
		stop: func(ctx context.Context) error {
			stopped = true
			return nil
		},
		abort: func() {},
	})

	r.abortAll()
	assert.False(t, stopped, "abortAll must not issue remote stop calls")
	assert.Equal(t, 0, r.len())
}
