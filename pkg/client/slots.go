package client

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/bleproxy/pkg/rpc"
)

// slotGate bounds waits on the proxy's shared connection slot accounting.
// Sessions wait here before connecting (to stay within the proxy's hardware
// connection limit) and after disconnecting (so a rapid reconnect does not
// race the slot release bookkeeping).
type slotGate struct {
	slots rpc.DeviceSlots
	log   *logrus.Entry
}

// Wait returns immediately when a slot is free, otherwise suspends until one
// frees up or timeout elapses, in which case it fails with a TimeoutError.
func (g *slotGate) Wait(ctx context.Context, timeout time.Duration) error {
	if g.slots.FreeSlots() > 0 {
		return nil
	}
	g.log.Debug("Out of connection slots, waiting for a free one")

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := g.slots.WaitForFreeSlot(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Op: "waiting for a free connection slot", Err: err}
		}
		return err
	}
	return nil
}
