package client

import (
	"context"
	"errors"

	"github.com/srg/bleproxy/pkg/rpc"
)

// Every session operation is built by composing two independent wrapping
// stages around the core call: a disconnect guard that aborts the operation
// the moment the link drops, and boundary translation of transport errors
// into the client taxonomy. Transport failures are translated exactly once
// here and never re-wrapped further up.

// invoke runs fn with both stages applied.
func invoke[T any](ctx context.Context, s *Session, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	opCtx, release := s.waiters.Register(ctx)
	defer release()

	v, err := fn(opCtx)

	// The guard wins over whatever fn returned: once the link dropped
	// mid-flight, neither a stale result nor a secondary failure is
	// meaningful to the caller.
	if errors.Is(context.Cause(opCtx), errDisconnectedMidOperation) {
		return zero, &ConnectionError{Reason: "disconnected during " + op, Err: err}
	}
	if err != nil {
		return zero, s.translateError(op, err)
	}
	return v, nil
}

// invokeNoResult is invoke for operations without a return value.
func invokeNoResult(ctx context.Context, s *Session, op string, fn func(ctx context.Context) error) error {
	_, err := invoke(ctx, s, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// translateError maps transport-layer failures into the client error
// taxonomy. A GATT no-connection code doubles as first evidence of a link
// drop, so cleanup runs here before the caller sees the failure. Errors that
// are not transport types pass through unchanged.
func (s *Session) translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var timeoutErr *rpc.TimeoutError
	if errors.As(err, &timeoutErr) {
		return &TimeoutError{Op: op, Err: err}
	}

	var gattErr *rpc.GATTError
	if errors.As(err, &gattErr) {
		if gattErr.Code == rpc.CodeNoConnection {
			s.log.WithField("op", op).Debug("BLE device disconnected during operation")
			s.handleLinkDrop()
		}
		return &GattError{Message: gattErr.Error(), Err: err}
	}

	var connErr *rpc.ConnError
	if errors.As(err, &connErr) {
		return &ConnectionError{Reason: connErr.Reason, Err: err}
	}

	return err
}
