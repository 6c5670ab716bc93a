package client

import "fmt"

// TimeoutError indicates a remote operation or slot wait exceeded its bound.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timeout while %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("timeout while %s", e.Op)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// GattError indicates a protocol-level failure: an unresolved characteristic,
// a duplicate or missing subscription, an empty discovery result, or a
// failure reported by the remote GATT stack.
type GattError struct {
	Message string
	Err     error
}

func (e *GattError) Error() string { return e.Message }

func (e *GattError) Unwrap() error { return e.Err }

// ConnectionError indicates the link is unavailable: a failed connect
// attempt, a drop mid-operation, or a broken proxy transport.
type ConnectionError struct {
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string { return e.Reason }

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnsupportedError indicates the proxy firmware does not advertise the
// capability required for the requested operation.
type UnsupportedError struct {
	Feature string
	Device  string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported by the proxy firmware on %s; upgrade the firmware on that device",
		e.Feature, e.Device)
}
