package rpc

import "fmt"

// CodeNoConnection is the distinguished GATT error code the proxy reports
// when the BLE link is already gone. Receiving it is often the first evidence
// of a link drop, before the asynchronous state update arrives.
const CodeNoConnection int32 = -1

// TimeoutError is raised by a transport when a remote operation exceeded its
// deadline.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rpc %s timed out", e.Op)
}

// GATTError is a protocol-level failure reported by the remote GATT stack.
type GATTError struct {
	Address uint64
	Handle  uint16
	Code    int32
}

func (e *GATTError) Error() string {
	return fmt.Sprintf("gatt error on handle %d: %s (code %d)",
		e.Handle, GATTErrorDescription(e.Code), e.Code)
}

// ConnError is a transport-level failure: the proxy link itself is broken or
// the request could not be delivered.
type ConnError struct {
	Reason string
}

func (e *ConnError) Error() string {
	return "rpc connection error: " + e.Reason
}

// ATT error names (Core Spec Vol 3, Part F, 3.4.1.1) plus the proxy's own
// no-connection marker.
var gattErrors = map[int32]string{
	CodeNoConnection: "no connection",
	0x01:             "invalid handle",
	0x02:             "read not permitted",
	0x03:             "write not permitted",
	0x04:             "invalid PDU",
	0x05:             "insufficient authentication",
	0x06:             "request not supported",
	0x07:             "invalid offset",
	0x08:             "insufficient authorization",
	0x09:             "prepare queue full",
	0x0a:             "attribute not found",
	0x0b:             "attribute not long",
	0x0c:             "insufficient encryption key size",
	0x0d:             "invalid attribute value length",
	0x0e:             "unlikely error",
	0x0f:             "insufficient encryption",
	0x10:             "unsupported group type",
	0x11:             "insufficient resources",
}

// GATTErrorDescription returns a human-readable description of a GATT error
// code, falling back to a generic message for unmapped codes.
func GATTErrorDescription(code int32) string {
	if desc, ok := gattErrors[code]; ok {
		return desc
	}
	return fmt.Sprintf("unknown error code %d", code)
}

// Connection failure reasons delivered through the connection-state callback
// when a connect attempt resolves unsuccessfully.
var connectErrors = map[int32]string{
	0x01:   "L2CAP failure",
	0x08:   "connection timed out",
	0x13:   "connection terminated by peer",
	0x16:   "connection terminated by local host",
	0x22:   "link supervision timeout",
	0x3e:   "connection failed to establish",
	0x0100: "connection cancelled",
}

// ConnectErrorDescription returns a human-readable description of a connect
// failure code, falling back to a generic message for unmapped codes.
func ConnectErrorDescription(code int32) string {
	if desc, ok := connectErrors[code]; ok {
		return desc
	}
	return fmt.Sprintf("unknown error code %d", code)
}
