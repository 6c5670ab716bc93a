package main

import (
	"errors"

	"github.com/srg/bleproxy/pkg/client"
)

// FormatUserError turns a client error into a message suitable for the
// terminal, without the wrapped transport details.
func FormatUserError(err error) string {
	var timeoutErr *client.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "timed out while " + timeoutErr.Op
	}

	var connErr *client.ConnectionError
	if errors.As(err, &connErr) {
		return "connection failed: " + connErr.Reason
	}

	var gattErr *client.GattError
	if errors.As(err, &gattErr) {
		return gattErr.Message
	}

	var unsupportedErr *client.UnsupportedError
	if errors.As(err, &unsupportedErr) {
		return unsupportedErr.Error()
	}

	return err.Error()
}
