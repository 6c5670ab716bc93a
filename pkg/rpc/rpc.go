// Package rpc defines the interface this module consumes from a remote proxy
// transport: typed remote GATT operations, the capability flag bitset, the
// raw service tree returned by remote enumeration, and the error types a
// transport may raise. Wire encoding is a transport concern and out of scope.
package rpc

import (
	"context"
	"time"
)

// ConnectionStateFunc receives connection state updates for one peer. A
// resolved connect attempt delivers either (true, mtu, 0) or
// (false, 0, errorCode); later link drops deliver (false, 0, 0).
type ConnectionStateFunc func(connected bool, mtu uint16, errorCode int32)

// NotifyFunc delivers characteristic notification payloads.
type NotifyFunc func(handle uint16, data []byte)

// CancelFunc tears down a callback subscription created by the transport.
type CancelFunc func() error

// NotifyStopFunc remotely unsubscribes an active notification. It is a
// network call and must not be used once the link is gone.
type NotifyStopFunc func(ctx context.Context) error

// NotifyAbortFunc locally tears down an active notification without touching
// the network. Safe to call after the link is gone.
type NotifyAbortFunc func()

// PairingResult is the proxy's response to a pair request.
type PairingResult struct {
	Paired bool
	Error  int32
}

// UnpairResult is the proxy's response to an unpair request.
type UnpairResult struct {
	Success bool
	Error   int32
}

// CacheClearResult is the proxy's response to an on-device cache clear.
type CacheClearResult struct {
	Success bool
	Error   int32
}

// DescriptorEntry is one descriptor in the raw enumerated service tree.
type DescriptorEntry struct {
	UUID   string
	Handle uint16
}

// CharacteristicEntry is one characteristic in the raw enumerated service tree.
type CharacteristicEntry struct {
	UUID        string
	Handle      uint16
	Properties  uint32
	Descriptors []DescriptorEntry
}

// ServiceEntry is one service in the raw enumerated service tree.
type ServiceEntry struct {
	UUID            string
	Handle          uint16
	Characteristics []CharacteristicEntry
}

// Client is the set of remote operations a proxy transport provides. All
// blocking operations observe ctx; implementations must be safe for use from
// multiple goroutines.
type Client interface {
	// DeviceConnect asks the proxy to establish a BLE link to the peer and
	// subscribes state to connection updates. The returned CancelFunc
	// unsubscribes from those updates; it does not drop the link.
	DeviceConnect(ctx context.Context, address uint64, state ConnectionStateFunc,
		timeout time.Duration, hasCache bool, features FeatureFlags, addressType uint8) (CancelFunc, error)

	// DeviceDisconnect asks the proxy to drop the BLE link to the peer.
	DeviceDisconnect(ctx context.Context, address uint64) error

	// GetServices enumerates the peer's GATT topology on the proxy.
	GetServices(ctx context.Context, address uint64) ([]ServiceEntry, error)

	ReadCharacteristic(ctx context.Context, address uint64, handle uint16, timeout time.Duration) ([]byte, error)
	WriteCharacteristic(ctx context.Context, address uint64, handle uint16, data []byte, withResponse bool) error
	ReadDescriptor(ctx context.Context, address uint64, handle uint16, timeout time.Duration) ([]byte, error)
	WriteDescriptor(ctx context.Context, address uint64, handle uint16, data []byte, waitForResponse bool) error

	// StartNotify subscribes to notifications for a characteristic and
	// returns the remote stop action and the local abort action.
	StartNotify(ctx context.Context, address uint64, handle uint16, deliver NotifyFunc) (NotifyStopFunc, NotifyAbortFunc, error)

	Pair(ctx context.Context, address uint64) (PairingResult, error)
	Unpair(ctx context.Context, address uint64) (UnpairResult, error)
	ClearCache(ctx context.Context, address uint64) (CacheClearResult, error)

	// SubscribeDisconnect registers fn to run when the proxy transport
	// itself drops (as opposed to the BLE link to the peer). The returned
	// func unsubscribes and is safe to call more than once.
	SubscribeDisconnect(fn func()) (unsubscribe func())
}

// DeviceSlots exposes the proxy's connection slot accounting. The proxy can
// hold a limited number of concurrent BLE links; sessions gate connects on a
// free slot and wait for slot release after disconnecting.
type DeviceSlots interface {
	// FreeSlots returns the number of currently available slots.
	FreeSlots() int

	// WaitForFreeSlot blocks until a slot is available or ctx is done.
	WaitForFreeSlot(ctx context.Context) error
}
