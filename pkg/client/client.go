// Package client implements a BLE GATT client backed by a remote proxy: a
// radio device that physically holds the BLE link and exposes it through
// typed remote operations (pkg/rpc). A Session manages the connect/disconnect
// lifecycle against that unreliable link, caches discovered topology to avoid
// redundant discovery, shares the proxy's limited connection slots with other
// sessions, and normalizes the transport's error taxonomy for callers.
package client

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/bleproxy/pkg/gatt"
	"github.com/srg/bleproxy/pkg/rpc"
)

// NotificationHandler receives characteristic notification payloads.
type NotificationHandler func(data []byte)

// Client is the generic BLE GATT client contract a Session satisfies.
type Client interface {
	// Connect establishes the BLE link and discovers services. useCache
	// opts in to reusing a previously cached topology. Connect is
	// all-or-nothing: on any failure the session is left cleanly
	// disconnected.
	Connect(ctx context.Context, useCache bool) error

	// Disconnect tears the link down. It is idempotent: calling it on an
	// already-disconnected session performs cleanup harmlessly and still
	// issues the remote disconnect request.
	Disconnect(ctx context.Context) error

	IsConnected() bool

	// MTUSize returns the negotiated ATT MTU, or the protocol minimum if
	// none has been negotiated yet.
	MTUSize() int

	// GetServices returns the peer's GATT topology, preferring the shared
	// cache when permitted.
	GetServices(ctx context.Context, useCache bool) (*gatt.Profile, error)

	ReadCharacteristic(ctx context.Context, ref gatt.CharacteristicRef) ([]byte, error)
	WriteCharacteristic(ctx context.Context, ref gatt.CharacteristicRef, data []byte, withResponse bool) error
	ReadDescriptor(ctx context.Context, handle uint16) ([]byte, error)
	WriteDescriptor(ctx context.Context, handle uint16, data []byte) error

	StartNotify(ctx context.Context, ref gatt.CharacteristicRef, deliver NotificationHandler) error
	StopNotify(ctx context.Context, ref gatt.CharacteristicRef) error

	Pair(ctx context.Context) (bool, error)
	Unpair(ctx context.Context) (bool, error)
	ClearCache(ctx context.Context) (bool, error)

	// SetDisconnectedCallback registers fn to run once if the link drops
	// out from under a connected session.
	SetDisconnectedCallback(fn func())

	// Close releases the session. Callers must Close a session they no
	// longer use; a session closed while still connected is logged as a
	// diagnostic.
	Close() error
}

// Options configures a Session.
type Options struct {
	// Address is the peer hardware address, e.g. "AA:BB:CC:DD:EE:FF".
	Address string

	// AddressType distinguishes public from random peer addresses.
	AddressType uint8

	// Name is a human-readable label for the peer, used in logs.
	Name string

	// DeviceName names the proxy device, used in capability error messages.
	DeviceName string

	// Source identifies the proxy in log correlation fields.
	Source string

	// Features is the capability bitset negotiated with the proxy.
	Features rpc.FeatureFlags

	ConnectTimeout    time.Duration `default:"30s"`
	ReadTimeout       time.Duration `default:"30s"`
	DisconnectTimeout time.Duration `default:"5s"`
	SlotWaitTimeout   time.Duration `default:"2s"`

	// Logger receives structured session logs; nil means a fresh default
	// logger.
	Logger *logrus.Logger
}
