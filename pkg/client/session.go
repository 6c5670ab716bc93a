package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"

	"github.com/srg/bleproxy/pkg/gatt"
	"github.com/srg/bleproxy/pkg/rpc"
)

// Session is a GATT client session to one BLE peer reached through a remote
// proxy. Exactly one Session corresponds to one logical peer at a time.
// Sessions for different peers run concurrently and share the Cache and the
// proxy's connection slots.
type Session struct {
	rpc   rpc.Client
	cache *Cache
	slots *slotGate
	opts  Options
	log   *logrus.Entry

	address uint64

	waiters *waiterSet
	subs    *notifyRegistry

	mu              sync.Mutex
	connected       bool
	mtu             uint16
	profile         *gatt.Profile
	cancelConnState rpc.CancelFunc
	unsubTransport  func()
	disconnectedCb  func()
	closed          bool
}

var _ Client = (*Session)(nil)

// NewSession creates a session for one peer. The cache and slot accounting
// are shared across all sessions against the same proxy.
func NewSession(rpcClient rpc.Client, slots rpc.DeviceSlots, cache *Cache, opts Options) (*Session, error) {
	defaults.SetDefaults(&opts)
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if cache == nil {
		cache = NewCache()
	}

	address, err := gatt.MACToInt(opts.Address)
	if err != nil {
		return nil, err
	}

	log := opts.Logger.WithFields(logrus.Fields{
		"source":  opts.Source,
		"device":  opts.Name,
		"address": opts.Address,
	})

	return &Session{
		rpc:     rpcClient,
		cache:   cache,
		slots:   &slotGate{slots: slots, log: log},
		opts:    opts,
		log:     log,
		address: address,
		waiters: newWaiterSet(),
		subs:    newNotifyRegistry(),
	}, nil
}

func (s *Session) String() string {
	return fmt.Sprintf("Session(%s)", s.opts.Address)
}

// connectFuture is the single-use resolution point for one connect attempt.
// The first resolve wins; late duplicate state signals are ignored.
type connectFuture struct {
	resolved atomic.Bool
	ch       chan error
}

func newConnectFuture() *connectFuture {
	return &connectFuture{ch: make(chan error, 1)}
}

func (f *connectFuture) resolve(err error) {
	if f.resolved.CompareAndSwap(false, true) {
		f.ch <- err
	}
}

func (f *connectFuture) done() bool {
	return f.resolved.Load()
}

// drain observes a resolved result that lost the race against another
// failure, so it is never left dangling. The triggering error wins; the
// drained one is only logged.
func (f *connectFuture) drain(log *logrus.Entry) {
	if !f.done() {
		return
	}
	select {
	case err := <-f.ch:
		if err != nil {
			log.WithError(err).Debug("Suppressed connect result superseded by the triggering failure")
		}
	default:
	}
}

// Connect implements Client.
func (s *Session) Connect(ctx context.Context, useCache bool) error {
	if err := s.connect(ctx, useCache); err != nil {
		return s.translateError("connect", err)
	}
	return nil
}

func (s *Session) connect(ctx context.Context, useCache bool) error {
	if err := s.slots.Wait(ctx, s.opts.SlotWaitTimeout); err != nil {
		return err
	}

	mtu, _ := s.cache.MTU(s.address)
	s.mu.Lock()
	s.mtu = mtu
	s.mu.Unlock()

	_, hasServices := s.cache.Services(s.address)
	hasCache := useCache &&
		s.opts.Features.Has(rpc.FeatureRemoteCaching) &&
		hasServices &&
		mtu != 0

	fut := newConnectFuture()

	cancelState, err := s.rpc.DeviceConnect(ctx, s.address, s.connectionStateHandler(fut),
		s.opts.ConnectTimeout, hasCache, s.opts.Features, s.opts.AddressType)
	if err != nil {
		// The connect call's own error is the more descriptive one;
		// a concurrently resolved state result must still be observed.
		fut.drain(s.log)
		return err
	}

	s.mu.Lock()
	s.cancelConnState = cancelState
	s.mu.Unlock()

	select {
	case err := <-fut.ch:
		if err != nil {
			s.mu.Lock()
			s.unsubscribeConnStateLocked()
			s.mu.Unlock()
			return err
		}
	case <-ctx.Done():
		fut.drain(s.log)
		s.mu.Lock()
		s.unsubscribeConnStateLocked()
		s.mu.Unlock()
		return ctx.Err()
	}

	// Connect is all-or-nothing: a session is never left connected with no
	// usable topology.
	if _, err := s.getServices(ctx, useCache); err != nil {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.DisconnectTimeout)
		defer cancel()
		if derr := s.disconnect(cleanupCtx); derr != nil {
			s.log.WithError(derr).Debug("Disconnect after failed service discovery also failed")
		}
		return err
	}

	return nil
}

// connectionStateHandler returns the single-use connection state callback for
// one connect attempt. Delivery is serialized relative to the connect call
// that registered it.
func (s *Session) connectionStateHandler(fut *connectFuture) rpc.ConnectionStateFunc {
	return func(connected bool, mtu uint16, errorCode int32) {
		s.log.WithFields(logrus.Fields{
			"connected": connected,
			"mtu":       mtu,
			"error":     errorCode,
		}).Debug("Connection state changed")

		if connected {
			s.mu.Lock()
			s.connected = true
			if s.mtu == 0 {
				// MTU is latched on the first connected signal and
				// fixed until a fresh connect.
				s.mtu = mtu
				s.cache.SetMTU(s.address, mtu)
			}
			s.mu.Unlock()
		} else {
			s.handleLinkDrop()
		}

		if fut.done() {
			return
		}

		switch {
		case errorCode != 0:
			fut.resolve(&ConnectionError{
				Reason: fmt.Sprintf("error %d while connecting: %s",
					errorCode, rpc.ConnectErrorDescription(errorCode)),
			})
		case !connected:
			fut.resolve(&ConnectionError{Reason: "disconnected"})
		default:
			s.log.Debug("Connected, subscribing to proxy transport drops")
			s.mu.Lock()
			if s.unsubTransport == nil {
				s.unsubTransport = s.rpc.SubscribeDisconnect(s.handleTransportDisconnect)
			}
			s.mu.Unlock()
			fut.resolve(nil)
		}
	}
}

// handleTransportDisconnect runs when the proxy transport itself drops, as
// opposed to the BLE link to the peer. Both converge on the same cleanup.
func (s *Session) handleTransportDisconnect() {
	s.log.Debug("Proxy transport disconnected")
	s.mu.Lock()
	if s.unsubTransport != nil {
		s.unsubTransport()
		s.unsubTransport = nil
	}
	s.mu.Unlock()
	s.handleLinkDrop()
}

// handleLinkDrop runs cleanup and, if the session had ever reached connected,
// fires the caller's disconnect callback exactly once. A second link-drop
// signal before a reconnect is a no-op.
func (s *Session) handleLinkDrop() {
	s.mu.Lock()
	wasConnected := s.connected
	var cb func()
	if wasConnected {
		cb = s.disconnectedCb
		s.disconnectedCb = nil
	}
	s.cleanupLocked()
	s.mu.Unlock()

	if wasConnected {
		s.log.Debug("BLE device disconnected")
		if cb != nil {
			cb()
		}
	}
}

// cleanupLocked resets all connection state: topology, the connected flag,
// every active notification (local abort only, the link is gone), every
// outstanding operation waiter, and the state/transport subscriptions.
// Callers hold s.mu.
func (s *Session) cleanupLocked() {
	s.profile = nil
	s.connected = false
	s.subs.abortAll()
	s.waiters.ResolveAll()
	s.unsubscribeConnStateLocked()
	if s.unsubTransport != nil {
		s.unsubTransport()
		s.unsubTransport = nil
	}
}

func (s *Session) unsubscribeConnStateLocked() {
	if s.cancelConnState == nil {
		return
	}
	if err := s.cancelConnState(); err != nil {
		// Non-fatal: the subscription usually dies with the connection.
		s.log.WithError(err).Debug("Failed to unsubscribe from connection state (likely connection dropped)")
	}
	s.cancelConnState = nil
}

// Disconnect implements Client.
func (s *Session) Disconnect(ctx context.Context) error {
	if err := s.disconnect(ctx); err != nil {
		return s.translateError("disconnect", err)
	}
	return nil
}

// disconnect runs cleanup before issuing the remote disconnect, then waits
// for the slot release bookkeeping so a rapid reconnect cannot race it.
func (s *Session) disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.cleanupLocked()
	s.mu.Unlock()

	if err := s.rpc.DeviceDisconnect(ctx, s.address); err != nil {
		return err
	}
	return s.slots.Wait(ctx, s.opts.DisconnectTimeout)
}

// IsConnected implements Client.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// MTUSize implements Client.
func (s *Session) MTUSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mtu == 0 {
		return gatt.DefaultMTU
	}
	return int(s.mtu)
}

// Pair implements Client.
func (s *Session) Pair(ctx context.Context) (bool, error) {
	return invoke(ctx, s, "pair", func(ctx context.Context) (bool, error) {
		if !s.opts.Features.Has(rpc.FeaturePairing) {
			return false, &UnsupportedError{Feature: "pairing", Device: s.opts.DeviceName}
		}
		res, err := s.rpc.Pair(ctx, s.address)
		if err != nil {
			return false, err
		}
		if !res.Paired {
			s.log.WithField("error", res.Error).Error("Pairing failed")
			return false, nil
		}
		return true, nil
	})
}

// Unpair implements Client.
func (s *Session) Unpair(ctx context.Context) (bool, error) {
	return invoke(ctx, s, "unpair", func(ctx context.Context) (bool, error) {
		if !s.opts.Features.Has(rpc.FeaturePairing) {
			return false, &UnsupportedError{Feature: "unpairing", Device: s.opts.DeviceName}
		}
		res, err := s.rpc.Unpair(ctx, s.address)
		if err != nil {
			return false, err
		}
		if !res.Success {
			s.log.WithField("error", res.Error).Error("Unpairing failed")
			return false, nil
		}
		return true, nil
	})
}

// ClearCache implements Client. The local cache entries are always cleared;
// the on-device clear additionally runs only when the proxy supports it.
func (s *Session) ClearCache(ctx context.Context) (bool, error) {
	return invoke(ctx, s, "clear cache", func(ctx context.Context) (bool, error) {
		s.cache.Clear(s.address)
		if !s.opts.Features.Has(rpc.FeatureCacheClearing) {
			s.log.Warn("On-device cache clearing is not supported by this proxy firmware; only the local cache was cleared")
			return true, nil
		}
		res, err := s.rpc.ClearCache(ctx, s.address)
		if err != nil {
			return false, err
		}
		if !res.Success {
			s.log.WithField("error", res.Error).Error("Clear cache failed")
			return false, nil
		}
		return true, nil
	})
}

// SetDisconnectedCallback implements Client.
func (s *Session) SetDisconnectedCallback(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectedCb = fn
}

// Close implements Client. It releases local state only; use Disconnect to
// tear the link down first.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancelConnState != nil {
		s.log.Warn("Session closed without a prior disconnect")
	}
	s.cleanupLocked()
	return nil
}
