package proxysim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/srg/bleproxy/internal/groutine"
	"github.com/srg/bleproxy/pkg/gatt"
	"github.com/srg/bleproxy/pkg/rpc"
)

// DefaultMTU is the MTU the simulated proxy negotiates on every link.
const DefaultMTU uint16 = 185

// stateSub is one connection-state subscription. Cancellation only stops
// delivery, it does not touch the link.
type stateSub struct {
	fn        rpc.ConnectionStateFunc
	cancelled atomic.Bool
}

func (s *stateSub) dispatch(connected bool, mtu uint16, errorCode int32) {
	if s != nil && !s.cancelled.Load() {
		s.fn(connected, mtu, errorCode)
	}
}

// peer is the live state of one simulated peripheral.
type peer struct {
	layout  *Peripheral
	address uint64
	entries []rpc.ServiceEntry
	values  map[uint16][]byte

	connected bool
	state     *stateSub
	notify    map[uint16]rpc.NotifyFunc
}

func (p *peer) hasHandle(handle uint16) bool {
	_, ok := p.values[handle]
	return ok
}

// Proxy is the simulated remote proxy. It implements both the remote
// operation set and the connection slot accounting.
//
// The exported knobs inject failures for specific scenarios and must be set
// before the operation they affect; the exported counters observe remote
// call traffic.
type Proxy struct {
	// MTU is reported on every successful connect.
	MTU uint16

	// ConnectErrorCode, when non-zero, makes every connect attempt resolve
	// unsuccessfully with that code.
	ConnectErrorCode int32

	// EmptyServices, when set, makes remote enumeration return no services.
	EmptyServices bool

	// PairError, UnpairError and ClearCacheError, when non-zero, are
	// reported as the corresponding operation's failure code.
	PairError       int32
	UnpairError     int32
	ClearCacheError int32

	// DisconnectCalls and GetServicesCalls count remote calls received.
	DisconnectCalls  atomic.Int32
	GetServicesCalls atomic.Int32

	mu       sync.Mutex
	peers    map[uint64]*peer
	slotCap  int
	slotUsed int
	slotFree chan struct{}

	transportCbs map[int]func()
	cbSeq        int
}

var (
	_ rpc.Client      = (*Proxy)(nil)
	_ rpc.DeviceSlots = (*Proxy)(nil)
)

// New creates a proxy with the given connection slot capacity and simulated
// peripherals.
func New(slots int, peripherals ...*Peripheral) (*Proxy, error) {
	p := &Proxy{
		MTU:          DefaultMTU,
		peers:        make(map[uint64]*peer),
		slotCap:      slots,
		slotFree:     make(chan struct{}),
		transportCbs: make(map[int]func()),
	}
	for _, layout := range peripherals {
		if err := p.AddPeripheral(layout); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddPeripheral registers a simulated peripheral.
func (x *Proxy) AddPeripheral(layout *Peripheral) error {
	address, err := gatt.MACToInt(layout.Address)
	if err != nil {
		return err
	}
	values, err := layout.values()
	if err != nil {
		return fmt.Errorf("peripheral %s: %w", layout.Address, err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.peers[address] = &peer{
		layout:  layout,
		address: address,
		entries: layout.entries(),
		values:  values,
		notify:  make(map[uint16]rpc.NotifyFunc),
	}
	return nil
}

func (x *Proxy) peerLocked(address uint64) (*peer, error) {
	p, ok := x.peers[address]
	if !ok {
		return nil, &rpc.ConnError{Reason: fmt.Sprintf("unknown peripheral %012x", address)}
	}
	return p, nil
}

// connectedPeerLocked resolves a peer and fails with the no-connection GATT
// code when its link is down, the same way a real proxy rejects GATT traffic
// for a dead link.
func (x *Proxy) connectedPeerLocked(address uint64, handle uint16) (*peer, error) {
	p, err := x.peerLocked(address)
	if err != nil {
		return nil, err
	}
	if !p.connected {
		return nil, &rpc.GATTError{Address: address, Handle: handle, Code: rpc.CodeNoConnection}
	}
	return p, nil
}

func (x *Proxy) freeSlotLocked() {
	x.slotUsed--
	close(x.slotFree)
	x.slotFree = make(chan struct{})
}

// FreeSlots implements rpc.DeviceSlots.
func (x *Proxy) FreeSlots() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.slotCap - x.slotUsed
}

// WaitForFreeSlot implements rpc.DeviceSlots.
func (x *Proxy) WaitForFreeSlot(ctx context.Context) error {
	for {
		x.mu.Lock()
		if x.slotCap-x.slotUsed > 0 {
			x.mu.Unlock()
			return nil
		}
		freed := x.slotFree
		x.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-freed:
		}
	}
}

// DeviceConnect implements rpc.Client. The state result is delivered
// asynchronously, after DeviceConnect has returned, like a real transport.
func (x *Proxy) DeviceConnect(ctx context.Context, address uint64, state rpc.ConnectionStateFunc,
	timeout time.Duration, hasCache bool, features rpc.FeatureFlags, addressType uint8) (rpc.CancelFunc, error) {

	x.mu.Lock()
	p, err := x.peerLocked(address)
	if err != nil {
		x.mu.Unlock()
		return nil, err
	}

	sub := &stateSub{fn: state}

	if x.ConnectErrorCode != 0 {
		code := x.ConnectErrorCode
		x.mu.Unlock()
		groutine.Go(ctx, "sim-connect-state", func(context.Context) {
			sub.dispatch(false, 0, code)
		})
		return cancelFor(sub), nil
	}

	if x.slotCap-x.slotUsed <= 0 {
		x.mu.Unlock()
		return nil, &rpc.ConnError{Reason: "no free connection slots"}
	}
	x.slotUsed++
	p.state = sub
	mtu := x.MTU
	x.mu.Unlock()

	groutine.Go(ctx, "sim-connect-state", func(context.Context) {
		x.mu.Lock()
		p.connected = true
		x.mu.Unlock()
		sub.dispatch(true, mtu, 0)
	})
	return cancelFor(sub), nil
}

func cancelFor(sub *stateSub) rpc.CancelFunc {
	return func() error {
		sub.cancelled.Store(true)
		return nil
	}
}

// DeviceDisconnect implements rpc.Client. Disconnecting an already
// disconnected peer succeeds.
func (x *Proxy) DeviceDisconnect(ctx context.Context, address uint64) error {
	x.DisconnectCalls.Add(1)

	x.mu.Lock()
	defer x.mu.Unlock()
	p, err := x.peerLocked(address)
	if err != nil {
		return err
	}
	if p.connected {
		p.connected = false
		p.state = nil
		p.notify = make(map[uint16]rpc.NotifyFunc)
		x.freeSlotLocked()
	}
	return nil
}

// GetServices implements rpc.Client.
func (x *Proxy) GetServices(ctx context.Context, address uint64) ([]rpc.ServiceEntry, error) {
	x.GetServicesCalls.Add(1)

	x.mu.Lock()
	defer x.mu.Unlock()
	p, err := x.connectedPeerLocked(address, 0)
	if err != nil {
		return nil, err
	}
	if x.EmptyServices {
		return nil, nil
	}
	entries := make([]rpc.ServiceEntry, len(p.entries))
	copy(entries, p.entries)
	return entries, nil
}

// ReadCharacteristic implements rpc.Client.
func (x *Proxy) ReadCharacteristic(ctx context.Context, address uint64, handle uint16, timeout time.Duration) ([]byte, error) {
	return x.readAttribute(address, handle)
}

// ReadDescriptor implements rpc.Client.
func (x *Proxy) ReadDescriptor(ctx context.Context, address uint64, handle uint16, timeout time.Duration) ([]byte, error) {
	return x.readAttribute(address, handle)
}

func (x *Proxy) readAttribute(address uint64, handle uint16) ([]byte, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	p, err := x.connectedPeerLocked(address, handle)
	if err != nil {
		return nil, err
	}
	v, ok := p.values[handle]
	if !ok {
		return nil, &rpc.GATTError{Address: address, Handle: handle, Code: 0x01}
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// WriteCharacteristic implements rpc.Client.
func (x *Proxy) WriteCharacteristic(ctx context.Context, address uint64, handle uint16, data []byte, withResponse bool) error {
	return x.writeAttribute(address, handle, data)
}

// WriteDescriptor implements rpc.Client.
func (x *Proxy) WriteDescriptor(ctx context.Context, address uint64, handle uint16, data []byte, waitForResponse bool) error {
	return x.writeAttribute(address, handle, data)
}

func (x *Proxy) writeAttribute(address uint64, handle uint16, data []byte) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	p, err := x.connectedPeerLocked(address, handle)
	if err != nil {
		return err
	}
	if !p.hasHandle(handle) {
		return &rpc.GATTError{Address: address, Handle: handle, Code: 0x01}
	}
	v := make([]byte, len(data))
	copy(v, data)
	p.values[handle] = v
	return nil
}

// StartNotify implements rpc.Client.
func (x *Proxy) StartNotify(ctx context.Context, address uint64, handle uint16, deliver rpc.NotifyFunc) (rpc.NotifyStopFunc, rpc.NotifyAbortFunc, error) {
	x.mu.Lock()
	p, err := x.connectedPeerLocked(address, handle)
	if err != nil {
		x.mu.Unlock()
		return nil, nil, err
	}
	if !p.hasHandle(handle) {
		x.mu.Unlock()
		return nil, nil, &rpc.GATTError{Address: address, Handle: handle, Code: 0x01}
	}
	p.notify[handle] = deliver
	x.mu.Unlock()

	stop := func(ctx context.Context) error {
		x.mu.Lock()
		defer x.mu.Unlock()
		p, err := x.connectedPeerLocked(address, handle)
		if err != nil {
			return err
		}
		delete(p.notify, handle)
		return nil
	}
	abort := func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		delete(p.notify, handle)
	}
	return stop, abort, nil
}

// Pair implements rpc.Client.
func (x *Proxy) Pair(ctx context.Context, address uint64) (rpc.PairingResult, error) {
	x.mu.Lock()
	_, err := x.peerLocked(address)
	x.mu.Unlock()
	if err != nil {
		return rpc.PairingResult{}, err
	}
	return rpc.PairingResult{Paired: x.PairError == 0, Error: x.PairError}, nil
}

// Unpair implements rpc.Client.
func (x *Proxy) Unpair(ctx context.Context, address uint64) (rpc.UnpairResult, error) {
	x.mu.Lock()
	_, err := x.peerLocked(address)
	x.mu.Unlock()
	if err != nil {
		return rpc.UnpairResult{}, err
	}
	return rpc.UnpairResult{Success: x.UnpairError == 0, Error: x.UnpairError}, nil
}

// ClearCache implements rpc.Client.
func (x *Proxy) ClearCache(ctx context.Context, address uint64) (rpc.CacheClearResult, error) {
	x.mu.Lock()
	_, err := x.peerLocked(address)
	x.mu.Unlock()
	if err != nil {
		return rpc.CacheClearResult{}, err
	}
	return rpc.CacheClearResult{Success: x.ClearCacheError == 0, Error: x.ClearCacheError}, nil
}

// SubscribeDisconnect implements rpc.Client.
func (x *Proxy) SubscribeDisconnect(fn func()) func() {
	x.mu.Lock()
	defer x.mu.Unlock()
	id := x.cbSeq
	x.cbSeq++
	x.transportCbs[id] = fn
	return func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		delete(x.transportCbs, id)
	}
}

// Connected reports whether the peer's link is up.
func (x *Proxy) Connected(address uint64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	p, ok := x.peers[address]
	return ok && p.connected
}

// Notify delivers a notification payload for a subscribed characteristic.
// It is a no-op when nothing is subscribed to the handle.
func (x *Proxy) Notify(address uint64, handle uint16, data []byte) {
	x.mu.Lock()
	var fn rpc.NotifyFunc
	if p, ok := x.peers[address]; ok {
		fn = p.notify[handle]
	}
	x.mu.Unlock()

	if fn != nil {
		fn(handle, data)
	}
}

// DropLink simulates the peer's BLE link dying out from under the proxy. The
// state update is delivered synchronously on the caller's goroutine.
func (x *Proxy) DropLink(address uint64) {
	x.mu.Lock()
	p, ok := x.peers[address]
	if !ok || !p.connected {
		x.mu.Unlock()
		return
	}
	p.connected = false
	p.notify = make(map[uint16]rpc.NotifyFunc)
	sub := p.state
	p.state = nil
	x.freeSlotLocked()
	x.mu.Unlock()

	sub.dispatch(false, 0, 0)
}

// DropTransport simulates the proxy transport itself dying: every peer link
// goes down and every transport-disconnect callback fires. Callbacks run
// synchronously on the caller's goroutine, outside the proxy lock.
func (x *Proxy) DropTransport() {
	x.mu.Lock()
	for _, p := range x.peers {
		if p.connected {
			p.connected = false
			p.notify = make(map[uint16]rpc.NotifyFunc)
			p.state = nil
			x.freeSlotLocked()
		}
	}
	cbs := make([]func(), 0, len(x.transportCbs))
	for _, fn := range x.transportCbs {
		cbs = append(cbs, fn)
	}
	x.mu.Unlock()

	for _, fn := range cbs {
		fn()
	}
}
