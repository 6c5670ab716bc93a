package client

import (
	"context"
	"fmt"

	"github.com/srg/bleproxy/pkg/gatt"
	"github.com/srg/bleproxy/pkg/rpc"
)

// StartNotify implements Client. Besides subscribing on the proxy, it writes
// the peer's CCCD itself when the proxy keeps a remote services cache:
// such proxies skip the CCCD write on their side so a cached subscription
// state never masks the peer's real one.
func (s *Session) StartNotify(ctx context.Context, ref gatt.CharacteristicRef, deliver NotificationHandler) error {
	return invokeNoResult(ctx, s, "start notify", func(ctx context.Context) error {
		ch, err := s.resolveCharacteristic(ref)
		if err != nil {
			return err
		}
		if s.subs.has(ch.Handle) {
			return &GattError{Message: fmt.Sprintf(
				"notifications already enabled on service:%s characteristic:%s handle:%d",
				ch.ServiceUUID, ch.UUID, ch.Handle)}
		}
		if !ch.Notifiable() {
			return &GattError{Message: fmt.Sprintf(
				"characteristic %s does not support notify or indicate", ch.UUID)}
		}

		stop, abort, err := s.rpc.StartNotify(ctx, s.address, ch.Handle, func(handle uint16, data []byte) {
			deliver(data)
		})
		if err != nil {
			return err
		}
		s.subs.put(ch.Handle, subscription{stop: stop, abort: abort})

		if !s.opts.Features.Has(rpc.FeatureRemoteCaching) {
			return nil
		}

		cccd := ch.CCCD()
		if cccd == nil {
			return &GattError{Message: fmt.Sprintf(
				"cannot find CCCD for service:%s characteristic:%s", ch.ServiceUUID, ch.UUID)}
		}
		payload := gatt.CCCDNotifyValue
		if !ch.Property.Has(gatt.PropNotify) {
			payload = gatt.CCCDIndicateValue
		}
		return s.rpc.WriteDescriptor(ctx, s.address, cccd.Handle, payload, false)
	})
}

// StopNotify implements Client. Stopping a characteristic with no active
// subscription is a no-op.
func (s *Session) StopNotify(ctx context.Context, ref gatt.CharacteristicRef) error {
	return invokeNoResult(ctx, s, "stop notify", func(ctx context.Context) error {
		ch, err := s.resolveCharacteristic(ref)
		if err != nil {
			return err
		}
		sub, ok := s.subs.remove(ch.Handle)
		if !ok {
			return nil
		}
		return sub.stop(ctx)
	})
}
