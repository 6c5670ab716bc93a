package client

import (
	"context"
	"fmt"

	"github.com/srg/bleproxy/pkg/gatt"
)

// resolveCharacteristic maps a caller-supplied reference onto the discovered
// topology snapshot.
func (s *Session) resolveCharacteristic(ref gatt.CharacteristicRef) (*gatt.Characteristic, error) {
	s.mu.Lock()
	profile := s.profile
	s.mu.Unlock()

	if profile == nil {
		return nil, &GattError{Message: "services have not been resolved"}
	}
	ch := ref.Resolve(profile)
	if ch == nil {
		return nil, &GattError{Message: fmt.Sprintf("characteristic %v not found", ref)}
	}
	return ch, nil
}

// ReadCharacteristic implements Client.
func (s *Session) ReadCharacteristic(ctx context.Context, ref gatt.CharacteristicRef) ([]byte, error) {
	return invoke(ctx, s, "read characteristic", func(ctx context.Context) ([]byte, error) {
		ch, err := s.resolveCharacteristic(ref)
		if err != nil {
			return nil, err
		}
		return s.rpc.ReadCharacteristic(ctx, s.address, ch.Handle, s.opts.ReadTimeout)
	})
}

// WriteCharacteristic implements Client.
func (s *Session) WriteCharacteristic(ctx context.Context, ref gatt.CharacteristicRef, data []byte, withResponse bool) error {
	return invokeNoResult(ctx, s, "write characteristic", func(ctx context.Context) error {
		ch, err := s.resolveCharacteristic(ref)
		if err != nil {
			return err
		}
		return s.rpc.WriteCharacteristic(ctx, s.address, ch.Handle, data, withResponse)
	})
}

// ReadDescriptor implements Client. Descriptors are addressed by handle
// directly since handles are unique across the whole topology.
func (s *Session) ReadDescriptor(ctx context.Context, handle uint16) ([]byte, error) {
	return invoke(ctx, s, "read descriptor", func(ctx context.Context) ([]byte, error) {
		return s.rpc.ReadDescriptor(ctx, s.address, handle, s.opts.ReadTimeout)
	})
}

// WriteDescriptor implements Client.
func (s *Session) WriteDescriptor(ctx context.Context, handle uint16, data []byte) error {
	return invokeNoResult(ctx, s, "write descriptor", func(ctx context.Context) error {
		return s.rpc.WriteDescriptor(ctx, s.address, handle, data, true)
	})
}
