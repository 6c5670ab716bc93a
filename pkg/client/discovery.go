package client

import (
	"context"

	"github.com/srg/bleproxy/pkg/gatt"
	"github.com/srg/bleproxy/pkg/rpc"
)

// GetServices implements Client.
func (s *Session) GetServices(ctx context.Context, useCache bool) (*gatt.Profile, error) {
	return invoke(ctx, s, "get services", func(ctx context.Context) (*gatt.Profile, error) {
		return s.getServices(ctx, useCache)
	})
}

// getServices resolves the peer's GATT topology, preferring the shared cache
// over a remote enumeration when the proxy keeps its own copy too (otherwise
// a stale local snapshot could outlive a peer firmware update the proxy
// would have noticed).
func (s *Session) getServices(ctx context.Context, useCache bool) (*gatt.Profile, error) {
	if useCache || s.opts.Features.Has(rpc.FeatureRemoteCaching) {
		if profile, ok := s.cache.Services(s.address); ok {
			s.log.Debug("Cached services hit")
			s.mu.Lock()
			s.profile = profile
			s.mu.Unlock()
			return profile, nil
		}
	}

	entries, err := s.rpc.GetServices(ctx, s.address)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &GattError{Message: "failed to get services from remote proxy"}
	}

	profile := s.buildProfile(entries)

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	s.cache.SetServices(s.address, profile)
	s.log.Debug("Cached services saved")
	return profile, nil
}

// buildProfile converts a raw enumerated service tree into the immutable
// topology snapshot, normalizing UUIDs and deriving per-characteristic write
// limits from the MTU in force at discovery time.
func (s *Session) buildProfile(entries []rpc.ServiceEntry) *gatt.Profile {
	maxWriteNR := s.MTUSize() - gatt.HeaderSize

	profile := &gatt.Profile{Services: make([]*gatt.Service, 0, len(entries))}
	for _, se := range entries {
		svc := &gatt.Service{
			UUID:            gatt.NormalizeUUID(se.UUID),
			Handle:          se.Handle,
			Characteristics: make([]*gatt.Characteristic, 0, len(se.Characteristics)),
		}
		for _, ce := range se.Characteristics {
			ch := &gatt.Characteristic{
				UUID:                    gatt.NormalizeUUID(ce.UUID),
				Handle:                  ce.Handle,
				ServiceUUID:             svc.UUID,
				ServiceHandle:           svc.Handle,
				Property:                gatt.Property(ce.Properties),
				MaxWriteWithoutResponse: maxWriteNR,
				Descriptors:             make([]*gatt.Descriptor, 0, len(ce.Descriptors)),
			}
			for _, de := range ce.Descriptors {
				ch.Descriptors = append(ch.Descriptors, &gatt.Descriptor{
					UUID:                 gatt.NormalizeUUID(de.UUID),
					Handle:               de.Handle,
					CharacteristicUUID:   ch.UUID,
					CharacteristicHandle: ch.Handle,
				})
			}
			svc.Characteristics = append(svc.Characteristics, ch)
		}
		profile.Services = append(profile.Services, svc)
	}
	return profile
}
