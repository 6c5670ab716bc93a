// Package gatt holds the GATT value objects shared by the proxy client: the
// discovered service topology (Profile), characteristic property flags, and
// the fixed ATT/CCCD protocol constants.
package gatt

// Descriptor is a GATT descriptor of a characteristic.
type Descriptor struct {
	UUID                 string `json:"uuid"`
	Handle               uint16 `json:"handle"`
	CharacteristicUUID   string `json:"characteristic_uuid"`
	CharacteristicHandle uint16 `json:"characteristic_handle"`
}

// Characteristic is a GATT characteristic within a discovered topology.
type Characteristic struct {
	UUID          string        `json:"uuid"`
	Handle        uint16        `json:"handle"`
	ServiceUUID   string        `json:"service_uuid"`
	ServiceHandle uint16        `json:"service_handle"`
	Property      Property      `json:"properties"`
	Descriptors   []*Descriptor `json:"descriptors,omitempty"`

	// MaxWriteWithoutResponse is derived from the negotiated MTU at
	// discovery time and fixed for the lifetime of the topology snapshot.
	MaxWriteWithoutResponse int `json:"max_write_without_response"`
}

// Descriptor returns the descriptor with the given UUID, or nil.
func (c *Characteristic) Descriptor(uuid string) *Descriptor {
	target := NormalizeUUID(uuid)
	for _, d := range c.Descriptors {
		if d.UUID == target {
			return d
		}
	}
	return nil
}

// CCCD returns the characteristic's Client Characteristic Configuration
// Descriptor, or nil if the remote did not expose one.
func (c *Characteristic) CCCD() *Descriptor {
	return c.Descriptor(CCCDUUID)
}

// Notifiable reports whether the characteristic supports notify or indicate.
func (c *Characteristic) Notifiable() bool {
	return c.Property&(PropNotify|PropIndicate) != 0
}

// Resolve implements CharacteristicRef so a characteristic object can be
// passed directly wherever a reference is accepted.
func (c *Characteristic) Resolve(*Profile) *Characteristic {
	return c
}

// Service is a GATT service grouping characteristics.
type Service struct {
	UUID            string            `json:"uuid"`
	Handle          uint16            `json:"handle"`
	Characteristics []*Characteristic `json:"characteristics,omitempty"`
}

// Profile is one complete snapshot of a peer's GATT topology. It is replaced
// wholesale on each discovery, never patched in place.
type Profile struct {
	Services []*Service `json:"services"`
}

// FindCharacteristicByHandle returns the characteristic with the given value
// handle, or nil.
func (p *Profile) FindCharacteristicByHandle(handle uint16) *Characteristic {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if c.Handle == handle {
				return c
			}
		}
	}
	return nil
}

// FindCharacteristicByUUID returns the first characteristic matching the UUID
// (any accepted format), or nil.
func (p *Profile) FindCharacteristicByUUID(uuid string) *Characteristic {
	target := NormalizeUUID(uuid)
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if c.UUID == target {
				return c
			}
		}
	}
	return nil
}

// FindDescriptorByHandle returns the descriptor with the given handle, or nil.
func (p *Profile) FindDescriptorByHandle(handle uint16) *Descriptor {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			for _, d := range c.Descriptors {
				if d.Handle == handle {
					return d
				}
			}
		}
	}
	return nil
}
