package gatt

// CharacteristicRef identifies a characteristic within a discovered Profile.
// A reference can be a value handle (Handle), a UUID in any accepted format
// (UUIDRef), or a *Characteristic taken from a previous discovery.
type CharacteristicRef interface {
	// Resolve returns the matching characteristic in p, or nil.
	Resolve(p *Profile) *Characteristic
}

// Handle references a characteristic by its value handle.
type Handle uint16

// Resolve implements CharacteristicRef.
func (h Handle) Resolve(p *Profile) *Characteristic {
	return p.FindCharacteristicByHandle(uint16(h))
}

// UUIDRef references a characteristic by UUID string.
type UUIDRef string

// Resolve implements CharacteristicRef.
func (u UUIDRef) Resolve(p *Profile) *Characteristic {
	return p.FindCharacteristicByUUID(string(u))
}
