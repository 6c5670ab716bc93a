package gatt

import "strings"

// Property is the characteristic property bit field (Core Spec 3.3.1.1).
type Property uint32

const (
	PropBroadcast   Property = 0x01
	PropRead        Property = 0x02
	PropWriteNR     Property = 0x04 // write without response
	PropWrite       Property = 0x08
	PropNotify      Property = 0x10
	PropIndicate    Property = 0x20
	PropSignedWrite Property = 0x40
	PropExtended    Property = 0x80
)

var propertyNames = []struct {
	flag Property
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteNR, "write-without-response"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
	{PropSignedWrite, "authenticated-signed-writes"},
	{PropExtended, "extended-properties"},
}

// Has reports whether every bit of flag is set.
func (p Property) Has(flag Property) bool {
	return p&flag == flag
}

// Names returns the human-readable names of all set property flags.
func (p Property) Names() []string {
	var names []string
	for _, pn := range propertyNames {
		if p.Has(pn.flag) {
			names = append(names, pn.name)
		}
	}
	return names
}

func (p Property) String() string {
	return strings.Join(p.Names(), "|")
}

// ParseProperty maps a property name (as used in peripheral layout files) back
// to its bit flag. Unknown names map to zero.
func ParseProperty(name string) Property {
	for _, pn := range propertyNames {
		if pn.name == strings.ToLower(strings.TrimSpace(name)) {
			return pn.flag
		}
	}
	return 0
}
