package gatt

// ATT protocol constants used before (and after) MTU negotiation.
const (
	// DefaultMTU is the minimum ATT MTU every BLE link supports. It is
	// assumed until the proxy reports the negotiated value.
	DefaultMTU = 23

	// HeaderSize is the ATT header overhead of a write request; the largest
	// payload a single write-without-response can carry is MTU - HeaderSize.
	HeaderSize = 3

	// DefaultMaxWriteWithoutResponse applies when no MTU has been negotiated.
	DefaultMaxWriteWithoutResponse = DefaultMTU - HeaderSize
)

// CCCDUUID is the Client Characteristic Configuration Descriptor, the control
// point written to enable notification or indication delivery.
const CCCDUUID = "00002902-0000-1000-8000-00805f9b34fb"

// Two-byte CCCD enable payloads (little endian bitfield, Core Spec 3.3.3.3).
var (
	CCCDNotifyValue   = []byte{0x01, 0x00}
	CCCDIndicateValue = []byte{0x02, 0x00}
)
