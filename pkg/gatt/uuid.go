package gatt

import (
	"fmt"
	"strconv"
	"strings"
)

// sigBaseSuffix is the tail of the Bluetooth SIG base UUID
// (xxxxxxxx-0000-1000-8000-00805f9b34fb) in normalized form.
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the internal lookup format:
// lowercase, no dashes, no 0x prefix. Full 128-bit UUIDs in the Bluetooth SIG
// base format are reduced to their 16-bit short form (e.g. the CCCD UUID
// "00002902-0000-1000-8000-00805f9b34fb" becomes "2902").
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(uuid), "-", ""))
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
		return s[4:8]
	}
	return s
}

// NormalizeUUIDs normalizes a slice of UUID strings.
func NormalizeUUIDs(uuids []string) []string {
	normalized := make([]string, len(uuids))
	for i, uuid := range uuids {
		normalized[i] = NormalizeUUID(uuid)
	}
	return normalized
}

// MACToInt converts a hardware address like "AA:BB:CC:DD:EE:FF" to the
// integer form used to key per-peer state on the proxy link.
func MACToInt(address string) (uint64, error) {
	hexStr := strings.ReplaceAll(strings.TrimSpace(address), ":", "")
	if hexStr == "" {
		return 0, fmt.Errorf("empty hardware address")
	}
	v, err := strconv.ParseUint(hexStr, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hardware address %q: %w", address, err)
	}
	return v, nil
}

// IntToMAC renders the integer form of a hardware address back to the
// colon-separated notation.
func IntToMAC(address uint64) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		byte(address>>40), byte(address>>32), byte(address>>24),
		byte(address>>16), byte(address>>8), byte(address))
}
