package gatt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "16-bit UUID",
			input:    "2902",
			expected: "2902",
		},
		{
			name:     "16-bit UUID with 0x prefix",
			input:    "0x2902",
			expected: "2902",
		},
		{
			name:     "16-bit UUID with 0X prefix uppercase",
			input:    "0X2A19",
			expected: "2a19",
		},
		{
			name:     "CCCD full SIG UUID reduces to short form",
			input:    CCCDUUID,
			expected: "2902",
		},
		{
			name:     "full SIG UUID without dashes",
			input:    "0000180f00001000800000805f9b34fb",
			expected: "180f",
		},
		{
			name:     "full SIG UUID uppercase",
			input:    "00002A19-0000-1000-8000-00805F9B34FB",
			expected: "2a19",
		},
		{
			name:     "custom 128-bit UUID keeps full form",
			input:    "6e400001-b5a3-f393-e0a9-e50e24dcca9e",
			expected: "6e400001b5a3f393e0a9e50e24dcca9e",
		},
		{
			name:     "custom UUID with SIG suffix but non-zero prefix keeps full form",
			input:    "aa002902-0000-1000-8000-00805f9b34fb",
			expected: "aa00290200001000800000805f9b34fb",
		},
		{
			name:     "surrounding whitespace",
			input:    "  2a19  ",
			expected: "2a19",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUUID(tt.input))
		})
	}
}

func TestNormalizeUUIDs(t *testing.T) {
	assert.Equal(t,
		[]string{"2902", "180f", "6e400001b5a3f393e0a9e50e24dcca9e"},
		NormalizeUUIDs([]string{CCCDUUID, "0x180F", "6e400001-b5a3-f393-e0a9-e50e24dcca9e"}))
}

func TestMACToInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint64
		wantErr  bool
	}{
		{
			name:     "standard colon notation",
			input:    "AA:BB:CC:DD:EE:FF",
			expected: 0xAABBCCDDEEFF,
		},
		{
			name:     "lowercase",
			input:    "aa:bb:cc:dd:ee:ff",
			expected: 0xAABBCCDDEEFF,
		},
		{
			name:     "no separators",
			input:    "AABBCCDDEEFF",
			expected: 0xAABBCCDDEEFF,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "not-a-mac",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := MACToInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestIntToMACRoundTrip(t *testing.T) {
	const addr = "AA:BB:CC:DD:EE:FF"

	v, err := MACToInt(addr)
	require.NoError(t, err)
	assert.Equal(t, addr, IntToMAC(v))
}
