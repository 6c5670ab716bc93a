package proxysim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutYAML = `
name: hrm
address: "11:22:33:44:55:66"
services:
  - uuid: "180d"
    characteristics:
      - uuid: "2a37"
        properties: [notify]
        descriptors:
          - uuid: "2902"
            value: "0000"
      - uuid: "2a38"
        properties: [read]
        value: "0x01"
`

func TestParsePeripheral(t *testing.T) {
	p, err := ParsePeripheral([]byte(layoutYAML))
	require.NoError(t, err)

	assert.Equal(t, "hrm", p.Name)
	require.Len(t, p.Services, 1)
	svc := p.Services[0]
	require.Len(t, svc.Characteristics, 2)

	// Sequential handle assignment across the whole attribute table
	assert.Equal(t, uint16(1), svc.Handle)
	assert.Equal(t, uint16(2), svc.Characteristics[0].Handle)
	assert.Equal(t, uint16(3), svc.Characteristics[0].Descriptors[0].Handle)
	assert.Equal(t, uint16(4), svc.Characteristics[1].Handle)
}

func TestParsePeripheralExplicitHandlesKept(t *testing.T) {
	p, err := ParsePeripheral([]byte(`
address: "11:22:33:44:55:66"
services:
  - uuid: "180f"
    handle: 10
    characteristics:
      - uuid: "2a19"
        properties: [read]
`))
	require.NoError(t, err)

	assert.Equal(t, uint16(10), p.Services[0].Handle)
	assert.Equal(t, uint16(11), p.Services[0].Characteristics[0].Handle)
}

func TestParsePeripheralRejectsBadAddress(t *testing.T) {
	_, err := ParsePeripheral([]byte(`address: "zz:zz"`))
	assert.Error(t, err)

	_, err = ParsePeripheral([]byte(`name: no-address`))
	assert.Error(t, err)
}

func TestPeripheralValues(t *testing.T) {
	p, err := ParsePeripheral([]byte(layoutYAML))
	require.NoError(t, err)

	vals, err := p.values()
	require.NoError(t, err)

	assert.Equal(t, []byte{}, vals[2], "characteristic without a value gets an empty payload")
	assert.Equal(t, []byte{0x00, 0x00}, vals[3])
	assert.Equal(t, []byte{0x01}, vals[4], "0x prefix accepted")
}

func TestPeripheralEntries(t *testing.T) {
	p, err := ParsePeripheral([]byte(layoutYAML))
	require.NoError(t, err)

	entries := p.entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Characteristics, 2)

	notifyChar := entries[0].Characteristics[0]
	assert.Equal(t, uint32(0x10), notifyChar.Properties)
	require.Len(t, notifyChar.Descriptors, 1)
	assert.Equal(t, "2902", notifyChar.Descriptors[0].UUID)
}

func TestDefaultPeripheral(t *testing.T) {
	p := DefaultPeripheral()
	require.Len(t, p.Services, 3)

	vals, err := p.values()
	require.NoError(t, err)
	assert.Equal(t, []byte("SimCorp"), vals[2])

	// All handles assigned and unique
	seen := make(map[uint16]bool)
	for _, svc := range p.Services {
		require.NotZero(t, svc.Handle)
		require.False(t, seen[svc.Handle])
		seen[svc.Handle] = true
		for _, ch := range svc.Characteristics {
			require.NotZero(t, ch.Handle)
			require.False(t, seen[ch.Handle])
			seen[ch.Handle] = true
			for _, d := range ch.Descriptors {
				require.NotZero(t, d.Handle)
				require.False(t, seen[d.Handle])
				seen[d.Handle] = true
			}
		}
	}
}
