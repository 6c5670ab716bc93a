package gatt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *Profile {
	return &Profile{
		Services: []*Service{
			{
				UUID:   "180f",
				Handle: 1,
				Characteristics: []*Characteristic{
					{
						UUID:          "2a19",
						Handle:        2,
						ServiceUUID:   "180f",
						ServiceHandle: 1,
						Property:      PropRead | PropNotify,
						Descriptors: []*Descriptor{
							{UUID: "2902", Handle: 3, CharacteristicUUID: "2a19", CharacteristicHandle: 2},
						},
					},
				},
			},
			{
				UUID:   "180a",
				Handle: 4,
				Characteristics: []*Characteristic{
					{
						UUID:          "2a29",
						Handle:        5,
						ServiceUUID:   "180a",
						ServiceHandle: 4,
						Property:      PropRead,
					},
				},
			},
		},
	}
}

func TestProfileFindCharacteristicByHandle(t *testing.T) {
	p := testProfile()

	ch := p.FindCharacteristicByHandle(5)
	require.NotNil(t, ch)
	assert.Equal(t, "2a29", ch.UUID)

	assert.Nil(t, p.FindCharacteristicByHandle(99))
}

func TestProfileFindCharacteristicByUUID(t *testing.T) {
	p := testProfile()

	tests := []struct {
		name   string
		uuid   string
		expect string
	}{
		{
			name:   "short form",
			uuid:   "2a19",
			expect: "2a19",
		},
		{
			name:   "full SIG form resolves to short",
			uuid:   "00002a19-0000-1000-8000-00805f9b34fb",
			expect: "2a19",
		},
		{
			name:   "uppercase with prefix",
			uuid:   "0x2A29",
			expect: "2a29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := p.FindCharacteristicByUUID(tt.uuid)
			require.NotNil(t, ch)
			assert.Equal(t, tt.expect, ch.UUID)
		})
	}

	assert.Nil(t, p.FindCharacteristicByUUID("ffff"))
}

func TestProfileFindDescriptorByHandle(t *testing.T) {
	p := testProfile()

	d := p.FindDescriptorByHandle(3)
	require.NotNil(t, d)
	assert.Equal(t, "2902", d.UUID)
	assert.Equal(t, uint16(2), d.CharacteristicHandle)

	assert.Nil(t, p.FindDescriptorByHandle(42))
}

func TestCharacteristicCCCD(t *testing.T) {
	p := testProfile()

	battery := p.FindCharacteristicByUUID("2a19")
	require.NotNil(t, battery)
	cccd := battery.CCCD()
	require.NotNil(t, cccd)
	assert.Equal(t, uint16(3), cccd.Handle)

	manufacturer := p.FindCharacteristicByUUID("2a29")
	require.NotNil(t, manufacturer)
	assert.Nil(t, manufacturer.CCCD())
}

func TestCharacteristicNotifiable(t *testing.T) {
	assert.True(t, (&Characteristic{Property: PropNotify}).Notifiable())
	assert.True(t, (&Characteristic{Property: PropIndicate}).Notifiable())
	assert.False(t, (&Characteristic{Property: PropRead | PropWrite}).Notifiable())
}

func TestCharacteristicRefs(t *testing.T) {
	p := testProfile()

	byHandle := Handle(2).Resolve(p)
	require.NotNil(t, byHandle)
	assert.Equal(t, "2a19", byHandle.UUID)

	byUUID := UUIDRef("0x2A19").Resolve(p)
	require.NotNil(t, byUUID)
	assert.Equal(t, uint16(2), byUUID.Handle)

	// A characteristic is its own reference
	assert.Same(t, byHandle, byHandle.Resolve(p))

	assert.Nil(t, Handle(99).Resolve(p))
	assert.Nil(t, UUIDRef("ffff").Resolve(p))
}
