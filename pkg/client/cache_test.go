package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/bleproxy/pkg/gatt"
)

const testAddress uint64 = 0xAABBCCDDEEFF

func testCacheProfile() *gatt.Profile {
	return &gatt.Profile{
		Services: []*gatt.Service{
			{
				UUID:   "180f",
				Handle: 1,
				Characteristics: []*gatt.Characteristic{
					{
						UUID:          "2a19",
						Handle:        2,
						ServiceUUID:   "180f",
						ServiceHandle: 1,
						Property:      gatt.PropRead | gatt.PropNotify,
						Descriptors: []*gatt.Descriptor{
							{UUID: "2902", Handle: 3, CharacteristicUUID: "2a19", CharacteristicHandle: 2},
						},
					},
				},
			},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache()

	_, ok := c.Services(testAddress)
	assert.False(t, ok)
	_, ok = c.MTU(testAddress)
	assert.False(t, ok)

	profile := testCacheProfile()
	c.SetServices(testAddress, profile)
	c.SetMTU(testAddress, 185)

	got, ok := c.Services(testAddress)
	require.True(t, ok)
	assert.Same(t, profile, got)

	mtu, ok := c.MTU(testAddress)
	require.True(t, ok)
	assert.Equal(t, uint16(185), mtu)
}

func TestCacheClearRemovesBothEntries(t *testing.T) {
	c := NewCache()
	c.SetServices(testAddress, testCacheProfile())
	c.SetMTU(testAddress, 185)

	c.Clear(testAddress)

	_, ok := c.Services(testAddress)
	assert.False(t, ok)
	_, ok = c.MTU(testAddress)
	assert.False(t, ok)
}

func TestCacheClearIsPerPeer(t *testing.T) {
	const other uint64 = 0x112233445566

	c := NewCache()
	c.SetMTU(testAddress, 185)
	c.SetMTU(other, 23)

	c.Clear(testAddress)

	_, ok := c.MTU(testAddress)
	assert.False(t, ok)
	mtu, ok := c.MTU(other)
	require.True(t, ok)
	assert.Equal(t, uint16(23), mtu)
}

func TestCacheFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := NewCache()
	c.SetServices(testAddress, testCacheProfile())
	c.SetMTU(testAddress, 185)
	require.NoError(t, c.SaveFile(path))

	loaded, err := LoadCacheFile(path)
	require.NoError(t, err)

	profile, ok := loaded.Services(testAddress)
	require.True(t, ok)
	require.Len(t, profile.Services, 1)
	assert.Equal(t, "180f", profile.Services[0].UUID)
	require.Len(t, profile.Services[0].Characteristics, 1)
	assert.Equal(t, "2a19", profile.Services[0].Characteristics[0].UUID)

	mtu, ok := loaded.MTU(testAddress)
	require.True(t, ok)
	assert.Equal(t, uint16(185), mtu)
}

func TestLoadCacheFileMissingIsEmpty(t *testing.T) {
	loaded, err := LoadCacheFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	_, ok := loaded.Services(testAddress)
	assert.False(t, ok)
}
