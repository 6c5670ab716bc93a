package client

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/srg/bleproxy/pkg/gatt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cacheEntry is the on-disk form of one peer's cached state.
type cacheEntry struct {
	MTU     uint16        `json:"mtu"`
	Profile *gatt.Profile `json:"profile"`
}

// LoadCacheFile reads a cache persisted by SaveFile. A missing file yields an
// empty cache, not an error.
func LoadCacheFile(path string) (*Cache, error) {
	c := NewCache()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %q: %w", path, err)
	}

	entries := make(map[string]cacheEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cache %q: %w", path, err)
	}

	for addr, e := range entries {
		address, err := gatt.MACToInt(addr)
		if err != nil {
			return nil, fmt.Errorf("cache %q: %w", path, err)
		}
		if e.Profile != nil {
			c.services.Set(address, e.Profile)
		}
		if e.MTU != 0 {
			c.mtus.Set(address, e.MTU)
		}
	}
	return c, nil
}

// SaveFile persists the cache as JSON, keyed by hardware address.
func (c *Cache) SaveFile(path string) error {
	entries := make(map[string]cacheEntry)

	c.services.Range(func(address uint64, profile *gatt.Profile) bool {
		e := entries[gatt.IntToMAC(address)]
		e.Profile = profile
		entries[gatt.IntToMAC(address)] = e
		return true
	})
	c.mtus.Range(func(address uint64, mtu uint16) bool {
		e := entries[gatt.IntToMAC(address)]
		e.MTU = mtu
		entries[gatt.IntToMAC(address)] = e
		return true
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache %q: %w", path, err)
	}
	return nil
}
