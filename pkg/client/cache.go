package client

import (
	"github.com/cornelk/hashmap"

	"github.com/srg/bleproxy/pkg/gatt"
)

// Cache is the shared per-peer store of discovered GATT topology and
// negotiated MTU, keyed by hardware address as integer. Entries survive
// reconnects of the same peer and live until explicitly cleared. All sessions
// against the same proxy share one Cache; last writer wins.
type Cache struct {
	services *hashmap.Map[uint64, *gatt.Profile]
	mtus     *hashmap.Map[uint64, uint16]
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		services: hashmap.New[uint64, *gatt.Profile](),
		mtus:     hashmap.New[uint64, uint16](),
	}
}

// Services returns the cached topology snapshot for a peer, if any.
func (c *Cache) Services(address uint64) (*gatt.Profile, bool) {
	return c.services.Get(address)
}

// SetServices stores a freshly discovered topology snapshot for a peer.
func (c *Cache) SetServices(address uint64, profile *gatt.Profile) {
	c.services.Set(address, profile)
}

// MTU returns the cached negotiated MTU for a peer, if any.
func (c *Cache) MTU(address uint64) (uint16, bool) {
	return c.mtus.Get(address)
}

// SetMTU stores the negotiated MTU for a peer.
func (c *Cache) SetMTU(address uint64, mtu uint16) {
	c.mtus.Set(address, mtu)
}

// Clear removes both the topology and MTU entries for a peer.
func (c *Cache) Clear(address uint64) {
	c.services.Del(address)
	c.mtus.Del(address)
}
