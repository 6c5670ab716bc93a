package rpc

import "strings"

// FeatureFlags is the capability bitset negotiated with the proxy device. It
// is sourced once from the capability exchange and fixed for the lifetime of
// a session.
type FeatureFlags uint32

const (
	FeaturePassiveScan FeatureFlags = 1 << iota
	FeatureActiveConnections
	// FeatureRemoteCaching marks proxies that discard their own service and
	// descriptor tables after connecting to conserve memory; the client is
	// then responsible for topology caching and CCCD management.
	FeatureRemoteCaching
	FeaturePairing
	FeatureCacheClearing
	FeatureRawAdvertisements
)

var featureNames = map[FeatureFlags]string{
	FeaturePassiveScan:       "passive-scan",
	FeatureActiveConnections: "active-connections",
	FeatureRemoteCaching:     "remote-caching",
	FeaturePairing:           "pairing",
	FeatureCacheClearing:     "cache-clearing",
	FeatureRawAdvertisements: "raw-advertisements",
}

// Has reports whether every bit of flag is set.
func (f FeatureFlags) Has(flag FeatureFlags) bool {
	return f&flag == flag
}

func (f FeatureFlags) String() string {
	var names []string
	for flag := FeaturePassiveScan; flag <= FeatureRawAdvertisements; flag <<= 1 {
		if f.Has(flag) {
			names = append(names, featureNames[flag])
		}
	}
	return strings.Join(names, "|")
}
