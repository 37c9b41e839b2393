package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// CachePolicy controls whether a request may read the cache, call the network, and store its result.
type CachePolicy string

const (
	// CachePolicyNoCache skips the cache and does not store the response.
	CachePolicyNoCache CachePolicy = "no-cache"
	// CachePolicyCacheFirst uses a cached response when present and only calls the network on a miss.
	CachePolicyCacheFirst CachePolicy = "cache-first"
	// CachePolicyCacheOnly uses a cached response and fails on a miss.
	CachePolicyCacheOnly CachePolicy = "cache-only"
	// CachePolicyNetworkOnly skips the cache but stores the response.
	CachePolicyNetworkOnly CachePolicy = "network-only"
	// CachePolicyCacheAndNetwork emits the cached response, then the network response, and stores it.
	CachePolicyCacheAndNetwork CachePolicy = "cache-and-network"
)

// DefaultCachePolicy is used when neither the request nor the configuration names a policy.
const DefaultCachePolicy = CachePolicyCacheAndNetwork

// AllowsHit reports whether a cached response may be emitted.
func (p CachePolicy) AllowsHit() bool {
	switch p {
	case CachePolicyCacheFirst, CachePolicyCacheOnly, CachePolicyCacheAndNetwork:
		return true
	default:
		return false
	}
}

// AllowsNetwork reports whether the transport may be called.
// Cache-first only reaches the network on a miss; the caller handles that case.
func (p CachePolicy) AllowsNetwork() bool {
	switch p {
	case CachePolicyNoCache, CachePolicyCacheFirst, CachePolicyNetworkOnly, CachePolicyCacheAndNetwork:
		return true
	default:
		return false
	}
}

// AllowsStore reports whether a network response is written to the cache.
func (p CachePolicy) AllowsStore() bool {
	switch p {
	case CachePolicyCacheFirst, CachePolicyNetworkOnly, CachePolicyCacheAndNetwork:
		return true
	default:
		return false
	}
}

// IsValid reports whether p is one of the known policies.
func (p CachePolicy) IsValid() bool {
	return p.AllowsHit() || p.AllowsNetwork()
}

// ParseCachePolicy converts a policy name into a CachePolicy.
// An empty name yields an empty policy, meaning "use the default".
func ParseCachePolicy(s string) (CachePolicy, error) {
	p := CachePolicy(strings.ToLower(strings.TrimSpace(s)))
	if p == "" || p.IsValid() {
		return p, nil
	}
	return "", zerr.With(zerr.Wrap(ErrInvalidCachePolicy, "parse cache policy"), "policy", s)
}
