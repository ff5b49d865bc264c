package core

import (
	"context"
	"sync"
	"time"

	"glaunch/internal/domain"
)

// defaultVersionTTL bounds how often the remote index is queried.
const defaultVersionTTL = 15 * time.Minute

// latestResolver is the remote version index query, satisfied by
// patchserver.Client.
type latestResolver interface {
	LatestVersion(ctx context.Context, branch domain.Branch) (int, error)
}

type cachedVersion struct {
	version   int
	fetchedAt time.Time
}

// VersionIndex resolves a branch to its newest concrete version number,
// caching remote lookups with a TTL. A failed refresh falls back to the
// last-known value rather than failing the caller, so a resolved 0 means
// "unknown, do not overwrite cached belief". Safe for concurrent use.
type VersionIndex struct {
	resolver latestResolver
	ttl      time.Duration

	mu    sync.RWMutex
	cache map[domain.Branch]cachedVersion
}

// NewVersionIndex creates a version index over the given resolver.
// A non-positive ttl selects the 15 minute default.
func NewVersionIndex(resolver latestResolver, ttl time.Duration) *VersionIndex {
	if ttl <= 0 {
		ttl = defaultVersionTTL
	}
	return &VersionIndex{
		resolver: resolver,
		ttl:      ttl,
		cache:    make(map[domain.Branch]cachedVersion),
	}
}

// Resolve returns the latest version number for branch, or 0 when it is
// unknown and no cached belief exists.
func (v *VersionIndex) Resolve(ctx context.Context, branch domain.Branch) int {
	v.mu.RLock()
	cached, ok := v.cache[branch]
	v.mu.RUnlock()

	if ok && time.Since(cached.fetchedAt) < v.ttl {
		return cached.version
	}

	latest, err := v.resolver.LatestVersion(ctx, branch)
	if err != nil || latest <= 0 {
		// Stale beats nothing; the next query past the TTL retries.
		if ok {
			return cached.version
		}
		return 0
	}

	v.mu.Lock()
	v.cache[branch] = cachedVersion{version: latest, fetchedAt: time.Now()}
	v.mu.Unlock()

	return latest
}

// List returns [0, latest, latest-1, ..., 1]: the auto-updating pointer
// first, then every concrete version newest-first. When the latest version
// is unknown the list is just [0].
func (v *VersionIndex) List(ctx context.Context, branch domain.Branch) []int {
	latest := v.Resolve(ctx, branch)

	versions := make([]int, 0, latest+1)
	versions = append(versions, domain.LatestVersion)
	for n := latest; n >= 1; n-- {
		versions = append(versions, n)
	}
	return versions
}

// Invalidate drops the cached value for branch, forcing the next Resolve
// to hit the remote index.
func (v *VersionIndex) Invalidate(branch domain.Branch) {
	v.mu.Lock()
	delete(v.cache, branch)
	v.mu.Unlock()
}
