package roles

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// CachedResolver memoises successful lookups of another Resolver.
// Failures are never cached.
type CachedResolver struct {
	next  Resolver
	cache *ttlcache.Cache[string, string]
}

var _ Resolver = (*CachedResolver)(nil)

// NewCachedResolver wraps next with a cache whose entries live for ttl.
// Call Stop when done to end the expiry loop.
func NewCachedResolver(next Resolver, ttl time.Duration) *CachedResolver {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()

	return &CachedResolver{
		next:  next,
		cache: cache,
	}
}

func (r *CachedResolver) ResolveRole(ctx context.Context, positionID string) (string, error) {
	if item := r.cache.Get(positionID); item != nil {
		return item.Value(), nil
	}

	role, err := r.next.ResolveRole(ctx, positionID)
	if err != nil {
		return "", err
	}
	r.cache.Set(positionID, role, ttlcache.DefaultTTL)
	return role, nil
}

// Len is the number of cached positions
func (r *CachedResolver) Len() int {
	return r.cache.Len()
}

func (r *CachedResolver) Stop() {
	r.cache.Stop()
}
