package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dbctrade/ordercore/internal/pkg/cache"
)

// CachedLookup is a read-through decorator over a Lookup. Hits skip the
// collaborator entirely; misses are fetched and written back with a short
// TTL so reconciliation never acts on stale stock for long.
//
// Cache failures are soft: a broken redis degrades to direct lookups.
type CachedLookup struct {
	source Lookup
	cache  cache.Cache
	ttl    time.Duration
}

var _ Lookup = (*CachedLookup)(nil)

func NewCachedLookup(source Lookup, c cache.Cache, ttl time.Duration) *CachedLookup {
	return &CachedLookup{source: source, cache: c, ttl: ttl}
}

func (c *CachedLookup) key(sku string) string {
	return c.cache.GenerateKey("inventory", sku)
}

// LookupMany serves what it can from cache and fetches the rest from the
// source in one call.
func (c *CachedLookup) LookupMany(ctx context.Context, skus []string) (map[string]Record, error) {
	out := make(map[string]Record, len(skus))
	var misses []string

	for _, sku := range skus {
		raw, err := c.cache.Get(ctx, c.key(sku))
		if errors.Is(err, cache.ErrMiss) {
			misses = append(misses, sku)
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "inventory cache read failed, falling back to source", "error", err)
			misses = append(misses, sku)
			continue
		}
		var rec Record
		if json.Unmarshal([]byte(raw), &rec) != nil {
			misses = append(misses, sku)
			continue
		}
		out[sku] = rec
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.source.LookupMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	for sku, rec := range fetched {
		out[sku] = rec
		if b, err := json.Marshal(rec); err == nil {
			if err := c.cache.Set(ctx, c.key(sku), b, c.ttl); err != nil {
				slog.WarnContext(ctx, "inventory cache write failed", "sku", sku, "error", err)
			}
		}
	}
	return out, nil
}

// Invalidate drops cached entries after a catalog import so the next
// reconciliation sees the new stock.
func (c *CachedLookup) Invalidate(ctx context.Context, skus []string) {
	for _, sku := range skus {
		if err := c.cache.Delete(ctx, c.key(sku)); err != nil {
			slog.WarnContext(ctx, "inventory cache invalidation failed", "sku", sku, "error", err)
		}
	}
}
