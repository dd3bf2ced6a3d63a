package esi

import (
	"fmt"
	"sync"
	"time"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/logger"
)

// snapshotEntry holds a region's sell orders together with the HTTP
// caching metadata ESI returned for them.
type snapshotEntry struct {
	orders  []MarketOrder
	etag    string
	expires time.Time
}

// orderCache is a thread-safe in-memory cache for region order
// snapshots. ETag/Expires headers from ESI avoid re-downloading
// unchanged data.
type orderCache struct {
	mu      sync.RWMutex
	entries map[int32]*snapshotEntry
}

func newOrderCache() *orderCache {
	return &orderCache{entries: make(map[int32]*snapshotEntry)}
}

// get returns (orders, etag, hit). An expired entry still yields its
// etag so the caller can revalidate instead of re-downloading.
func (oc *orderCache) get(regionID int32) ([]MarketOrder, string, bool) {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	e, ok := oc.entries[regionID]
	if !ok {
		return nil, "", false
	}
	if time.Now().After(e.expires) {
		return nil, e.etag, false
	}
	return e.orders, e.etag, true
}

func (oc *orderCache) put(regionID int32, orders []MarketOrder, etag string, expires time.Time) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.entries[regionID] = &snapshotEntry{orders: orders, etag: etag, expires: expires}
}

// touch refreshes the expiry of an existing entry (304 Not Modified).
func (oc *orderCache) touch(regionID int32, expires time.Time) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if e, ok := oc.entries[regionID]; ok {
		e.expires = expires
	}
}

// fetchOrdersCached fetches a region's sell orders with full caching:
//  1. Fresh cache entry → instant return.
//  2. Expired entry with an ETag → conditional request; 304 refreshes
//     the expiry without a body transfer.
//  3. Miss → full paginated fetch, populate cache.
//
// Singleflight coalesces concurrent fetches for the same region.
func (c *Client) fetchOrdersCached(regionID int32) ([]MarketOrder, error) {
	sfKey := fmt.Sprintf("orders:%d", regionID)

	result, err, _ := c.group.Do(sfKey, func() (interface{}, error) {
		orders, etag, hit := c.orders.get(regionID)
		if hit {
			return orders, nil
		}

		url := fmt.Sprintf("%s/markets/%d/orders/?datasource=tranquility&order_type=sell",
			c.baseURL, regionID)

		if etag != "" {
			notModified, newExpires, err := c.conditionalCheck(url+"&page=1", etag)
			if err == nil && notModified {
				c.orders.touch(regionID, newExpires)
				if cached, _, ok := c.orders.get(regionID); ok {
					return cached, nil
				}
			}
		}

		all, respEtag, respExpires, err := c.getPaginatedWithHeaders(url)
		if err != nil {
			return nil, err
		}
		c.orders.put(regionID, all, respEtag, respExpires)
		logger.Info("ESI", fmt.Sprintf("Fetched %d sell orders for region %d", len(all), regionID))
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]MarketOrder), nil
}
