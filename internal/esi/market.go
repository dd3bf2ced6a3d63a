package esi

import (
	"fmt"
	"sort"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
)

// MarketOrder mirrors the ESI market order response.
type MarketOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int32   `json:"type_id"`
	LocationID   int64   `json:"location_id"`
	SystemID     int32   `json:"system_id"`
	Price        float64 `json:"price"`
	VolumeRemain int64   `json:"volume_remain"`
	IsBuyOrder   bool    `json:"is_buy_order"`
}

// FetchRegionSellOrders fetches all sell orders for a region. Repeated
// calls within the ESI refresh window return the cached snapshot
// without network I/O.
func (c *Client) FetchRegionSellOrders(regionID int32) ([]MarketOrder, error) {
	return c.fetchOrdersCached(regionID)
}

// OrderBook converts a region's sell orders into engine market order
// entries, one source per station, restricted to the wanted types.
// Entries come out sorted by (type, price) so snapshots are stable
// across fetches.
func (c *Client) OrderBook(regionID int32, wanted map[int32]bool) ([]industry.MarketOrderEntry, error) {
	orders, err := c.FetchRegionSellOrders(regionID)
	if err != nil {
		return nil, err
	}

	entries := make([]industry.MarketOrderEntry, 0, len(orders))
	for _, o := range orders {
		if o.IsBuyOrder || o.VolumeRemain <= 0 {
			continue
		}
		if wanted != nil && !wanted[o.TypeID] {
			continue
		}
		entries = append(entries, industry.MarketOrderEntry{
			Source:    fmt.Sprintf("station-%d", o.LocationID),
			TypeID:    o.TypeID,
			Available: o.VolumeRemain,
			UnitPrice: o.Price,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TypeID != entries[j].TypeID {
			return entries[i].TypeID < entries[j].TypeID
		}
		if entries[i].UnitPrice != entries[j].UnitPrice {
			return entries[i].UnitPrice < entries[j].UnitPrice
		}
		return entries[i].Source < entries[j].Source
	})
	return entries, nil
}

// MinSellPrices reduces a region's sell orders to the cheapest ask per
// type, the baseline used when order depth runs out.
func (c *Client) MinSellPrices(regionID int32, wanted map[int32]bool) (map[int32]float64, error) {
	orders, err := c.FetchRegionSellOrders(regionID)
	if err != nil {
		return nil, err
	}

	prices := make(map[int32]float64)
	for _, o := range orders {
		if o.IsBuyOrder {
			continue
		}
		if wanted != nil && !wanted[o.TypeID] {
			continue
		}
		if existing, ok := prices[o.TypeID]; !ok || o.Price < existing {
			prices[o.TypeID] = o.Price
		}
	}
	return prices, nil
}
