package industry

import "sort"

// ViableMarketPrice is one consumed slice of a market order. Remaining is
// the demand still unfilled after this entry.
type ViableMarketPrice struct {
	Source    string  `json:"source"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
	Remaining int64   `json:"remaining"`
}

// PriceResult is the pricer's answer for one raw leaf.
type PriceResult struct {
	Fills []ViableMarketPrice
	Cost  float64
	// Missing is residual demand no order could cover.
	Missing int64
	// Incomplete marks that the order snapshot could not cover demand.
	// It is expected output, not an error.
	Incomplete bool
}

// Pricer prices the residual demand of raw leaves. It is invoked once
// per leaf.
type Pricer interface {
	Price(typeID int32, quantity int64, cfg *ProjectConfig) (PriceResult, error)
}

// MultiBuy returns the default pricer: walk the order snapshot cheapest
// first and buy until demand is covered.
func MultiBuy() Pricer {
	return multiBuy{}
}

// SmartBuy returns the haul-aware pricer: it bundles purchases per source
// and weighs each source's haul cost (from the project config) against
// its prices. For a single-source snapshot it degenerates to MultiBuy.
func SmartBuy() Pricer {
	return smartBuy{}
}

type multiBuy struct{}

func (multiBuy) Price(typeID int32, quantity int64, cfg *ProjectConfig) (PriceResult, error) {
	if res, ok := priceOverride(typeID, quantity, cfg); ok {
		return res, nil
	}

	orders := ordersForType(typeID, cfg.MarketOrders)
	res, remaining, highest := consumeOrders(orders, quantity)
	if remaining > 0 {
		shortPrice := highest
		if len(orders) == 0 {
			shortPrice = cfg.adjustedPrice(typeID)
		}
		res.Cost += float64(remaining) * shortPrice
		res.Fills = append(res.Fills, ViableMarketPrice{
			Source:    "shortfall",
			UnitPrice: shortPrice,
			Quantity:  remaining,
			Remaining: 0,
		})
		res.Missing = remaining
		res.Incomplete = true
	}
	return res, nil
}

type smartBuy struct{}

func (smartBuy) Price(typeID int32, quantity int64, cfg *ProjectConfig) (PriceResult, error) {
	if res, ok := priceOverride(typeID, quantity, cfg); ok {
		return res, nil
	}

	bySource := make(map[string][]MarketOrderEntry)
	var sources []string
	for _, o := range cfg.MarketOrders {
		if o.TypeID != typeID || o.Available <= 0 {
			continue
		}
		if _, seen := bySource[o.Source]; !seen {
			sources = append(sources, o.Source)
		}
		bySource[o.Source] = append(bySource[o.Source], o)
	}

	var res PriceResult
	remaining := quantity
	highest := 0.0
	used := make(map[string]bool)

	for remaining > 0 && len(used) < len(sources) {
		// Pick the source with the lowest effective unit cost for the
		// demand it can actually cover, haul included.
		best := ""
		bestUnit := 0.0
		var bestCost float64
		for _, src := range sources {
			if used[src] {
				continue
			}
			fill, cost := sourceQuote(bySource[src], remaining)
			if fill == 0 {
				continue
			}
			unit := (cost + cfg.HaulCosts[src]) / float64(fill)
			if best == "" || unit < bestUnit {
				best, bestUnit, bestCost = src, unit, cost
			}
		}
		if best == "" {
			break
		}
		used[best] = true

		fillRes, left, high := consumeOrders(bySource[best], remaining)
		res.Fills = append(res.Fills, fillRes.Fills...)
		res.Cost += bestCost + cfg.HaulCosts[best]
		if high > highest {
			highest = high
		}
		remaining = left
	}

	if remaining > 0 {
		shortPrice := highest
		if len(sources) == 0 {
			shortPrice = cfg.adjustedPrice(typeID)
		}
		if shortPrice <= 0 {
			return PriceResult{}, &NoSolutionError{TypeID: typeID}
		}
		res.Cost += float64(remaining) * shortPrice
		res.Fills = append(res.Fills, ViableMarketPrice{
			Source:    "shortfall",
			UnitPrice: shortPrice,
			Quantity:  remaining,
			Remaining: 0,
		})
		res.Missing = remaining
		res.Incomplete = true
	}
	return res, nil
}

// priceOverride applies a pinned unit price, bypassing the order walk.
func priceOverride(typeID int32, quantity int64, cfg *ProjectConfig) (PriceResult, bool) {
	price, ok := cfg.PriceOverrides[typeID]
	if !ok {
		return PriceResult{}, false
	}
	return PriceResult{
		Fills: []ViableMarketPrice{{
			Source:    "override",
			UnitPrice: price,
			Quantity:  quantity,
			Remaining: 0,
		}},
		Cost: float64(quantity) * price,
	}, true
}

// ordersForType filters the snapshot down to one type, cheapest first.
// The sort is stable so equal-priced orders keep their snapshot order.
func ordersForType(typeID int32, orders []MarketOrderEntry) []MarketOrderEntry {
	var out []MarketOrderEntry
	for _, o := range orders {
		if o.TypeID == typeID && o.Available > 0 {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UnitPrice < out[j].UnitPrice
	})
	return out
}

// consumeOrders walks sorted orders and fills demand, returning the
// fills, the unfilled remainder and the highest price touched.
func consumeOrders(orders []MarketOrderEntry, quantity int64) (PriceResult, int64, float64) {
	sorted := make([]MarketOrderEntry, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice < sorted[j].UnitPrice
	})

	var res PriceResult
	remaining := quantity
	highest := 0.0
	for _, o := range sorted {
		if remaining == 0 {
			break
		}
		take := remaining
		if o.Available < take {
			take = o.Available
		}
		if take == 0 {
			continue
		}
		remaining -= take
		res.Cost += float64(take) * o.UnitPrice
		if o.UnitPrice > highest {
			highest = o.UnitPrice
		}
		res.Fills = append(res.Fills, ViableMarketPrice{
			Source:    o.Source,
			UnitPrice: o.UnitPrice,
			Quantity:  take,
			Remaining: remaining,
		})
	}
	return res, remaining, highest
}

// sourceQuote computes how much of the demand one source can fill and at
// what material cost, without mutating anything.
func sourceQuote(orders []MarketOrderEntry, quantity int64) (int64, float64) {
	sorted := make([]MarketOrderEntry, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice < sorted[j].UnitPrice
	})
	var filled int64
	var cost float64
	remaining := quantity
	for _, o := range sorted {
		if remaining == 0 {
			break
		}
		take := remaining
		if o.Available < take {
			take = o.Available
		}
		filled += take
		cost += float64(take) * o.UnitPrice
		remaining -= take
	}
	return filled, cost
}
