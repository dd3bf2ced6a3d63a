package industry

import "github.com/google/uuid"

// ProductEntry is one ordered product line. MaterialEfficiency, when
// non-zero, overrides the catalog blueprint bonus for this product;
// zero means "use the catalog bonus", so an order line cannot pin a
// researched blueprint back to 0% ME.
type ProductEntry struct {
	TypeID             int32   `json:"type_id"`
	Quantity           int64   `json:"quantity"`
	MaterialEfficiency float64 `json:"material_efficiency"`
}

// StockEntry is one on-hand stock line.
type StockEntry struct {
	TypeID   int32 `json:"type_id"`
	Quantity int64 `json:"quantity"`
}

// MarketOrderEntry is one sell order the pricer may consume, attributed
// to a named source (a market hub or structure).
type MarketOrderEntry struct {
	Source    string  `json:"source"`
	TypeID    int32   `json:"type_id"`
	Available int64   `json:"available"`
	UnitPrice float64 `json:"unit_price"`
}

// SystemIndex holds the per-activity cost indices of a solar system.
type SystemIndex struct {
	Manufacturing float64 `json:"manufacturing"`
	Reaction      float64 `json:"reaction"`
}

// forActivity picks the index matching an activity.
func (s SystemIndex) forActivity(a Activity) float64 {
	if a == ActivityReaction {
		return s.Reaction
	}
	return s.Manufacturing
}

// ProjectConfig is the engine's single input besides the catalog. A run
// owns its config; the engine never mutates the caller's copy.
type ProjectConfig struct {
	Products  []ProductEntry `json:"products"`
	Blacklist []int32        `json:"blacklist,omitempty"`
	Stocks    []StockEntry   `json:"stocks,omitempty"`

	Facilities []Facility      `json:"facilities,omitempty"`
	Routing    FacilityRouting `json:"facility_routing,omitempty"`

	MaxRunsPerBlueprint   map[int32]int64 `json:"max_runs_per_blueprint,omitempty"`
	MaxJobDurationSeconds int64           `json:"max_job_duration_seconds"`

	SystemIndices map[int32]SystemIndex `json:"system_indices,omitempty"`

	// MarketPrices is the baseline "adjusted" price per type, used for
	// job costs and as the pricer's fallback.
	MarketPrices map[int32]float64 `json:"market_prices,omitempty"`
	// MarketOrders is the ordered order snapshot the pricer walks.
	MarketOrders []MarketOrderEntry `json:"market_orders,omitempty"`
	// PriceOverrides pins the unit price of specific materials.
	PriceOverrides map[int32]float64 `json:"material_unit_price_overrides,omitempty"`
	// HaulCosts is the per-source haul cost table for the smart-buy
	// pricer.
	HaulCosts map[string]float64 `json:"haul_costs,omitempty"`

	// SkipChildren stops expansion at depth 1: the ordered products'
	// materials are reported as immediate raw demand.
	SkipChildren bool `json:"skip_children,omitempty"`
}

// Validate checks the config before a run. Any violation is a
// ConfigError; the engine refuses to produce partial results from bad
// input.
func (c *ProjectConfig) Validate() error {
	if len(c.Products) == 0 {
		return configErrorf("no products ordered")
	}
	for _, p := range c.Products {
		if p.Quantity <= 0 {
			return configErrorf("product %d: quantity %d must be positive", p.TypeID, p.Quantity)
		}
		if p.MaterialEfficiency < 0 || p.MaterialEfficiency > 100 {
			return configErrorf("product %d: material efficiency %.2f out of range [0, 100]", p.TypeID, p.MaterialEfficiency)
		}
	}
	if c.MaxJobDurationSeconds <= 0 {
		return configErrorf("max_job_duration_seconds must be positive")
	}
	for _, s := range c.Stocks {
		if s.Quantity < 0 {
			return configErrorf("stock %d: negative quantity %d", s.TypeID, s.Quantity)
		}
	}

	known := make(map[uuid.UUID]*Facility, len(c.Facilities))
	for i := range c.Facilities {
		f := &c.Facilities[i]
		if f.ID == uuid.Nil {
			return configErrorf("facility %d has no id", i)
		}
		if _, dup := known[f.ID]; dup {
			return configErrorf("duplicate facility id %s", f.ID)
		}
		known[f.ID] = f
		for _, rig := range f.Rigs {
			if rig.AmountPct < 0 {
				return configErrorf("facility %s: rig %d has negative bonus", f.ID, rig.TypeID)
			}
			for _, sc := range rig.SecurityScalars {
				if sc < 0 {
					return configErrorf("facility %s: rig %d has negative security scalar", f.ID, rig.TypeID)
				}
			}
		}
	}
	for i, e := range c.Routing.Entries {
		if _, ok := known[e.FacilityID]; !ok {
			return configErrorf("routing entry %d references unknown facility %s", i, e.FacilityID)
		}
	}
	if c.Routing.DefaultFacilityID != uuid.Nil {
		if _, ok := known[c.Routing.DefaultFacilityID]; !ok {
			return configErrorf("default facility %s is not declared", c.Routing.DefaultFacilityID)
		}
	}
	// Every facility a job can land on needs a cost index for its system.
	for _, f := range known {
		if _, ok := c.SystemIndices[f.SystemID]; !ok {
			return configErrorf("facility %s: no system index for system %d", f.ID, f.SystemID)
		}
	}

	for _, o := range c.MarketOrders {
		if o.Available < 0 {
			return configErrorf("market order for %d from %q: negative availability", o.TypeID, o.Source)
		}
		if o.UnitPrice < 0 {
			return configErrorf("market order for %d from %q: negative price", o.TypeID, o.Source)
		}
	}
	return nil
}

// blacklistSet returns the blacklist as a lookup set.
func (c *ProjectConfig) blacklistSet() map[int32]bool {
	set := make(map[int32]bool, len(c.Blacklist))
	for _, id := range c.Blacklist {
		set[id] = true
	}
	return set
}

// adjustedPrice returns the baseline price of a type, zero if unknown.
func (c *ProjectConfig) adjustedPrice(typeID int32) float64 {
	return c.MarketPrices[typeID]
}
