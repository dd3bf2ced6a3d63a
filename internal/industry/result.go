package industry

import "github.com/google/uuid"

// NodeKind classifies a dependency node.
type NodeKind string

const (
	// KindProduct marks a node the user ordered directly.
	KindProduct NodeKind = "product"
	// KindIntermediate marks a buildable node reached through expansion.
	KindIntermediate NodeKind = "intermediate"
	// KindRaw marks a leaf: no recipe, or blacklisted.
	KindRaw NodeKind = "raw"
)

// DependencyNode is one node of the expanded graph, keyed by product
// type. All demand paths to the same product share a single node.
type DependencyNode struct {
	BlueprintTypeID int32    `json:"blueprint_type_id,omitempty"`
	ProductTypeID   int32    `json:"product_type_id"`
	Item            *Item    `json:"item"`
	Activity        Activity `json:"activity"`
	Kind            NodeKind `json:"kind"`

	NeededUnits          int64 `json:"needed_units"`
	ProducesPerRun       int64 `json:"produces_per_run,omitempty"`
	EffectiveRuns        int64 `json:"effective_runs"`
	BaseTimeSeconds      int64 `json:"base_time_seconds,omitempty"`
	EffectiveTimeSeconds int64 `json:"effective_time_seconds,omitempty"`

	// Children maps child type to the bonused demand this node adds;
	// ChildrenUnbonused keeps the pre-bonus figures for inspection.
	Children          map[int32]int64 `json:"children,omitempty"`
	ChildrenUnbonused map[int32]int64 `json:"children_unbonused,omitempty"`

	// Batches is the run split; entries sum to EffectiveRuns.
	Batches []int64 `json:"batches,omitempty"`

	FacilityID     *uuid.UUID          `json:"facility_id,omitempty"`
	SystemID       int32               `json:"system_id,omitempty"`
	JobCost        float64             `json:"job_cost"`
	MaterialCost   float64             `json:"material_cost"`
	TotalCost      float64             `json:"total_cost"`
	MarketSnapshot []ViableMarketPrice `json:"market_snapshot,omitempty"`
	BonusesApplied []BonusContribution `json:"bonuses_applied,omitempty"`
	IncompleteData bool                `json:"incomplete_data"`

	IsProductRoot       bool  `json:"is_product_root"`
	StockConsumed       int64 `json:"stock_consumed"`
	RemainingAfterStock int64 `json:"remaining_after_stock"`
}

// IsRaw reports whether the node is a raw leaf.
func (n *DependencyNode) IsRaw() bool {
	return n.Kind == KindRaw
}

// Totals aggregates the whole appraisal.
type Totals struct {
	MaterialCost float64 `json:"material_cost"`
	JobCost      float64 `json:"job_cost"`
	TotalCost    float64 `json:"total_cost"`
	// Excess is stock that exceeded demand for buildable products.
	Excess map[int32]int64 `json:"excess,omitempty"`
	// Missing is residual raw demand no market order could satisfy.
	Missing map[int32]int64 `json:"missing,omitempty"`
	// StocksRemaining is the unconsumed stock per type.
	StocksRemaining map[int32]int64 `json:"stocks_remaining,omitempty"`
}

// EngineResult is the engine's deterministic output: the flattened node
// table, the totals and the config the run used.
type EngineResult struct {
	Nodes  map[int32]*DependencyNode `json:"nodes"`
	Totals Totals                    `json:"totals"`
	Config *ProjectConfig            `json:"config"`
}

// aggregate computes the totals from the finished node table, the stock
// ledger and the per-type pricing shortfalls. Material cost sums over raw
// leaves, job cost over buildable nodes; the two must add up to the total
// exactly. Summation follows the discovery order: float addition is not
// associative, so iterating the node map directly would make the totals
// vary between identical runs.
func aggregate(order []int32, nodes map[int32]*DependencyNode, ledger *stockLedger, missing map[int32]int64) Totals {
	t := Totals{
		Excess:          make(map[int32]int64),
		Missing:         missing,
		StocksRemaining: ledger.remainingStocks(),
	}
	for _, typeID := range order {
		n := nodes[typeID]
		if n.IsRaw() {
			t.MaterialCost += n.MaterialCost
			continue
		}
		t.JobCost += n.JobCost
		if left := ledger.leftover(typeID); left > 0 {
			// Stock outran demand for something we would have built.
			t.Excess[typeID] = left
		}
	}
	t.TotalCost = t.MaterialCost + t.JobCost
	return t
}
