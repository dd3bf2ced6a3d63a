package industry

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// mapCatalog is the map-backed catalog double used across engine tests.
type mapCatalog struct {
	items       map[int32]*Item
	recipes     map[int32]*BlueprintRecipe
	byBlueprint map[int32]*BlueprintRecipe
	bonuses     map[int32]*BlueprintBonus
}

func newMapCatalog() *mapCatalog {
	return &mapCatalog{
		items:       make(map[int32]*Item),
		recipes:     make(map[int32]*BlueprintRecipe),
		byBlueprint: make(map[int32]*BlueprintRecipe),
		bonuses:     make(map[int32]*BlueprintBonus),
	}
}

func (c *mapCatalog) addItem(typeID int32, name string, categoryID, groupID int32) *mapCatalog {
	c.items[typeID] = &Item{TypeID: typeID, Name: name, CategoryID: categoryID, GroupID: groupID}
	return c
}

func (c *mapCatalog) addRecipe(r BlueprintRecipe) *mapCatalog {
	c.recipes[r.ProductTypeID] = &r
	c.byBlueprint[r.BlueprintTypeID] = &r
	return c
}

func (c *mapCatalog) addBonus(b BlueprintBonus) *mapCatalog {
	c.bonuses[b.ProductTypeID] = &b
	return c
}

func (c *mapCatalog) Recipe(productTypeID int32) (*BlueprintRecipe, bool) {
	r, ok := c.recipes[productTypeID]
	return r, ok
}

func (c *mapCatalog) RecipeByBlueprint(blueprintTypeID int32) (*BlueprintRecipe, bool) {
	r, ok := c.byBlueprint[blueprintTypeID]
	return r, ok
}

func (c *mapCatalog) Item(typeID int32) (*Item, error) {
	if it, ok := c.items[typeID]; ok {
		return it, nil
	}
	return nil, &UnknownItemError{TypeID: typeID}
}

func (c *mapCatalog) Bonus(productTypeID int32) (*BlueprintBonus, bool) {
	b, ok := c.bonuses[productTypeID]
	return b, ok
}

// oneLevelCatalog is the shared fixture: product 1000 built from 100x
// tritanium (34) per run, one unit per run, 60s base time.
func oneLevelCatalog() *mapCatalog {
	return newMapCatalog().
		addItem(34, "Tritanium", 4, 18).
		addItem(1000, "Test Widget", 6, 25).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 1000,
			ProductTypeID:   1000,
			ProducesPerRun:  1,
			BaseTimeSeconds: 60,
			Activity:        ActivityManufacturing,
			Materials:       []BlueprintMaterial{{TypeID: 34, Quantity: 100}},
		})
}

func oneLevelConfig() *ProjectConfig {
	return &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 1000, Quantity: 10}},
		MaxRunsPerBlueprint:   map[int32]int64{1000: 5},
		MaxJobDurationSeconds: 3600,
		MarketOrders: []MarketOrderEntry{
			{Source: "A", TypeID: 34, Available: 1_000_000, UnitPrice: 5.0},
		},
	}
}

func TestRun_RawProduct(t *testing.T) {
	catalog := newMapCatalog().addItem(34, "Tritanium", 4, 18)
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 34, Quantity: 1000}},
		MaxJobDurationSeconds: 3600,
		MarketOrders: []MarketOrderEntry{
			{Source: "A", TypeID: 34, Available: 10_000, UnitPrice: 5.0},
		},
	}

	res, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	n := res.Nodes[34]
	if n == nil {
		t.Fatal("no node for type 34")
	}
	if !n.IsRaw() {
		t.Errorf("kind = %v, want raw", n.Kind)
	}
	if n.NeededUnits != 1000 {
		t.Errorf("needed = %d, want 1000", n.NeededUnits)
	}
	if n.MaterialCost != 5000.0 {
		t.Errorf("material cost = %v, want 5000", n.MaterialCost)
	}
	if n.JobCost != 0 {
		t.Errorf("job cost = %v, want 0", n.JobCost)
	}
	if n.IncompleteData {
		t.Error("incomplete_data = true, want false")
	}
	if res.Totals.MaterialCost != 5000.0 || res.Totals.JobCost != 0 {
		t.Errorf("totals = %+v", res.Totals)
	}
}

func TestRun_OneLevelBuild(t *testing.T) {
	res, err := Run(oneLevelConfig(), oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	p := res.Nodes[1000]
	if p == nil {
		t.Fatal("no node for product 1000")
	}
	if p.EffectiveRuns != 10 {
		t.Errorf("effective runs = %d, want 10", p.EffectiveRuns)
	}
	// Time would allow 60 runs per batch; the blueprint cap of 5 wins.
	if want := []int64{5, 5}; !reflect.DeepEqual(p.Batches, want) {
		t.Errorf("batches = %v, want %v", p.Batches, want)
	}
	if !p.IsProductRoot || p.Kind != KindProduct {
		t.Errorf("root flags = (%v, %v)", p.IsProductRoot, p.Kind)
	}

	child := res.Nodes[34]
	if child == nil {
		t.Fatal("no node for child 34")
	}
	if child.NeededUnits != 1000 {
		t.Errorf("child needed = %d, want 1000", child.NeededUnits)
	}
	if got := p.Children[34]; got != 1000 {
		t.Errorf("children[34] = %d, want 1000", got)
	}
}

func TestRun_MaterialEfficiencyBonus(t *testing.T) {
	catalog := oneLevelCatalog().addBonus(BlueprintBonus{ProductTypeID: 1000, MaterialPct: 10})

	res, err := Run(oneLevelConfig(), catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Nodes[1000]
	if p.EffectiveRuns != 10 {
		t.Errorf("effective runs = %d, want 10", p.EffectiveRuns)
	}
	if got := res.Nodes[34].NeededUnits; got != 900 {
		t.Errorf("bonused child demand = %d, want 900", got)
	}
	if got := p.ChildrenUnbonused[34]; got != 1000 {
		t.Errorf("unbonused child demand = %d, want 1000", got)
	}
}

func TestRun_StockConsumesChild(t *testing.T) {
	cfg := oneLevelConfig()
	cfg.Stocks = []StockEntry{{TypeID: 34, Quantity: 400}}

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	child := res.Nodes[34]
	if child.StockConsumed != 400 {
		t.Errorf("stock consumed = %d, want 400", child.StockConsumed)
	}
	if child.RemainingAfterStock != 600 {
		t.Errorf("remaining after stock = %d, want 600", child.RemainingAfterStock)
	}
	if child.MaterialCost != 600*5.0 {
		t.Errorf("material cost = %v, want %v", child.MaterialCost, 600*5.0)
	}
}

func TestRun_BlacklistedProductIsRawLeaf(t *testing.T) {
	cfg := oneLevelConfig()
	cfg.Blacklist = []int32{1000}

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Nodes[1000]
	if !p.IsRaw() {
		t.Errorf("kind = %v, want raw", p.Kind)
	}
	if p.NeededUnits != 10 {
		t.Errorf("needed = %d, want 10", p.NeededUnits)
	}
	if len(p.Children) != 0 {
		t.Errorf("children = %v, want none", p.Children)
	}
	// No market order and no baseline price for the product id.
	if !p.IncompleteData {
		t.Error("incomplete_data = false, want true")
	}
	if got := res.Totals.Missing[1000]; got != 10 {
		t.Errorf("missing[1000] = %d, want 10", got)
	}
	if _, expanded := res.Nodes[34]; expanded {
		t.Error("blacklisted product was still expanded")
	}
}

func TestRun_TimeSplit(t *testing.T) {
	catalog := newMapCatalog().
		addItem(34, "Tritanium", 4, 18).
		addItem(2000, "Slow Widget", 6, 25).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 2000,
			ProductTypeID:   2000,
			ProducesPerRun:  1,
			BaseTimeSeconds: 4000,
			Activity:        ActivityManufacturing,
			Materials:       []BlueprintMaterial{{TypeID: 34, Quantity: 10}},
		})
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 2000, Quantity: 3}},
		MaxJobDurationSeconds: 3600,
	}

	res, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []int64{1, 1, 1}; !reflect.DeepEqual(res.Nodes[2000].Batches, want) {
		t.Errorf("batches = %v, want %v", res.Nodes[2000].Batches, want)
	}
}

func TestRun_TotalsIdentity(t *testing.T) {
	res, err := Run(oneLevelConfig(), oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Totals.TotalCost != res.Totals.MaterialCost+res.Totals.JobCost {
		t.Errorf("total %v != material %v + job %v",
			res.Totals.TotalCost, res.Totals.MaterialCost, res.Totals.JobCost)
	}
	for typeID, n := range res.Nodes {
		var sum int64
		for _, b := range n.Batches {
			sum += b
		}
		if sum != n.EffectiveRuns {
			t.Errorf("node %d: batches sum %d != runs %d", typeID, sum, n.EffectiveRuns)
		}
		if n.IsRaw() && len(n.Children) != 0 {
			t.Errorf("raw node %d has children", typeID)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	cfg := oneLevelConfig()
	cfg.Stocks = []StockEntry{{TypeID: 34, Quantity: 250}}
	catalog := oneLevelCatalog()

	first, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first.Totals, second.Totals) {
		t.Errorf("totals differ:\n  %+v\n  %+v", first.Totals, second.Totals)
	}
	if !reflect.DeepEqual(first.Nodes, second.Nodes) {
		t.Error("node tables differ between identical runs")
	}
}

func TestRun_TotalsStableAcrossRuns(t *testing.T) {
	// Many raw leaves with prices chosen so the material sum is
	// sensitive to addition order. The totals must come out bit-equal
	// on every run.
	catalog := newMapCatalog()
	cfg := &ProjectConfig{MaxJobDurationSeconds: 3600}
	for i := int32(0); i < 40; i++ {
		typeID := 100 + i
		catalog.addItem(typeID, fmt.Sprintf("Mineral %d", i), 4, 18)
		cfg.Products = append(cfg.Products, ProductEntry{TypeID: typeID, Quantity: 1})
		cfg.MarketOrders = append(cfg.MarketOrders, MarketOrderEntry{
			Source: "A", TypeID: typeID, Available: 10, UnitPrice: 0.1 + float64(i)*0.0137,
		})
	}

	first, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	for i := 0; i < 20; i++ {
		res, err := Run(cfg, catalog, MultiBuy())
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if res.Totals.MaterialCost != first.Totals.MaterialCost {
			t.Fatalf("iteration %d: material cost %v != first run %v",
				i, res.Totals.MaterialCost, first.Totals.MaterialCost)
		}
		if res.Totals.TotalCost != first.Totals.TotalCost {
			t.Fatalf("iteration %d: total cost %v != first run %v",
				i, res.Totals.TotalCost, first.Totals.TotalCost)
		}
	}
}

func TestRun_StockMonotonicity(t *testing.T) {
	catalog := oneLevelCatalog()
	base, err := Run(oneLevelConfig(), catalog, MultiBuy())
	if err != nil {
		t.Fatalf("base run: %v", err)
	}
	baseRemaining := base.Nodes[34].RemainingAfterStock

	for _, k := range []int64{1, 100, 400, 1000, 5000} {
		cfg := oneLevelConfig()
		cfg.Stocks = []StockEntry{{TypeID: 34, Quantity: k}}
		res, err := Run(cfg, catalog, MultiBuy())
		if err != nil {
			t.Fatalf("run with stock %d: %v", k, err)
		}
		got := res.Nodes[34].RemainingAfterStock
		if got < 0 {
			t.Errorf("stock %d: remaining %d went negative", k, got)
		}
		if drop := baseRemaining - got; drop > k {
			t.Errorf("stock %d: remaining dropped by %d, more than added", k, drop)
		}
	}
}

func TestRun_BlacklistInvariance(t *testing.T) {
	// Two-level chain: 3000 <- 1000 <- 34, with 1000 blacklisted.
	catalog := oneLevelCatalog().
		addItem(3000, "Assembled Widget", 6, 26).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 3000,
			ProductTypeID:   3000,
			ProducesPerRun:  1,
			BaseTimeSeconds: 120,
			Activity:        ActivityManufacturing,
			Materials:       []BlueprintMaterial{{TypeID: 1000, Quantity: 2}},
		})
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 3000, Quantity: 4}},
		Blacklist:             []int32{1000},
		MaxJobDurationSeconds: 3600,
	}

	res, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	n := res.Nodes[1000]
	if n == nil {
		t.Fatal("no node for blacklisted 1000")
	}
	if !n.IsRaw() || len(n.Children) != 0 {
		t.Errorf("blacklisted node: kind=%v children=%v, want raw leaf", n.Kind, n.Children)
	}
	if n.NeededUnits != 8 {
		t.Errorf("needed = %d, want 8", n.NeededUnits)
	}
	if _, expanded := res.Nodes[34]; expanded {
		t.Error("expansion descended past the blacklist")
	}
}

func TestRun_SkipChildren(t *testing.T) {
	// 3000 <- 1000 <- 34; with skip_children the 1000 line stays raw.
	catalog := oneLevelCatalog().
		addItem(3000, "Assembled Widget", 6, 26).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 3000,
			ProductTypeID:   3000,
			ProducesPerRun:  1,
			BaseTimeSeconds: 120,
			Activity:        ActivityManufacturing,
			Materials:       []BlueprintMaterial{{TypeID: 1000, Quantity: 2}},
		})
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 3000, Quantity: 4}},
		MaxJobDurationSeconds: 3600,
		SkipChildren:          true,
	}

	res, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := res.Nodes[1000]; n == nil || !n.IsRaw() {
		t.Errorf("child 1000 = %+v, want raw leaf", n)
	}
	if _, expanded := res.Nodes[34]; expanded {
		t.Error("expansion went past depth 1 with skip_children set")
	}
}

func TestRun_UnknownItem(t *testing.T) {
	catalog := newMapCatalog() // knows nothing
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 42, Quantity: 1}},
		MaxJobDurationSeconds: 3600,
	}

	_, err := Run(cfg, catalog, MultiBuy())
	var unknown *UnknownItemError
	if !errors.As(err, &unknown) || unknown.TypeID != 42 {
		t.Errorf("err = %v, want UnknownItemError{42}", err)
	}
}

func TestRun_CycleDetected(t *testing.T) {
	catalog := newMapCatalog().
		addItem(10, "Ouro", 6, 25).
		addItem(11, "Boros", 6, 25).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 10, ProductTypeID: 10, ProducesPerRun: 1, BaseTimeSeconds: 60,
			Materials: []BlueprintMaterial{{TypeID: 11, Quantity: 1}},
		}).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 11, ProductTypeID: 11, ProducesPerRun: 1, BaseTimeSeconds: 60,
			Materials: []BlueprintMaterial{{TypeID: 10, Quantity: 1}},
		})
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 10, Quantity: 1}},
		MaxJobDurationSeconds: 3600,
	}

	_, err := Run(cfg, catalog, MultiBuy())
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Errorf("err = %v, want CycleError", err)
	}
}

func TestRun_SharedChildAccumulatesDemand(t *testing.T) {
	// Diamond: 5000 needs 1000 and 6000; 6000 also needs 1000. The 1000
	// node must see the demand of both paths before its runs are fixed.
	catalog := oneLevelCatalog().
		addItem(5000, "Top", 6, 27).
		addItem(6000, "Mid", 6, 27).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 5000, ProductTypeID: 5000, ProducesPerRun: 1, BaseTimeSeconds: 60,
			Materials: []BlueprintMaterial{{TypeID: 1000, Quantity: 3}, {TypeID: 6000, Quantity: 1}},
		}).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 6000, ProductTypeID: 6000, ProducesPerRun: 1, BaseTimeSeconds: 60,
			Materials: []BlueprintMaterial{{TypeID: 1000, Quantity: 2}},
		})
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 5000, Quantity: 1}},
		MaxJobDurationSeconds: 3600,
	}

	res, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	n := res.Nodes[1000]
	if n.NeededUnits != 5 {
		t.Errorf("shared child demand = %d, want 5 (3 + 2)", n.NeededUnits)
	}
	if n.EffectiveRuns != 5 {
		t.Errorf("shared child runs = %d, want 5", n.EffectiveRuns)
	}
	// 5 runs of 1000 pull 500 tritanium.
	if got := res.Nodes[34].NeededUnits; got != 500 {
		t.Errorf("grandchild demand = %d, want 500", got)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	catalog := oneLevelCatalog()
	tests := []struct {
		name   string
		mutate func(*ProjectConfig)
	}{
		{"zero quantity", func(c *ProjectConfig) { c.Products[0].Quantity = 0 }},
		{"negative quantity", func(c *ProjectConfig) { c.Products[0].Quantity = -5 }},
		{"me out of range", func(c *ProjectConfig) { c.Products[0].MaterialEfficiency = 150 }},
		{"zero duration", func(c *ProjectConfig) { c.MaxJobDurationSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := oneLevelConfig()
			tt.mutate(cfg)
			_, err := Run(cfg, catalog, MultiBuy())
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("err = %v, want ConfigError", err)
			}
		})
	}
}
