package industry

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func routedConfig(fac Facility) *ProjectConfig {
	cfg := oneLevelConfig()
	cfg.Facilities = []Facility{fac}
	cfg.Routing = FacilityRouting{DefaultFacilityID: fac.ID}
	cfg.SystemIndices = map[int32]SystemIndex{
		fac.SystemID: {Manufacturing: 0.05, Reaction: 0.03},
	}
	cfg.MarketPrices = map[int32]float64{34: 4.0}
	return cfg
}

func TestRun_JobCost(t *testing.T) {
	fac := Facility{ID: uuid.New(), TypeID: 35825, SystemID: 30000142, Security: SecurityHighsec}
	cfg := routedConfig(fac)

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Nodes[1000]
	if p.FacilityID == nil || *p.FacilityID != fac.ID {
		t.Errorf("facility = %v, want %v", p.FacilityID, fac.ID)
	}
	if p.SystemID != 30000142 {
		t.Errorf("system = %d, want 30000142", p.SystemID)
	}
	// EIV: 4.0 adjusted * 100 per run * 10 runs = 4000; index 0.05, tax 1.
	if want := 0.05 * 4000.0; p.JobCost != want {
		t.Errorf("job cost = %v, want %v", p.JobCost, want)
	}
	if res.Totals.JobCost != p.JobCost {
		t.Errorf("totals job cost = %v, want %v", res.Totals.JobCost, p.JobCost)
	}
	if res.Totals.TotalCost != res.Totals.MaterialCost+res.Totals.JobCost {
		t.Errorf("totals identity broken: %+v", res.Totals)
	}
}

func TestRun_FacilityTaxScalesJobCost(t *testing.T) {
	fac := Facility{ID: uuid.New(), SystemID: 30000142, Security: SecurityHighsec, TaxRate: 1.10}
	cfg := routedConfig(fac)

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := 0.05 * 4000.0 * 1.10; !almostEqual(res.Nodes[1000].JobCost, want) {
		t.Errorf("job cost = %v, want %v", res.Nodes[1000].JobCost, want)
	}
}

func TestRun_MaterialRigReducesChildDemand(t *testing.T) {
	fac := Facility{
		ID:       uuid.New(),
		SystemID: 30000142,
		Security: SecurityHighsec,
		Rigs: []RigBonus{{
			TypeID:          43920,
			Modifier:        ModifierMaterial,
			Activity:        ActivityManufacturing,
			AmountPct:       2.0,
			SecurityScalars: [3]float64{1.0, 1.9, 2.1},
			Categories:      []int32{6},
		}},
	}
	cfg := routedConfig(fac)

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 1000 units * (1 - 0.02) = 980.
	if got := res.Nodes[34].NeededUnits; got != 980 {
		t.Errorf("child demand = %d, want 980", got)
	}
	// Provenance names the rig.
	p := res.Nodes[1000]
	if len(p.BonusesApplied) != 1 || p.BonusesApplied[0].MaterialPct != 2.0 {
		t.Errorf("bonuses applied = %+v", p.BonusesApplied)
	}
}

func TestRun_TimeRigShortensJobs(t *testing.T) {
	fac := Facility{
		ID:       uuid.New(),
		SystemID: 30000142,
		Security: SecurityHighsec,
		Rigs: []RigBonus{{
			Modifier:        ModifierTime,
			Activity:        ActivityManufacturing,
			AmountPct:       50.0,
			SecurityScalars: [3]float64{1, 1, 1},
			Categories:      []int32{6},
		}},
	}
	cfg := routedConfig(fac)

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.Nodes[1000].EffectiveTimeSeconds; got != 30 {
		t.Errorf("effective time = %d, want 30", got)
	}
}

func TestRun_NoFacilityForRoutedNode(t *testing.T) {
	fac := Facility{ID: uuid.New(), SystemID: 30000142, Security: SecurityHighsec}
	cfg := routedConfig(fac)
	// Routing that can never match the product, and no default.
	cfg.Routing = FacilityRouting{Entries: []RoutingEntry{
		{FacilityID: fac.ID, Categories: []int32{99}},
	}}

	_, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	var noFac *NoFacilityError
	if !errors.As(err, &noFac) || noFac.TypeID != 1000 {
		t.Errorf("err = %v, want NoFacilityError{1000}", err)
	}
}

func TestRun_MissingSystemIndexIsConfigError(t *testing.T) {
	fac := Facility{ID: uuid.New(), SystemID: 30000142, Security: SecurityHighsec}
	cfg := routedConfig(fac)
	cfg.SystemIndices = nil

	_, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("err = %v, want ConfigError", err)
	}
}

func TestRun_StockedProductProducesExcess(t *testing.T) {
	cfg := oneLevelConfig()
	cfg.Stocks = []StockEntry{{TypeID: 1000, Quantity: 50}}

	res, err := Run(cfg, oneLevelCatalog(), MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Nodes[1000]
	if p.StockConsumed != 10 || p.RemainingAfterStock != 0 {
		t.Errorf("stock = (%d, %d), want (10, 0)", p.StockConsumed, p.RemainingAfterStock)
	}
	if p.EffectiveRuns != 0 || len(p.Batches) != 0 {
		t.Errorf("runs = %d batches = %v, want none", p.EffectiveRuns, p.Batches)
	}
	if got := res.Totals.Excess[1000]; got != 40 {
		t.Errorf("excess[1000] = %d, want 40", got)
	}
	if got := res.Totals.StocksRemaining[1000]; got != 40 {
		t.Errorf("stocks_remaining[1000] = %d, want 40", got)
	}
	// Nothing to build, nothing to buy.
	if res.Totals.TotalCost != 0 {
		t.Errorf("total cost = %v, want 0", res.Totals.TotalCost)
	}
}

func TestRun_ReactionUsesReactionIndex(t *testing.T) {
	catalog := newMapCatalog().
		addItem(16662, "Fullerides", 4, 429).
		addItem(16663, "Caesarium Cadmide", 4, 428).
		addRecipe(BlueprintRecipe{
			BlueprintTypeID: 46209,
			ProductTypeID:   16662,
			ProducesPerRun:  200,
			BaseTimeSeconds: 10800,
			Activity:        ActivityReaction,
			Materials:       []BlueprintMaterial{{TypeID: 16663, Quantity: 100}},
		})
	fac := Facility{ID: uuid.New(), SystemID: 30002000, Security: SecurityLowsec}
	cfg := &ProjectConfig{
		Products:              []ProductEntry{{TypeID: 16662, Quantity: 400}},
		Facilities:            []Facility{fac},
		Routing:               FacilityRouting{DefaultFacilityID: fac.ID},
		SystemIndices:         map[int32]SystemIndex{30002000: {Manufacturing: 0.05, Reaction: 0.02}},
		MarketPrices:          map[int32]float64{16663: 10.0},
		MaxJobDurationSeconds: 86400,
	}

	res, err := Run(cfg, catalog, MultiBuy())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	n := res.Nodes[16662]
	if n.EffectiveRuns != 2 {
		t.Errorf("runs = %d, want 2", n.EffectiveRuns)
	}
	// Reaction index 0.02 * (10.0 * 100 * 2 runs) = 40.
	if want := 0.02 * 2000.0; !almostEqual(n.JobCost, want) {
		t.Errorf("job cost = %v, want %v", n.JobCost, want)
	}
}
