package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/db"
	"github.com/ChiefOmnicron/starfoundry-sub004/internal/esi"
	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
	"github.com/ChiefOmnicron/starfoundry-sub004/internal/logger"
	"github.com/ChiefOmnicron/starfoundry-sub004/internal/sde"
)

var version = "dev"

func main() {
	projectFile := flag.String("project", "", "project config JSON file")
	projectName := flag.String("name", "", "project name for persistence (defaults to the file name)")
	dataDir := flag.String("data", "", "SDE data directory (default ./data)")
	dbPath := flag.String("db", "", "SQLite database path")
	pricerName := flag.String("pricer", "multibuy", "pricing strategy: multibuy or smartbuy")
	refresh := flag.Bool("refresh", false, "refresh prices and cost indices from ESI before the run")
	region := flag.Int("region", 10000002, "market region for -refresh (default The Forge)")
	flag.Parse()

	logger.Banner(version)

	if *projectFile == "" {
		logger.Error("Init", "No project file given (-project)")
		os.Exit(1)
	}

	cfg, err := loadProject(*projectFile)
	if err != nil {
		logger.Error("Init", fmt.Sprintf("Load project: %v", err))
		os.Exit(1)
	}

	dir := *dataDir
	if dir == "" {
		wd, _ := os.Getwd()
		dir = filepath.Join(wd, "data")
	}
	os.MkdirAll(dir, 0755)

	catalog, err := sde.Load(dir)
	if err != nil {
		logger.Error("SDE", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}

	if *refresh {
		if err := refreshMarketData(cfg, catalog, int32(*region)); err != nil {
			logger.Warn("ESI", fmt.Sprintf("Refresh failed, using project data as-is: %v", err))
		}
	}

	var pricer industry.Pricer
	switch strings.ToLower(*pricerName) {
	case "multibuy":
		pricer = industry.MultiBuy()
	case "smartbuy":
		pricer = industry.SmartBuy()
	default:
		logger.Error("Init", fmt.Sprintf("Unknown pricer %q", *pricerName))
		os.Exit(1)
	}

	result, err := industry.Run(cfg, catalog, pricer)
	if err != nil {
		logger.Error("Engine", fmt.Sprintf("Appraisal failed: %v", err))
		os.Exit(1)
	}

	printSummary(result, catalog)

	path := *dbPath
	if path == "" {
		path = db.DefaultPath()
	}
	database, err := db.Open(path)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Open failed: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	name := *projectName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(*projectFile), filepath.Ext(*projectFile))
	}
	projectID, err := database.SaveProject(name, cfg)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Save project: %v", err))
		os.Exit(1)
	}
	appraisalID, err := database.SaveAppraisal(projectID, result)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Save appraisal: %v", err))
		os.Exit(1)
	}
	logger.Success("DB", fmt.Sprintf("Stored appraisal %s for project %q", appraisalID, name))
}

func loadProject(path string) (*industry.ProjectConfig, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &industry.ProjectConfig{}
	if err := json.Unmarshal(blob, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// refreshMarketData overlays live ESI data onto the project config:
// adjusted prices for job costs, cost indices for every routed system,
// and a fresh sell-order snapshot for the raw materials.
func refreshMarketData(cfg *industry.ProjectConfig, catalog *sde.Data, regionID int32) error {
	client := esi.NewClient()

	prices, err := client.AdjustedPrices()
	if err != nil {
		return fmt.Errorf("adjusted prices: %w", err)
	}
	if cfg.MarketPrices == nil {
		cfg.MarketPrices = make(map[int32]float64)
	}
	for typeID, p := range prices {
		if _, ok := cfg.MarketPrices[typeID]; !ok {
			cfg.MarketPrices[typeID] = p
		}
	}

	indices, err := client.SystemCostIndices()
	if err != nil {
		return fmt.Errorf("cost indices: %w", err)
	}
	if cfg.SystemIndices == nil {
		cfg.SystemIndices = make(map[int32]industry.SystemIndex)
	}
	for _, fac := range cfg.Facilities {
		if idx, ok := indices[fac.SystemID]; ok {
			cfg.SystemIndices[fac.SystemID] = idx
		}
	}

	wanted := make(map[int32]bool)
	for typeID := range cfg.MarketPrices {
		if catalog.IsRawMaterial(typeID) {
			wanted[typeID] = true
		}
	}
	orders, err := client.OrderBook(regionID, wanted)
	if err != nil {
		return fmt.Errorf("order book: %w", err)
	}
	if len(orders) > 0 {
		cfg.MarketOrders = orders
	}
	logger.Success("ESI", fmt.Sprintf("Refreshed %d prices, %d orders", len(prices), len(orders)))
	return nil
}

func printSummary(res *industry.EngineResult, catalog *sde.Data) {
	logger.Section("Appraisal")
	logger.Stats("Material cost", fmt.Sprintf("%.2f ISK", res.Totals.MaterialCost))
	logger.Stats("Job cost", fmt.Sprintf("%.2f ISK", res.Totals.JobCost))
	logger.Stats("Total cost", fmt.Sprintf("%.2f ISK", res.Totals.TotalCost))

	kindRank := map[industry.NodeKind]int{
		industry.KindProduct:      0,
		industry.KindIntermediate: 1,
		industry.KindRaw:          2,
	}
	var nodes []*industry.DependencyNode
	for _, n := range res.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if kindRank[a.Kind] != kindRank[b.Kind] {
			return kindRank[a.Kind] < kindRank[b.Kind]
		}
		return a.ProductTypeID < b.ProductTypeID
	})

	logger.Section("Bill of Materials")
	for _, n := range nodes {
		name := fmt.Sprintf("type %d", n.ProductTypeID)
		if n.Item != nil {
			name = n.Item.Name
		}
		if n.IsRaw() {
			logger.Stats(name, fmt.Sprintf("%d units, %.2f ISK", n.NeededUnits, n.MaterialCost))
			continue
		}
		logger.Stats(name, fmt.Sprintf("%d units, %d runs in %d jobs, job cost %.2f ISK",
			n.NeededUnits, n.EffectiveRuns, len(n.Batches), n.JobCost))
	}

	if len(res.Totals.Missing) > 0 {
		logger.Section("Missing Market Depth")
		var missing []int32
		for typeID := range res.Totals.Missing {
			missing = append(missing, typeID)
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		for _, typeID := range missing {
			name := fmt.Sprintf("type %d", typeID)
			if it, err := catalog.Item(typeID); err == nil {
				name = it.Name
			}
			logger.Warn("Market", fmt.Sprintf("%s short by %d units", name, res.Totals.Missing[typeID]))
		}
	}

	if len(res.Totals.Excess) > 0 {
		logger.Section("Excess Production")
		var excess []int32
		for typeID := range res.Totals.Excess {
			excess = append(excess, typeID)
		}
		sort.Slice(excess, func(i, j int) bool { return excess[i] < excess[j] })
		for _, typeID := range excess {
			name := fmt.Sprintf("type %d", typeID)
			if it, err := catalog.Item(typeID); err == nil {
				name = it.Name
			}
			logger.Stats(name, res.Totals.Excess[typeID])
		}
	}
}
