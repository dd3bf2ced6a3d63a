package industry

// Run executes one appraisal: it validates the config, expands the
// dependency graph for every ordered product, prices the residual raw
// demand with the given pricer and aggregates the totals.
//
// A run is single-threaded and synchronous; it owns all of its state and
// never touches the catalog mutably, so many runs may share one catalog
// concurrently. On error no partial result is returned.
func Run(cfg *ProjectConfig, catalog Catalog, pricer Pricer) (*EngineResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pricer == nil {
		pricer = MultiBuy()
	}

	x := newExpander(cfg, catalog, newRouter(cfg.Facilities, cfg.Routing))
	if err := x.expand(); err != nil {
		return nil, err
	}

	missing := make(map[int32]int64)
	// Price raw leaves in discovery order so snapshots and missing
	// figures are reproducible.
	for _, typeID := range x.order {
		n := x.nodes[typeID]
		if !n.IsRaw() {
			n.TotalCost = n.JobCost
			continue
		}
		if n.RemainingAfterStock <= 0 {
			continue
		}
		res, err := pricer.Price(typeID, n.RemainingAfterStock, cfg)
		if err != nil {
			return nil, err
		}
		n.MarketSnapshot = res.Fills
		n.MaterialCost = res.Cost
		n.TotalCost = res.Cost
		n.IncompleteData = res.Incomplete
		if res.Missing > 0 {
			missing[typeID] += res.Missing
		}
	}

	return &EngineResult{
		Nodes:  x.nodes,
		Totals: aggregate(x.order, x.nodes, x.ledger, missing),
		Config: cfg,
	}, nil
}
