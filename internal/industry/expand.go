package industry

// maxExpansionDepth caps recursion. Real recipe chains in the SDE sit
// well below this; hitting the cap means the catalog is corrupt.
const maxExpansionDepth = 16

// expander builds the dependency graph for one run. Expansion happens in
// two phases: a discovery DFS that builds the node set and structure, and
// a finalization pass in topological order that accumulates demand,
// consumes stock and computes runs, children quantities and batches. The
// observable result matches the accumulate-then-finalize contract: a
// node's runs are derived from its full demand across every path.
type expander struct {
	cfg       *ProjectConfig
	catalog   Catalog
	router    *router
	blacklist map[int32]bool
	ledger    *stockLedger

	nodes map[int32]*DependencyNode
	// order is the discovery order; it drives every later iteration so
	// identical inputs yield identical stock and pricing figures.
	order   []int32
	onStack map[int32]bool

	recipes     map[int32]*BlueprintRecipe
	multipliers map[int32]nodeMultipliers
	facilities  map[int32]*Facility
	demand      map[int32]int64
}

func newExpander(cfg *ProjectConfig, catalog Catalog, r *router) *expander {
	return &expander{
		cfg:         cfg,
		catalog:     catalog,
		router:      r,
		blacklist:   cfg.blacklistSet(),
		ledger:      newStockLedger(cfg.Stocks),
		nodes:       make(map[int32]*DependencyNode),
		onStack:     make(map[int32]bool),
		recipes:     make(map[int32]*BlueprintRecipe),
		multipliers: make(map[int32]nodeMultipliers),
		facilities:  make(map[int32]*Facility),
		demand:      make(map[int32]int64),
	}
}

// expand runs both phases for the whole order.
func (x *expander) expand() error {
	for _, p := range x.cfg.Products {
		if err := x.discover(p.TypeID, 0, true); err != nil {
			return err
		}
	}
	// Accumulate the ordered quantities as root demand. Products are a
	// multiset; duplicate lines add up.
	for _, p := range x.cfg.Products {
		x.demand[p.TypeID] += p.Quantity
	}
	return x.finalize()
}

// discover creates the node for typeID and recurses into its recipe
// materials. A second visit reuses the existing node; re-descending into
// an already-expanded subtree never happens.
func (x *expander) discover(typeID int32, depth int, isRoot bool) error {
	if depth > maxExpansionDepth {
		return &CycleError{TypeID: typeID}
	}
	if x.onStack[typeID] {
		return &CycleError{TypeID: typeID}
	}
	if n, ok := x.nodes[typeID]; ok {
		if isRoot {
			n.IsProductRoot = true
			n.Kind = x.rootKind(n)
		}
		return nil
	}

	item, err := x.catalog.Item(typeID)
	if err != nil {
		return err
	}

	recipe, buildable := x.catalog.Recipe(typeID)
	if x.blacklist[typeID] {
		buildable = false
	}
	// With skip_children the order's own materials stay as immediate raw
	// demand regardless of their recipes.
	if depth > 0 && x.cfg.SkipChildren {
		buildable = false
	}

	n := &DependencyNode{
		ProductTypeID:     typeID,
		Item:              item,
		Kind:              KindRaw,
		IsProductRoot:     isRoot,
		Children:          make(map[int32]int64),
		ChildrenUnbonused: make(map[int32]int64),
	}
	x.nodes[typeID] = n
	x.order = append(x.order, typeID)

	if !buildable {
		if isRoot {
			n.Kind = x.rootKind(n)
		}
		return nil
	}

	n.Kind = KindIntermediate
	if isRoot {
		n.Kind = KindProduct
	}
	n.Activity = recipe.Activity
	n.BlueprintTypeID = recipe.BlueprintTypeID
	n.ProducesPerRun = recipe.ProducesPerRun
	n.BaseTimeSeconds = recipe.BaseTimeSeconds
	x.recipes[typeID] = recipe

	fac, ok := x.router.Select(item.CategoryID, item.GroupID)
	if !ok && x.router.configured() {
		return &NoFacilityError{TypeID: typeID}
	}
	if fac != nil {
		id := fac.ID
		n.FacilityID = &id
		n.SystemID = fac.SystemID
		x.facilities[typeID] = fac
	}

	mePct, tePct := x.blueprintBonus(typeID, isRoot)
	m := computeMultipliers(mePct, tePct, fac, recipe.Activity, item.CategoryID, item.GroupID)
	x.multipliers[typeID] = m
	n.BonusesApplied = m.Applied

	x.onStack[typeID] = true
	for _, mat := range recipe.Materials {
		if err := x.discover(mat.TypeID, depth+1, false); err != nil {
			return err
		}
	}
	delete(x.onStack, typeID)
	return nil
}

// rootKind upgrades an intermediate to a product when it turns out the
// user ordered it directly. Raw leaves stay raw: a blacklisted or
// recipe-less order line is still sourced from the market.
func (x *expander) rootKind(n *DependencyNode) NodeKind {
	if n.Kind == KindIntermediate {
		return KindProduct
	}
	return n.Kind
}

// blueprintBonus resolves the ME/TE percentages for a node. The ordered
// product line's material efficiency, when set, overrides the catalog
// bonus for that root.
func (x *expander) blueprintBonus(typeID int32, isRoot bool) (float64, float64) {
	mePct, tePct := 0.0, 0.0
	if b, ok := x.catalog.Bonus(typeID); ok {
		mePct, tePct = b.MaterialPct, b.TimePct
	}
	if isRoot {
		for _, p := range x.cfg.Products {
			if p.TypeID == typeID && p.MaterialEfficiency != 0 {
				mePct = p.MaterialEfficiency
				break
			}
		}
	}
	return mePct, tePct
}

// finalize processes nodes in topological order. A node is finalized only
// once every demand path into it has been accounted, so runs always
// reflect total demand. Stock is consumed at finalization time, in a
// deterministic order.
func (x *expander) finalize() error {
	indegree := make(map[int32]int, len(x.nodes))
	children := make(map[int32][]int32, len(x.nodes))
	for _, typeID := range x.order {
		recipe, ok := x.recipes[typeID]
		if !ok {
			continue
		}
		seen := make(map[int32]bool)
		for _, mat := range recipe.Materials {
			if seen[mat.TypeID] {
				continue
			}
			seen[mat.TypeID] = true
			children[typeID] = append(children[typeID], mat.TypeID)
			indegree[mat.TypeID]++
		}
	}

	var queue []int32
	for _, typeID := range x.order {
		if indegree[typeID] == 0 {
			queue = append(queue, typeID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		typeID := queue[0]
		queue = queue[1:]
		processed++

		x.finalizeNode(typeID)

		for _, child := range children[typeID] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	if processed != len(x.nodes) {
		// Leftover indegree means a cycle the DFS guard missed.
		for _, typeID := range x.order {
			if indegree[typeID] > 0 {
				return &CycleError{TypeID: typeID}
			}
		}
	}
	return nil
}

// finalizeNode settles one node: stock, runs, time, batches and the
// demand it pushes onto its children.
func (x *expander) finalizeNode(typeID int32) {
	n := x.nodes[typeID]
	n.NeededUnits = x.demand[typeID]
	n.StockConsumed = x.ledger.consume(typeID, n.NeededUnits)
	n.RemainingAfterStock = n.NeededUnits - n.StockConsumed

	recipe, buildable := x.recipes[typeID]
	if !buildable {
		return
	}

	n.EffectiveRuns = ceilDiv(n.RemainingAfterStock, recipe.ProducesPerRun)
	m := x.multipliers[typeID]
	n.EffectiveTimeSeconds = roundTime(float64(recipe.BaseTimeSeconds) * m.Time)
	n.Batches = splitRuns(
		n.EffectiveRuns,
		n.EffectiveTimeSeconds,
		x.cfg.MaxRunsPerBlueprint[recipe.BlueprintTypeID],
		x.cfg.MaxJobDurationSeconds,
	)

	// Stock may cover the whole node; zero runs pull no materials.
	if n.EffectiveRuns > 0 {
		for _, mat := range recipe.Materials {
			raw := mat.Quantity * n.EffectiveRuns
			bonused := applyMaterialRounding(float64(raw)*m.Material, mat.Quantity > 0)
			n.ChildrenUnbonused[mat.TypeID] += raw
			n.Children[mat.TypeID] += bonused
			x.demand[mat.TypeID] += bonused
		}
	}

	x.costJob(n, recipe)
}

// costJob computes the installation cost of a node's jobs:
//
//	system_index(activity) * Σ(adjusted_price * per_run_qty * runs) * tax
//
// The material term uses pre-bonus quantities, matching the in-game
// estimated item value. Facility-less nodes carry no job cost.
func (x *expander) costJob(n *DependencyNode, recipe *BlueprintRecipe) {
	fac := x.facilities[n.ProductTypeID]
	if fac == nil || n.EffectiveRuns == 0 {
		return
	}
	idx, ok := x.cfg.SystemIndices[fac.SystemID]
	if !ok {
		return
	}

	var eiv float64
	for _, mat := range recipe.Materials {
		eiv += x.cfg.adjustedPrice(mat.TypeID) * float64(mat.Quantity) * float64(n.EffectiveRuns)
	}
	n.JobCost = idx.forActivity(recipe.Activity) * eiv * fac.TaxMultiplier()
}
