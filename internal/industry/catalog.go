// Package industry implements the build-cost engine: it expands a product
// order into its blueprint/reaction dependency graph, applies facility and
// blueprint bonuses, splits runs into job batches, consumes on-hand stock
// and prices the residual raw materials from market snapshots.
package industry

// Activity is the kind of industrial job a recipe belongs to.
type Activity int

const (
	ActivityManufacturing Activity = iota
	ActivityReaction
)

// String returns the SDE activity key.
func (a Activity) String() string {
	switch a {
	case ActivityReaction:
		return "reaction"
	default:
		return "manufacturing"
	}
}

// Item describes a game item as far as the engine cares: identity,
// classification and volume.
type Item struct {
	TypeID           int32   `json:"type_id"`
	Name             string  `json:"name"`
	CategoryID       int32   `json:"category_id"`
	GroupID          int32   `json:"group_id"`
	Volume           float64 `json:"volume"`
	MetaGroupID      int32   `json:"meta_group_id,omitempty"`
	RepackagedVolume float64 `json:"repackaged_volume,omitempty"`
}

// BlueprintMaterial is a single material line of a recipe, per run,
// before any efficiency bonus.
type BlueprintMaterial struct {
	TypeID   int32 `json:"type_id"`
	Quantity int64 `json:"quantity"`
}

// BlueprintRecipe is one recipe: a product has at most one recipe in the
// catalog. A product without a recipe is a raw material.
type BlueprintRecipe struct {
	BlueprintTypeID int32               `json:"blueprint_type_id"`
	ProductTypeID   int32               `json:"product_type_id"`
	ProducesPerRun  int64               `json:"produces_per_run"`
	BaseTimeSeconds int64               `json:"base_time_seconds"`
	Activity        Activity            `json:"activity"`
	Materials       []BlueprintMaterial `json:"materials"`
}

// BlueprintBonus holds the blueprint-level ME/TE percentages applied to
// material quantity and job time before facility bonuses.
type BlueprintBonus struct {
	ProductTypeID int32   `json:"product_type_id"`
	MaterialPct   float64 `json:"material_pct"`
	TimePct       float64 `json:"time_pct"`
}

// Catalog is the read-only blueprint/item lookup the engine consumes.
// It must be immutable for the duration of one run; a test double is a
// map-backed struct.
type Catalog interface {
	// Recipe returns the recipe producing the given type, if any.
	Recipe(productTypeID int32) (*BlueprintRecipe, bool)
	// RecipeByBlueprint returns the recipe of the given blueprint, if any.
	RecipeByBlueprint(blueprintTypeID int32) (*BlueprintRecipe, bool)
	// Item resolves an item; a missing id is an UnknownItemError.
	Item(typeID int32) (*Item, error)
	// Bonus returns the blueprint ME/TE bonus for a product, if any.
	Bonus(productTypeID int32) (*BlueprintBonus, bool)
}
