package sde

import (
	"encoding/json"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
	"github.com/ChiefOmnicron/starfoundry-sub004/internal/logger"
)

// loadBlueprints parses the blueprint file into recipes. Manufacturing
// and reaction activities both become first-class recipes; a product
// keeps its first recipe when the SDE lists more than one.
func (d *Data) loadBlueprints(dir string) error {
	return readJSONL(dir, "blueprints", func(raw json.RawMessage) error {
		var bp struct {
			Key        int32 `json:"_key"`
			Activities struct {
				Manufacturing *sdeActivity `json:"manufacturing"`
				Reaction      *sdeActivity `json:"reaction"`
			} `json:"activities"`
		}
		if err := json.Unmarshal(raw, &bp); err != nil {
			return err
		}

		if act := bp.Activities.Manufacturing; act != nil {
			d.addRecipe(bp.Key, act, industry.ActivityManufacturing)
		} else if act := bp.Activities.Reaction; act != nil {
			d.addRecipe(bp.Key, act, industry.ActivityReaction)
		}
		return nil
	})
}

// sdeActivity is the on-disk shape of one blueprint activity.
type sdeActivity struct {
	Time      int64 `json:"time"`
	Materials []struct {
		TypeID   int32 `json:"typeID"`
		Quantity int64 `json:"quantity"`
	} `json:"materials"`
	Products []struct {
		TypeID   int32 `json:"typeID"`
		Quantity int64 `json:"quantity"`
	} `json:"products"`
}

func (d *Data) addRecipe(blueprintTypeID int32, act *sdeActivity, kind industry.Activity) {
	if len(act.Products) == 0 {
		return
	}
	product := act.Products[0]
	if product.TypeID == 0 {
		return
	}
	if _, exists := d.recipes[product.TypeID]; exists {
		return
	}

	perRun := product.Quantity
	if perRun == 0 {
		perRun = 1
	}
	recipe := &industry.BlueprintRecipe{
		BlueprintTypeID: blueprintTypeID,
		ProductTypeID:   product.TypeID,
		ProducesPerRun:  perRun,
		BaseTimeSeconds: act.Time,
		Activity:        kind,
	}
	for _, m := range act.Materials {
		recipe.Materials = append(recipe.Materials, industry.BlueprintMaterial{
			TypeID:   m.TypeID,
			Quantity: m.Quantity,
		})
	}
	d.recipes[product.TypeID] = recipe
	d.byBlueprint[blueprintTypeID] = recipe
}

// loadBonuses reads the optional blueprint ME/TE table. The file is
// user-maintained (researched blueprints are not part of the public
// dump), so a missing file just means zero bonuses everywhere.
func (d *Data) loadBonuses(dir string) error {
	count := 0
	err := readJSONL(dir, "blueprintBonuses", func(raw json.RawMessage) error {
		var b struct {
			ProductTypeID int32   `json:"productTypeID"`
			MaterialPct   float64 `json:"material"`
			TimePct       float64 `json:"time"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		if b.ProductTypeID == 0 {
			return nil
		}
		count++
		d.bonuses[b.ProductTypeID] = &industry.BlueprintBonus{
			ProductTypeID: b.ProductTypeID,
			MaterialPct:   b.MaterialPct,
			TimePct:       b.TimePct,
		}
		return nil
	})
	if count > 0 {
		logger.Info("SDE", "Loaded researched blueprint bonuses")
	}
	return err
}

// SetBonus registers or replaces the ME/TE bonus for a product. The
// harness uses this for per-project researched blueprints.
func (d *Data) SetBonus(b industry.BlueprintBonus) {
	d.bonuses[b.ProductTypeID] = &b
}

// Recipe returns the recipe producing the given type, if any.
func (d *Data) Recipe(productTypeID int32) (*industry.BlueprintRecipe, bool) {
	r, ok := d.recipes[productTypeID]
	return r, ok
}

// RecipeByBlueprint returns the recipe of the given blueprint, if any.
func (d *Data) RecipeByBlueprint(blueprintTypeID int32) (*industry.BlueprintRecipe, bool) {
	r, ok := d.byBlueprint[blueprintTypeID]
	return r, ok
}

// Item resolves an item by type id.
func (d *Data) Item(typeID int32) (*industry.Item, error) {
	if it, ok := d.Items[typeID]; ok {
		return it, nil
	}
	return nil, &industry.UnknownItemError{TypeID: typeID}
}

// Bonus returns the blueprint ME/TE bonus for a product, if any.
func (d *Data) Bonus(productTypeID int32) (*industry.BlueprintBonus, bool) {
	b, ok := d.bonuses[productTypeID]
	return b, ok
}

// IsRawMaterial reports whether nothing in the catalog produces the
// given type.
func (d *Data) IsRawMaterial(typeID int32) bool {
	_, hasRecipe := d.recipes[typeID]
	return !hasRecipe
}
