package industry

import "github.com/google/uuid"

// SecurityBand classifies the solar system a facility sits in. It gates
// rig effectiveness via per-band scalars.
type SecurityBand string

const (
	SecurityHighsec  SecurityBand = "highsec"
	SecurityLowsec   SecurityBand = "lowsec"
	SecurityNullsec  SecurityBand = "nullsec"
	SecurityWormhole SecurityBand = "wormhole"
)

// scalarIndex maps a band onto the [highsec, lowsec, nullsec] scalar
// triple. Wormhole space uses the nullsec scalar, as in-game.
func (s SecurityBand) scalarIndex() int {
	switch s {
	case SecurityLowsec:
		return 1
	case SecurityNullsec, SecurityWormhole:
		return 2
	default:
		return 0
	}
}

// Modifier is what a rig bonus changes: material quantity or job time.
type Modifier string

const (
	ModifierMaterial Modifier = "material"
	ModifierTime     Modifier = "time"
)

// RigBonus is one bonus entry contributed by an installed rig. The
// realized percentage at a facility is AmountPct scaled by the security
// band scalar; a zero scalar disables the rig for that band.
type RigBonus struct {
	TypeID          int32      `json:"type_id"`
	Modifier        Modifier   `json:"modifier"`
	Activity        Activity   `json:"activity"`
	AmountPct       float64    `json:"amount_pct"`
	SecurityScalars [3]float64 `json:"security_scalars"` // highsec, lowsec, nullsec
	Categories      []int32    `json:"applies_to_categories"`
	Groups          []int32    `json:"applies_to_groups"`
}

// appliesTo reports whether the rig covers the node's category or group.
func (r *RigBonus) appliesTo(categoryID, groupID int32) bool {
	for _, c := range r.Categories {
		if c == categoryID {
			return true
		}
	}
	for _, g := range r.Groups {
		if g == groupID {
			return true
		}
	}
	return false
}

// Facility represents a structure jobs can be installed in: its type, the
// system it sits in, its security band, installed rigs and service
// modules. Services matter for routing only; they contribute no numeric
// bonus.
type Facility struct {
	ID       uuid.UUID    `json:"id"`
	TypeID   int32        `json:"type_id"`
	SystemID int32        `json:"system_id"`
	Security SecurityBand `json:"security"`
	Rigs     []RigBonus   `json:"rigs"`
	Services []int32      `json:"services"`
	// TaxRate is the job-cost multiplier for this facility; zero means
	// the default of 1.0.
	TaxRate float64 `json:"tax_rate,omitempty"`
}

// BonusContribution is one realized rig contribution for a node, kept for
// provenance in the result.
type BonusContribution struct {
	Source      string  `json:"source"`
	MaterialPct float64 `json:"material_pct"`
	TimePct     float64 `json:"time_pct"`
}

// EffectiveBonuses returns the realized contributions of every rig that
// applies to the given activity and category/group at this facility's
// security band.
func (f *Facility) EffectiveBonuses(activity Activity, categoryID, groupID int32) []BonusContribution {
	var out []BonusContribution
	idx := f.Security.scalarIndex()
	for i := range f.Rigs {
		rig := &f.Rigs[i]
		if rig.Activity != activity {
			continue
		}
		if !rig.appliesTo(categoryID, groupID) {
			continue
		}
		scalar := rig.SecurityScalars[idx]
		if scalar == 0 {
			continue
		}
		c := BonusContribution{Source: rigSource(rig.TypeID)}
		realized := rig.AmountPct * scalar
		switch rig.Modifier {
		case ModifierTime:
			c.TimePct = realized
		default:
			c.MaterialPct = realized
		}
		out = append(out, c)
	}
	return out
}

func rigSource(typeID int32) string {
	if typeID == 0 {
		return "rig"
	}
	return "rig:" + itoa32(typeID)
}

// TaxMultiplier returns the facility tax as a job-cost multiplier.
func (f *Facility) TaxMultiplier() float64 {
	if f.TaxRate <= 0 {
		return 1.0
	}
	return f.TaxRate
}
