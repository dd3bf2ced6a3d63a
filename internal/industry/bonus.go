package industry

import "math"

// nodeMultipliers is the resolved material/time multiplier pair for one
// node, with the provenance of every contribution.
type nodeMultipliers struct {
	Material float64
	Time     float64
	Applied  []BonusContribution
}

// computeMultipliers combines blueprint ME/TE with the facility's rig
// bonuses multiplicatively:
//
//	material = (1 - me/100) * Π(1 - rig_material/100)
//	time     = (1 - te/100) * Π(1 - rig_time/100)
//
// Both are clamped to [0, 1]. A nil facility leaves the blueprint terms
// alone.
func computeMultipliers(mePct, tePct float64, fac *Facility, activity Activity, categoryID, groupID int32) nodeMultipliers {
	m := nodeMultipliers{
		Material: 1.0 - mePct/100.0,
		Time:     1.0 - tePct/100.0,
	}
	if mePct != 0 || tePct != 0 {
		m.Applied = append(m.Applied, BonusContribution{
			Source:      "blueprint",
			MaterialPct: mePct,
			TimePct:     tePct,
		})
	}
	if fac != nil {
		for _, c := range fac.EffectiveBonuses(activity, categoryID, groupID) {
			if c.MaterialPct != 0 {
				m.Material *= 1.0 - c.MaterialPct/100.0
			}
			if c.TimePct != 0 {
				m.Time *= 1.0 - c.TimePct/100.0
			}
			m.Applied = append(m.Applied, c)
		}
	}
	m.Material = clamp01(m.Material)
	m.Time = clamp01(m.Time)
	return m
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
