package industry

import "github.com/google/uuid"

// RoutingEntry routes nodes whose category or group is in its set to a
// specific facility.
type RoutingEntry struct {
	FacilityID uuid.UUID `json:"facility_id"`
	Categories []int32   `json:"categories"`
	Groups     []int32   `json:"groups"`
}

func (e *RoutingEntry) matches(categoryID, groupID int32) bool {
	for _, c := range e.Categories {
		if c == categoryID {
			return true
		}
	}
	for _, g := range e.Groups {
		if g == groupID {
			return true
		}
	}
	return false
}

// FacilityRouting is an ordered routing table. Entries are evaluated
// top-to-bottom; the first match wins. DefaultFacilityID (optional) is
// used when no entry matches.
type FacilityRouting struct {
	Entries           []RoutingEntry `json:"entries"`
	DefaultFacilityID uuid.UUID      `json:"default_facility_id,omitempty"`
}

// router resolves facilities for nodes. First-match semantics mirror what
// users see in the UI and remove ambiguity when rig sets overlap.
type router struct {
	facilities map[uuid.UUID]*Facility
	routing    FacilityRouting
}

func newRouter(facilities []Facility, routing FacilityRouting) *router {
	byID := make(map[uuid.UUID]*Facility, len(facilities))
	for i := range facilities {
		byID[facilities[i].ID] = &facilities[i]
	}
	return &router{facilities: byID, routing: routing}
}

// Select returns the facility for a node with the given classification.
// The second return is false when the project has no facility that can
// take the node; the caller decides whether that is fatal.
func (r *router) Select(categoryID, groupID int32) (*Facility, bool) {
	for i := range r.routing.Entries {
		e := &r.routing.Entries[i]
		if !e.matches(categoryID, groupID) {
			continue
		}
		if f, ok := r.facilities[e.FacilityID]; ok {
			return f, true
		}
	}
	if r.routing.DefaultFacilityID != uuid.Nil {
		if f, ok := r.facilities[r.routing.DefaultFacilityID]; ok {
			return f, true
		}
	}
	return nil, false
}

// configured reports whether the project declares any facility at all.
// With none, nodes run facility-less on blueprint bonuses alone.
func (r *router) configured() bool {
	return len(r.facilities) > 0
}
