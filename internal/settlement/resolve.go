package settlement

import "fmt"

const (
	WarnDanglingReference = "dangling_reference"
	WarnSpouseConflict    = "spouse_conflict"
	WarnSkippedFragment   = "skipped_fragment"
	WarnUnimplementedKind = "unimplemented_kind"
	WarnMalformedField    = "malformed_field"
	WarnRepairSkipped     = "repair_skipped"
)

// Warning is a non-fatal anomaly found while converting a document.
type Warning struct {
	Code    string `json:"code"`
	Section string `json:"section,omitempty"`
	Message string `json:"message"`
}

func (w Warning) Error() string {
	if w.Section == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.Section, w.Message)
}

// Resolve drops references that point outside the registry and completes
// the inverse side of every spouse link. Children are shared between
// spouses. It is safe to call more than once.
func (r *Registry) Resolve() []Warning {
	var warnings []Warning
	dangling := func(format string, args ...any) {
		warnings = append(warnings, Warning{Code: WarnDanglingReference, Message: fmt.Sprintf(format, args...)})
	}

	for _, id := range r.npcOrder {
		n := r.npcs[id]
		if n.Spouse != nil {
			if _, ok := r.npcs[*n.Spouse]; !ok {
				dangling("npc %s spouse %s not found", n.ID, n.Spouse)
				n.Spouse = nil
			}
		}
		kept := n.Children[:0]
		for _, child := range n.Children {
			if _, ok := r.npcs[child]; !ok {
				dangling("npc %s child %s not found", n.ID, child)
				continue
			}
			kept = append(kept, child)
		}
		n.Children = kept
		if n.Building != nil {
			if _, ok := r.buildings[*n.Building]; !ok {
				dangling("npc %s building %s not found", n.ID, n.Building)
				n.Building = nil
			}
		}
	}

	for _, id := range r.buildingOrder {
		b := r.buildings[id]
		if b.Owner != nil {
			if _, ok := r.npcs[*b.Owner]; !ok {
				dangling("building %s owner %s not found", b.ID, b.Owner)
				b.Owner = nil
			}
		}
		b.Family = r.filterNpcs(b.Family, func(missing NpcID) {
			dangling("building %s family member %s not found", b.ID, missing)
		})
		b.Occupants = r.filterNpcs(b.Occupants, func(missing NpcID) {
			dangling("building %s occupant %s not found", b.ID, missing)
		})
	}

	for _, id := range r.npcOrder {
		n := r.npcs[id]
		if n.Spouse == nil {
			continue
		}
		other := r.npcs[*n.Spouse]
		switch {
		case other.Spouse == nil:
			id := n.ID
			other.Spouse = &id
		case *other.Spouse != n.ID:
			warnings = append(warnings, Warning{
				Code:    WarnSpouseConflict,
				Message: fmt.Sprintf("npc %s names %s as spouse but %s is married to %s", n.ID, other.ID, other.ID, other.Spouse),
			})
			continue
		}
		for _, child := range n.Children {
			if !containsNpc(other.Children, child) {
				other.Children = append(other.Children, child)
			}
		}
	}

	return warnings
}

func (r *Registry) filterNpcs(ids []NpcID, onMissing func(NpcID)) []NpcID {
	if ids == nil {
		return nil
	}
	kept := make([]NpcID, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.npcs[id]; !ok {
			onMissing(id)
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

func containsNpc(ids []NpcID, id NpcID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
