package settlement

// Registry is the single source of truth for one conversion. Extractors read
// and write NPCs and buildings through it; it is owned by exactly one
// conversion and must not be shared between concurrent conversions.
type Registry struct {
	npcs          map[NpcID]*Npc
	npcOrder      []NpcID
	buildings     map[BuildingID]*Building
	buildingOrder []BuildingID
	empty         []BuildingID
	nextLocal     int
}

func NewRegistry() *Registry {
	return &Registry{
		npcs:      make(map[NpcID]*Npc),
		buildings: make(map[BuildingID]*Building),
	}
}

// AddNpc registers n and returns its id. An NPC without an id gets the next
// local sequence number. A declared id that is already present keeps the
// first record.
func (r *Registry) AddNpc(n *Npc) NpcID {
	if n.ID.IsZero() {
		r.nextLocal++
		n.ID = LocalNpcID(r.nextLocal)
	}
	if _, exists := r.npcs[n.ID]; exists {
		return n.ID
	}
	r.npcs[n.ID] = n
	r.npcOrder = append(r.npcOrder, n.ID)
	return n.ID
}

func (r *Registry) Npc(id NpcID) (*Npc, bool) {
	n, ok := r.npcs[id]
	return n, ok
}

func (r *Registry) FindNpcs(building BuildingID, roles ...Role) []*Npc {
	var found []*Npc
	for _, id := range r.npcOrder {
		n := r.npcs[id]
		if n.Building == nil || *n.Building != building {
			continue
		}
		for _, role := range roles {
			if n.Role == role {
				found = append(found, n)
				break
			}
		}
	}
	return found
}

// FindNpc returns the first NPC of building with role. An empty name matches
// any NPC; otherwise names must match exactly.
func (r *Registry) FindNpc(building BuildingID, role Role, name string) (*Npc, bool) {
	for _, n := range r.FindNpcs(building, role) {
		if name == "" || n.Name == name {
			return n, true
		}
	}
	return nil, false
}

func (r *Registry) Building(id BuildingID) (*Building, bool) {
	b, ok := r.buildings[id]
	return b, ok
}

func (r *Registry) Buildings() []*Building {
	out := make([]*Building, 0, len(r.buildingOrder))
	for _, id := range r.buildingOrder {
		out = append(out, r.buildings[id])
	}
	return out
}

func (r *Registry) Npcs() []*Npc {
	out := make([]*Npc, 0, len(r.npcOrder))
	for _, id := range r.npcOrder {
		out = append(out, r.npcs[id])
	}
	return out
}

// SeedBuilding stores b as-is, replacing any previous record with its id.
func (r *Registry) SeedBuilding(b *Building) {
	if _, exists := r.buildings[b.ID]; !exists {
		r.buildingOrder = append(r.buildingOrder, b.ID)
	}
	r.buildings[b.ID] = b
}

// MergeBuilding folds b into the record sharing its id, field by field with
// the later value winning. List fields are only replaced when b carries
// them. Products and occupants/spells never coexist on the merged record.
func (r *Registry) MergeBuilding(b *Building) {
	existing, ok := r.buildings[b.ID]
	if !ok {
		r.SeedBuilding(b)
		return
	}

	existing.Kind = b.Kind
	existing.Title = b.Title
	existing.Info = b.Info
	existing.Owner = b.Owner
	existing.Family = b.Family

	if len(b.Products) > 0 {
		existing.Products = b.Products
		existing.Occupants = nil
		existing.Spells = nil
		existing.SpellsCastOn = ""
		return
	}
	if len(b.Occupants) > 0 || len(b.Spells) > 0 {
		existing.Products = nil
	}
	if len(b.Occupants) > 0 {
		existing.Occupants = b.Occupants
	}
	if len(b.Spells) > 0 {
		existing.Spells = b.Spells
		existing.SpellsCastOn = b.SpellsCastOn
	}
}

func (r *Registry) MarkEmpty(id BuildingID) {
	for _, existing := range r.empty {
		if existing == id {
			return
		}
	}
	r.empty = append(r.empty, id)
}

// Assemble composes the settlement from the registry contents. Call Resolve
// first so that every reference is known to resolve.
func (r *Registry) Assemble(title string, mapRef MapRef, rulers RulerRecord) *Settlement {
	s := &Settlement{
		Title:     title,
		Map:       mapRef,
		Rulers:    rulers,
		Buildings: make(map[BuildingID]*Building, len(r.buildings)),
		Npcs:      make(map[NpcID]*Npc, len(r.npcs)),
	}
	for id, b := range r.buildings {
		s.Buildings[id] = b
	}
	for id, n := range r.npcs {
		s.Npcs[id] = n
	}
	s.Rulers.Members = r.existingNpcs(rulers.Members)
	if s.Rulers.Members == nil {
		s.Rulers.Members = []NpcID{}
	}
	if len(r.empty) > 0 {
		s.EmptyBuildings = append([]BuildingID(nil), r.empty...)
	}
	return s
}

func (r *Registry) existingNpcs(ids []NpcID) []NpcID {
	var out []NpcID
	for _, id := range ids {
		if _, ok := r.npcs[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
