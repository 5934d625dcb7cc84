package settlement

import (
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindHouse      Kind = "house"
	KindMerchant   Kind = "merchant"
	KindGuardhouse Kind = "guardhouse"
	KindChurch     Kind = "church"
	KindGuild      Kind = "guild"
	KindBank       Kind = "bank"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindHouse:
		return KindHouse, nil
	case KindMerchant:
		return KindMerchant, nil
	case KindGuardhouse:
		return KindGuardhouse, nil
	case KindChurch:
		return KindChurch, nil
	case KindGuild:
		return KindGuild, nil
	case KindBank:
		return KindBank, nil
	}
	return "", fmt.Errorf("unknown building kind: %s", s)
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleSpouse Role = "spouse"
	RoleChild  Role = "child"
	RoleOther  Role = "other"
)

// RoleForDepth maps the dash prefix depth of a name label to a family role.
func RoleForDepth(depth int) Role {
	switch depth {
	case 1:
		return RoleOwner
	case 2:
		return RoleSpouse
	case 3:
		return RoleChild
	default:
		return RoleOther
	}
}

type Product struct {
	Item  string `json:"item"`
	Cost  string `json:"cost"`
	Stock string `json:"stock"`
}

type Spell struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

type Building struct {
	ID           BuildingID `json:"id"`
	Title        string     `json:"title"`
	Kind         Kind       `json:"kind"`
	Info         string     `json:"info"`
	Owner        *NpcID     `json:"owner,omitempty"`
	Family       []NpcID    `json:"family"`
	Occupants    []NpcID    `json:"occupants,omitempty"`
	Products     []Product  `json:"products,omitempty"`
	Spells       []Spell    `json:"spells,omitempty"`
	SpellsCastOn string     `json:"spells_cast_on,omitempty"`
}

type Npc struct {
	ID             NpcID       `json:"id"`
	Name           string      `json:"name"`
	Role           Role        `json:"role"`
	Profession     string      `json:"profession,omitempty"`
	ProfessionInfo string      `json:"profession_info,omitempty"`
	HeightCm       *int        `json:"height_cm,omitempty"`
	WeightKg       *int        `json:"weight_kg,omitempty"`
	Clothing       []string    `json:"clothing"`
	Possessions    []string    `json:"possessions"`
	Description    string      `json:"description"`
	Spouse         *NpcID      `json:"spouse,omitempty"`
	Children       []NpcID     `json:"children"`
	Building       *BuildingID `json:"building,omitempty"`
}

type MapArea struct {
	Shape    string      `json:"shape"`
	Coords   string      `json:"coords"`
	Href     string      `json:"href,omitempty"`
	Title    string      `json:"title,omitempty"`
	Building *BuildingID `json:"building,omitempty"`
}

type MapRef struct {
	Image  string    `json:"image"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
	Areas  []MapArea `json:"areas,omitempty"`
}

type RulerRecord struct {
	Title   string  `json:"title,omitempty"`
	Info    string  `json:"info,omitempty"`
	Members []NpcID `json:"members"`
}

type Settlement struct {
	Title          string                   `json:"title"`
	Map            MapRef                   `json:"map"`
	Rulers         RulerRecord              `json:"rulers"`
	Buildings      map[BuildingID]*Building `json:"buildings"`
	Npcs           map[NpcID]*Npc           `json:"npcs"`
	EmptyBuildings []BuildingID             `json:"empty_buildings,omitempty"`
}

// BuildingIDs returns the building ids in ascending order.
func (s *Settlement) BuildingIDs() []BuildingID {
	ids := make([]BuildingID, 0, len(s.Buildings))
	for id := range s.Buildings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NpcIDs returns npc ids ordered declared-first, then by value.
func (s *Settlement) NpcIDs() []NpcID {
	ids := make([]NpcID, 0, len(s.Npcs))
	for id := range s.Npcs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Origin != ids[j].Origin {
			return ids[i].Origin < ids[j].Origin
		}
		return ids[i].Value < ids[j].Value
	})
	return ids
}

// Content holds the renderable fragments handed to the publishing side.
// Fragments reference NPCs only through placeholder tokens.
type Content struct {
	Buildings map[BuildingID]string `json:"buildings"`
	Npcs      map[NpcID]string      `json:"npcs"`
}

// Token returns the full-form placeholder for an NPC.
func Token(id NpcID) string {
	return "[npc-" + id.String() + "]"
}

// ListToken returns the compact list-form placeholder for an NPC.
func ListToken(id NpcID) string {
	return "[npc-" + id.String() + "-li]"
}
