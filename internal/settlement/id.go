package settlement

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildingID is the generator's numeric identifier for a building.
type BuildingID int

func (id BuildingID) String() string {
	return strconv.Itoa(int(id))
}

func (id BuildingID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *BuildingID) UnmarshalText(text []byte) error {
	n, err := strconv.Atoi(string(text))
	if err != nil {
		return fmt.Errorf("invalid building id %q", text)
	}
	*id = BuildingID(n)
	return nil
}

func ParseBuildingID(text string) (BuildingID, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, false
	}
	return BuildingID(n), true
}

// Origin records where an NpcID came from.
type Origin uint8

const (
	// SourceDeclared ids are stated by the generator in the markup.
	SourceDeclared Origin = iota + 1
	// LocallyAssigned ids are sequence numbers handed out by a Registry.
	LocallyAssigned
)

const localPrefix = "L"

// NpcID identifies an NPC within one conversion. Two ids are equal only when
// both origin and value match, so a declared 3 never collides with local 3.
type NpcID struct {
	Origin Origin
	Value  int
}

func DeclaredNpcID(n int) NpcID {
	return NpcID{Origin: SourceDeclared, Value: n}
}

func LocalNpcID(n int) NpcID {
	return NpcID{Origin: LocallyAssigned, Value: n}
}

func (id NpcID) IsZero() bool {
	return id.Origin == 0
}

func (id NpcID) String() string {
	switch id.Origin {
	case SourceDeclared:
		return strconv.Itoa(id.Value)
	case LocallyAssigned:
		return localPrefix + strconv.Itoa(id.Value)
	default:
		return ""
	}
}

func (id NpcID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NpcID) UnmarshalText(text []byte) error {
	parsed, err := ParseNpcID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseNpcID is the inverse of NpcID.String.
func ParseNpcID(text string) (NpcID, error) {
	origin := SourceDeclared
	digits := text
	if strings.HasPrefix(text, localPrefix) {
		origin = LocallyAssigned
		digits = strings.TrimPrefix(text, localPrefix)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return NpcID{}, fmt.Errorf("invalid npc id %q", text)
	}
	return NpcID{Origin: origin, Value: n}, nil
}
