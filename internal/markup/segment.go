package markup

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoSections is returned when a document holds no recognisable content.
var ErrNoSections = errors.New("no recognizable sections")

type SectionName string

const (
	SectionMap         SectionName = "map"
	SectionTitle       SectionName = "title"
	SectionNpcs        SectionName = "npcs"
	SectionRuler       SectionName = "ruler"
	SectionGuardhouses SectionName = "guardhouses"
	SectionChurches    SectionName = "churches"
	SectionBanks       SectionName = "banks"
	SectionMerchants   SectionName = "merchants"
	SectionGuilds      SectionName = "guilds"
)

// ruleSentinel ends the map section.
const ruleSentinel = "<hr"

var imageSentinels = []struct {
	needle  string
	section SectionName
}{
	{RosterSentinel, SectionNpcs},
	{"wtown_02.jpg", SectionRuler},
	{"wtown_03.jpg", SectionGuardhouses},
	{"wtown_04.jpg", SectionChurches},
	{"wtown_05.jpg", SectionBanks},
	{"wtown_06.jpg", SectionMerchants},
	{"wtown_07.jpg", SectionGuilds},
}

type Section struct {
	Name   SectionName
	Markup string
}

// Sections is the ordered result of Segment.
type Sections []Section

func (s Sections) Get(name SectionName) (string, bool) {
	for _, sec := range s {
		if sec.Name == name {
			return sec.Markup, true
		}
	}
	return "", false
}

func (s Sections) Names() []SectionName {
	names := make([]SectionName, 0, len(s))
	for _, sec := range s {
		names = append(names, sec.Name)
	}
	return names
}

// Segment splits sanitized markup into sections. It walks the top-level
// nodes once, left to right. Sentinel nodes switch the current section and
// are dropped; every other node is appended to the current section. Sections
// come back in order of first appearance and empty ones are omitted.
func Segment(sanitized string) (Sections, error) {
	nodes, err := ParseFragment(sanitized)
	if err != nil {
		return nil, err
	}

	var (
		order   []SectionName
		content = map[SectionName]*strings.Builder{}
		current = SectionMap
	)
	for _, n := range nodes {
		if n.Type == html.CommentNode {
			continue
		}
		rendered := Render(n)
		if next, ok := sentinelFor(rendered, current); ok {
			current = next
			continue
		}
		trimmed := strings.TrimSpace(rendered)
		if trimmed == "" {
			continue
		}
		sb, ok := content[current]
		if !ok {
			sb = &strings.Builder{}
			content[current] = sb
			order = append(order, current)
		}
		sb.WriteString(trimmed)
	}

	out := make(Sections, 0, len(order))
	for _, name := range order {
		out = append(out, Section{Name: name, Markup: content[name].String()})
	}
	return out, nil
}

func sentinelFor(rendered string, current SectionName) (SectionName, bool) {
	if current == SectionMap && strings.Contains(rendered, ruleSentinel) {
		return SectionTitle, true
	}
	for _, s := range imageSentinels {
		if strings.Contains(rendered, s.needle) {
			return s.section, true
		}
	}
	return "", false
}
