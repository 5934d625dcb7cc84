package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"settlecraft/internal/settlement"
)

const (
	cmPerFoot  = 30.48
	cmPerInch  = 2.54
	kgPerPound = 0.453592
)

var (
	npcName     = regexp.MustCompile(`^\s*(?:<font[^>]*>)?\s*-*\s*<b>([^<]*?):</b>`)
	npcPhysique = regexp.MustCompile(`\[\s*<b>HGT:</b>(.*?)<b>WGT:</b>(.*?)\]`)
	npcClothing = regexp.MustCompile(`<b>DRESSEDIN:</b>(.*?)\.`)
	npcPossess  = regexp.MustCompile(`<b>POSSESSIONS:</b>(.*?)\.`)
	ruleTag     = regexp.MustCompile(`<hr[^>]*>`)
	feet        = regexp.MustCompile(`(\d+)\s*ft`)
	inches      = regexp.MustCompile(`(\d+)\s*in`)
	pounds      = regexp.MustCompile(`(\d+)\s*lbs`)
)

// cursor is the unconsumed part of an NPC fragment. Each extraction step
// takes its match out and hands the remainder to the next step.
type cursor struct {
	rest string
}

// take removes the first match of re and returns its submatches. A cursor
// without a match comes back unchanged with nil groups.
func (c cursor) take(re *regexp.Regexp) ([]string, cursor) {
	loc := re.FindStringSubmatchIndex(c.rest)
	if loc == nil {
		return nil, c
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = c.rest[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups, cursor{rest: c.rest[:loc[0]] + c.rest[loc[1]:]}
}

// ParseNpc reads one person from fragment. Name, physique, clothing and
// possessions are consumed in that order; what is left becomes the
// description. The result has no id, role or building.
func ParseNpc(fragment string) settlement.Npc {
	n := settlement.Npc{
		Clothing:    []string{},
		Possessions: []string{},
		Children:    []settlement.NpcID{},
	}
	c := cursor{rest: fragment}

	var m []string
	if m, c = c.take(npcName); m != nil {
		n.Name = squash(html.UnescapeString(m[1]))
	}
	if m, c = c.take(npcPhysique); m != nil {
		n.HeightCm, n.WeightKg = physique(m[1], m[2])
	}
	if m, c = c.take(npcClothing); m != nil {
		n.Clothing = itemList(m[1])
	}
	if m, c = c.take(npcPossess); m != nil {
		n.Possessions = itemList(m[1])
	}

	rest := strings.ReplaceAll(c.rest, "</font>", "")
	rest = ruleTag.ReplaceAllString(rest, "")
	n.Description = cleanText(rest)
	return n
}

// physique converts "5ft, 10in" and "180lbs" to whole centimetres and
// kilograms. A measurement missing from the text stays nil.
func physique(height, weight string) (*int, *int) {
	var heightCm, weightKg *int
	ft := feet.FindStringSubmatch(height)
	in := inches.FindStringSubmatch(height)
	if ft != nil || in != nil {
		var cm float64
		if ft != nil {
			cm += float64(atoi(ft[1])) * cmPerFoot
		}
		if in != nil {
			cm += float64(atoi(in[1])) * cmPerInch
		}
		v := int(math.Round(cm))
		heightCm = &v
	}
	if lbs := pounds.FindStringSubmatch(weight); lbs != nil {
		v := int(math.Round(float64(atoi(lbs[1])) * kgPerPound))
		weightKg = &v
	}
	return heightCm, weightKg
}

// itemList splits a comma separated sentence into capitalised items, with a
// leading "and" dropped from each.
func itemList(sentence string) []string {
	items := []string{}
	for _, raw := range strings.Split(cleanText(sentence), ",") {
		item := strings.TrimSpace(raw)
		if rest, ok := strings.CutPrefix(item, "and "); ok {
			item = strings.TrimSpace(rest)
		}
		if item == "" {
			continue
		}
		items = append(items, capitalize(item))
	}
	return items
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// Npc extracts the person described by fragment, registers it and returns
// its id. The caller records the family relationship.
func (x *Extractor) Npc(fragment string, building *settlement.BuildingID, role settlement.Role) settlement.NpcID {
	return x.addNpc(fragment, settlement.NpcID{}, building, role)
}

func (x *Extractor) addNpc(fragment string, id settlement.NpcID, building *settlement.BuildingID, role settlement.Role) settlement.NpcID {
	n := ParseNpc(fragment)
	n.ID = id
	n.Role = role
	if building != nil {
		b := *building
		n.Building = &b
	}
	return x.reg.AddNpc(&n)
}
