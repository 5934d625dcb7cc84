package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"settlecraft/internal/markup"
	"settlecraft/internal/settlement"
)

const (
	fragmentDelimiter = "<hr/>"
	blurbPrefix       = "<br/>"
	emptySentinel     = "This building is empty."
	noProfession      = "HGT"
)

// Fixed child positions within a building's description block.
const (
	titleChild      = 1
	infoChild       = 2
	professionChild = 3
	ownerBodyChild  = 4
)

var leadingNumber = regexp.MustCompile(`^\d+`)

// fragment is the markup of one building within a section.
type fragment struct {
	id    settlement.BuildingID
	nodes []*html.Node
	// head is the description block that follows the id.
	head *html.Node
}

// fragments splits a section into building fragments. The leading blurb,
// fragments without an id and fragments that declare the building empty
// are left out; empty buildings are recorded on the registry.
func (x *Extractor) fragments(section markup.SectionName, src string) []fragment {
	var out []fragment
	for i, raw := range strings.Split(src, fragmentDelimiter) {
		part := strings.TrimSpace(raw)
		if part == "" || strings.HasPrefix(part, blurbPrefix) {
			continue
		}
		nodes, err := markup.ParseFragment(part)
		if err != nil {
			x.warn(settlement.WarnSkippedFragment, section, "fragment %d: %v", i, err)
			continue
		}

		fonts := outermostFonts(nodes)
		idAt := -1
		var id settlement.BuildingID
		for j, f := range fonts {
			if parsed, ok := settlement.ParseBuildingID(markup.Text(f)); ok {
				id, idAt = parsed, j
				break
			}
		}
		if idAt < 0 {
			x.warn(settlement.WarnSkippedFragment, section, "fragment %d has no building id", i)
			continue
		}

		var head *html.Node
		if idAt+1 < len(fonts) {
			head = fonts[idAt+1]
		}
		if head == nil {
			x.warn(settlement.WarnSkippedFragment, section, "building %s has no description", id)
			continue
		}
		if strings.Contains(markup.Text(head.FirstChild), emptySentinel) {
			x.reg.MarkEmpty(id)
			x.log.Debug("empty building", zap.String("section", string(section)), zap.Int("building", int(id)))
			continue
		}
		out = append(out, fragment{id: id, nodes: nodes, head: head})
	}
	return out
}

// outermostFonts returns the emphasis elements of a fragment that sit
// neither inside another one nor inside a table.
func outermostFonts(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, f := range markup.FindAll(nodes, "font") {
		nested := false
		for p := f.Parent; p != nil; p = p.Parent {
			if markup.IsElement(p, "font") || markup.IsElement(p, "table") {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, f)
		}
	}
	return out
}

// Buildings extracts every building of a section as kind. The house pass
// seeds the registry; every other pass merges into the records it holds.
func (x *Extractor) Buildings(section markup.SectionName, src string, kind settlement.Kind) []*settlement.Building {
	frags := x.fragments(section, src)
	for _, f := range frags {
		x.household(f)
	}

	out := make([]*settlement.Building, 0, len(frags))
	for _, f := range frags {
		b := x.building(section, f, kind)
		if kind == settlement.KindHouse {
			x.reg.SeedBuilding(b)
		} else {
			x.reg.MergeBuilding(b)
		}
		out = append(out, b)
	}
	x.log.Debug("buildings extracted",
		zap.String("section", string(section)),
		zap.String("kind", string(kind)),
		zap.Int("count", len(out)),
	)
	return out
}

func (x *Extractor) building(section markup.SectionName, f fragment, kind settlement.Kind) *settlement.Building {
	b := &settlement.Building{ID: f.id, Kind: kind}
	kids := markup.Children(f.head)

	if len(kids) > titleChild && kids[titleChild].Type == html.ElementNode {
		b.Title = squash(markup.Text(kids[titleChild]))
	}
	if b.Title == "" || strings.HasSuffix(b.Title, ":") {
		b.Title = "Building " + f.id.String()
	}
	if len(kids) > infoChild && markup.IsText(kids[infoChild]) {
		b.Info = squash(strings.NewReplacer("[", "", "]", "").Replace(kids[infoChild].Data))
	}
	var profession string
	if len(kids) > professionChild && markup.IsElement(kids[professionChild], "b") {
		profession = squash(strings.ReplaceAll(markup.Text(kids[professionChild]), ":", ""))
		if profession == noProfession {
			profession = ""
		}
	}

	owner, ok := x.reg.FindNpc(f.id, settlement.RoleOwner, "")
	if !ok {
		id := x.addNpc(ownerBody(f.head), settlement.NpcID{}, &f.id, settlement.RoleOwner)
		owner, _ = x.reg.Npc(id)
		if owner.Name == "" {
			x.warn(settlement.WarnMalformedField, section, "building %s owner has no name label", f.id)
		}
	}
	if profession != "" {
		owner.Profession = profession
	}
	if kind != settlement.KindHouse && b.Info != "" {
		owner.ProfessionInfo = b.Info
	}
	ownerID := owner.ID
	b.Owner = &ownerID

	b.Family = []settlement.NpcID{}
	for _, n := range x.reg.FindNpcs(f.id, settlement.RoleSpouse, settlement.RoleChild) {
		b.Family = append(b.Family, n.ID)
	}

	b.Products = x.products(section, f)
	if len(b.Products) == 0 {
		x.occupantsAndSpells(section, f, b)
	}
	return b
}

// ownerBody renders the part of a description block that describes an
// owner who has no name label of their own.
func ownerBody(head *html.Node) string {
	skip := map[*html.Node]bool{}
	for i, c := range markup.Children(head) {
		if i >= ownerBodyChild {
			break
		}
		skip[c] = true
	}
	return markup.RenderPruned(head, func(c *html.Node) bool {
		return skip[c] || markup.IsElement(c, "font") || markup.IsElement(c, "table")
	})
}

// products reads the first table of the fragment. The first row is the
// header; data rows carry item, cost and stock in columns one to three.
func (x *Extractor) products(section markup.SectionName, f fragment) []settlement.Product {
	tbody := markup.FindFirst(f.nodes, "tbody")
	if tbody == nil {
		return nil
	}
	rows := markup.ElementChildren(tbody, "tr")
	var out []settlement.Product
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cells := markup.ElementChildren(row, "")
		if len(cells) < 4 {
			x.warn(settlement.WarnMalformedField, section, "building %s product row %d has %d columns", f.id, i, len(cells))
			continue
		}
		out = append(out, settlement.Product{
			Item:  squash(markup.Text(cells[1])),
			Cost:  squash(markup.Text(cells[2])),
			Stock: squash(markup.Text(cells[3])),
		})
	}
	return out
}

// occupantsAndSpells classifies the blocks nested in the description: a
// block opening with text lists spells, any other block is a person.
//
// People are matched by position against the occupants an earlier pass
// registered for the building, so blocks without a name label are reused
// too.
func (x *Extractor) occupantsAndSpells(section markup.SectionName, f fragment, b *settlement.Building) {
	known := x.reg.FindNpcs(f.id, settlement.RoleOther)
	seen := 0
	for _, block := range nestedBlocks(f.head) {
		if blk, ok := asNameBlock(block); ok && blk.depth > 0 {
			continue
		}
		if markup.IsText(block.FirstChild) {
			castOn, spells := x.spells(section, f.id, block)
			if b.SpellsCastOn == "" {
				b.SpellsCastOn = castOn
			}
			b.Spells = append(b.Spells, spells...)
			continue
		}

		name := blockName(block)
		var id settlement.NpcID
		switch {
		case seen < len(known) && known[seen].Name == name:
			id = known[seen].ID
		case name != "":
			if n, ok := x.reg.FindNpc(f.id, settlement.RoleOther, name); ok {
				id = n.ID
			}
		}
		if id.IsZero() {
			id = x.addNpc(ownMarkup(block), declaredNpcID(block), &f.id, settlement.RoleOther)
		}
		seen++
		if !containsID(b.Occupants, id) {
			b.Occupants = append(b.Occupants, id)
		}
	}
}

// nestedBlocks returns the emphasis elements whose closest emphasis
// ancestor is head, skipping anything inside a table.
func nestedBlocks(head *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case markup.IsElement(c, "table"):
				continue
			case markup.IsElement(c, "font"):
				if c.FirstChild != nil {
					out = append(out, c)
				}
			default:
				walk(c)
			}
		}
	}
	walk(head)
	return out
}

// spells reads a spell block: a trigger sentence, then alternating spell
// names and cost sentences whose third space-separated token is the price.
func (x *Extractor) spells(section markup.SectionName, building settlement.BuildingID, block *html.Node) (string, []settlement.Spell) {
	kids := markup.Children(block)
	var castOn string
	if first := strings.TrimSpace(markup.Text(kids[0])); first != "" {
		sentence, _, _ := strings.Cut(first, ".")
		if sentence = strings.TrimSpace(sentence); sentence != "" {
			castOn = sentence + "."
		}
	}

	var out []settlement.Spell
	for i := 1; i < len(kids); i += 2 {
		name := squash(markup.Text(kids[i]))
		if name == "" {
			continue
		}
		if i+1 >= len(kids) {
			x.warn(settlement.WarnMalformedField, section, "building %s spell %q has no cost", building, name)
			out = append(out, settlement.Spell{Name: name})
			break
		}
		cost, ok := spellCost(markup.Text(kids[i+1]))
		if !ok {
			x.warn(settlement.WarnMalformedField, section, "building %s spell %q cost unreadable", building, name)
		}
		out = append(out, settlement.Spell{Name: name, Cost: cost})
	}
	return castOn, out
}

func spellCost(sentence string) (int, bool) {
	tokens := strings.Split(sentence, " ")
	if len(tokens) > 2 {
		if m := leadingNumber.FindString(strings.ReplaceAll(tokens[2], ",", "")); m != "" {
			return atoi(m), true
		}
	}
	if m := digits.FindString(strings.ReplaceAll(sentence, ",", "")); m != "" {
		return atoi(m), true
	}
	return 0, false
}
