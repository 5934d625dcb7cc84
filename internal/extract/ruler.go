package extract

import (
	"strings"

	"settlecraft/internal/markup"
	"settlecraft/internal/settlement"
)

// Ruler extracts the ruling household. Members keep document order. Dash
// depth decides each member's role, and spouses and children are linked to
// the owner that precedes them. Rulers belong to no building.
func (x *Extractor) Ruler(src string) settlement.RulerRecord {
	rec := settlement.RulerRecord{Members: []settlement.NpcID{}}
	nodes, err := markup.ParseFragment(src)
	if err != nil {
		x.warn(settlement.WarnSkippedFragment, markup.SectionRuler, "%v", err)
		return rec
	}

	for _, b := range markup.FindAll(nodes, "b") {
		if t := squash(markup.Text(b)); t != "" && !strings.HasSuffix(t, ":") {
			rec.Title = t
			break
		}
	}
	var text strings.Builder
	for _, n := range nodes {
		text.WriteString(markup.Text(n))
	}
	for _, m := range bracketText.FindAllStringSubmatch(text.String(), -1) {
		if strings.Contains(m[1], "HGT:") {
			continue
		}
		rec.Info = squash(m[1])
		break
	}

	var owner *settlement.Npc
	for _, f := range markup.FindAll(nodes, "font") {
		blk, ok := asNameBlock(f)
		if !ok {
			continue
		}
		role := settlement.RoleForDepth(blk.depth)
		id := x.addNpc(ownMarkup(f), declaredNpcID(f), nil, role)
		n, _ := x.reg.Npc(id)
		switch role {
		case settlement.RoleOwner:
			owner = n
		case settlement.RoleSpouse:
			if owner != nil && owner.Spouse == nil {
				spouse := n.ID
				owner.Spouse = &spouse
			}
		case settlement.RoleChild:
			if owner != nil && !containsID(owner.Children, n.ID) {
				owner.Children = append(owner.Children, n.ID)
			}
		}
		if !containsID(rec.Members, id) {
			rec.Members = append(rec.Members, id)
		}
	}
	if len(rec.Members) == 0 {
		x.warn(settlement.WarnMalformedField, markup.SectionRuler, "no ruler name labels found")
	}
	return rec
}
