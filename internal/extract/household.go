package extract

import (
	"strings"

	"golang.org/x/net/html"

	"settlecraft/internal/markup"
	"settlecraft/internal/settlement"
)

// household registers the dash-labelled people of a building fragment. One
// dash is the owner, two the spouse and three a child. People already known
// for the building are reused, so running it again over the same fragment
// changes nothing.
func (x *Extractor) household(f fragment) {
	var owner *settlement.Npc
	for _, blk := range familyBlocks(f.nodes) {
		role := settlement.RoleForDepth(blk.depth)
		name := blockName(blk.node)

		lookup := ""
		if role == settlement.RoleChild {
			lookup = name
		}
		n, ok := x.reg.FindNpc(f.id, role, lookup)
		if !ok {
			id := x.addNpc(ownMarkup(blk.node), declaredNpcID(blk.node), &f.id, role)
			n, _ = x.reg.Npc(id)
		}

		switch role {
		case settlement.RoleOwner:
			owner = n
		case settlement.RoleSpouse:
			if owner != nil && owner.Spouse == nil {
				id := n.ID
				owner.Spouse = &id
			}
		case settlement.RoleChild:
			if owner != nil && !containsID(owner.Children, n.ID) {
				owner.Children = append(owner.Children, n.ID)
			}
		}
	}
}

// blockName returns the label of a name block without dashes or colon.
func blockName(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if markup.IsElement(c, "b") {
			return strings.TrimSuffix(squash(markup.Text(c)), ":")
		}
	}
	return ""
}

func containsID(ids []settlement.NpcID, id settlement.NpcID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
