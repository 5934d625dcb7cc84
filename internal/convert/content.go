package convert

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"settlecraft/internal/settlement"
)

const collapsibleOpen = `<ul class="collapsible" data-collapsible="accordion">`

// Render builds the publishable fragment of every building and NPC. People
// appear only as placeholder tokens, and every token names an NPC of s.
func Render(s *settlement.Settlement) settlement.Content {
	c := settlement.Content{
		Buildings: make(map[settlement.BuildingID]string, len(s.Buildings)),
		Npcs:      make(map[settlement.NpcID]string, len(s.Npcs)),
	}
	for id, b := range s.Buildings {
		c.Buildings[id] = renderBuilding(s, b)
	}
	for id, n := range s.Npcs {
		c.Npcs[id] = renderNpc(s, n)
	}
	return c
}

func renderBuilding(s *settlement.Settlement, b *settlement.Building) string {
	var sb strings.Builder

	var household []settlement.NpcID
	if b.Owner != nil {
		household = append(household, *b.Owner)
	}
	household = append(household, b.Family...)

	if b.Kind == settlement.KindHouse {
		for _, id := range household {
			writeToken(&sb, s, id, false)
		}
	} else {
		if owner := lookupNpc(s, b.Owner); owner != nil && owner.Profession != "" {
			sb.WriteString("<h3><b>" + esc(owner.Profession) + "</b>")
			if b.Info != "" {
				sb.WriteString(" [" + esc(b.Info) + "]")
			}
			sb.WriteString("</h3>")
		}
		if len(household) > 0 {
			sb.WriteString(collapsibleOpen)
			for _, id := range household {
				writeToken(&sb, s, id, true)
			}
			sb.WriteString("</ul>")
		}
	}

	for _, id := range b.Occupants {
		writeToken(&sb, s, id, false)
	}

	if len(b.Products) > 0 {
		sb.WriteString(`<table class="striped responsive-table"><thead><tr><th>Item</th><th>Cost</th><th>Stock</th></tr></thead><tbody>`)
		for _, p := range b.Products {
			sb.WriteString("<tr><td>" + esc(p.Item) + "</td><td>" + esc(p.Cost) + "</td><td>" + esc(p.Stock) + "</td></tr>")
		}
		sb.WriteString("</tbody></table>")
	}

	if len(b.Spells) > 0 {
		if b.SpellsCastOn != "" {
			sb.WriteString("<p>" + esc(b.SpellsCastOn) + "</p>")
		}
		sb.WriteString(`<table class="striped"><thead><tr><th>Spell</th><th>Cost</th></tr></thead><tbody>`)
		for _, sp := range b.Spells {
			sb.WriteString("<tr><td>" + esc(sp.Name) + "</td><td>" + strconv.Itoa(sp.Cost) + "</td></tr>")
		}
		sb.WriteString("</tbody></table>")
	}
	return sb.String()
}

func renderNpc(s *settlement.Settlement, n *settlement.Npc) string {
	var sb strings.Builder
	sb.WriteString("<p>")
	if n.Profession != "" {
		sb.WriteString("<b>Profession:</b> " + esc(n.Profession))
		if n.ProfessionInfo != "" {
			sb.WriteString(" [" + esc(n.ProfessionInfo) + "]")
		}
		sb.WriteString("<br/>")
	}
	if n.HeightCm != nil || n.WeightKg != nil {
		if n.HeightCm != nil {
			sb.WriteString("<b>Height:</b> " + strconv.Itoa(*n.HeightCm) + " cm ")
		}
		if n.WeightKg != nil {
			sb.WriteString("<b>Weight:</b> " + strconv.Itoa(*n.WeightKg) + " kg")
		}
		sb.WriteString("<br/>")
	}
	if n.Description != "" {
		sb.WriteString(esc(n.Description) + "<br/>")
	}
	if len(n.Clothing) > 0 {
		sb.WriteString("<b>Wearing:</b> " + esc(strings.Join(n.Clothing, ", ")) + "<br/>")
	}
	if len(n.Possessions) > 0 {
		sb.WriteString("<b>Possessions:</b> " + esc(strings.Join(n.Possessions, ", ")) + "<br/>")
	}
	sb.WriteString("</p>")

	var family []settlement.NpcID
	if n.Spouse != nil {
		family = append(family, *n.Spouse)
	}
	family = append(family, n.Children...)
	if len(family) > 0 {
		sb.WriteString(collapsibleOpen)
		for _, id := range family {
			writeToken(&sb, s, id, true)
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}

// writeToken emits the placeholder for id when s holds that NPC.
func writeToken(sb *strings.Builder, s *settlement.Settlement, id settlement.NpcID, list bool) {
	if _, ok := s.Npcs[id]; !ok {
		return
	}
	if list {
		sb.WriteString(settlement.ListToken(id))
		return
	}
	sb.WriteString(settlement.Token(id))
}

func lookupNpc(s *settlement.Settlement, id *settlement.NpcID) *settlement.Npc {
	if id == nil {
		return nil
	}
	return s.Npcs[*id]
}

func esc(s string) string {
	return html.EscapeString(s)
}
