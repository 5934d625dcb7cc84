package extract

import (
	"reflect"
	"testing"

	"settlecraft/internal/markup"
	"settlecraft/internal/settlement"
)

const (
	house12 = `<font size="3">12</font>` +
		`<font size="2">-<b>John Smith:</b> [<b>HGT:</b>5ft, 10in <b>WGT:</b>180lbs] He has brown hair. ` +
		`<b>DRESSEDIN:</b> a tunic, and boots. <b>POSSESSIONS:</b> a dagger, and 5 gold.</font>` +
		`<font size="2">--<b>Jane Smith:</b> [<b>HGT:</b>5ft, 4in <b>WGT:</b>120lbs] She smiles.</font>` +
		`<font size="2">---<b>Tim Smith:</b> A boy.</font>`
	house13 = `<font size="3">13</font><font size="2">-This building is empty.</font>`

	houseSection = `<br/><font size="2">The people of Oakvale.</font><hr/>` + house12 + `<hr/>` + house13

	merchantSection = `<font size="3">12</font>` +
		`<font size="2">-<b>The Golden Anvil</b> [Fine weapons] <b>Blacksmith:</b> ` +
		`[<b>HGT:</b>5ft, 10in <b>WGT:</b>180lbs] Sturdy. ` +
		`<table><tbody>` +
		`<tr><td>#</td><td>Item</td><td>Cost</td><td>Stock</td></tr>` +
		`<tr><td>1</td><td>Longsword</td><td>15gp</td><td>3</td></tr>` +
		`<tr><td>2</td><td>Dagger</td><td>2gp</td><td>10</td></tr>` +
		`</tbody></table></font>`

	guardhouse30 = `<font size="3">30</font>` +
		`<font size="2">-<b>Watch Post</b> [Town guard] <b>Sergeant:</b> Stern.` +
		`<font size="2"><i>Watchman</i> Bored.</font>` +
		`</font>`

	churchSection = `<font size="3">20</font>` +
		`<font size="2">-<b>Temple of Light</b> [Lawful good] <b>Priest:</b> ` +
		`[<b>HGT:</b>6ft, 0in <b>WGT:</b>200lbs] Calm.` +
		`<font size="2"><b>Brother Tom:</b> [<b>HGT:</b>5ft, 7in <b>WGT:</b>160lbs] An acolyte.</font>` +
		`<font size="1">Spells are cast on visitors. Donations welcome.` +
		`<b>Cure Light Wounds</b> costs 1,500 gold.<b>Bless</b> costs 100 gold.</font>` +
		`</font>`
)

func npcNamed(t *testing.T, reg *settlement.Registry, name string) *settlement.Npc {
	t.Helper()
	for _, n := range reg.Npcs() {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("npc %q not found", name)
	return nil
}

func TestExtractor_Buildings_House(t *testing.T) {
	reg := settlement.NewRegistry()
	x := New(reg, nil)

	out := x.Buildings(markup.SectionNpcs, houseSection, settlement.KindHouse)
	if len(out) != 1 {
		t.Fatalf("expected one building, got %d", len(out))
	}
	b := out[0]
	if b.ID != 12 || b.Title != "Building 12" || b.Kind != settlement.KindHouse {
		t.Fatalf("unexpected building %+v", b)
	}
	if b.Info != "" {
		t.Fatalf("expected no info, got %q", b.Info)
	}

	john := npcNamed(t, reg, "John Smith")
	jane := npcNamed(t, reg, "Jane Smith")
	tim := npcNamed(t, reg, "Tim Smith")
	if b.Owner == nil || *b.Owner != john.ID {
		t.Fatalf("expected owner John, got %v", b.Owner)
	}
	if !reflect.DeepEqual(b.Family, []settlement.NpcID{jane.ID, tim.ID}) {
		t.Fatalf("unexpected family %v", b.Family)
	}
	if john.Profession != "" {
		t.Fatalf("expected no profession, got %q", john.Profession)
	}
	if john.Spouse == nil || *john.Spouse != jane.ID {
		t.Fatalf("expected John married to Jane")
	}
	if !reflect.DeepEqual(john.Children, []settlement.NpcID{tim.ID}) {
		t.Fatalf("unexpected children %v", john.Children)
	}
	if jane.Role != settlement.RoleSpouse || tim.Role != settlement.RoleChild {
		t.Fatalf("unexpected roles %s %s", jane.Role, tim.Role)
	}
	if len(b.Products) != 0 || len(b.Occupants) != 0 || len(b.Spells) != 0 {
		t.Fatalf("expected a plain house, got %+v", b)
	}

	if _, ok := reg.Building(13); ok {
		t.Fatalf("expected empty building skipped")
	}
	s := reg.Assemble("", settlement.MapRef{}, settlement.RulerRecord{})
	if !reflect.DeepEqual(s.EmptyBuildings, []settlement.BuildingID{13}) {
		t.Fatalf("expected building 13 listed as empty, got %v", s.EmptyBuildings)
	}
	if len(x.Warnings()) != 0 {
		t.Fatalf("unexpected warnings %v", x.Warnings())
	}
}

func TestExtractor_Buildings_Merge(t *testing.T) {
	t.Run("merchant pass merges into the house", func(t *testing.T) {
		reg := settlement.NewRegistry()
		x := New(reg, nil)
		x.Buildings(markup.SectionNpcs, houseSection, settlement.KindHouse)
		x.Buildings(markup.SectionMerchants, merchantSection, settlement.KindMerchant)

		b, ok := reg.Building(12)
		if !ok {
			t.Fatalf("expected building 12")
		}
		if b.Kind != settlement.KindMerchant || b.Title != "The Golden Anvil" || b.Info != "Fine weapons" {
			t.Fatalf("unexpected merged building %+v", b)
		}
		want := []settlement.Product{
			{Item: "Longsword", Cost: "15gp", Stock: "3"},
			{Item: "Dagger", Cost: "2gp", Stock: "10"},
		}
		if !reflect.DeepEqual(b.Products, want) {
			t.Fatalf("unexpected products %#v", b.Products)
		}
		if len(b.Occupants) != 0 || len(b.Spells) != 0 {
			t.Fatalf("expected no occupants or spells, got %+v", b)
		}

		john := npcNamed(t, reg, "John Smith")
		if b.Owner == nil || *b.Owner != john.ID {
			t.Fatalf("expected the house owner reused")
		}
		if john.Profession != "Blacksmith" || john.ProfessionInfo != "Fine weapons" {
			t.Fatalf("unexpected profession %q [%q]", john.Profession, john.ProfessionInfo)
		}
		if len(b.Family) != 2 {
			t.Fatalf("expected family kept, got %v", b.Family)
		}
		if len(reg.Npcs()) != 3 {
			t.Fatalf("expected no new npcs, got %d", len(reg.Npcs()))
		}
	})

	t.Run("repeated merge is idempotent", func(t *testing.T) {
		reg := settlement.NewRegistry()
		x := New(reg, nil)
		x.Buildings(markup.SectionNpcs, houseSection, settlement.KindHouse)
		x.Buildings(markup.SectionMerchants, merchantSection, settlement.KindMerchant)
		once, _ := reg.Building(12)
		snapshot := *once
		npcs := len(reg.Npcs())

		x.Buildings(markup.SectionMerchants, merchantSection, settlement.KindMerchant)
		twice, _ := reg.Building(12)
		if !reflect.DeepEqual(snapshot, *twice) {
			t.Fatalf("expected identical building:\n%+v\n%+v", snapshot, *twice)
		}
		if len(reg.Npcs()) != npcs {
			t.Fatalf("expected no duplicated npcs, got %d want %d", len(reg.Npcs()), npcs)
		}
	})

	t.Run("merchant without a house gets its own owner", func(t *testing.T) {
		reg := settlement.NewRegistry()
		x := New(reg, nil)
		x.Buildings(markup.SectionMerchants, merchantSection, settlement.KindMerchant)

		b, ok := reg.Building(12)
		if !ok || b.Owner == nil {
			t.Fatalf("expected building with an owner")
		}
		owner, _ := reg.Npc(*b.Owner)
		if intValue(owner.HeightCm) != 178 || owner.Description != "Sturdy." {
			t.Fatalf("unexpected owner %+v", owner)
		}
		if owner.Profession != "Blacksmith" {
			t.Fatalf("unexpected profession %q", owner.Profession)
		}
		warnings := x.Warnings()
		if len(warnings) != 1 || warnings[0].Code != settlement.WarnMalformedField {
			t.Fatalf("expected missing name warning, got %v", warnings)
		}
	})
}

func TestExtractor_Buildings_UnlabelledOccupant(t *testing.T) {
	reg := settlement.NewRegistry()
	x := New(reg, nil)
	x.Buildings(markup.SectionNpcs, guardhouse30, settlement.KindHouse)
	x.Buildings(markup.SectionGuardhouses, guardhouse30, settlement.KindGuardhouse)

	b, ok := reg.Building(30)
	if !ok {
		t.Fatalf("expected building 30")
	}
	if b.Kind != settlement.KindGuardhouse || len(b.Occupants) != 1 {
		t.Fatalf("unexpected building %+v", b)
	}
	if len(reg.Npcs()) != 2 {
		t.Fatalf("expected owner and one occupant, got %d npcs", len(reg.Npcs()))
	}

	referenced := map[settlement.NpcID]bool{}
	if b.Owner != nil {
		referenced[*b.Owner] = true
	}
	for _, id := range append(append([]settlement.NpcID{}, b.Family...), b.Occupants...) {
		referenced[id] = true
	}
	for _, n := range reg.Npcs() {
		if !referenced[n.ID] {
			t.Fatalf("npc %s (%q) is not referenced by its building", n.ID, n.Description)
		}
	}

	x.Buildings(markup.SectionGuardhouses, guardhouse30, settlement.KindGuardhouse)
	if len(reg.Npcs()) != 2 {
		t.Fatalf("expected a repeated pass to reuse the occupant, got %d npcs", len(reg.Npcs()))
	}
}

func TestExtractor_Buildings_Church(t *testing.T) {
	reg := settlement.NewRegistry()
	x := New(reg, nil)
	out := x.Buildings(markup.SectionChurches, churchSection, settlement.KindChurch)
	if len(out) != 1 {
		t.Fatalf("expected one building, got %d", len(out))
	}
	b := out[0]
	if b.Title != "Temple of Light" || b.Kind != settlement.KindChurch {
		t.Fatalf("unexpected building %+v", b)
	}
	if len(b.Products) != 0 {
		t.Fatalf("expected no products")
	}

	tom := npcNamed(t, reg, "Brother Tom")
	if !reflect.DeepEqual(b.Occupants, []settlement.NpcID{tom.ID}) {
		t.Fatalf("unexpected occupants %v", b.Occupants)
	}
	if tom.Role != settlement.RoleOther || intValue(tom.HeightCm) != 170 {
		t.Fatalf("unexpected occupant %+v", tom)
	}
	wantSpells := []settlement.Spell{{Name: "Cure Light Wounds", Cost: 1500}, {Name: "Bless", Cost: 100}}
	if !reflect.DeepEqual(b.Spells, wantSpells) {
		t.Fatalf("unexpected spells %#v", b.Spells)
	}
	if b.SpellsCastOn != "Spells are cast on visitors." {
		t.Fatalf("unexpected trigger %q", b.SpellsCastOn)
	}
}

func TestExtractor_Fragments(t *testing.T) {
	reg := settlement.NewRegistry()
	x := New(reg, nil)
	src := `<br/>blurb<hr/><font size="2">no id here</font><hr/><font size="3">5</font>` +
		`<hr/><font size="2">-<b>Shop</b> <table><tbody><tr><td><font size="1">3</font></td></tr></tbody></table></font>`
	frags := x.fragments(markup.SectionGuilds, src)
	if len(frags) != 0 {
		t.Fatalf("expected no usable fragments, got %d", len(frags))
	}
	warnings := x.Warnings()
	if len(warnings) != 3 {
		t.Fatalf("expected three skipped fragments, got %v", warnings)
	}
	for _, w := range warnings {
		if w.Code != settlement.WarnSkippedFragment || w.Section != string(markup.SectionGuilds) {
			t.Fatalf("unexpected warning %+v", w)
		}
	}
}

func TestSpellCost(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{" costs 1,500 gold.", 1500, true},
		{" costs 25gp each.", 25, true},
		{"price: 300", 300, true},
		{" free of charge", 0, false},
	}
	for _, tt := range tests {
		got, ok := spellCost(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("spellCost(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
