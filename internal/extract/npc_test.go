package extract

import (
	"reflect"
	"regexp"
	"testing"

	"settlecraft/internal/settlement"
)

func intValue(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func TestParseNpc(t *testing.T) {
	t.Run("full block", func(t *testing.T) {
		n := ParseNpc(`<font size="2">-<b>John Smith:</b> [<b>HGT:</b>5ft, 10in <b>WGT:</b>180lbs] He has brown hair. ` +
			`<b>DRESSEDIN:</b> a tunic, and boots. <b>POSSESSIONS:</b> a dagger, and 5 gold.</font>`)
		if n.Name != "John Smith" {
			t.Fatalf("expected name, got %q", n.Name)
		}
		if intValue(n.HeightCm) != 178 || intValue(n.WeightKg) != 82 {
			t.Fatalf("expected 178cm/82kg, got %d/%d", intValue(n.HeightCm), intValue(n.WeightKg))
		}
		if !reflect.DeepEqual(n.Clothing, []string{"A tunic", "Boots"}) {
			t.Fatalf("unexpected clothing %#v", n.Clothing)
		}
		if !reflect.DeepEqual(n.Possessions, []string{"A dagger", "5 gold"}) {
			t.Fatalf("unexpected possessions %#v", n.Possessions)
		}
		if n.Description != "He has brown hair." {
			t.Fatalf("unexpected description %q", n.Description)
		}
	})

	t.Run("unit conversion rounds to whole units", func(t *testing.T) {
		n := ParseNpc(`<font size="2">-<b>A:</b> [<b>HGT:</b>5ft, 7in <b>WGT:</b>160lbs]</font>`)
		if intValue(n.HeightCm) != 170 || intValue(n.WeightKg) != 73 {
			t.Fatalf("expected 170cm/73kg, got %d/%d", intValue(n.HeightCm), intValue(n.WeightKg))
		}
	})

	t.Run("missing physique stays unset", func(t *testing.T) {
		n := ParseNpc(`<font size="2">---<b>Tim:</b> A boy.</font>`)
		if n.HeightCm != nil || n.WeightKg != nil {
			t.Fatalf("expected nil physique, got %+v", n)
		}
		if n.Clothing == nil || n.Possessions == nil || len(n.Clothing) != 0 {
			t.Fatalf("expected empty non-nil lists, got %#v %#v", n.Clothing, n.Possessions)
		}
		if n.Description != "A boy." {
			t.Fatalf("unexpected description %q", n.Description)
		}
	})

	t.Run("entities are decoded", func(t *testing.T) {
		n := ParseNpc(`<font size="2">-<b>Sean O&#39;Brien:</b> Tall &amp; thin.</font>`)
		if n.Name != "Sean O'Brien" || n.Description != "Tall & thin." {
			t.Fatalf("unexpected npc %+v", n)
		}
	})

	t.Run("name label must end with a colon", func(t *testing.T) {
		n := ParseNpc(`<font size="2">-<b>The Golden Anvil</b> [x] <b>Smith:</b> text</font>`)
		if n.Name != "" {
			t.Fatalf("expected no name, got %q", n.Name)
		}
	})
}

func TestCursor_Take(t *testing.T) {
	re := regexp.MustCompile(`<b>X:</b>(\w+)`)
	c := cursor{rest: "a <b>X:</b>one b <b>X:</b>two"}

	m, c := c.take(re)
	if m == nil || m[1] != "one" {
		t.Fatalf("expected first match, got %v", m)
	}
	m, c = c.take(re)
	if m == nil || m[1] != "two" {
		t.Fatalf("expected second match, got %v", m)
	}
	if m, _ := c.take(re); m != nil {
		t.Fatalf("expected consumed text not to match again")
	}
	if c.rest != "a  b " {
		t.Fatalf("unexpected remainder %q", c.rest)
	}
}

func TestExtractor_Npc(t *testing.T) {
	reg := settlement.NewRegistry()
	x := New(reg, nil)
	building := settlement.BuildingID(4)

	id := x.Npc(`<font size="2">-<b>Ann:</b> Hi.</font>`, &building, settlement.RoleOwner)
	n, ok := reg.Npc(id)
	if !ok {
		t.Fatalf("expected npc registered")
	}
	if n.Role != settlement.RoleOwner || n.Building == nil || *n.Building != building {
		t.Fatalf("unexpected npc %+v", n)
	}
	if id != settlement.LocalNpcID(1) {
		t.Fatalf("expected first local id, got %v", id)
	}
}
