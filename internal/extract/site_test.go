package extract

import (
	"reflect"
	"testing"

	"settlecraft/internal/settlement"
)

func TestExtractor_Ruler(t *testing.T) {
	reg := settlement.NewRegistry()
	x := New(reg, nil)
	rec := x.Ruler(`<font size="2"><b>Castle Blackstone</b> [Seat of the baron]</font>` +
		`<font size="2">-<b>Baron Hugo:</b> [<b>HGT:</b>6ft, 1in <b>WGT:</b>190lbs] Stern.</font>` +
		`<font size="2">--<b>Lady Ann:</b> Kind.</font>` +
		`<font size="2">---<b>Young Hugo:</b> Curious.</font>`)

	if rec.Title != "Castle Blackstone" || rec.Info != "Seat of the baron" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(rec.Members) != 3 {
		t.Fatalf("expected three members, got %v", rec.Members)
	}
	baron, _ := reg.Npc(rec.Members[0])
	ann, _ := reg.Npc(rec.Members[1])
	young, _ := reg.Npc(rec.Members[2])
	if baron.Name != "Baron Hugo" || baron.Role != settlement.RoleOwner || baron.Building != nil {
		t.Fatalf("unexpected baron %+v", baron)
	}
	if baron.Spouse == nil || *baron.Spouse != ann.ID {
		t.Fatalf("expected baron married to Lady Ann")
	}
	if !reflect.DeepEqual(baron.Children, []settlement.NpcID{young.ID}) {
		t.Fatalf("unexpected children %v", baron.Children)
	}
}

func TestExtractor_Ruler_NoMembers(t *testing.T) {
	x := New(settlement.NewRegistry(), nil)
	rec := x.Ruler(`<p>Nobody rules here.</p>`)
	if rec.Members == nil || len(rec.Members) != 0 {
		t.Fatalf("expected empty members, got %#v", rec.Members)
	}
	if len(x.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %v", x.Warnings())
	}
}

func TestExtractor_Title(t *testing.T) {
	x := New(settlement.NewRegistry(), nil)
	if got := x.Title(`<font size="4"> Oakvale </font><p>A quiet town</p>`); got != "Oakvale" {
		t.Fatalf("expected Oakvale, got %q", got)
	}
	if got := x.Title(`<p>Plainville</p>`); got != "Plainville" {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestExtractor_Map(t *testing.T) {
	x := New(settlement.NewRegistry(), nil)
	ref := x.Map(`<img src="logo.png"/><img src="map.jpg" usemap="#citymap" width="800" height="600"/>` +
		`<map name="citymap">` +
		`<area shape="rect" coords="1,2,3,4" href="#modal_12" title="Building 12"/>` +
		`<area shape="circle" coords="5,5,2" href="http://example.com" alt="Out"/>` +
		`</map>`)

	if ref.Image != "map.jpg" || ref.Width != 800 || ref.Height != 600 {
		t.Fatalf("unexpected map %+v", ref)
	}
	if len(ref.Areas) != 2 {
		t.Fatalf("expected two areas, got %d", len(ref.Areas))
	}
	if ref.Areas[0].Building == nil || *ref.Areas[0].Building != 12 {
		t.Fatalf("expected first area linked to building 12")
	}
	if ref.Areas[1].Building != nil || ref.Areas[1].Title != "Out" {
		t.Fatalf("unexpected second area %+v", ref.Areas[1])
	}
}
