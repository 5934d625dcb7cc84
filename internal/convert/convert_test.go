package convert

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"settlecraft/internal/markup"
	"settlecraft/internal/metrics"
	"settlecraft/internal/settlement"
)

func convertFixture(t *testing.T, name string) *Result {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	res, err := ConvertReader(f, Options{})
	if err != nil {
		t.Fatalf("convert %s: %v", name, err)
	}
	return res
}

func TestConvert_EndToEnd(t *testing.T) {
	res := convertFixture(t, "oakvale.html")
	s := res.Settlement

	wantSections := []markup.SectionName{
		markup.SectionMap, markup.SectionTitle, markup.SectionNpcs,
		markup.SectionRuler, markup.SectionBanks, markup.SectionMerchants,
	}
	if !reflect.DeepEqual(res.Sections, wantSections) {
		t.Fatalf("unexpected sections %v", res.Sections)
	}
	if s.Title != "Oakvale" {
		t.Fatalf("expected title Oakvale, got %q", s.Title)
	}
	if s.Map.Image != "map.jpg" || len(s.Map.Areas) != 1 {
		t.Fatalf("unexpected map %+v", s.Map)
	}

	if len(s.Buildings) != 1 {
		t.Fatalf("expected one merged building, got %d", len(s.Buildings))
	}
	b := s.Buildings[12]
	if b == nil {
		t.Fatalf("expected building 12")
	}
	if b.Kind != settlement.KindMerchant || b.Title != "The Golden Anvil" {
		t.Fatalf("unexpected building %+v", b)
	}
	if len(b.Products) != 2 || b.Products[0].Item != "Longsword" || b.Products[1].Stock != "40" {
		t.Fatalf("unexpected products %#v", b.Products)
	}
	if len(b.Occupants) != 0 || len(b.Spells) != 0 {
		t.Fatalf("expected no occupants or spells")
	}
	if len(b.Family) != 0 {
		t.Fatalf("expected no family, got %v", b.Family)
	}

	if b.Owner == nil {
		t.Fatalf("expected an owner")
	}
	owner := s.Npcs[*b.Owner]
	if owner == nil || owner.Name != "John Smith" {
		t.Fatalf("expected owner John Smith, got %+v", owner)
	}
	if owner.HeightCm == nil || *owner.HeightCm != 178 || owner.WeightKg == nil || *owner.WeightKg != 82 {
		t.Fatalf("unexpected physique %v %v", owner.HeightCm, owner.WeightKg)
	}
	if owner.Profession != "Blacksmith" || owner.ProfessionInfo != "Fine weapons and tools" {
		t.Fatalf("unexpected profession %q [%q]", owner.Profession, owner.ProfessionInfo)
	}

	if s.Rulers.Title != "Oakvale Keep" || len(s.Rulers.Members) != 1 {
		t.Fatalf("unexpected rulers %+v", s.Rulers)
	}
	if mayor := s.Npcs[s.Rulers.Members[0]]; mayor.Name != "Mayor Bram" || mayor.Building != nil {
		t.Fatalf("unexpected ruler %+v", mayor)
	}
	if !reflect.DeepEqual(s.EmptyBuildings, []settlement.BuildingID{13}) {
		t.Fatalf("expected building 13 empty, got %v", s.EmptyBuildings)
	}

	if len(res.Warnings) != 1 || res.Warnings[0].Code != settlement.WarnUnimplementedKind {
		t.Fatalf("expected only the bank warning, got %v", res.Warnings)
	}

	content := res.Content.Buildings[12]
	if !strings.Contains(content, settlement.ListToken(*b.Owner)) {
		t.Fatalf("expected owner list token in %q", content)
	}
	if !strings.Contains(content, "<td>Longsword</td>") {
		t.Fatalf("expected product table in %q", content)
	}
}

const household = `<hr><font size="5">Hamlet</font>` +
	`<img src="wtown_01.jpg"><br><font size="2">Homes.</font><hr>` +
	`<font size="3">3</font>` +
	`<font size="2">-<b>John Smith:</b> [<b>HGT:</b>5ft, 10in <b>WGT:</b>180lbs] Tall.</font>` +
	`<font size="2">--<b>Jane Smith:</b> Kind.</font>` +
	`<font size="2">---<b>Tim Smith:</b> Small.</font>`

func TestConvert_Household(t *testing.T) {
	res, err := Convert(household, Options{})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	s := res.Settlement
	b := s.Buildings[3]
	if b == nil || b.Kind != settlement.KindHouse || b.Title != "Building 3" {
		t.Fatalf("unexpected building %+v", b)
	}

	john := s.Npcs[*b.Owner]
	if john.Spouse == nil {
		t.Fatalf("expected John to have a spouse")
	}
	jane := s.Npcs[*john.Spouse]
	if jane.Spouse == nil || *jane.Spouse != john.ID {
		t.Fatalf("expected symmetric spouse link")
	}
	if !reflect.DeepEqual(jane.Children, john.Children) || len(jane.Children) != 1 {
		t.Fatalf("expected shared children, got %v and %v", john.Children, jane.Children)
	}

	house := res.Content.Buildings[3]
	for _, id := range append([]settlement.NpcID{john.ID}, b.Family...) {
		if !strings.Contains(house, settlement.Token(id)) {
			t.Fatalf("expected %s in %q", settlement.Token(id), house)
		}
	}
	if !strings.Contains(res.Content.Npcs[john.ID], settlement.ListToken(jane.ID)) {
		t.Fatalf("expected spouse list token in John's content")
	}
}

var tokenPattern = regexp.MustCompile(`\[npc-(L?\d+)(?:-li)?\]`)

func TestConvert_TokensResolve(t *testing.T) {
	for _, res := range []*Result{convertFixture(t, "oakvale.html"), mustConvert(t, household)} {
		var fragments []string
		for _, c := range res.Content.Buildings {
			fragments = append(fragments, c)
		}
		for _, c := range res.Content.Npcs {
			fragments = append(fragments, c)
		}
		for _, fragment := range fragments {
			for _, m := range tokenPattern.FindAllStringSubmatch(fragment, -1) {
				id, err := settlement.ParseNpcID(m[1])
				if err != nil {
					t.Fatalf("bad token %s: %v", m[0], err)
				}
				if _, ok := res.Settlement.Npcs[id]; !ok {
					t.Fatalf("token %s references unknown npc", m[0])
				}
			}
		}
	}
}

func TestConvert_NoSections(t *testing.T) {
	for _, doc := range []string{"", "just some text", "<p>no sentinels</p>"} {
		if _, err := Convert(doc, Options{}); !errors.Is(err, ErrNoSections) {
			t.Fatalf("expected ErrNoSections for %q, got %v", doc, err)
		}
	}
}

func TestConvert_Metrics(t *testing.T) {
	m := metrics.New()
	if _, err := Convert(household, Options{Metrics: m}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := Convert("", Options{Metrics: m}); err == nil {
		t.Fatalf("expected failure")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`settlecraft_conversions_total{outcome="ok"} 1`,
		`settlecraft_conversions_total{outcome="failed"} 1`,
		`settlecraft_buildings_extracted_total{kind="house"} 1`,
		`settlecraft_npcs_extracted_total 3`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition:\n%s", want, body)
		}
	}
}

func mustConvert(t *testing.T, doc string) *Result {
	t.Helper()
	res, err := Convert(doc, Options{})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	return res
}
