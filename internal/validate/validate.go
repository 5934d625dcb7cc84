package validate

import (
	"fmt"
	"regexp"

	"settlecraft/internal/settlement"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingReference = "dangling_reference"
	codeAsymmetricSpouse  = "asymmetric_spouse"
	codeMixedContents     = "mixed_contents"
	codeUnknownToken      = "unknown_token"
	codeMissingContent    = "missing_content"
	codeUnknownMapArea    = "unknown_map_area"
	codeMismatchedID      = "mismatched_id"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Building string   `json:"building,omitempty"`
	Npc      string   `json:"npc,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

var tokenPattern = regexp.MustCompile(`\[npc-(L?\d+)(?:-li)?\]`)

// Settlement checks a finalized settlement and its content against the
// guarantees of a conversion. A clean conversion yields an empty report.
func Settlement(s *settlement.Settlement, c settlement.Content) Report {
	issues := make([]Issue, 0)
	if s == nil {
		return Report{Issues: issues}
	}

	for _, id := range s.BuildingIDs() {
		issues = append(issues, checkBuilding(s, id, s.Buildings[id])...)
	}
	for _, id := range s.NpcIDs() {
		issues = append(issues, checkNpc(s, id, s.Npcs[id])...)
	}
	for _, id := range s.Rulers.Members {
		if _, ok := s.Npcs[id]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDanglingReference,
				Message:  fmt.Sprintf("ruler member %s does not exist", id),
				Npc:      id.String(),
			})
		}
	}
	for _, area := range s.Map.Areas {
		if area.Building == nil {
			continue
		}
		if _, ok := s.Buildings[*area.Building]; ok || containsBuilding(s.EmptyBuildings, *area.Building) {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnknownMapArea,
			Message:  fmt.Sprintf("map area %q points at a building that was not extracted", area.Href),
			Building: area.Building.String(),
		})
	}

	issues = append(issues, checkContent(s, c)...)
	return Report{Issues: issues}
}

func checkBuilding(s *settlement.Settlement, id settlement.BuildingID, b *settlement.Building) []Issue {
	var issues []Issue
	dangling := func(field string, ref settlement.NpcID) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDanglingReference,
			Message:  fmt.Sprintf("%s %s does not exist", field, ref),
			Building: id.String(),
			Npc:      ref.String(),
		})
	}

	if b.ID != id {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeMismatchedID,
			Message:  fmt.Sprintf("building stored under %s carries id %s", id, b.ID),
			Building: id.String(),
		})
	}
	if b.Owner != nil {
		if _, ok := s.Npcs[*b.Owner]; !ok {
			dangling("owner", *b.Owner)
		}
	}
	for _, ref := range b.Family {
		if _, ok := s.Npcs[ref]; !ok {
			dangling("family member", ref)
		}
	}
	for _, ref := range b.Occupants {
		if _, ok := s.Npcs[ref]; !ok {
			dangling("occupant", ref)
		}
	}
	if len(b.Products) > 0 && (len(b.Occupants) > 0 || len(b.Spells) > 0) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeMixedContents,
			Message:  "building lists products alongside occupants or spells",
			Building: id.String(),
		})
	}
	return issues
}

func checkNpc(s *settlement.Settlement, id settlement.NpcID, n *settlement.Npc) []Issue {
	var issues []Issue
	dangling := func(field string, ref string) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDanglingReference,
			Message:  fmt.Sprintf("%s %s does not exist", field, ref),
			Npc:      id.String(),
		})
	}

	if n.ID != id {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeMismatchedID,
			Message:  fmt.Sprintf("npc stored under %s carries id %s", id, n.ID),
			Npc:      id.String(),
		})
	}
	if n.Spouse != nil {
		spouse, ok := s.Npcs[*n.Spouse]
		switch {
		case !ok:
			dangling("spouse", n.Spouse.String())
		case spouse.Spouse == nil || *spouse.Spouse != id:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeAsymmetricSpouse,
				Message:  fmt.Sprintf("spouse %s does not name %s back", n.Spouse, id),
				Npc:      id.String(),
			})
		}
	}
	for _, child := range n.Children {
		if _, ok := s.Npcs[child]; !ok {
			dangling("child", child.String())
		}
	}
	if n.Building != nil {
		if _, ok := s.Buildings[*n.Building]; !ok {
			dangling("building", n.Building.String())
		}
	}
	return issues
}

func checkContent(s *settlement.Settlement, c settlement.Content) []Issue {
	var issues []Issue
	for _, id := range s.BuildingIDs() {
		fragment, ok := c.Buildings[id]
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeMissingContent,
				Message:  "building has no content fragment",
				Building: id.String(),
			})
			continue
		}
		for _, token := range unknownTokens(s, fragment) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownToken,
				Message:  fmt.Sprintf("placeholder %s names no npc", token),
				Building: id.String(),
			})
		}
	}
	for _, id := range s.NpcIDs() {
		fragment, ok := c.Npcs[id]
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeMissingContent,
				Message:  "npc has no content fragment",
				Npc:      id.String(),
			})
			continue
		}
		for _, token := range unknownTokens(s, fragment) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownToken,
				Message:  fmt.Sprintf("placeholder %s names no npc", token),
				Npc:      id.String(),
			})
		}
	}
	return issues
}

func unknownTokens(s *settlement.Settlement, fragment string) []string {
	var unknown []string
	for _, m := range tokenPattern.FindAllStringSubmatch(fragment, -1) {
		id, err := settlement.ParseNpcID(m[1])
		if err != nil {
			unknown = append(unknown, m[0])
			continue
		}
		if _, ok := s.Npcs[id]; !ok {
			unknown = append(unknown, m[0])
		}
	}
	return unknown
}

func containsBuilding(ids []settlement.BuildingID, target settlement.BuildingID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
