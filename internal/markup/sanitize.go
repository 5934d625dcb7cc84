package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// RosterSentinel marks the start of the NPC roster section.
const RosterSentinel = "wtown_01.jpg"

// rosterRepairOffset is the distance, in significant body children, from the
// roster sentinel node to the element whose closing tag the generator drops.
const rosterRepairOffset = 2

var (
	interTagBreaks = regexp.MustCompile(`>\s*[\r\n]+\s*<`)
	lineBreaks     = regexp.MustCompile(`[\r\n\t]+`)
	spaceRuns      = regexp.MustCompile(` {2,}`)
)

// Normalize flattens line structure so that whitespace between tags does not
// produce text nodes and text never contains hard breaks.
func Normalize(raw string) string {
	s := interTagBreaks.ReplaceAllString(raw, "><")
	s = lineBreaks.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type SanitizeResult struct {
	Markup string
	// Repaired is true when the roster defect was found and fixed.
	Repaired bool
	// Skipped is true when the roster sentinel was present but the element
	// to repair was not where the generator puts it.
	Skipped bool
}

// Sanitize normalises raw generator markup into body-level markup that the
// tree parser reads without loss, and repairs the unterminated element that
// follows the roster sentinel. Running it on its own output is a no-op.
func Sanitize(raw string) SanitizeResult {
	normalized := Normalize(raw)
	doc, err := html.Parse(strings.NewReader(normalized))
	if err != nil {
		return SanitizeResult{Markup: normalized}
	}
	body := findBody(doc)
	if body == nil {
		return SanitizeResult{Markup: normalized}
	}

	res := SanitizeResult{}
	switch repairRoster(body) {
	case repairApplied:
		res.Repaired = true
	case repairNotApplicable:
		res.Skipped = true
	}
	res.Markup = RenderAll(Children(body))
	return res
}

type repairOutcome int

const (
	repairNoSentinel repairOutcome = iota
	repairApplied
	repairClean
	repairNotApplicable
)

// repairRoster closes the element found rosterRepairOffset nodes after the
// roster sentinel right after its first child. Everything the missing end tag
// let it swallow is moved back up to follow it as siblings.
func repairRoster(body *html.Node) repairOutcome {
	nodes := significantChildren(body)
	at := -1
	for i, n := range nodes {
		if strings.Contains(Render(n), RosterSentinel) {
			at = i
			break
		}
	}
	if at < 0 {
		return repairNoSentinel
	}
	if at+rosterRepairOffset >= len(nodes) {
		return repairNotApplicable
	}
	target := nodes[at+rosterRepairOffset]
	if !IsElement(target, "font") || target.FirstChild == nil {
		return repairNotApplicable
	}
	if target.FirstChild.NextSibling == nil {
		return repairClean
	}

	anchor := target
	for c := target.FirstChild.NextSibling; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		body.InsertBefore(c, anchor.NextSibling)
		anchor = c
		c = next
	}
	return repairApplied
}
