package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"settlecraft/internal/markup"
	"settlecraft/internal/settlement"
)

// Extractor carries the state of one conversion through the extraction
// passes. It is not safe for concurrent use.
type Extractor struct {
	reg      *settlement.Registry
	log      *zap.Logger
	warnings []settlement.Warning
}

func New(reg *settlement.Registry, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{reg: reg, log: log}
}

func (x *Extractor) Warnings() []settlement.Warning {
	return x.warnings
}

func (x *Extractor) warn(code string, section markup.SectionName, format string, args ...any) {
	w := settlement.Warning{Code: code, Section: string(section), Message: fmt.Sprintf(format, args...)}
	x.warnings = append(x.warnings, w)
	x.log.Debug("extraction anomaly",
		zap.String("code", w.Code),
		zap.String("section", w.Section),
		zap.String("detail", w.Message),
	)
}

var (
	dashLabel   = regexp.MustCompile(`^\s*(-{1,3})\s*$`)
	spaceRuns   = regexp.MustCompile(`\s+`)
	anyTag      = regexp.MustCompile(`<[^>]*>`)
	bracketText = regexp.MustCompile(`\[([^\]]*)\]`)
	digits      = regexp.MustCompile(`\d+`)
)

// nameBlock is an emphasis element that introduces a person: an optional
// run of dashes followed by a bold, colon-terminated name.
type nameBlock struct {
	node  *html.Node
	depth int
}

// asNameBlock reports whether n opens with a name label and how many dashes
// precede it.
func asNameBlock(n *html.Node) (nameBlock, bool) {
	if !markup.IsElement(n, "font") || n.FirstChild == nil {
		return nameBlock{}, false
	}
	first := n.FirstChild
	depth := 0
	if markup.IsText(first) {
		m := dashLabel.FindStringSubmatch(first.Data)
		if m == nil {
			return nameBlock{}, false
		}
		depth = len(m[1])
		first = first.NextSibling
	}
	if !markup.IsElement(first, "b") || !strings.HasSuffix(strings.TrimSpace(markup.Text(first)), ":") {
		return nameBlock{}, false
	}
	return nameBlock{node: n, depth: depth}, true
}

func familyBlocks(nodes []*html.Node) []nameBlock {
	var out []nameBlock
	for _, f := range markup.FindAll(nodes, "font") {
		if b, ok := asNameBlock(f); ok && b.depth > 0 {
			out = append(out, b)
		}
	}
	return out
}

// ownMarkup renders a person block without any nested blocks or tables.
func ownMarkup(n *html.Node) string {
	return markup.RenderPruned(n, func(c *html.Node) bool {
		return markup.IsElement(c, "font") || markup.IsElement(c, "table")
	})
}

func declaredNpcID(n *html.Node) settlement.NpcID {
	raw := digits.FindString(markup.Attr(n, "id"))
	if raw == "" {
		return settlement.NpcID{}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return settlement.NpcID{}
	}
	return settlement.DeclaredNpcID(v)
}

func cleanText(s string) string {
	s = anyTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

func squash(s string) string {
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}
