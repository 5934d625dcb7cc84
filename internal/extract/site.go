package extract

import (
	"regexp"
	"strconv"
	"strings"

	"settlecraft/internal/markup"
	"settlecraft/internal/settlement"
)

var trailingNumber = regexp.MustCompile(`(\d+)\s*$`)

// Title returns the text of the first emphasis element of the title
// section, or the section's plain text when it has none.
func (x *Extractor) Title(src string) string {
	nodes, err := markup.ParseFragment(src)
	if err != nil {
		x.warn(settlement.WarnMalformedField, markup.SectionTitle, "%v", err)
		return ""
	}
	if f := markup.FindFirst(nodes, "font"); f != nil {
		if t := squash(markup.Text(f)); t != "" {
			return t
		}
	}
	var text strings.Builder
	for _, n := range nodes {
		text.WriteString(markup.Text(n))
	}
	title := squash(text.String())
	if title == "" {
		x.warn(settlement.WarnMalformedField, markup.SectionTitle, "title section has no text")
	}
	return title
}

// Map copies the map image reference and its clickable areas. An area
// linking to an in-page anchor that ends in a number points at that
// building.
func (x *Extractor) Map(src string) settlement.MapRef {
	var ref settlement.MapRef
	nodes, err := markup.ParseFragment(src)
	if err != nil {
		x.warn(settlement.WarnMalformedField, markup.SectionMap, "%v", err)
		return ref
	}

	img := markup.FindFirst(nodes, "img")
	for _, candidate := range markup.FindAll(nodes, "img") {
		if markup.Attr(candidate, "usemap") != "" {
			img = candidate
			break
		}
	}
	if img == nil {
		x.warn(settlement.WarnMalformedField, markup.SectionMap, "map section has no image")
		return ref
	}
	ref.Image = markup.Attr(img, "src")
	ref.Width, _ = strconv.Atoi(markup.Attr(img, "width"))
	ref.Height, _ = strconv.Atoi(markup.Attr(img, "height"))

	for _, a := range markup.FindAll(nodes, "area") {
		area := settlement.MapArea{
			Shape:  markup.Attr(a, "shape"),
			Coords: markup.Attr(a, "coords"),
			Href:   markup.Attr(a, "href"),
			Title:  markup.Attr(a, "title"),
		}
		if area.Title == "" {
			area.Title = markup.Attr(a, "alt")
		}
		if strings.HasPrefix(area.Href, "#") {
			if m := trailingNumber.FindStringSubmatch(area.Href); m != nil {
				if id, ok := settlement.ParseBuildingID(m[1]); ok {
					area.Building = &id
				}
			}
		}
		ref.Areas = append(ref.Areas, area)
	}
	return ref
}
