package convert

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"settlecraft/internal/extract"
	"settlecraft/internal/markup"
	"settlecraft/internal/metrics"
	"settlecraft/internal/settlement"
)

// ErrNoSections is returned for documents without a single sentinel
// delimited section, from which no settlement can be built.
var ErrNoSections = markup.ErrNoSections

var sectionKinds = map[markup.SectionName]settlement.Kind{
	markup.SectionGuardhouses: settlement.KindGuardhouse,
	markup.SectionChurches:    settlement.KindChurch,
	markup.SectionMerchants:   settlement.KindMerchant,
	markup.SectionGuilds:      settlement.KindGuild,
}

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Result struct {
	Settlement *settlement.Settlement `json:"settlement"`
	Content    settlement.Content     `json:"content"`
	Sections   []markup.SectionName   `json:"sections"`
	Warnings   []settlement.Warning   `json:"warnings,omitempty"`
}

// ConvertReader decodes r to UTF-8 and converts it.
func ConvertReader(r io.Reader, opts Options) (*Result, error) {
	raw, err := markup.Decode(r)
	if err != nil {
		return nil, err
	}
	return Convert(raw, opts)
}

// Convert turns one generator document into a settlement. Anomalies in
// individual sections or buildings become warnings on the result; only a
// document without recognisable sections is an error.
func Convert(raw string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res, err := convert(raw, log)
	if err != nil {
		opts.Metrics.Conversion(metrics.OutcomeFailed)
		return nil, err
	}

	opts.Metrics.Conversion(metrics.OutcomeOK)
	for _, b := range res.Settlement.Buildings {
		opts.Metrics.Building(string(b.Kind))
	}
	opts.Metrics.Npcs(len(res.Settlement.Npcs))
	for _, w := range res.Warnings {
		opts.Metrics.Warning(w.Code)
	}
	log.Info("converted settlement",
		zap.String("title", res.Settlement.Title),
		zap.Int("buildings", len(res.Settlement.Buildings)),
		zap.Int("npcs", len(res.Settlement.Npcs)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func convert(raw string, log *zap.Logger) (*Result, error) {
	var warnings []settlement.Warning

	sanitized := markup.Sanitize(raw)
	if sanitized.Skipped {
		warnings = append(warnings, settlement.Warning{
			Code:    settlement.WarnRepairSkipped,
			Section: string(markup.SectionNpcs),
			Message: "roster element not where expected, left unrepaired",
		})
	}

	sections, err := markup.Segment(sanitized.Markup)
	if err != nil {
		return nil, fmt.Errorf("segmenting document: %w", err)
	}
	if !hasDelimitedSection(sections) {
		return nil, ErrNoSections
	}
	log.Debug("document segmented", zap.Int("sections", len(sections)), zap.Bool("repaired", sanitized.Repaired))

	reg := settlement.NewRegistry()
	x := extract.New(reg, log)

	// Houses seed the registry that every other building pass merges into.
	if npcs, ok := sections.Get(markup.SectionNpcs); ok {
		x.Buildings(markup.SectionNpcs, npcs, settlement.KindHouse)
	}

	var (
		title  string
		mapRef settlement.MapRef
		rulers = settlement.RulerRecord{Members: []settlement.NpcID{}}
	)
	for _, sec := range sections {
		switch sec.Name {
		case markup.SectionMap:
			mapRef = x.Map(sec.Markup)
		case markup.SectionTitle:
			title = x.Title(sec.Markup)
		case markup.SectionRuler:
			rulers = x.Ruler(sec.Markup)
		case markup.SectionNpcs:
		case markup.SectionBanks:
			warnings = append(warnings, settlement.Warning{
				Code:    settlement.WarnUnimplementedKind,
				Section: string(sec.Name),
				Message: "bank buildings are not extracted",
			})
		default:
			kind, ok := sectionKinds[sec.Name]
			if !ok {
				log.Warn("unhandled section", zap.String("section", string(sec.Name)))
				continue
			}
			x.Buildings(sec.Name, sec.Markup, kind)
		}
	}

	warnings = append(warnings, x.Warnings()...)
	warnings = append(warnings, reg.Resolve()...)

	s := reg.Assemble(title, mapRef, rulers)
	return &Result{
		Settlement: s,
		Content:    Render(s),
		Sections:   sections.Names(),
		Warnings:   warnings,
	}, nil
}

func hasDelimitedSection(sections markup.Sections) bool {
	for _, sec := range sections {
		if sec.Name != markup.SectionMap {
			return true
		}
	}
	return false
}
