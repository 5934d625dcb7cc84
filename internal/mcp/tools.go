package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

type ListSettlementsInput struct {
	Project string `json:"project,omitempty" jsonschema:"project name, defaults to the served project"`
}

type ListBuildingsInput struct {
	Settlement string `json:"settlement" jsonschema:"settlement id"`
	Kind       string `json:"kind,omitempty" jsonschema:"house, merchant, guardhouse, church or guild"`
}

type GetBuildingInput struct {
	Settlement string `json:"settlement" jsonschema:"settlement id"`
	Building   int    `json:"building" jsonschema:"building number from the map"`
}

type GetNpcInput struct {
	Settlement string `json:"settlement" jsonschema:"settlement id"`
	Npc        string `json:"npc" jsonschema:"npc id, e.g. 17 or L3"`
}

type SearchNpcsInput struct {
	Query      string `json:"query" jsonschema:"search terms"`
	Settlement string `json:"settlement,omitempty" jsonschema:"restrict to one settlement"`
}

type SettlementOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	SourceFile string `json:"source_file"`
	Buildings  int    `json:"buildings"`
	Npcs       int    `json:"npcs"`
	Warnings   int    `json:"warnings"`
}

type ListSettlementsOutput struct {
	Settlements []SettlementOutput `json:"settlements"`
}

type BuildingSummaryOutput struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
	Owner string `json:"owner,omitempty"`
}

type ListBuildingsOutput struct {
	Buildings []BuildingSummaryOutput `json:"buildings"`
}

type ProductOutput struct {
	Item  string `json:"item"`
	Cost  string `json:"cost"`
	Stock string `json:"stock"`
}

type SpellOutput struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

type BuildingOutput struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Kind      string          `json:"kind"`
	Info      string          `json:"info,omitempty"`
	Owner     string          `json:"owner,omitempty"`
	Family    []string        `json:"family"`
	Occupants []string        `json:"occupants,omitempty"`
	Products  []ProductOutput `json:"products,omitempty"`
	Spells    []SpellOutput   `json:"spells,omitempty"`
	Content   string          `json:"content"`
}

type NpcOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Profession  string   `json:"profession,omitempty"`
	HeightCm    int      `json:"height_cm,omitempty"`
	WeightKg    int      `json:"weight_kg,omitempty"`
	Clothing    []string `json:"clothing"`
	Possessions []string `json:"possessions"`
	Description string   `json:"description"`
	Spouse      string   `json:"spouse,omitempty"`
	Children    []string `json:"children"`
	Building    int      `json:"building,omitempty"`
	Content     string   `json:"content"`
}

type SearchResultOutput struct {
	Settlement string  `json:"settlement"`
	Npc        string  `json:"npc"`
	Name       string  `json:"name"`
	Profession string  `json:"profession,omitempty"`
	Building   int     `json:"building,omitempty"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet"`
}

type SearchNpcsOutput struct {
	Results []SearchResultOutput `json:"results"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_settlements",
		Description: "List published settlements",
	}, logged(s.log, "list_settlements", s.handleListSettlements))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_buildings",
		Description: "List the buildings of a settlement",
	}, logged(s.log, "list_buildings", s.handleListBuildings))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_building",
		Description: "Retrieve a building with its people, wares and rendered content",
	}, logged(s.log, "get_building", s.handleGetBuilding))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_npc",
		Description: "Retrieve an NPC and their family links",
	}, logged(s.log, "get_npc", s.handleGetNpc))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_npcs",
		Description: "Full-text search over NPC names, professions and descriptions",
	}, logged(s.log, "search_npcs", s.handleSearchNpcs))
}

func logged[In, Out any](log *zap.Logger, tool string, h sdk.ToolHandlerFor[In, Out]) sdk.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *sdk.CallToolRequest, input In) (*sdk.CallToolResult, Out, error) {
		res, out, err := h(ctx, req, input)
		if err != nil {
			log.Warn("tool call failed", zap.String("tool", tool), zap.Error(err))
		} else {
			log.Debug("tool call", zap.String("tool", tool))
		}
		return res, out, err
	}
}

func (s *Server) handleListSettlements(ctx context.Context, req *sdk.CallToolRequest, input ListSettlementsInput) (*sdk.CallToolResult, ListSettlementsOutput, error) {
	project := input.Project
	if project == "" {
		project = s.project
	}
	items, err := s.db.ListSettlements(ctx, project)
	if err != nil {
		return nil, ListSettlementsOutput{}, err
	}

	output := make([]SettlementOutput, 0, len(items))
	for _, item := range items {
		output = append(output, SettlementOutput{
			ID:         item.ID,
			Title:      item.Title,
			SourceFile: item.SourceFile,
			Buildings:  item.Buildings,
			Npcs:       item.Npcs,
			Warnings:   item.Warnings,
		})
	}
	return nil, ListSettlementsOutput{Settlements: output}, nil
}

func (s *Server) handleListBuildings(ctx context.Context, req *sdk.CallToolRequest, input ListBuildingsInput) (*sdk.CallToolResult, ListBuildingsOutput, error) {
	if input.Settlement == "" {
		return nil, ListBuildingsOutput{}, fmt.Errorf("settlement is required")
	}
	var kind settlement.Kind
	if input.Kind != "" {
		parsed, err := settlement.ParseKind(input.Kind)
		if err != nil {
			return nil, ListBuildingsOutput{}, err
		}
		kind = parsed
	}
	items, err := s.db.ListBuildings(ctx, input.Settlement, kind)
	if err != nil {
		return nil, ListBuildingsOutput{}, err
	}

	output := make([]BuildingSummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, BuildingSummaryOutput{
			ID:    int(item.ID),
			Title: item.Title,
			Kind:  string(item.Kind),
			Owner: item.Owner,
		})
	}
	return nil, ListBuildingsOutput{Buildings: output}, nil
}

func (s *Server) handleGetBuilding(ctx context.Context, req *sdk.CallToolRequest, input GetBuildingInput) (*sdk.CallToolResult, BuildingOutput, error) {
	if input.Settlement == "" {
		return nil, BuildingOutput{}, fmt.Errorf("settlement is required")
	}
	rec, err := s.db.GetBuilding(ctx, input.Settlement, settlement.BuildingID(input.Building))
	if errors.Is(err, store.ErrNotFound) {
		return nil, BuildingOutput{}, fmt.Errorf("building %d not found", input.Building)
	}
	if err != nil {
		return nil, BuildingOutput{}, err
	}
	return nil, buildingOutputFromRecord(rec), nil
}

func (s *Server) handleGetNpc(ctx context.Context, req *sdk.CallToolRequest, input GetNpcInput) (*sdk.CallToolResult, NpcOutput, error) {
	if input.Settlement == "" {
		return nil, NpcOutput{}, fmt.Errorf("settlement is required")
	}
	id, err := settlement.ParseNpcID(input.Npc)
	if err != nil {
		return nil, NpcOutput{}, err
	}
	rec, err := s.db.GetNpc(ctx, input.Settlement, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NpcOutput{}, fmt.Errorf("npc %s not found", id)
	}
	if err != nil {
		return nil, NpcOutput{}, err
	}
	return nil, npcOutputFromRecord(rec), nil
}

func (s *Server) handleSearchNpcs(ctx context.Context, req *sdk.CallToolRequest, input SearchNpcsInput) (*sdk.CallToolResult, SearchNpcsOutput, error) {
	if input.Query == "" {
		return nil, SearchNpcsOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.db.SearchNpcs(ctx, input.Query, input.Settlement)
	if err != nil {
		return nil, SearchNpcsOutput{}, err
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, result := range results {
		out := SearchResultOutput{
			Settlement: result.SettlementID,
			Npc:        result.NpcID.String(),
			Name:       result.Name,
			Profession: result.Profession,
			Score:      result.Score,
			Snippet:    result.Snippet,
		}
		if result.Building != nil {
			out.Building = int(*result.Building)
		}
		output = append(output, out)
	}
	return nil, SearchNpcsOutput{Results: output}, nil
}

func buildingOutputFromRecord(rec *store.BuildingRecord) BuildingOutput {
	b := rec.Building
	out := BuildingOutput{
		ID:        int(b.ID),
		Title:     b.Title,
		Kind:      string(b.Kind),
		Info:      b.Info,
		Family:    idStrings(b.Family),
		Occupants: idStrings(b.Occupants),
		Content:   rec.Content,
	}
	if b.Owner != nil {
		out.Owner = b.Owner.String()
	}
	for _, p := range b.Products {
		out.Products = append(out.Products, ProductOutput{Item: p.Item, Cost: p.Cost, Stock: p.Stock})
	}
	for _, sp := range b.Spells {
		out.Spells = append(out.Spells, SpellOutput{Name: sp.Name, Cost: sp.Cost})
	}
	return out
}

func npcOutputFromRecord(rec *store.NpcRecord) NpcOutput {
	n := rec.Npc
	out := NpcOutput{
		ID:          n.ID.String(),
		Name:        n.Name,
		Role:        string(n.Role),
		Profession:  n.Profession,
		Clothing:    append([]string{}, n.Clothing...),
		Possessions: append([]string{}, n.Possessions...),
		Description: n.Description,
		Children:    idStrings(n.Children),
		Content:     rec.Content,
	}
	if n.ProfessionInfo != "" {
		out.Profession += " [" + n.ProfessionInfo + "]"
	}
	if n.HeightCm != nil {
		out.HeightCm = *n.HeightCm
	}
	if n.WeightKg != nil {
		out.WeightKg = *n.WeightKg
	}
	if n.Spouse != nil {
		out.Spouse = n.Spouse.String()
	}
	if n.Building != nil {
		out.Building = int(*n.Building)
	}
	return out
}

func idStrings(ids []settlement.NpcID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
