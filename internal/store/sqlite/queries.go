package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

type settlementRow struct {
	ID         string `db:"id"`
	Project    string `db:"project"`
	Title      string `db:"title"`
	SourceFile string `db:"source_file"`
	SourceHash string `db:"source_hash"`
	Buildings  int    `db:"buildings"`
	Npcs       int    `db:"npcs"`
	Warnings   int    `db:"warnings"`
	CreatedAt  string `db:"created_at"`
}

func (c *Client) ListSettlements(ctx context.Context, project string) ([]store.SettlementSummary, error) {
	query := `
	SELECT s.id, s.project, s.title, s.source_file, s.source_hash, s.warnings, s.created_at,
		(SELECT COUNT(*) FROM buildings b WHERE b.settlement_id = s.id) AS buildings,
		(SELECT COUNT(*) FROM npcs n WHERE n.settlement_id = s.id) AS npcs
	FROM settlements s
	WHERE (? = '' OR s.project = ?)
	ORDER BY s.title ASC, s.source_file ASC
	`

	var rows []settlementRow
	if err := c.db.SelectContext(ctx, &rows, query, project, project); err != nil {
		return nil, fmt.Errorf("listing settlements: %w", err)
	}

	results := make([]store.SettlementSummary, 0, len(rows))
	for _, row := range rows {
		created, err := time.Parse(time.RFC3339, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", row.ID, err)
		}
		results = append(results, store.SettlementSummary{
			ID:         row.ID,
			Project:    row.Project,
			Title:      row.Title,
			SourceFile: row.SourceFile,
			SourceHash: row.SourceHash,
			Buildings:  row.Buildings,
			Npcs:       row.Npcs,
			Warnings:   row.Warnings,
			CreatedAt:  created,
		})
	}
	return results, nil
}

func (c *Client) ListBuildings(ctx context.Context, settlementID string, kind settlement.Kind) ([]store.BuildingSummary, error) {
	query := `
	SELECT settlement_id, building_id, title, kind, owner
	FROM buildings
	WHERE settlement_id = ?
	  AND (? = '' OR kind = ?)
	ORDER BY building_id ASC
	`

	var rows []struct {
		SettlementID string `db:"settlement_id"`
		BuildingID   int    `db:"building_id"`
		Title        string `db:"title"`
		Kind         string `db:"kind"`
		Owner        string `db:"owner"`
	}
	if err := c.db.SelectContext(ctx, &rows, query, settlementID, string(kind), string(kind)); err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}

	results := make([]store.BuildingSummary, 0, len(rows))
	for _, row := range rows {
		results = append(results, store.BuildingSummary{
			SettlementID: row.SettlementID,
			ID:           settlement.BuildingID(row.BuildingID),
			Title:        row.Title,
			Kind:         settlement.Kind(row.Kind),
			Owner:        row.Owner,
		})
	}
	return results, nil
}

func (c *Client) GetBuilding(ctx context.Context, settlementID string, id settlement.BuildingID) (*store.BuildingRecord, error) {
	var row struct {
		Data    string `db:"data"`
		Content string `db:"content"`
	}
	err := c.db.GetContext(ctx, &row,
		`SELECT data, content FROM buildings WHERE settlement_id = ? AND building_id = ?`,
		settlementID, int(id),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("building %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting building: %w", err)
	}

	b, err := store.DecodeBuilding([]byte(row.Data))
	if err != nil {
		return nil, err
	}
	return &store.BuildingRecord{SettlementID: settlementID, Building: b, Content: row.Content}, nil
}

func (c *Client) GetNpc(ctx context.Context, settlementID string, id settlement.NpcID) (*store.NpcRecord, error) {
	var row struct {
		Data    string `db:"data"`
		Content string `db:"content"`
	}
	err := c.db.GetContext(ctx, &row,
		`SELECT data, content FROM npcs WHERE settlement_id = ? AND npc_id = ?`,
		settlementID, id.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("npc %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting npc: %w", err)
	}

	n, err := store.DecodeNpc([]byte(row.Data))
	if err != nil {
		return nil, err
	}
	return &store.NpcRecord{SettlementID: settlementID, Npc: n, Content: row.Content}, nil
}
