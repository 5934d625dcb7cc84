package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

func (c *Client) ListSettlements(ctx context.Context, project string) ([]store.SettlementSummary, error) {
	query := `
SELECT s.id::text, s.project, s.title, s.source_file, s.source_hash, s.warnings, s.created_at,
    (SELECT COUNT(*) FROM buildings b WHERE b.settlement_id = s.id) AS buildings,
    (SELECT COUNT(*) FROM npcs n WHERE n.settlement_id = s.id) AS npcs
FROM settlements s
WHERE ($1 = '' OR s.project = $1)
ORDER BY s.title ASC, s.source_file ASC
`

	rows, err := c.pool.Query(ctx, query, project)
	if err != nil {
		return nil, fmt.Errorf("listing settlements: %w", err)
	}
	defer rows.Close()

	results := make([]store.SettlementSummary, 0)
	for rows.Next() {
		var r store.SettlementSummary
		var buildings, npcs int64
		err := rows.Scan(&r.ID, &r.Project, &r.Title, &r.SourceFile, &r.SourceHash, &r.Warnings, &r.CreatedAt, &buildings, &npcs)
		if err != nil {
			return nil, fmt.Errorf("scanning settlement: %w", err)
		}
		r.Buildings = int(buildings)
		r.Npcs = int(npcs)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating settlements: %w", err)
	}

	return results, nil
}

func (c *Client) ListBuildings(ctx context.Context, settlementID string, kind settlement.Kind) ([]store.BuildingSummary, error) {
	query := `
SELECT building_id, title, kind, owner
FROM buildings
WHERE settlement_id = $1
  AND ($2 = '' OR kind = $2)
ORDER BY building_id ASC
`

	rows, err := c.pool.Query(ctx, query, settlementID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}
	defer rows.Close()

	results := make([]store.BuildingSummary, 0)
	for rows.Next() {
		r := store.BuildingSummary{SettlementID: settlementID}
		var id int32
		var k string
		if err := rows.Scan(&id, &r.Title, &k, &r.Owner); err != nil {
			return nil, fmt.Errorf("scanning building: %w", err)
		}
		r.ID = settlement.BuildingID(id)
		r.Kind = settlement.Kind(k)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buildings: %w", err)
	}

	return results, nil
}

func (c *Client) GetBuilding(ctx context.Context, settlementID string, id settlement.BuildingID) (*store.BuildingRecord, error) {
	var data []byte
	var content string
	err := c.pool.QueryRow(ctx,
		`SELECT data, content FROM buildings WHERE settlement_id = $1 AND building_id = $2`,
		settlementID, int(id),
	).Scan(&data, &content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("building %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting building: %w", err)
	}

	b, err := store.DecodeBuilding(data)
	if err != nil {
		return nil, err
	}
	return &store.BuildingRecord{SettlementID: settlementID, Building: b, Content: content}, nil
}

func (c *Client) GetNpc(ctx context.Context, settlementID string, id settlement.NpcID) (*store.NpcRecord, error) {
	var data []byte
	var content string
	err := c.pool.QueryRow(ctx,
		`SELECT data, content FROM npcs WHERE settlement_id = $1 AND npc_id = $2`,
		settlementID, id.String(),
	).Scan(&data, &content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("npc %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting npc: %w", err)
	}

	n, err := store.DecodeNpc(data)
	if err != nil {
		return nil, err
	}
	return &store.NpcRecord{SettlementID: settlementID, Npc: n, Content: content}, nil
}
