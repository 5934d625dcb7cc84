package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"settlecraft/internal/store"
)

const insertNpc = `
INSERT INTO npcs (settlement_id, npc_id, name, role, profession, description, building_id, data, content, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
    setweight(to_tsvector('simple', coalesce($3, '')), 'A') ||
    setweight(to_tsvector('english', coalesce($5, '')), 'B') ||
    setweight(to_tsvector('english', coalesce($6, '')), 'C')
)
`

func (c *Client) SaveSettlement(ctx context.Context, rec store.SettlementRecord) error {
	if err := store.ValidateRecord(rec); err != nil {
		return fmt.Errorf("saving settlement: %w", err)
	}
	buildings, npcs, err := store.Flatten(rec)
	if err != nil {
		return fmt.Errorf("saving settlement: %w", err)
	}

	s := rec.Settlement
	mapJSON, err := json.Marshal(s.Map)
	if err != nil {
		return fmt.Errorf("marshaling map: %w", err)
	}
	rulersJSON, err := json.Marshal(s.Rulers)
	if err != nil {
		return fmt.Errorf("marshaling rulers: %w", err)
	}
	emptyJSON, err := json.Marshal(s.EmptyBuildings)
	if err != nil {
		return fmt.Errorf("marshaling empty buildings: %w", err)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM settlements WHERE project = $1 AND source_file = $2`, rec.Project, rec.SourceFile)
	batch.Queue(`
INSERT INTO settlements (id, project, title, source_file, source_hash, map, rulers, empty_buildings, warnings)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, rec.ID, rec.Project, s.Title, rec.SourceFile, rec.SourceHash, mapJSON, rulersJSON, emptyJSON, rec.Warnings)
	for _, b := range buildings {
		batch.Queue(`
INSERT INTO buildings (settlement_id, building_id, title, kind, owner, data, content)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, rec.ID, b.BuildingID, b.Title, b.Kind, b.Owner, b.Data, b.Content)
	}
	for _, n := range npcs {
		batch.Queue(insertNpc, rec.ID, n.NpcID, n.Name, n.Role, n.Profession, n.Description, n.BuildingID, n.Data, n.Content)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("saving settlement statement %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing settlement: %w", err)
	}
	return nil
}

func (c *Client) RemoveStaleSettlements(ctx context.Context, project string, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	tag, err := c.pool.Exec(ctx, `
DELETE FROM settlements
WHERE project = $1
  AND NOT (source_file = ANY($2))
`, project, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale settlements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) GetSourceHashes(ctx context.Context, project string) (map[string]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT source_file, source_hash FROM settlements WHERE project = $1`, project)
	if err != nil {
		return nil, fmt.Errorf("query source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, sourceHash string
		if err := rows.Scan(&sourceFile, &sourceHash); err != nil {
			return nil, fmt.Errorf("scanning source hash: %w", err)
		}
		hashes[sourceFile] = sourceHash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source hashes: %w", err)
	}

	return hashes, nil
}
