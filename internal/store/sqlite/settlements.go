package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"settlecraft/internal/store"
)

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

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSettlements(ctx, tx, `SELECT id FROM settlements WHERE project = ? AND source_file = ?`, rec.Project, rec.SourceFile); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO settlements (id, project, title, source_file, source_hash, map, rulers, empty_buildings, warnings, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Project,
		s.Title,
		rec.SourceFile,
		rec.SourceHash,
		string(mapJSON),
		string(rulersJSON),
		string(emptyJSON),
		rec.Warnings,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting settlement: %w", err)
	}

	buildingStmt, err := tx.PreparexContext(ctx, `
	INSERT INTO buildings (settlement_id, building_id, title, kind, owner, data, content)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing building insert: %w", err)
	}
	defer buildingStmt.Close()
	for _, b := range buildings {
		if _, err := buildingStmt.ExecContext(ctx, rec.ID, b.BuildingID, b.Title, b.Kind, b.Owner, string(b.Data), b.Content); err != nil {
			return fmt.Errorf("inserting building %d: %w", b.BuildingID, err)
		}
	}

	npcStmt, err := tx.PreparexContext(ctx, `
	INSERT INTO npcs (settlement_id, npc_id, name, role, profession, description, building_id, data, content)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing npc insert: %w", err)
	}
	defer npcStmt.Close()
	for _, n := range npcs {
		if _, err := npcStmt.ExecContext(ctx, rec.ID, n.NpcID, n.Name, n.Role, n.Profession, n.Description, n.BuildingID, string(n.Data), n.Content); err != nil {
			return fmt.Errorf("inserting npc %s: %w", n.NpcID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settlement: %w", err)
	}
	return nil
}

func (c *Client) RemoveStaleSettlements(ctx context.Context, project string, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM settlements WHERE project = ? AND source_file NOT IN (?)`, project, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("building stale query: %w", err)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var ids []string
	if err := tx.SelectContext(ctx, &ids, tx.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("finding stale settlements: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := deleteByIDs(ctx, tx, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing stale removal: %w", err)
	}
	return int64(len(ids)), nil
}

func (c *Client) GetSourceHashes(ctx context.Context, project string) (map[string]string, error) {
	var rows []struct {
		SourceFile string `db:"source_file"`
		SourceHash string `db:"source_hash"`
	}
	err := c.db.SelectContext(ctx, &rows, `SELECT source_file, source_hash FROM settlements WHERE project = ?`, project)
	if err != nil {
		return nil, fmt.Errorf("query source hashes: %w", err)
	}

	hashes := make(map[string]string, len(rows))
	for _, row := range rows {
		hashes[row.SourceFile] = row.SourceHash
	}
	return hashes, nil
}

func deleteSettlements(ctx context.Context, tx *sqlx.Tx, selectIDs string, args ...any) error {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, selectIDs, args...); err != nil {
		return fmt.Errorf("finding settlements to replace: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	return deleteByIDs(ctx, tx, ids)
}

func deleteByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	for _, table := range []string{"npcs", "buildings"} {
		query, args, err := sqlx.In(`DELETE FROM `+table+` WHERE settlement_id IN (?)`, ids)
		if err != nil {
			return fmt.Errorf("building delete for %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("deleting %s: %w", table, err)
		}
	}
	query, args, err := sqlx.In(`DELETE FROM settlements WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("building settlement delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("deleting settlements: %w", err)
	}
	return nil
}
