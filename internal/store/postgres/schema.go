package postgres

import (
	"context"
	"fmt"
)

const ddl = `
CREATE TABLE IF NOT EXISTS settlements (
    id              UUID PRIMARY KEY,
    project         TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    source_file     TEXT NOT NULL,
    source_hash     TEXT NOT NULL DEFAULT '',
    map             JSONB NOT NULL DEFAULT '{}',
    rulers          JSONB NOT NULL DEFAULT '{}',
    empty_buildings JSONB NOT NULL DEFAULT '[]',
    warnings        INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_settlement_source UNIQUE (project, source_file)
);

CREATE TABLE IF NOT EXISTS buildings (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    settlement_id UUID NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
    building_id   INTEGER NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    kind          TEXT NOT NULL,
    owner         TEXT NOT NULL DEFAULT '',
    data          JSONB NOT NULL,
    content       TEXT NOT NULL DEFAULT '',
    CONSTRAINT uq_building UNIQUE (settlement_id, building_id)
);

CREATE TABLE IF NOT EXISTS npcs (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    settlement_id UUID NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
    npc_id        TEXT NOT NULL,
    name          TEXT NOT NULL,
    role          TEXT NOT NULL,
    profession    TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    building_id   INTEGER,
    data          JSONB NOT NULL,
    content       TEXT NOT NULL DEFAULT '',
    search_vector TSVECTOR,
    CONSTRAINT uq_npc UNIQUE (settlement_id, npc_id)
);

CREATE INDEX IF NOT EXISTS idx_settlements_project ON settlements (project);
CREATE INDEX IF NOT EXISTS idx_buildings_settlement ON buildings (settlement_id);
CREATE INDEX IF NOT EXISTS idx_buildings_kind ON buildings (settlement_id, kind);
CREATE INDEX IF NOT EXISTS idx_npcs_settlement ON npcs (settlement_id);
CREATE INDEX IF NOT EXISTS idx_npcs_building ON npcs (settlement_id, building_id);
CREATE INDEX IF NOT EXISTS idx_npcs_search ON npcs USING GIN (search_vector);
`

// EnsureSchema runs the whole DDL in one call, which PostgreSQL executes
// in an implicit transaction.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
