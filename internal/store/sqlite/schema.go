package sqlite

import (
	"context"
	"fmt"
	"strings"
)

const ddl = `
CREATE TABLE IF NOT EXISTS settlements (
	id              TEXT PRIMARY KEY,
	project         TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	source_file     TEXT NOT NULL,
	source_hash     TEXT NOT NULL DEFAULT '',
	map             TEXT NOT NULL DEFAULT '{}',
	rulers          TEXT NOT NULL DEFAULT '{}',
	empty_buildings TEXT NOT NULL DEFAULT '[]',
	warnings        INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL,
	CONSTRAINT uq_settlement_source UNIQUE (project, source_file)
);

CREATE TABLE IF NOT EXISTS buildings (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	settlement_id TEXT NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
	building_id   INTEGER NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	kind          TEXT NOT NULL,
	owner         TEXT NOT NULL DEFAULT '',
	data          TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	CONSTRAINT uq_building UNIQUE (settlement_id, building_id)
);

CREATE TABLE IF NOT EXISTS npcs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	settlement_id TEXT NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
	npc_id        TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL,
	profession    TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	building_id   INTEGER,
	data          TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	CONSTRAINT uq_npc UNIQUE (settlement_id, npc_id)
);

CREATE INDEX IF NOT EXISTS idx_settlements_project ON settlements (project);
CREATE INDEX IF NOT EXISTS idx_buildings_settlement ON buildings (settlement_id);
CREATE INDEX IF NOT EXISTS idx_buildings_kind ON buildings (settlement_id, kind);
CREATE INDEX IF NOT EXISTS idx_npcs_settlement ON npcs (settlement_id);
CREATE INDEX IF NOT EXISTS idx_npcs_building ON npcs (settlement_id, building_id);

CREATE VIRTUAL TABLE IF NOT EXISTS npcs_fts USING fts5(
	name,
	profession,
	description,
	content=npcs,
	content_rowid=id
);

CREATE TRIGGER IF NOT EXISTS npcs_ai AFTER INSERT ON npcs BEGIN
	INSERT INTO npcs_fts(rowid, name, profession, description)
	VALUES (new.id, new.name, new.profession, new.description);
END;

CREATE TRIGGER IF NOT EXISTS npcs_ad AFTER DELETE ON npcs BEGIN
	INSERT INTO npcs_fts(npcs_fts, rowid, name, profession, description)
	VALUES ('delete', old.id, old.name, old.profession, old.description);
END;

CREATE TRIGGER IF NOT EXISTS npcs_au AFTER UPDATE ON npcs BEGIN
	INSERT INTO npcs_fts(npcs_fts, rowid, name, profession, description)
	VALUES ('delete', old.id, old.name, old.profession, old.description);
	INSERT INTO npcs_fts(rowid, name, profession, description)
	VALUES (new.id, new.name, new.profession, new.description);
END;
`

func (c *Client) EnsureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// splitStatements splits ddl on lines ending in a semicolon. Trigger bodies
// are kept whole because their inner statements are indented and followed
// by END.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	inTrigger := false

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(stripped), "CREATE TRIGGER") {
			inTrigger = true
		}
		current.WriteString(line)
		current.WriteString("\n")

		if !strings.HasSuffix(stripped, ";") {
			continue
		}
		if inTrigger && !strings.EqualFold(stripped, "END;") {
			continue
		}
		inTrigger = false
		statements = append(statements, current.String())
		current.Reset()
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
