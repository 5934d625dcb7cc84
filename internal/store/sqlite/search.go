package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

func (c *Client) SearchNpcs(ctx context.Context, query, settlementID string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	ftsQuery := convertWebsearchToFTS5(query)

	sqlQuery := `
	SELECT n.settlement_id, n.npc_id, n.name, n.profession, n.building_id,
		   -bm25(npcs_fts, 10.0, 4.0, 1.0) AS score,
		   snippet(npcs_fts, 2, '**', '**', '...', 20) AS snippet
	FROM npcs_fts
	JOIN npcs n ON npcs_fts.rowid = n.id
	WHERE npcs_fts MATCH ?
	  AND (? = '' OR n.settlement_id = ?)
	ORDER BY score DESC, n.name ASC
	LIMIT 50
	`

	var rows []struct {
		SettlementID string        `db:"settlement_id"`
		NpcID        string        `db:"npc_id"`
		Name         string        `db:"name"`
		Profession   string        `db:"profession"`
		BuildingID   sql.NullInt64 `db:"building_id"`
		Score        float64       `db:"score"`
		Snippet      string        `db:"snippet"`
	}
	if err := c.db.SelectContext(ctx, &rows, sqlQuery, ftsQuery, settlementID, settlementID); err != nil {
		return nil, fmt.Errorf("searching npcs: %w", err)
	}

	results := make([]store.SearchResult, 0, len(rows))
	for _, row := range rows {
		id, err := settlement.ParseNpcID(row.NpcID)
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r := store.SearchResult{
			SettlementID: row.SettlementID,
			NpcID:        id,
			Name:         row.Name,
			Profession:   row.Profession,
			Score:        row.Score,
			Snippet:      row.Snippet,
		}
		if row.BuildingID.Valid {
			b := settlement.BuildingID(row.BuildingID.Int64)
			r.Building = &b
		}
		results = append(results, r)
	}

	return results, nil
}

func convertWebsearchToFTS5(query string) string {
	var result strings.Builder
	var inQuote bool
	var current strings.Builder

	flushToken := func() {
		token := current.String()
		current.Reset()
		if token == "" {
			return
		}

		upper := strings.ToUpper(token)
		switch upper {
		case "AND", "OR", "NOT":
			if result.Len() > 0 {
				result.WriteString(" ")
			}
			result.WriteString(upper)
			return
		}

		if result.Len() > 0 {
			lastWord := lastWord(result.String())
			if lastWord != "AND" && lastWord != "OR" && lastWord != "NOT" && lastWord != "" {
				result.WriteString(" AND ")
			} else {
				result.WriteString(" ")
			}
		}

		if strings.HasPrefix(token, "-") && len(token) > 1 {
			result.WriteString("NOT ")
			token = token[1:]
		}
		result.WriteString(token)
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '"':
			if inQuote {
				inQuote = false
				token := current.String()
				current.Reset()
				if token != "" {
					if result.Len() > 0 {
						result.WriteString(" AND ")
					}
					result.WriteString(`"`)
					result.WriteString(token)
					result.WriteString(`"`)
				}
			} else {
				flushToken()
				inQuote = true
			}
		case inQuote:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t':
			flushToken()
		default:
			current.WriteByte(ch)
		}
	}

	flushToken()

	return result.String()
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
