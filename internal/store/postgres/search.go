package postgres

import (
	"context"
	"fmt"
	"strings"

	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

func (c *Client) SearchNpcs(ctx context.Context, query, settlementID string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	sql := `
SELECT settlement_id::text, npc_id, name, profession, building_id,
    ts_rank(search_vector, websearch_to_tsquery('english', $1)) AS score,
    CASE WHEN description <> '' THEN
        ts_headline('english', description, websearch_to_tsquery('english', $1),
            'MaxFragments=1, MaxWords=20, MinWords=5, StartSel=**, StopSel=**')
    ELSE '' END AS snippet
FROM npcs
WHERE search_vector @@ websearch_to_tsquery('english', $1)
  AND ($2 = '' OR settlement_id::text = $2)
ORDER BY score DESC, name ASC
LIMIT 50
`

	rows, err := c.pool.Query(ctx, sql, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("searching npcs: %w", err)
	}
	defer rows.Close()

	results := make([]store.SearchResult, 0)
	for rows.Next() {
		var r store.SearchResult
		var npcID string
		var building *int32
		var score float32
		if err := rows.Scan(&r.SettlementID, &npcID, &r.Name, &r.Profession, &building, &score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		id, err := settlement.ParseNpcID(npcID)
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.NpcID = id
		r.Score = float64(score)
		if building != nil {
			b := settlement.BuildingID(*building)
			r.Building = &b
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}
