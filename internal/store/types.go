package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"settlecraft/internal/settlement"
)

// SettlementRecord is one converted document ready to be published. Saving
// a record replaces any settlement previously stored for the same project
// and source file.
type SettlementRecord struct {
	ID         string
	Project    string
	SourceFile string
	SourceHash string
	Settlement *settlement.Settlement
	Content    settlement.Content
	Warnings   int
}

type SettlementSummary struct {
	ID         string    `json:"id"`
	Project    string    `json:"project"`
	Title      string    `json:"title"`
	SourceFile string    `json:"source_file"`
	SourceHash string    `json:"source_hash"`
	Buildings  int       `json:"buildings"`
	Npcs       int       `json:"npcs"`
	Warnings   int       `json:"warnings"`
	CreatedAt  time.Time `json:"created_at"`
}

type BuildingSummary struct {
	SettlementID string                `json:"settlement_id"`
	ID           settlement.BuildingID `json:"id"`
	Title        string                `json:"title"`
	Kind         settlement.Kind       `json:"kind"`
	Owner        string                `json:"owner,omitempty"`
}

type BuildingRecord struct {
	SettlementID string              `json:"settlement_id"`
	Building     settlement.Building `json:"building"`
	Content      string              `json:"content"`
}

type NpcRecord struct {
	SettlementID string         `json:"settlement_id"`
	Npc          settlement.Npc `json:"npc"`
	Content      string         `json:"content"`
}

type SearchResult struct {
	SettlementID string                 `json:"settlement_id"`
	NpcID        settlement.NpcID       `json:"npc_id"`
	Name         string                 `json:"name"`
	Profession   string                 `json:"profession,omitempty"`
	Building     *settlement.BuildingID `json:"building,omitempty"`
	Score        float64                `json:"score"`
	Snippet      string                 `json:"snippet"`
}

type BuildingRow struct {
	BuildingID int
	Title      string
	Kind       string
	Owner      string
	Data       []byte
	Content    string
}

type NpcRow struct {
	NpcID       string
	Name        string
	Role        string
	Profession  string
	Description string
	BuildingID  *int
	Data        []byte
	Content     string
}

func NewSettlementID() string {
	return uuid.NewString()
}

func ValidateRecord(rec SettlementRecord) error {
	if _, err := uuid.Parse(rec.ID); err != nil {
		return fmt.Errorf("invalid settlement id %q: %w", rec.ID, err)
	}
	if strings.TrimSpace(rec.Project) == "" {
		return fmt.Errorf("project is required")
	}
	if strings.TrimSpace(rec.SourceFile) == "" {
		return fmt.Errorf("source file is required")
	}
	if rec.Settlement == nil {
		return fmt.Errorf("settlement is required")
	}
	return nil
}

// Flatten encodes the buildings and NPCs of rec in id order.
func Flatten(rec SettlementRecord) ([]BuildingRow, []NpcRow, error) {
	s := rec.Settlement

	buildings := make([]BuildingRow, 0, len(s.Buildings))
	for _, id := range s.BuildingIDs() {
		b := s.Buildings[id]
		data, err := json.Marshal(b)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling building %s: %w", id, err)
		}
		row := BuildingRow{
			BuildingID: int(id),
			Title:      b.Title,
			Kind:       string(b.Kind),
			Data:       data,
			Content:    rec.Content.Buildings[id],
		}
		if b.Owner != nil {
			if owner, ok := s.Npcs[*b.Owner]; ok {
				row.Owner = owner.Name
			}
		}
		buildings = append(buildings, row)
	}

	npcs := make([]NpcRow, 0, len(s.Npcs))
	for _, id := range s.NpcIDs() {
		n := s.Npcs[id]
		data, err := json.Marshal(n)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling npc %s: %w", id, err)
		}
		row := NpcRow{
			NpcID:       id.String(),
			Name:        n.Name,
			Role:        string(n.Role),
			Profession:  n.Profession,
			Description: n.Description,
			Data:        data,
			Content:     rec.Content.Npcs[id],
		}
		if n.Building != nil {
			b := int(*n.Building)
			row.BuildingID = &b
		}
		npcs = append(npcs, row)
	}
	return buildings, npcs, nil
}

func DecodeBuilding(data []byte) (settlement.Building, error) {
	var b settlement.Building
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("unmarshaling building: %w", err)
	}
	return b, nil
}

func DecodeNpc(data []byte) (settlement.Npc, error) {
	var n settlement.Npc
	if err := json.Unmarshal(data, &n); err != nil {
		return n, fmt.Errorf("unmarshaling npc: %w", err)
	}
	return n, nil
}
