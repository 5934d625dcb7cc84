package store

import (
	"context"
	"errors"

	"settlecraft/internal/settlement"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveSettlement(ctx context.Context, rec SettlementRecord) error
	RemoveStaleSettlements(ctx context.Context, project string, currentSourceFiles []string) (int64, error)
	GetSourceHashes(ctx context.Context, project string) (map[string]string, error)

	ListSettlements(ctx context.Context, project string) ([]SettlementSummary, error)
	ListBuildings(ctx context.Context, settlementID string, kind settlement.Kind) ([]BuildingSummary, error)
	GetBuilding(ctx context.Context, settlementID string, id settlement.BuildingID) (*BuildingRecord, error)
	GetNpc(ctx context.Context, settlementID string, id settlement.NpcID) (*NpcRecord, error)
	SearchNpcs(ctx context.Context, query, settlementID string) ([]SearchResult, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
