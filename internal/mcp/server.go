package mcp

import (
	"context"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

// Querier is the read side of store.Store.
type Querier interface {
	ListSettlements(ctx context.Context, project string) ([]store.SettlementSummary, error)
	ListBuildings(ctx context.Context, settlementID string, kind settlement.Kind) ([]store.BuildingSummary, error)
	GetBuilding(ctx context.Context, settlementID string, id settlement.BuildingID) (*store.BuildingRecord, error)
	GetNpc(ctx context.Context, settlementID string, id settlement.NpcID) (*store.NpcRecord, error)
	SearchNpcs(ctx context.Context, query, settlementID string) ([]store.SearchResult, error)
}

type Server struct {
	project string
	db      Querier
	log     *zap.Logger
	mcp     *sdk.Server
}

// NewServer registers the settlement tools. project scopes list_settlements
// when the caller does not name one. A nil log discards tool logging.
func NewServer(project string, db Querier, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		project: project,
		db:      db,
		log:     log,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "settlecraft",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

func (s *Server) HTTPHandler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.mcp
	}, nil)
}
