// Package services contains the business logic behind the HTTP handlers.
// Services own persistence and the staging lifecycle; handlers only bind,
// delegate and render.
package services

import (
	"context"

	"scripfolio/internal/ledger"
	"scripfolio/internal/models"
	"scripfolio/internal/pagination"
	"scripfolio/internal/staging"
)

// Ingestion is the two-phase import pipeline: preview parses and stages,
// commit persists, discard throws away.
type Ingestion interface {
	Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error)
	Commit(ctx context.Context, stagingID string) (*CommitResult, error)
	Discard(ctx context.Context, stagingID string) error
	Progress(ctx context.Context, correlationID string) (staging.Progress, error)
}

// Reports derives read models from committed data. Holdings are always
// computed by replay, never read from a stored table.
type Reports interface {
	FYList(ctx context.Context) ([]string, error)
	Dashboard(ctx context.Context, fy string) (*Dashboard, error)
	Summary(ctx context.Context) (*Summary, error)
	Realized(ctx context.Context, fy string, page pagination.PageRequest) (pagination.PageResponse[models.RealizedTrade], error)
	Unmatched(ctx context.Context, fy string) ([]models.UnmatchedSell, error)
	Holdings(ctx context.Context) ([]ledger.Holding, error)
}

// Aliases manages the symbol-to-quote-ticker mapping.
type Aliases interface {
	List(ctx context.Context) ([]models.SymbolAlias, error)
	Upsert(ctx context.Context, pairs map[string]string) (int, error)
	Map(ctx context.Context) (map[string]string, error)
}

// Splits manages split events. Events are applied at replay time only,
// so any change here reshapes ledger output on the next commit.
type Splits interface {
	List(ctx context.Context) ([]models.SplitEvent, error)
	Create(ctx context.Context, event models.SplitEvent) (*models.SplitEvent, error)
	Delete(ctx context.Context, id uint) error
}

// PriceLookup supplies last traded prices for dashboard valuation.
type PriceLookup interface {
	Prices(ctx context.Context, symbols []string, aliases map[string]string) (map[string]float64, []string, error)
}
