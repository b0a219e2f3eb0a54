package interfaces

import (
	"context"

	"twstock-observer/src/models"
)

// -----------------------------------------------------------------------------
// IPriceSource interface for fetching daily price data from external providers.
// -----------------------------------------------------------------------------

type IPriceSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchDailyBars retrieves the raw daily chart table for one fully
	// qualified symbol (code plus market suffix) over [start, end].
	// Dates are YYYY-MM-DD. The table is returned as fetched; callers run
	// it through the normalizer.
	FetchDailyBars(ctx context.Context, symbol, start, end string) (*models.MRawPriceTable, error)
}

// -----------------------------------------------------------------------------
// IChipSource interface for institutional-investor (chip) data.
// -----------------------------------------------------------------------------

type IChipSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchInstitutionalFlows retrieves raw per-institution buy/sell rows
	// for a bare numeric stock code over [start, end].
	FetchInstitutionalFlows(ctx context.Context, stockID, start, end string) ([]models.MChipRecord, error)

	// -----------------------------------------------------------------------------

	// FetchStockName resolves the display name for a stock code.
	// Best effort: failures degrade to the bare code at the call site.
	FetchStockName(ctx context.Context, stockID string) (string, error)
}
