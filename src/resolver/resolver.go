package resolver

import (
	"context"
	"fmt"
	"strings"

	"twstock-observer/src/helpers"
	"twstock-observer/src/interfaces"
	"twstock-observer/src/logger"
	"twstock-observer/src/models"
)

// Suffix candidates in fixed priority order: the TWSE listed market wins
// ties because it is tried first and the trial short-circuits.
var suffixCandidates = []string{".TW", ".TWO"}

// -----------------------------------------------------------------------------

type TickerResolver struct {
	Source interfaces.IPriceSource
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTickerResolver(cfg *models.MConfig, source interfaces.IPriceSource) *TickerResolver {
	return &TickerResolver{
		Source: source,
		Logger: logger.NewLogger(cfg.LogLevel, "TickerResolver"),
	}
}

// -----------------------------------------------------------------------------

// Resolve determines which market suffix yields data for a stock code by
// trial. A code that already carries a suffix gets exactly one fetch. The
// raw table from the winning attempt is returned so callers never fetch the
// same candidate twice.
func (r *TickerResolver) Resolve(ctx context.Context, rawCode, start, end string) (*models.MResolvedTicker, *models.MRawPriceTable, error) {
	rawCode = strings.TrimSpace(rawCode)
	if rawCode == "" {
		return nil, nil, helpers.NewNotFoundError("empty stock code", nil)
	}

	// Already qualified: single attempt, no fallback.
	if strings.Contains(rawCode, ".") {
		idx := strings.Index(rawCode, ".")
		table, err := r.try(ctx, rawCode, start, end)
		if err != nil {
			return nil, nil, helpers.NewNotFoundError(fmt.Sprintf("no data for %s", rawCode), err)
		}
		return &models.MResolvedTicker{
			InputCode:     rawCode,
			Suffix:        rawCode[idx:],
			CanonicalCode: rawCode,
		}, table, nil
	}

	var lastErr error
	for _, suffix := range suffixCandidates {
		candidate := rawCode + suffix
		table, err := r.try(ctx, candidate, start, end)
		if err != nil {
			r.Logger.Debug("Candidate %s failed: %v", candidate, err)
			lastErr = err
			continue
		}

		r.Logger.Info("Resolved %s -> %s", rawCode, candidate)
		return &models.MResolvedTicker{
			InputCode:     rawCode,
			Suffix:        suffix,
			CanonicalCode: candidate,
		}, table, nil
	}

	return nil, nil, helpers.NewNotFoundError(fmt.Sprintf("no market suffix yields data for %s", rawCode), lastErr)
}

// -----------------------------------------------------------------------------

// try fetches one candidate and rejects tables with no usable rows, so an
// empty listed-market response falls through to the OTC candidate.
func (r *TickerResolver) try(ctx context.Context, symbol, start, end string) (*models.MRawPriceTable, error) {
	table, err := r.Source.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if tableIsEmpty(table) {
		return nil, helpers.NewEmptyResultError(fmt.Sprintf("empty price table for %s", symbol))
	}
	return table, nil
}

// -----------------------------------------------------------------------------

func tableIsEmpty(table *models.MRawPriceTable) bool {
	if table == nil {
		return true
	}
	for _, result := range table.Results {
		if len(result.Timestamps) > 0 {
			return false
		}
	}
	return true
}
