package analysis

import (
	"fmt"
	"sort"
	"time"

	"twstock-observer/src/helpers"
	"twstock-observer/src/models"
	"twstock-observer/src/utils"
)

// -----------------------------------------------------------------------------
// Price Normalizer
// -----------------------------------------------------------------------------

// NormalizePrices turns a raw provider chart table into a canonical daily bar
// sequence: single symbol, single quote block, timezone-naive dates, ascending
// order, one bar per date. Missing trading days are simply absent; rows with
// null fields are dropped as provider noise.
func NormalizePrices(table *models.MRawPriceTable) ([]models.MDailyBar, error) {
	if table == nil || len(table.Results) == 0 {
		return nil, helpers.NewEmptyResultError("price table has no results")
	}

	// Step 1 - column flattening: a multi-symbol fetch carries one result per
	// symbol; collapse to the first.
	result := table.Results[0]

	if len(result.Quotes) == 0 || len(result.Timestamps) == 0 {
		return nil, helpers.NewEmptyResultError(fmt.Sprintf("no quote columns for %s", result.Symbol))
	}

	// Step 2 - duplicate-column removal: keep only the first quote block when
	// the provider repeats the OHLCV field set.
	quote := result.Quotes[0]

	if len(quote.Open) != len(result.Timestamps) ||
		len(quote.High) != len(result.Timestamps) ||
		len(quote.Low) != len(result.Timestamps) ||
		len(quote.Close) != len(result.Timestamps) ||
		len(quote.Volume) != len(result.Timestamps) {
		return nil, helpers.NewComputationError(fmt.Sprintf("misaligned quote columns for %s", result.Symbol), nil)
	}

	// Step 3 - timezone normalization: shift each timestamp by the exchange
	// offset, then keep only the local calendar date. No conversion beyond
	// dropping the zone; the provider already reports exchange-local time.
	offset := time.Duration(result.GMTOffset) * time.Second

	bars := make([]models.MDailyBar, 0, len(result.Timestamps))
	seen := make(map[string]bool)

	for i, ts := range result.Timestamps {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}

		date := time.Unix(ts, 0).UTC().Add(offset).Format(utils.DateLayout)
		if seen[date] {
			continue // One bar per date: first occurrence wins
		}
		seen[date] = true

		bars = append(bars, models.MDailyBar{
			Date:   date,
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: int64(*quote.Volume[i]),
		})
	}

	if len(bars) == 0 {
		return nil, helpers.NewEmptyResultError(fmt.Sprintf("no usable rows for %s after normalization", result.Symbol))
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date < bars[j].Date
	})

	return bars, nil
}

// -----------------------------------------------------------------------------

// ExtractCloses pulls the close column from a bar sequence.
func ExtractCloses(bars []models.MDailyBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
