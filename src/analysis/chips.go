package analysis

import (
	"sort"

	"twstock-observer/src/helpers"
	"twstock-observer/src/models"
)

// -----------------------------------------------------------------------------
// Category mapping
// -----------------------------------------------------------------------------

// Display labels for the institutional categories.
const (
	CategoryForeign     = "外資"
	CategoryTrust       = "投信"
	CategoryDealerSelf  = "自營商(自行買賣)"
	CategoryDealerHedge = "自營商(避險)"
	CategoryDealerTotal = "自營商"
	SharesPerLot        = 1000
)

// categoryLabels maps provider category codes to display labels. Codes
// absent from the table pass through unchanged, so unknown future
// categories surface under their raw code instead of vanishing.
var categoryLabels = map[string]string{
	"Foreign_Investor": CategoryForeign,
	"Investment_Trust": CategoryTrust,
	"Dealer_Self":      CategoryDealerSelf,
	"Dealer_Hedging":   CategoryDealerHedge,
	"Dealer":           CategoryDealerTotal,
}

// displayOrder fixes the pivot column order for the known categories;
// unknown pass-through categories follow alphabetically.
var displayOrder = []string{
	CategoryForeign,
	CategoryTrust,
	CategoryDealerSelf,
	CategoryDealerHedge,
	CategoryDealerTotal,
}

// CategoryLabel resolves a provider code to its display label.
func CategoryLabel(code string) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return code
}

// -----------------------------------------------------------------------------
// Chip Aggregator
// -----------------------------------------------------------------------------

// AggregateChips pivots raw institutional flow rows into a dense daily
// net-buy grid and window-relative cumulative series. Duplicate rows for the
// same (date, category) sum rather than overwrite; missing combinations are
// zero. The dealer sub-books additionally roll up into a combined dealer
// series alongside their own. Output is independent of input row order.
func AggregateChips(records []models.MChipRecord) (*models.MChipAggregate, error) {
	if len(records) == 0 {
		return nil, helpers.NewEmptyResultError("no institutional flow records to aggregate")
	}

	// Pivot: (date, category) -> summed net buy lots.
	netByCategory := make(map[string]map[string]float64)
	dateSet := make(map[string]bool)

	for _, rec := range records {
		if rec.Date == "" || rec.Category == "" {
			return nil, helpers.NewComputationError("institutional flow record missing date or category", nil)
		}

		label := CategoryLabel(rec.Category)
		netLots := float64(rec.Buy-rec.Sell) / SharesPerLot

		if netByCategory[label] == nil {
			netByCategory[label] = make(map[string]float64)
		}
		netByCategory[label][rec.Date] += netLots
		dateSet[rec.Date] = true
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// Dense per-category vectors over every observed date.
	pivot := models.MChipPivot{
		Dates:      dates,
		NetBuyLots: make(map[string][]float64),
	}
	for label, byDate := range netByCategory {
		vec := make([]float64, len(dates))
		for i, d := range dates {
			vec[i] = byDate[d] // Zero when absent, so cumulative sums stay well-defined
		}
		pivot.NetBuyLots[label] = vec
	}

	// Combined total across the categories as recorded, before the dealer
	// roll-up is synthesized (no double counting).
	combined := make([]float64, len(dates))
	for _, vec := range pivot.NetBuyLots {
		for i, v := range vec {
			combined[i] += v
		}
	}

	// Dealer roll-up: self + hedging fold into the combined dealer series,
	// joining any rows the provider already reported under the total.
	if hasDealerSubBooks(pivot.NetBuyLots) {
		total := pivot.NetBuyLots[CategoryDealerTotal]
		if total == nil {
			total = make([]float64, len(dates))
		}
		for _, sub := range []string{CategoryDealerSelf, CategoryDealerHedge} {
			if vec, ok := pivot.NetBuyLots[sub]; ok {
				for i, v := range vec {
					total[i] += v
				}
			}
		}
		pivot.NetBuyLots[CategoryDealerTotal] = total
	}

	pivot.Categories = orderCategories(pivot.NetBuyLots)

	// Window-relative running sums: every series restarts at zero at the
	// first date of the queried range.
	agg := &models.MChipAggregate{
		Pivot:                pivot,
		CumulativeByCategory: make(map[string][]float64, len(pivot.NetBuyLots)),
		CombinedCumulative:   cumulate(combined),
	}
	for label, vec := range pivot.NetBuyLots {
		agg.CumulativeByCategory[label] = cumulate(vec)
	}

	return agg, nil
}

// -----------------------------------------------------------------------------

func hasDealerSubBooks(net map[string][]float64) bool {
	_, self := net[CategoryDealerSelf]
	_, hedge := net[CategoryDealerHedge]
	return self || hedge
}

// -----------------------------------------------------------------------------

func orderCategories(net map[string][]float64) []string {
	ordered := make([]string, 0, len(net))
	known := make(map[string]bool)
	for _, label := range displayOrder {
		known[label] = true
		if _, ok := net[label]; ok {
			ordered = append(ordered, label)
		}
	}

	var extra []string
	for label := range net {
		if !known[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)

	return append(ordered, extra...)
}

// -----------------------------------------------------------------------------

func cumulate(vec []float64) []float64 {
	out := make([]float64, len(vec))
	running := 0.0
	for i, v := range vec {
		running += v
		out[i] = running
	}
	return out
}
