package models

// MChipRecord is one raw institutional-investor row from the chip provider.
// Buy/Sell are share counts; one lot is 1000 shares.
type MChipRecord struct {
	Date     string `json:"date"`
	Category string `json:"name"`
	Buy      int64  `json:"buy"`
	Sell     int64  `json:"sell"`
}

// -----------------------------------------------------------------------------
// Aggregated chip data
// -----------------------------------------------------------------------------

// MChipPivot is the dense daily net-buy grid: every category has one value
// (possibly zero) for every date in the observed range.
type MChipPivot struct {
	Dates      []string             `json:"dates"`      // Ascending YYYY-MM-DD
	Categories []string             `json:"categories"` // Display order
	NetBuyLots map[string][]float64 `json:"net_buy_lots"`
}

// MChipAggregate bundles the pivot with the window-relative running sums.
// Cumulative series start at zero at the first date of the queried range.
type MChipAggregate struct {
	Pivot                MChipPivot           `json:"pivot"`
	CumulativeByCategory map[string][]float64 `json:"cumulative_by_category"`
	CombinedCumulative   []float64            `json:"combined_cumulative"`
}
