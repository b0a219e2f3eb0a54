package summary

import (
	"fmt"

	"twstock-observer/src/models"
)

// -----------------------------------------------------------------------------
// Summary Formatter
// -----------------------------------------------------------------------------

// FormatChipSummary reduces the aggregate to one sentence about the most
// recent trading day: the date and the signed all-category net buy total in
// lots. An empty or missing aggregate yields an empty string, never an
// error, so the narrative feature can never block the rest of the view.
func FormatChipSummary(agg *models.MChipAggregate) string {
	if agg == nil || len(agg.Pivot.Dates) == 0 || len(agg.CombinedCumulative) == 0 {
		return ""
	}

	last := len(agg.Pivot.Dates) - 1
	latestDate := agg.Pivot.Dates[last]

	// Daily total at the latest date, recovered from the running sum.
	total := agg.CombinedCumulative[last]
	if last > 0 {
		total -= agg.CombinedCumulative[last-1]
	}

	direction := "買超"
	if total < 0 {
		direction = "賣超"
		total = -total
	}

	return fmt.Sprintf("%s 三大法人合計%s %.1f 張", latestDate, direction, total)
}
