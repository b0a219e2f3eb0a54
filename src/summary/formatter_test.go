package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"twstock-observer/src/models"
)

func aggregate(dates []string, combined []float64) *models.MChipAggregate {
	return &models.MChipAggregate{
		Pivot:              models.MChipPivot{Dates: dates},
		CombinedCumulative: combined,
	}
}

func TestFormatChipSummaryEmpty(t *testing.T) {
	assert.Equal(t, "", FormatChipSummary(nil))
	assert.Equal(t, "", FormatChipSummary(&models.MChipAggregate{}))
}

func TestFormatChipSummaryNetBuy(t *testing.T) {
	agg := aggregate([]string{"2024-01-02", "2024-01-03"}, []float64{3.0, 15.5})

	got := FormatChipSummary(agg)
	assert.Equal(t, "2024-01-03 三大法人合計買超 12.5 張", got)
}

func TestFormatChipSummaryNetSell(t *testing.T) {
	agg := aggregate([]string{"2024-01-02", "2024-01-03"}, []float64{3.0, -5.0})

	got := FormatChipSummary(agg)
	assert.Equal(t, "2024-01-03 三大法人合計賣超 8.0 張", got)
}

func TestFormatChipSummarySingleDay(t *testing.T) {
	// With one row the running sum is the daily total itself
	got := FormatChipSummary(aggregate([]string{"2024-01-02"}, []float64{-7.0}))
	assert.Equal(t, "2024-01-02 三大法人合計賣超 7.0 張", got)
}

func TestFormatChipSummaryFlatDay(t *testing.T) {
	got := FormatChipSummary(aggregate([]string{"2024-01-02", "2024-01-03"}, []float64{4.0, 4.0}))
	assert.Equal(t, "2024-01-03 三大法人合計買超 0.0 張", got)
}
