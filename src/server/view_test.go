package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twstock-observer/src/helpers"
	"twstock-observer/src/logger"
	"twstock-observer/src/models"
	"twstock-observer/src/resolver"
	"twstock-observer/src/utils"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakePriceSource struct {
	tables map[string]*models.MRawPriceTable
	errs   map[string]error
}

func (f *fakePriceSource) Name() string { return "fake-price" }

func (f *fakePriceSource) FetchDailyBars(_ context.Context, symbol, _, _ string) (*models.MRawPriceTable, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if table, ok := f.tables[symbol]; ok {
		return table, nil
	}
	return nil, helpers.NewProviderError("status 404", nil)
}

type fakeChipSource struct {
	records []models.MChipRecord
	err     error
	names   map[string]string
}

func (f *fakeChipSource) Name() string { return "fake-chip" }

func (f *fakeChipSource) FetchInstitutionalFlows(_ context.Context, _, _, _ string) ([]models.MChipRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeChipSource) FetchStockName(_ context.Context, stockID string) (string, error) {
	if name, ok := f.names[stockID]; ok {
		return name, nil
	}
	return "", helpers.NewEmptyResultError("no stock info")
}

type fakeNarrator struct{ text string }

func (f *fakeNarrator) Narrate(_ context.Context, _, _, _ string) string { return f.text }

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func priceTable(symbol string, closes ...float64) *models.MRawPriceTable {
	result := models.MRawPriceResult{Symbol: symbol, GMTOffset: 8 * 3600}
	block := models.MRawQuoteBlock{}
	base := int64(1704166200) // 2024-01-02 13:30 Taipei
	for i, c := range closes {
		v := c
		vol := 1000.0
		result.Timestamps = append(result.Timestamps, base+int64(i)*86400)
		block.Open = append(block.Open, &v)
		block.High = append(block.High, &v)
		block.Low = append(block.Low, &v)
		block.Close = append(block.Close, &v)
		block.Volume = append(block.Volume, &vol)
	}
	result.Quotes = []models.MRawQuoteBlock{block}
	return &models.MRawPriceTable{Results: []models.MRawPriceResult{result}}
}

func chipRecords() []models.MChipRecord {
	return []models.MChipRecord{
		{Date: "2024-01-02", Category: "Foreign_Investor", Buy: 5000, Sell: 2000},
		{Date: "2024-01-03", Category: "Foreign_Investor", Buy: 1000, Sell: 4000},
	}
}

func newTestBuilder(prices *fakePriceSource, chips *fakeChipSource, narrator *fakeNarrator) *ViewBuilder {
	cfg := &models.MConfig{
		LogLevel:  "error",
		PriceData: models.MPriceDataConfig{DefaultLookbackDays: 60},
		MAWindows: []int{2, 5},
	}
	builder := &ViewBuilder{
		Config: cfg,
		Resolver: &resolver.TickerResolver{
			Source: prices,
			Logger: logger.NewLogger("error", "TickerResolver"),
		},
		Chips:    chips,
		Calendar: utils.NewTaiwanCalendar(),
		Logger:   logger.NewLogger("error", "ViewBuilder"),
	}
	if narrator != nil {
		builder.Narrator = narrator
	}
	return builder
}

func analyzeCmd(stockID string) models.MAnalyzeCommand {
	return models.MAnalyzeCommand{
		Command:   "analyze",
		StockID:   stockID,
		StartDate: "2024-01-02",
		EndDate:   "2024-01-31",
	}
}

// -----------------------------------------------------------------------------

func TestBuildFullView(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"2330.TW": priceTable("2330.TW", 600, 610, 605),
	}}
	chips := &fakeChipSource{records: chipRecords(), names: map[string]string{"2330": "台積電"}}

	view := newTestBuilder(prices, chips, nil).Build(context.Background(), analyzeCmd("2330"))

	require.NotNil(t, view)
	assert.Equal(t, "VIEW", view.Type)
	assert.Equal(t, "台積電", view.StockName)
	require.NotNil(t, view.Ticker)
	assert.Equal(t, "2330.TW", view.Ticker.CanonicalCode)

	require.Len(t, view.Price.Bars, 3)
	assert.Empty(t, view.Price.Error)
	assert.InDelta(t, 605.0, view.Price.LatestClose, 1e-9)

	// One series per configured window, keyed maN, with leading nulls
	require.Contains(t, view.Price.MovingAverages, "ma2")
	require.Contains(t, view.Price.MovingAverages, "ma5")
	ma2 := view.Price.MovingAverages["ma2"]
	require.Len(t, ma2, 3)
	assert.Nil(t, ma2[0])
	require.NotNil(t, ma2[1])
	assert.InDelta(t, 605.0, *ma2[1], 1e-9)

	require.NotNil(t, view.Chip.Aggregate)
	assert.Empty(t, view.Chip.Error)
	assert.Equal(t, "2024-01-03 三大法人合計賣超 3.0 張", view.Chip.Summary)
}

func TestBuildPanelsFailIndependently(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"2330.TW": priceTable("2330.TW", 600, 610),
	}}
	chips := &fakeChipSource{err: helpers.NewProviderError("status 502", nil)}

	view := newTestBuilder(prices, chips, nil).Build(context.Background(), analyzeCmd("2330"))

	// Chip failure leaves the price panel intact
	assert.Empty(t, view.Price.Error)
	require.Len(t, view.Price.Bars, 2)
	assert.Equal(t, msgProviderFail, view.Chip.Error)
	assert.Nil(t, view.Chip.Aggregate)
}

func TestBuildUnknownCode(t *testing.T) {
	prices := &fakePriceSource{}
	chips := &fakeChipSource{err: helpers.NewEmptyResultError("no rows")}

	view := newTestBuilder(prices, chips, nil).Build(context.Background(), analyzeCmd("9999"))

	assert.Equal(t, msgNotFound, view.Price.Error)
	assert.Nil(t, view.Ticker)
	// An empty chip result is a warning, not an error
	assert.Equal(t, msgEmptyResult, view.Chip.Warning)
	assert.Empty(t, view.Chip.Error)
	// Name lookup degrades to the bare code
	assert.Equal(t, "9999", view.StockName)
}

func TestBuildQualifiedCodeUsesNumericForChips(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"6488.TWO": priceTable("6488.TWO", 3000, 3100),
	}}
	chips := &fakeChipSource{records: chipRecords(), names: map[string]string{"6488": "環球晶"}}

	view := newTestBuilder(prices, chips, nil).Build(context.Background(), analyzeCmd("6488.TWO"))

	assert.Equal(t, "環球晶", view.StockName)
	require.NotNil(t, view.Ticker)
	assert.Equal(t, ".TWO", view.Ticker.Suffix)
}

func TestBuildDefaultDateRange(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"2330.TW": priceTable("2330.TW", 600),
	}}
	chips := &fakeChipSource{records: chipRecords()}

	cmd := models.MAnalyzeCommand{Command: "analyze", StockID: "2330"}
	view := newTestBuilder(prices, chips, nil).Build(context.Background(), cmd)

	assert.NotEmpty(t, view.StartDate)
	assert.NotEmpty(t, view.EndDate)
	assert.Less(t, view.StartDate, view.EndDate)
}

func TestBuildNarrative(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"2330.TW": priceTable("2330.TW", 600, 610),
	}}
	chips := &fakeChipSource{records: chipRecords()}

	cmd := analyzeCmd("2330")
	cmd.Narrative = true

	view := newTestBuilder(prices, chips, &fakeNarrator{text: "外資近兩日轉為調節。"}).Build(context.Background(), cmd)
	assert.Equal(t, "外資近兩日轉為調節。", view.Narrative.Text)
	assert.Empty(t, view.Narrative.Error)
}

func TestBuildNarrativeDisabled(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"2330.TW": priceTable("2330.TW", 600),
	}}
	chips := &fakeChipSource{records: chipRecords()}

	cmd := analyzeCmd("2330")
	cmd.Narrative = true

	view := newTestBuilder(prices, chips, nil).Build(context.Background(), cmd)
	assert.Empty(t, view.Narrative.Text)
	assert.Equal(t, "AI 解讀功能未啟用", view.Narrative.Error)
}

func TestBuildNarrativeSkippedWithoutSummary(t *testing.T) {
	prices := &fakePriceSource{tables: map[string]*models.MRawPriceTable{
		"2330.TW": priceTable("2330.TW", 600),
	}}
	chips := &fakeChipSource{err: helpers.NewEmptyResultError("no rows")}

	cmd := analyzeCmd("2330")
	cmd.Narrative = true

	view := newTestBuilder(prices, chips, &fakeNarrator{text: "should not appear"}).Build(context.Background(), cmd)
	assert.Empty(t, view.Narrative.Text)
	assert.Empty(t, view.Narrative.Error)
}
