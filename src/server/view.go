package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"twstock-observer/src/analysis"
	"twstock-observer/src/analysis/core"
	"twstock-observer/src/helpers"
	"twstock-observer/src/interfaces"
	"twstock-observer/src/logger"
	"twstock-observer/src/models"
	"twstock-observer/src/resolver"
	"twstock-observer/src/summary"
	"twstock-observer/src/utils"
)

// User-facing panel messages (the UI renders these inline, one per panel).
const (
	msgNotFound     = "查無此股票代碼的資料"
	msgProviderFail = "資料來源回應異常，請稍後再試"
	msgEmptyResult  = "查詢區間內沒有資料"
	msgComputeFail  = "資料處理發生錯誤"
)

// -----------------------------------------------------------------------------
// ViewBuilder
// -----------------------------------------------------------------------------

// ViewBuilder runs one full sequential analysis pass: resolve, normalize,
// aggregate, compute indicators, and optionally narrate. Every panel fails
// independently; a chip-data failure never blocks the price chart and vice
// versa.
type ViewBuilder struct {
	Config   *models.MConfig
	Resolver *resolver.TickerResolver
	Chips    interfaces.IChipSource
	Narrator interfaces.INarrator // Nil when the narrative feature is off
	Calendar *utils.TradingCalendar
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewViewBuilder(
	cfg *models.MConfig,
	res *resolver.TickerResolver,
	chips interfaces.IChipSource,
	narrator interfaces.INarrator,
	cal *utils.TradingCalendar,
) *ViewBuilder {
	return &ViewBuilder{
		Config:   cfg,
		Resolver: res,
		Chips:    chips,
		Narrator: narrator,
		Calendar: cal,
		Logger:   logger.NewLogger(cfg.LogLevel, "ViewBuilder"),
	}
}

// -----------------------------------------------------------------------------

// Build assembles a full dashboard view for one analyze command. It always
// returns a view; failures surface as per-panel messages.
func (b *ViewBuilder) Build(ctx context.Context, cmd models.MAnalyzeCommand) *models.MDashboardView {
	start, end := cmd.StartDate, cmd.EndDate
	if start == "" || end == "" {
		start, end = b.Calendar.DefaultRange(time.Now(), b.Config.PriceData.DefaultLookbackDays)
	}

	stockID := strings.TrimSpace(cmd.StockID)
	// The chip provider keys on the bare numeric code regardless of market.
	numericCode := stockID
	if idx := strings.Index(numericCode, "."); idx >= 0 {
		numericCode = numericCode[:idx]
	}

	view := &models.MDashboardView{
		Type:      "VIEW",
		StockID:   stockID,
		StartDate: start,
		EndDate:   end,
		Timestamp: time.Now().Unix(),
	}

	b.buildPricePanel(ctx, view, stockID, start, end)
	b.buildChipPanel(ctx, view, numericCode, start, end)

	view.StockName = b.lookupName(ctx, numericCode)

	if cmd.Narrative {
		b.buildNarrativePanel(ctx, view, numericCode)
	}

	return view
}

// -----------------------------------------------------------------------------

func (b *ViewBuilder) buildPricePanel(ctx context.Context, view *models.MDashboardView, stockID, start, end string) {
	ticker, table, err := b.Resolver.Resolve(ctx, stockID, start, end)
	if err != nil {
		b.Logger.Warning("Ticker resolution failed for %s: %v", stockID, err)
		view.Price.Error = panelMessage(err)
		return
	}
	view.Ticker = ticker

	bars, err := analysis.NormalizePrices(table)
	if err != nil {
		b.Logger.Warning("Price normalization failed for %s: %v", ticker.CanonicalCode, err)
		if helpers.IsEmptyResult(err) {
			view.Price.Warning = panelMessage(err)
		} else {
			view.Price.Error = panelMessage(err)
		}
		return
	}

	closes := analysis.ExtractCloses(bars)
	mas := make(map[string][]*float64, len(b.Config.MAWindows))
	for _, w := range b.Config.MAWindows {
		mas[maKey(w)] = core.MovingAverage(closes, w)
	}

	view.Price.Bars = bars
	view.Price.MovingAverages = mas
	view.Price.LatestClose = closes[len(closes)-1]
	if len(closes) > 1 {
		view.Price.ChangePercent = core.ChangePercent(closes[len(closes)-1], closes[len(closes)-2])
	}
}

// -----------------------------------------------------------------------------

func (b *ViewBuilder) buildChipPanel(ctx context.Context, view *models.MDashboardView, numericCode, start, end string) {
	records, err := b.Chips.FetchInstitutionalFlows(ctx, numericCode, start, end)
	if err != nil {
		b.Logger.Warning("Chip fetch failed for %s: %v", numericCode, err)
		if helpers.IsEmptyResult(err) {
			view.Chip.Warning = panelMessage(err)
		} else {
			view.Chip.Error = panelMessage(err)
		}
		return
	}

	agg, err := analysis.AggregateChips(records)
	if err != nil {
		b.Logger.Warning("Chip aggregation failed for %s: %v", numericCode, err)
		view.Chip.Error = panelMessage(err)
		return
	}

	view.Chip.Aggregate = agg
	view.Chip.Summary = summary.FormatChipSummary(agg)
}

// -----------------------------------------------------------------------------

func (b *ViewBuilder) buildNarrativePanel(ctx context.Context, view *models.MDashboardView, numericCode string) {
	if b.Narrator == nil {
		view.Narrative.Error = "AI 解讀功能未啟用"
		return
	}
	if view.Chip.Summary == "" {
		return
	}

	name := view.StockName
	if name == "" {
		name = numericCode
	}
	view.Narrative.Text = b.Narrator.Narrate(ctx, numericCode, name, view.Chip.Summary)
}

// -----------------------------------------------------------------------------

// lookupName is best effort: a missing display name degrades to the bare
// code, never to a panel error.
func (b *ViewBuilder) lookupName(ctx context.Context, numericCode string) string {
	name, err := b.Chips.FetchStockName(ctx, numericCode)
	if err != nil {
		b.Logger.Debug("Stock name lookup failed for %s: %v", numericCode, err)
		return numericCode
	}
	return name
}

// -----------------------------------------------------------------------------

func panelMessage(err error) string {
	switch {
	case helpers.IsNotFound(err):
		return msgNotFound
	case helpers.IsEmptyResult(err):
		return msgEmptyResult
	case helpers.IsProviderError(err):
		return msgProviderFail
	default:
		return msgComputeFail
	}
}

// -----------------------------------------------------------------------------

func maKey(window int) string {
	return "ma" + strconv.Itoa(window)
}
