package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"twstock-observer/src/helpers"
	"twstock-observer/src/interfaces"
	"twstock-observer/src/logger"
	"twstock-observer/src/models"
	"twstock-observer/src/utils"
)

type YahooFinanceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	return &YahooFinanceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "YahooFinanceSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchDailyBars fetches the raw daily chart table for one qualified symbol.
// The table is returned as the provider shaped it (null points, duplicated
// quote blocks, timezone-aware timestamps included); normalization happens
// downstream.
func (s *YahooFinanceSource) FetchDailyBars(ctx context.Context, symbol, start, end string) (*models.MRawPriceTable, error) {
	startT, err := time.Parse(utils.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endT, err := time.Parse(utils.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}

	params := map[string]string{
		"interval":       "1d",
		"period1":        fmt.Sprintf("%d", startT.Unix()),
		"period2":        fmt.Sprintf("%d", endT.AddDate(0, 0, 1).Unix()), // period2 is exclusive
		"includePrePost": "false",
		"events":         "history",
	}

	url := fmt.Sprintf("%s/%s", s.Config.PriceData.BaseURL, symbol)

	respBytes, err := s.Network.Get(ctx, url, params)
	if err != nil {
		return nil, helpers.NewProviderError(fmt.Sprintf("price fetch failed for %s", symbol), err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeName         string `json:"exchangeName"`
				Gmtoffset            int64  `json:"gmtoffset"`
				Timezone             string `json:"timezone"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`   // Use pointers to handle null
					Low    []*float64 `json:"low"`    // Use pointers to handle null
					Open   []*float64 `json:"open"`   // Use pointers to handle null
					Close  []*float64 `json:"close"`  // Use pointers to handle null
					Volume []*float64 `json:"volume"` // Use pointers to handle null
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) (*models.MRawPriceTable, error) {
	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewProviderError(fmt.Sprintf("price payload unmarshal failed for %s", symbol), err)
	}

	if resp.Chart.Error != nil {
		return nil, helpers.NewProviderError(
			fmt.Sprintf("price api error for %s: %s - %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description), nil)
	}

	table := &models.MRawPriceTable{}

	for _, result := range resp.Chart.Result {
		raw := models.MRawPriceResult{
			Symbol:     result.Meta.Symbol,
			Timezone:   result.Meta.Timezone,
			GMTOffset:  result.Meta.Gmtoffset,
			Timestamps: result.Timestamp,
		}
		if raw.Symbol == "" {
			raw.Symbol = symbol
		}
		for _, quote := range result.Indicators.Quote {
			raw.Quotes = append(raw.Quotes, models.MRawQuoteBlock{
				Open:   quote.Open,
				High:   quote.High,
				Low:    quote.Low,
				Close:  quote.Close,
				Volume: quote.Volume,
			})
		}
		table.Results = append(table.Results, raw)
	}

	points := 0
	if len(table.Results) > 0 {
		points = len(table.Results[0].Timestamps)
	}
	s.Logger.Debug("Fetched %s: %d results, %d raw points", symbol, len(table.Results), points)

	return table, nil
}
