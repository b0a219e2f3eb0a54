package finmind

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"twstock-observer/src/helpers"
	"twstock-observer/src/interfaces"
	"twstock-observer/src/logger"
	"twstock-observer/src/models"
)

const (
	// Dataset identifiers on the FinMind v4 data endpoint.
	datasetInstitutionalInvestor = "TaiwanStockInstitutionalInvestor"
	datasetStockInfo             = "TaiwanStockInfo"
)

type FinMindSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	limiter *rate.Limiter
}

// -----------------------------------------------------------------------------

func NewFinMindSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *FinMindSource {
	rps := cfg.ChipData.RequestsPerSecond
	return &FinMindSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "FinMindSource"),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// -----------------------------------------------------------------------------

func (s *FinMindSource) Name() string {
	return "finmind"
}

// -----------------------------------------------------------------------------

// envelope is the FinMind response wrapper. Data stays raw until the msg
// field has been checked: a non-success msg is a provider-reported failure
// and its data must not be parsed.
type envelope struct {
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// -----------------------------------------------------------------------------

func (s *FinMindSource) fetchDataset(ctx context.Context, dataset string, params map[string]string) (json.RawMessage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params["dataset"] = dataset
	if s.Config.ChipData.Token != "" {
		params["token"] = s.Config.ChipData.Token
	}

	respBytes, err := s.Network.Get(ctx, s.Config.ChipData.BaseURL, params)
	if err != nil {
		return nil, helpers.NewProviderError(fmt.Sprintf("%s fetch failed", dataset), err)
	}

	var env envelope
	if err := json.Unmarshal(respBytes, &env); err != nil {
		return nil, helpers.NewProviderError(fmt.Sprintf("%s envelope unmarshal failed", dataset), err)
	}

	if env.Msg != "success" {
		return nil, helpers.NewProviderError(fmt.Sprintf("%s provider reported failure: %q", dataset, env.Msg), nil)
	}

	return env.Data, nil
}

// -----------------------------------------------------------------------------

// FetchInstitutionalFlows retrieves raw buy/sell rows for a bare numeric
// stock code. An empty data array on a success envelope is EmptyResult, not
// a provider error.
func (s *FinMindSource) FetchInstitutionalFlows(ctx context.Context, stockID, start, end string) ([]models.MChipRecord, error) {
	params := map[string]string{
		"data_id":    stockID,
		"start_date": start,
		"end_date":   end,
	}

	data, err := s.fetchDataset(ctx, datasetInstitutionalInvestor, params)
	if err != nil {
		return nil, err
	}

	var records []models.MChipRecord
	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, helpers.NewProviderError("institutional flow data unmarshal failed", err)
		}
	}

	if len(records) == 0 {
		return nil, helpers.NewEmptyResultError(fmt.Sprintf("no institutional flow rows for %s in [%s, %s]", stockID, start, end))
	}

	s.Logger.Debug("Fetched %d institutional flow rows for %s", len(records), stockID)
	return records, nil
}

// -----------------------------------------------------------------------------

// FetchStockName resolves the display name for a stock code via the stock
// info dataset. Returns the first matching row's name.
func (s *FinMindSource) FetchStockName(ctx context.Context, stockID string) (string, error) {
	params := map[string]string{
		"data_id": stockID,
	}

	data, err := s.fetchDataset(ctx, datasetStockInfo, params)
	if err != nil {
		return "", err
	}

	var rows []struct {
		StockID   string `json:"stock_id"`
		StockName string `json:"stock_name"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return "", helpers.NewProviderError("stock info data unmarshal failed", err)
		}
	}

	for _, row := range rows {
		if row.StockName != "" {
			return row.StockName, nil
		}
	}

	return "", helpers.NewEmptyResultError(fmt.Sprintf("no stock info for %s", stockID))
}
