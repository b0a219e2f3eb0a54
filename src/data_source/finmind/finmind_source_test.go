package finmind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twstock-observer/src/helpers"
	"twstock-observer/src/models"
)

// fakeNetwork returns one canned body (or error) and records the params of
// the last request.
type fakeNetwork struct {
	body       []byte
	err        error
	lastURL    string
	lastParams map[string]string
}

func (f *fakeNetwork) Get(_ context.Context, url string, params map[string]string) ([]byte, error) {
	f.lastURL = url
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func newTestSource(network *fakeNetwork, token string) *FinMindSource {
	cfg := &models.MConfig{
		LogLevel: "error",
		ChipData: models.MChipDataConfig{
			BaseURL:           "https://api.finmindtrade.com/api/v4/data",
			Token:             token,
			RequestsPerSecond: 100,
		},
	}
	return NewFinMindSource(cfg, network)
}

// -----------------------------------------------------------------------------

func TestFetchInstitutionalFlows(t *testing.T) {
	network := &fakeNetwork{body: []byte(`{
		"msg": "success",
		"data": [
			{"date": "2024-01-02", "name": "Foreign_Investor", "buy": 5000, "sell": 2000},
			{"date": "2024-01-02", "name": "Investment_Trust", "buy": 1000, "sell": 500}
		]
	}`)}
	source := newTestSource(network, "tok123")

	records, err := source.FetchInstitutionalFlows(context.Background(), "2330", "2024-01-02", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2024-01-02", records[0].Date)
	assert.Equal(t, "Foreign_Investor", records[0].Category)
	assert.Equal(t, int64(5000), records[0].Buy)
	assert.Equal(t, int64(2000), records[0].Sell)

	assert.Equal(t, "TaiwanStockInstitutionalInvestor", network.lastParams["dataset"])
	assert.Equal(t, "2330", network.lastParams["data_id"])
	assert.Equal(t, "2024-01-02", network.lastParams["start_date"])
	assert.Equal(t, "2024-01-31", network.lastParams["end_date"])
	assert.Equal(t, "tok123", network.lastParams["token"])
}

func TestFetchInstitutionalFlowsNoToken(t *testing.T) {
	network := &fakeNetwork{body: []byte(`{"msg": "success", "data": [{"date": "2024-01-02", "name": "Dealer", "buy": 1, "sell": 0}]}`)}
	source := newTestSource(network, "")

	_, err := source.FetchInstitutionalFlows(context.Background(), "2330", "2024-01-02", "2024-01-31")
	require.NoError(t, err)

	_, hasToken := network.lastParams["token"]
	assert.False(t, hasToken)
}

func TestFetchInstitutionalFlowsProviderFailureEnvelope(t *testing.T) {
	// A non-success msg must win over whatever sits in data
	network := &fakeNetwork{body: []byte(`{"msg": "error: invalid token", "data": "not an array"}`)}
	source := newTestSource(network, "bad")

	_, err := source.FetchInstitutionalFlows(context.Background(), "2330", "2024-01-02", "2024-01-31")
	require.Error(t, err)
	assert.True(t, helpers.IsProviderError(err))
	assert.Contains(t, err.Error(), "invalid token")
}

func TestFetchInstitutionalFlowsEmptyData(t *testing.T) {
	network := &fakeNetwork{body: []byte(`{"msg": "success", "data": []}`)}
	source := newTestSource(network, "")

	_, err := source.FetchInstitutionalFlows(context.Background(), "2330", "2024-08-10", "2024-08-11")
	require.Error(t, err)
	assert.True(t, helpers.IsEmptyResult(err))
}

func TestFetchInstitutionalFlowsTransportError(t *testing.T) {
	network := &fakeNetwork{err: helpers.NewProviderError("max retries exceeded", nil)}
	source := newTestSource(network, "")

	_, err := source.FetchInstitutionalFlows(context.Background(), "2330", "2024-01-02", "2024-01-31")
	require.Error(t, err)
	assert.True(t, helpers.IsProviderError(err))
}

func TestFetchInstitutionalFlowsMalformedBody(t *testing.T) {
	network := &fakeNetwork{body: []byte(`<html>rate limited</html>`)}
	source := newTestSource(network, "")

	_, err := source.FetchInstitutionalFlows(context.Background(), "2330", "2024-01-02", "2024-01-31")
	require.Error(t, err)
	assert.True(t, helpers.IsProviderError(err))
}

// -----------------------------------------------------------------------------

func TestFetchStockName(t *testing.T) {
	network := &fakeNetwork{body: []byte(`{
		"msg": "success",
		"data": [
			{"stock_id": "2330", "stock_name": "台積電", "industry_category": "半導體業"}
		]
	}`)}
	source := newTestSource(network, "")

	name, err := source.FetchStockName(context.Background(), "2330")
	require.NoError(t, err)
	assert.Equal(t, "台積電", name)
	assert.Equal(t, "TaiwanStockInfo", network.lastParams["dataset"])
}

func TestFetchStockNameUnknownCode(t *testing.T) {
	network := &fakeNetwork{body: []byte(`{"msg": "success", "data": []}`)}
	source := newTestSource(network, "")

	_, err := source.FetchStockName(context.Background(), "0000")
	require.Error(t, err)
	assert.True(t, helpers.IsEmptyResult(err))
}
