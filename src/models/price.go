package models

// MDailyBar represents one normalized trading day of OHLCV data.
// Date is a timezone-naive exchange-local calendar date (YYYY-MM-DD).
type MDailyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// -----------------------------------------------------------------------------
// Raw provider output (pre-normalization)
// -----------------------------------------------------------------------------

// MRawPriceTable is the provider's chart payload as fetched, before any
// cleanup. A multi-symbol fetch yields one result per symbol (the second
// column dimension); each result may carry duplicated quote blocks.
type MRawPriceTable struct {
	Results []MRawPriceResult `json:"results"`
}

// MRawPriceResult holds one symbol's raw series. Timestamps are unix seconds
// and timezone-aware: GMTOffset is the exchange-local offset the provider
// reported alongside them.
type MRawPriceResult struct {
	Symbol     string           `json:"symbol"`
	Timezone   string           `json:"timezone"`
	GMTOffset  int64            `json:"gmt_offset"`
	Timestamps []int64          `json:"timestamps"`
	Quotes     []MRawQuoteBlock `json:"quotes"`
}

// MRawQuoteBlock is one set of OHLCV columns. Pointer elements because the
// provider emits null for withheld points.
type MRawQuoteBlock struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}
