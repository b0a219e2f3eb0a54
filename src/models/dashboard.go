package models

// -----------------------------------------------------------------------------
// Per-request dashboard view (matches the tabbed UI panels)
// -----------------------------------------------------------------------------

type MDashboardView struct {
	Type      string           `json:"type"` // "VIEW"
	StockID   string           `json:"stock_id"`
	StockName string           `json:"stock_name"`
	Ticker    *MResolvedTicker `json:"ticker,omitempty"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Price     MPricePanel      `json:"price"`
	Chip      MChipPanel       `json:"chip"`
	Narrative MNarrativePanel  `json:"narrative"`
	Timestamp int64            `json:"timestamp"`
}

// MPricePanel carries the candlestick data and its overlays. Error/Warning
// are set instead of data when the fetch or computation failed; a failed
// price panel never blocks the chip panel (and vice versa).
type MPricePanel struct {
	Bars           []MDailyBar           `json:"bars,omitempty"`
	MovingAverages map[string][]*float64 `json:"moving_averages,omitempty"`
	LatestClose    float64               `json:"latest_close,omitempty"`
	ChangePercent  float64               `json:"change_percent,omitempty"`
	Error          string                `json:"error,omitempty"`
	Warning        string                `json:"warning,omitempty"`
}

type MChipPanel struct {
	Aggregate *MChipAggregate `json:"aggregate,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Error     string          `json:"error,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

type MNarrativePanel struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------
// MAnalyzeCommand for websocket client messages
// -----------------------------------------------------------------------------

type MAnalyzeCommand struct {
	Command   string `json:"command"`
	StockID   string `json:"stock_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Narrative bool   `json:"narrative"`
}
