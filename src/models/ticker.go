package models

// MResolvedTicker records which market suffix produced data for a stock code.
type MResolvedTicker struct {
	InputCode     string `json:"input_code"`
	Suffix        string `json:"resolved_suffix"`
	CanonicalCode string `json:"canonical_code"`
}
