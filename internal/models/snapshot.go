package models

// MarketSnapshot is a point-in-time set of price/volume facts for a ticker.
// Any field may be unknown; providers return nil fields for tickers they
// cannot price rather than erroring.
type MarketSnapshot struct {
	Symbol       string   `json:"symbol"`
	Price        *float64 `json:"price,omitempty"`
	PrevClose    *float64 `json:"prev_close,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	AvgVolume10d *float64 `json:"avg_volume_10d,omitempty"`
	HighToday    *float64 `json:"high_today,omitempty"`
	LowToday     *float64 `json:"low_today,omitempty"`
}

// HasPrice reports whether the snapshot carries a usable last price.
func (s *MarketSnapshot) HasPrice() bool {
	return s != nil && s.Price != nil
}

// Float returns a pointer to v. Convenience for building snapshots.
func Float(v float64) *float64 {
	return &v
}
