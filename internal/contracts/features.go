package contracts

import "time"

// FeatureRow holds the per-instrument indicator snapshot at the anchor
// session. All values are computed from bars dated on or before the
// anchor date.
type FeatureRow struct {
	Epic   string    `json:"epic"`
	Ticker string    `json:"ticker"`
	Name   string    `json:"name"`
	Sector string    `json:"sector"`
	Date   time.Time `json:"date"` // anchor session date

	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adj_close"`
	Volume   int64   `json:"volume"`

	MA20         float64 `json:"ma20"`
	MA50         float64 `json:"ma50"`
	Trend20      float64 `json:"trend20"` // Close/MA20 - 1
	Trend50      float64 `json:"trend50"` // Close/MA50 - 1
	ATR14        float64 `json:"atr14"`
	ATRFrac      float64 `json:"atr_frac"`  // ATR14/Close
	RelVol10     float64 `json:"rel_vol10"` // Volume / mean of prior 10 volumes
	DayReturnPct float64 `json:"day_return_pct"`
	SpreadPct    float64 `json:"spread_pct"` // carried from the instrument feed

	EarningsSoon bool `json:"earnings_soon"` // earnings within one day of anchor
	NewsFlag     bool `json:"news_flag"`

	SectorStrength *float64 `json:"sector_strength,omitempty"` // sector ETF day return, decimal
	IndexBias      *int     `json:"index_bias,omitempty"`      // +1 index up day, -1 down, 0 flat
}
