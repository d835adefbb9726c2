package contracts

// Instrument is one entry of the broker-side universe feed.
// Instances are created by the feed loader and are immutable for the
// lifetime of a run.
type Instrument struct {
	Epic       string  `json:"epic"`        // broker identifier, e.g. "US.TSLA"
	Name       string  `json:"name"`        // display name
	Sector     string  `json:"sector"`      // may be empty, resolved later
	Country    string  `json:"country"`     // ISO country of the listing
	AssetClass string  `json:"asset_class"` // broker category, e.g. "US stocks"
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	SpreadPct  float64 `json:"spread_pct"` // decimal, 0.0025 = 0.25%
	IsUSStock  bool    `json:"is_us_stock"`
}

// MidPrice returns the bid/ask midpoint.
func (i Instrument) MidPrice() float64 {
	return (i.Bid + i.Ask) / 2
}

// Tradable reports whether the instrument has a live two-sided quote.
func (i Instrument) Tradable() bool {
	return i.Bid > 0 && i.Ask > 0
}
