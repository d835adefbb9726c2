package contracts

// Composite weights. They always sum to 1 and are fixed for every run.
const (
	WeightDayStrength = 0.30
	WeightRelVolume   = 0.30
	WeightCatalyst    = 0.20
	WeightMarket      = 0.10
	WeightVolFit      = 0.10
)

// ScoreComponents holds the rank-normalized component scores of one
// instrument, each on a 0..100 scale.
type ScoreComponents struct {
	DayStrength float64 `json:"day_strength"`
	RelVolume   float64 `json:"rel_volume"`
	Catalyst    float64 `json:"catalyst"`
	Market      float64 `json:"market"`
	VolFit      float64 `json:"vol_fit"`
}

// Composite returns the weighted sum of the components.
func (c ScoreComponents) Composite() float64 {
	return c.DayStrength*WeightDayStrength +
		c.RelVolume*WeightRelVolume +
		c.Catalyst*WeightCatalyst +
		c.Market*WeightMarket +
		c.VolFit*WeightVolFit
}

// ScoreResult is the scored outcome of one instrument.
type ScoreResult struct {
	Epic       string          `json:"epic"`
	Composite  float64         `json:"composite"`
	Components ScoreComponents `json:"components"`
}

// Candidate is one fully evaluated instrument, carried from scoring
// into selection and the run artifacts.
type Candidate struct {
	Rank          int         `json:"rank"` // 1-based, assigned by selection
	Instrument    Instrument  `json:"instrument"`
	Ticker        string      `json:"ticker"`
	Features      FeatureRow  `json:"features"`
	Labels        LabelSet    `json:"labels"`
	Score         ScoreResult `json:"score"`
	Justification string      `json:"justification"`
}
