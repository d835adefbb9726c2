package contracts

// MinLabelSample is the sample size below which historical outcome
// rates are flagged as low confidence. Low samples never exclude an
// instrument, they only annotate it.
const MinLabelSample = 30

// LabelSet holds the historical outcome rates of one instrument,
// computed over sessions strictly before the anchor date. Rates are on
// a 0..1 scale.
type LabelSet struct {
	AWinRate   float64 `json:"a_win_rate"`
	ALossRate  float64 `json:"a_loss_rate"`
	AAmbigRate float64 `json:"a_ambig_rate"`
	SampleA    int     `json:"sample_a"`

	BWinRate float64 `json:"b_win_rate"`
	SampleB  int     `json:"sample_b"`
}

// LowSampleA reports whether the bracket outcome rates rest on fewer
// observations than the confidence threshold.
func (l LabelSet) LowSampleA() bool {
	return l.SampleA < MinLabelSample
}

// LowSampleB reports the same for the close-over-open rate.
func (l LabelSet) LowSampleB() bool {
	return l.SampleB < MinLabelSample
}
