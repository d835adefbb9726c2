package contracts

import "sync"

// Stage identifies where in the pipeline an instrument was dropped.
type Stage string

const (
	StageUniverse    Stage = "universe"
	StageMapping     Stage = "mapping"
	StageAcquisition Stage = "acquisition"
	StageFeatures    Stage = "features"
	StageLabeling    Stage = "labeling"
	StageScoring     Stage = "scoring"
)

// ReasonCode is the machine-readable exclusion reason.
type ReasonCode string

const (
	ReasonNotUSStock       ReasonCode = "not_us_stock"
	ReasonETF              ReasonCode = "etf_or_fund"
	ReasonNotTradable      ReasonCode = "no_live_quote"
	ReasonHighSpread       ReasonCode = "spread_too_wide"
	ReasonLowPrice         ReasonCode = "price_below_minimum"
	ReasonNonEquity        ReasonCode = "non_equity"
	ReasonMappingFailure   ReasonCode = "mapping_failure"
	ReasonFetchFailure     ReasonCode = "fetch_failure"
	ReasonInsufficientData ReasonCode = "insufficient_data"
)

// ExclusionRecord explains why one instrument left the pipeline.
type ExclusionRecord struct {
	Epic   string     `json:"epic"`
	Stage  Stage      `json:"stage"`
	Reason ReasonCode `json:"reason"`
	Detail string     `json:"detail"`
}

// Ledger collects exclusion records across pipeline stages. It is
// append-only and safe for concurrent use. The first record for an
// epic wins, an instrument leaves the pipeline exactly once.
type Ledger struct {
	mu      sync.Mutex
	records []ExclusionRecord
	seen    map[string]bool
}

func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]bool)}
}

// Add records an exclusion. Repeated adds for the same epic are
// ignored.
func (l *Ledger) Add(epic string, stage Stage, reason ReasonCode, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[epic] {
		return
	}
	l.seen[epic] = true
	l.records = append(l.records, ExclusionRecord{
		Epic:   epic,
		Stage:  stage,
		Reason: reason,
		Detail: detail,
	})
}

// Contains reports whether the epic has been excluded.
func (l *Ledger) Contains(epic string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[epic]
}

// Records returns a copy of the collected records in insertion order.
func (l *Ledger) Records() []ExclusionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ExclusionRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
