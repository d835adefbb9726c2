package contracts

import "time"

// MappingConfidence records how a broker epic was mapped to a market
// data ticker.
type MappingConfidence string

const (
	MappingExact   MappingConfidence = "exact"
	MappingPattern MappingConfidence = "pattern"
	MappingManual  MappingConfidence = "manual"
)

// SymbolMapping is one validated epic-to-ticker association. Mappings
// are only persisted after the target ticker returned data from the
// market data provider.
type SymbolMapping struct {
	Epic        string            `json:"epic"`
	Ticker      string            `json:"ticker"`
	Confidence  MappingConfidence `json:"confidence"`
	ValidatedAt time.Time         `json:"validated_at"`
}
