package pipeline

import (
	"context"
	"time"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/internal/external/yahoo"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// earningsWindowDays flags announcements within one day of the anchor.
const earningsWindowDays = 1

// sectorETFs maps feed sector names onto the SPDR sector proxies used
// for the sector-strength input.
var sectorETFs = map[string]string{
	"Technology":             "XLK",
	"Information Technology": "XLK",
	"Financials":             "XLF",
	"Financial Services":     "XLF",
	"Health Care":            "XLV",
	"Healthcare":             "XLV",
	"Energy":                 "XLE",
	"Industrials":            "XLI",
	"Materials":              "XLB",
	"Utilities":              "XLU",
	"Real Estate":            "XLRE",
	"Consumer Discretionary": "XLY",
	"Consumer Cyclical":      "XLY",
	"Consumer Staples":       "XLP",
	"Consumer Defensive":     "XLP",
	"Communication Services": "XLC",
}

// MarketData is the provider surface enrichment needs.
type MarketData interface {
	EarningsNear(ctx context.Context, ticker string, anchor time.Time, windowDays int) (bool, error)
	IndexBias(ctx context.Context, symbol string, anchor time.Time) (int, error)
	DayStrength(ctx context.Context, symbol string, anchor time.Time) (float64, error)
}

// MarketEnricher fills the catalyst and market inputs of feature rows.
// Provider failures leave the affected input at its zero value.
type MarketEnricher struct {
	data        MarketData
	indexSymbol string
	log         *logger.Logger
}

func NewMarketEnricher(data MarketData, log *logger.Logger) *MarketEnricher {
	return &MarketEnricher{
		data:        data,
		indexSymbol: yahoo.DefaultIndexSymbol,
		log:         log.WithField("component", "enrichment"),
	}
}

// Enrich annotates the rows in place with the earnings flag, the
// index bias and the sector ETF strength. Sector strengths are fetched
// once per sector per run.
func (e *MarketEnricher) Enrich(ctx context.Context, rows []contracts.FeatureRow, anchor contracts.AnchorDate) []contracts.FeatureRow {
	var indexBias *int
	if bias, err := e.data.IndexBias(ctx, e.indexSymbol, anchor.Date); err != nil {
		e.log.WithError(err).Warn("Index bias unavailable")
	} else {
		indexBias = &bias
	}

	sectorStrength := make(map[string]*float64)
	strengthFor := func(sector string) *float64 {
		etf, ok := sectorETFs[sector]
		if !ok {
			return nil
		}
		if v, seen := sectorStrength[etf]; seen {
			return v
		}
		strength, err := e.data.DayStrength(ctx, etf, anchor.Date)
		if err != nil {
			e.log.WithError(err).WithField("etf", etf).Warn("Sector strength unavailable")
			sectorStrength[etf] = nil
			return nil
		}
		sectorStrength[etf] = &strength
		return &strength
	}

	for i := range rows {
		near, err := e.data.EarningsNear(ctx, rows[i].Ticker, anchor.Date, earningsWindowDays)
		if err != nil {
			e.log.WithError(err).WithField("ticker", rows[i].Ticker).Debug("Earnings lookup failed")
		} else {
			rows[i].EarningsSoon = near
		}
		rows[i].IndexBias = indexBias
		rows[i].SectorStrength = strengthFor(rows[i].Sector)
	}
	return rows
}
