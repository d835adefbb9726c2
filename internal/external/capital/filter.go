package capital

import (
	"fmt"
	"strings"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Name tokens that identify funds and structured products. Matching is
// case-insensitive on whole words so "TRUST" excludes trusts without
// touching names like "Trustmark".
var fundNameTokens = []string{
	"etf", "etn", "etp", "fund", "trust", "index",
	"2x", "3x", "x2", "x3", "leveraged", "inverse", "short",
	"spdr", "ishares", "vanguard", "invesco", "proshares", "direxion", "ultra",
}

// Well-known index and leveraged fund tickers that slip past the name
// screen because the feed lists them under their bare ticker.
var blockedTickers = map[string]struct{}{
	"QQQ": {}, "SPY": {}, "IVV": {}, "VTI": {},
	"TQQQ": {}, "SQQQ": {}, "QLD": {}, "QID": {},
	"XLF": {}, "XLE": {}, "XLI": {}, "XLK": {},
}

// Filter applies the pre-mapping universe gates to the raw instrument
// feed. Dropped instruments are recorded in the ledger and never seen
// again this run.
type Filter struct {
	maxSpreadPct float64
	minMidPrice  float64
	log          *logger.Logger
}

func NewFilter(maxSpreadPct, minMidPrice float64, log *logger.Logger) *Filter {
	return &Filter{maxSpreadPct: maxSpreadPct, minMidPrice: minMidPrice, log: log}
}

// Apply returns the instruments that pass every gate. Gates are
// checked in order and the first failure wins.
func (f *Filter) Apply(instruments []contracts.Instrument, ledger *contracts.Ledger) []contracts.Instrument {
	kept := make([]contracts.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if reason, detail, ok := f.check(inst); !ok {
			ledger.Add(inst.Epic, contracts.StageUniverse, reason, detail)
			continue
		}
		kept = append(kept, inst)
	}
	f.log.WithFields(map[string]interface{}{
		"input": len(instruments),
		"kept":  len(kept),
	}).Info("Applied universe filters")
	return kept
}

func (f *Filter) check(inst contracts.Instrument) (contracts.ReasonCode, string, bool) {
	if !inst.IsUSStock {
		return contracts.ReasonNotUSStock, "instrument not flagged as US stock", false
	}
	if token, ok := fundNameToken(inst.Name); ok {
		return contracts.ReasonETF, fmt.Sprintf("name contains %q", token), false
	}
	if t, ok := blockedTicker(inst.Epic); ok {
		return contracts.ReasonETF, fmt.Sprintf("blocked fund ticker %s", t), false
	}
	if !inst.Tradable() {
		return contracts.ReasonNotTradable, fmt.Sprintf("bid=%.4f ask=%.4f", inst.Bid, inst.Ask), false
	}
	if inst.SpreadPct > f.maxSpreadPct {
		return contracts.ReasonHighSpread,
			fmt.Sprintf("spread %.4f exceeds %.4f", inst.SpreadPct, f.maxSpreadPct), false
	}
	if inst.MidPrice() < f.minMidPrice {
		return contracts.ReasonLowPrice,
			fmt.Sprintf("mid %.2f below %.2f", inst.MidPrice(), f.minMidPrice), false
	}
	return "", "", true
}

// blockedTicker matches the epic, or its segment after a venue prefix
// such as "US." or "NASDAQ.", against the blocked fund list.
func blockedTicker(epic string) (string, bool) {
	upper := strings.ToUpper(epic)
	if _, ok := blockedTickers[upper]; ok {
		return upper, true
	}
	if i := strings.LastIndex(upper, "."); i >= 0 {
		base := upper[i+1:]
		if _, ok := blockedTickers[base]; ok {
			return base, true
		}
	}
	return "", false
}

func fundNameToken(name string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '(' || r == ')' || r == ',' || r == '.'
	})
	for _, w := range words {
		for _, token := range fundNameTokens {
			if w == token {
				return token, true
			}
		}
	}
	return "", false
}
