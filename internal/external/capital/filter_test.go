package capital

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

func okInst(epic string) contracts.Instrument {
	return contracts.Instrument{
		Epic: epic, Name: "Plain Equity Corp",
		Bid: 99.9, Ask: 100.1, SpreadPct: 0.002, IsUSStock: true,
	}
}

func TestFilterGates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*contracts.Instrument)
		reason contracts.ReasonCode
	}{
		{"not us", func(i *contracts.Instrument) { i.IsUSStock = false }, contracts.ReasonNotUSStock},
		{"etf name", func(i *contracts.Instrument) { i.Name = "Super Growth ETF" }, contracts.ReasonETF},
		{"leveraged name", func(i *contracts.Instrument) { i.Name = "Oil 3x Daily Long" }, contracts.ReasonETF},
		{"no quote", func(i *contracts.Instrument) { i.Bid = 0 }, contracts.ReasonNotTradable},
		{"wide spread", func(i *contracts.Instrument) { i.SpreadPct = 0.01 }, contracts.ReasonHighSpread},
		{"penny price", func(i *contracts.Instrument) { i.Bid, i.Ask = 1.00, 1.001 }, contracts.ReasonLowPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := okInst("US.TEST")
			tt.mutate(&inst)
			ledger := contracts.NewLedger()

			kept := NewFilter(0.003, 2.0, logger.NewNop()).Apply([]contracts.Instrument{inst}, ledger)
			assert.Empty(t, kept)
			records := ledger.Records()
			require.Len(t, records, 1)
			assert.Equal(t, tt.reason, records[0].Reason)
			assert.Equal(t, contracts.StageUniverse, records[0].Stage)
		})
	}
}

func TestFilterBlocksKnownFundTickers(t *testing.T) {
	tests := []struct {
		name string
		epic string
	}{
		{"bare ticker", "SPY"},
		{"prefixed ticker", "US.TQQQ"},
		{"lowercase", "us.qqq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := contracts.NewLedger()
			kept := NewFilter(0.003, 2.0, logger.NewNop()).Apply([]contracts.Instrument{okInst(tt.epic)}, ledger)
			assert.Empty(t, kept)
			records := ledger.Records()
			require.Len(t, records, 1)
			assert.Equal(t, contracts.ReasonETF, records[0].Reason)
		})
	}

	_, hit := blockedTicker("US.SPYGLASS")
	assert.False(t, hit, "only exact base tickers are blocked")
}

func TestFilterKeepsCleanInstrument(t *testing.T) {
	ledger := contracts.NewLedger()
	kept := NewFilter(0.003, 2.0, logger.NewNop()).Apply([]contracts.Instrument{okInst("US.TSLA")}, ledger)
	assert.Len(t, kept, 1)
	assert.Equal(t, 0, ledger.Len())
}

func TestFundNameTokenWholeWordsOnly(t *testing.T) {
	_, hit := fundNameToken("Trustmark Corporation")
	assert.False(t, hit, "substrings must not match")

	token, hit := fundNameToken("Vanguard Total Market Index Fund")
	assert.True(t, hit)
	assert.NotEmpty(t, token)
}

func TestFeedParse(t *testing.T) {
	csvData := strings.Join([]string{
		"epic,name,sector,country,asset_class,bid,ask,is_us_stock",
		"US.TSLA,Tesla Inc,Consumer Cyclical,US,US stocks,329.90,330.10,true",
		"US.BAD,Broken Row,Tech,US,US stocks,notanumber,1.0,true",
		",Missing Epic,Tech,US,US stocks,1.0,1.1,true",
		"DE.SAP,SAP SE,Technology,DE,EU stocks,100.0,100.2,false",
	}, "\n")

	feed := NewFeed("", logger.NewNop())
	instruments, err := feed.parse(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, instruments, 2)

	tsla := instruments[0]
	assert.Equal(t, "US.TSLA", tsla.Epic)
	assert.True(t, tsla.IsUSStock)
	assert.InDelta(t, 330.0, tsla.MidPrice(), 1e-9)
	assert.InDelta(t, 0.2/330.0, tsla.SpreadPct, 1e-9)

	assert.False(t, instruments[1].IsUSStock)
}

func TestFeedParseMissingColumn(t *testing.T) {
	feed := NewFeed("", logger.NewNop())
	_, err := feed.parse(strings.NewReader("epic,name\nUS.TSLA,Tesla"))
	assert.Error(t, err)
}
