package contracts

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerFirstRecordWins(t *testing.T) {
	l := NewLedger()
	l.Add("US.TSLA", StageMapping, ReasonMappingFailure, "first")
	l.Add("US.TSLA", StageAcquisition, ReasonFetchFailure, "second")

	records := l.Records()
	require.Len(t, records, 1)
	assert.Equal(t, StageMapping, records[0].Stage)
	assert.Equal(t, "first", records[0].Detail)
	assert.True(t, l.Contains("US.TSLA"))
	assert.False(t, l.Contains("US.AAPL"))
}

func TestLedgerConcurrentAdds(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Add("US.TSLA", StageAcquisition, ReasonFetchFailure, "worker")
			l.Add("US.NVDA", StageAcquisition, ReasonFetchFailure, "worker")
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, l.Len())
}

func TestSeriesCuts(t *testing.T) {
	s := &PriceSeries{Ticker: "T"}
	for i := 0; i < 5; i++ {
		s.Bars = append(s.Bars, Bar{Date: dayN(i), Close: float64(i)})
	}
	anchor := dayN(2)

	assert.Len(t, s.BarsThrough(anchor), 3)
	assert.Len(t, s.BarsBefore(anchor), 2)
	assert.Len(t, s.BarsAfter(anchor), 2)

	bar, ok := s.BarOn(anchor)
	require.True(t, ok)
	assert.Equal(t, 2.0, bar.Close)
}

func dayN(n int) time.Time {
	return time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}
