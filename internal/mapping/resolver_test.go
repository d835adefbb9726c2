package mapping

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// fakeValidator knows a fixed set of tickers and counts lookups.
type fakeValidator struct {
	mu     sync.Mutex
	known  map[string]string // ticker -> quote type
	calls  int
	byTick map[string]int
}

func newFakeValidator(known map[string]string) *fakeValidator {
	return &fakeValidator{known: known, byTick: make(map[string]int)}
}

func (v *fakeValidator) ValidateTicker(_ context.Context, ticker string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	v.byTick[ticker]++
	qt, ok := v.known[ticker]
	if !ok {
		return "", false, nil
	}
	return qt, qt == "EQUITY", nil
}

func inst(epic string) contracts.Instrument {
	return contracts.Instrument{Epic: epic, Bid: 10, Ask: 10.01, IsUSStock: true}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		epic string
		want []string
	}{
		{"US.TSLA", []string{"TSLA", "US.TSLA"}},
		{"NYSE.BRK.B", []string{"BRK.B", "BRK-B", "BRK", "NYSE.BRK.B"}},
		{"AAPL.US", []string{"AAPL.US", "AAPL-US", "AAPL"}},
		{"AAPL", []string{"AAPL"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Candidates(tt.epic), "epic %s", tt.epic)
	}
}

func TestResolveExactAndPattern(t *testing.T) {
	v := newFakeValidator(map[string]string{
		"TSLA":  "EQUITY",
		"BRK-B": "EQUITY",
	})
	r := NewResolver(NewMemoryRepository(), v, nil, logger.NewNop())
	ctx := context.Background()

	m, err := r.Resolve(ctx, inst("US.TSLA"))
	require.NoError(t, err)
	assert.Equal(t, "TSLA", m.Ticker)
	assert.Equal(t, contracts.MappingPattern, m.Confidence)
	assert.False(t, m.ValidatedAt.IsZero())

	m, err = r.Resolve(ctx, inst("US.BRK.B"))
	require.NoError(t, err)
	assert.Equal(t, "BRK-B", m.Ticker)
}

func TestResolveIdempotent(t *testing.T) {
	v := newFakeValidator(map[string]string{"TSLA": "EQUITY"})
	r := NewResolver(NewMemoryRepository(), v, nil, logger.NewNop())
	ctx := context.Background()

	first, err := r.Resolve(ctx, inst("US.TSLA"))
	require.NoError(t, err)
	callsAfterFirst := v.calls

	second, err := r.Resolve(ctx, inst("US.TSLA"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, v.calls, "cached resolve must not hit the provider")
}

func TestResolveConcurrentSingleWriter(t *testing.T) {
	v := newFakeValidator(map[string]string{"TSLA": "EQUITY"})
	r := NewResolver(NewMemoryRepository(), v, nil, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), inst("US.TSLA"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, v.byTick["TSLA"], "validation must run once per epic")
}

func TestResolveNonEquity(t *testing.T) {
	v := newFakeValidator(map[string]string{"SPY": "ETF"})
	r := NewResolver(NewMemoryRepository(), v, nil, logger.NewNop())

	_, err := r.Resolve(context.Background(), inst("US.SPY"))
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNonEquity)

	// A rejected epic must not be cached.
	_, ok, repoErr := r.repo.Get(context.Background(), "US.SPY")
	require.NoError(t, repoErr)
	assert.False(t, ok)
}

func TestResolveNoValidMapping(t *testing.T) {
	v := newFakeValidator(map[string]string{})
	r := NewResolver(NewMemoryRepository(), v, nil, logger.NewNop())

	_, err := r.Resolve(context.Background(), inst("US.ZZZZZ"))
	assert.ErrorIs(t, err, contracts.ErrNoValidMapping)
}

func TestResolveManualOverride(t *testing.T) {
	v := newFakeValidator(map[string]string{})
	r := NewResolver(NewMemoryRepository(), v, map[string]string{"US.ODD": "ODD1"}, logger.NewNop())

	m, err := r.Resolve(context.Background(), inst("US.ODD"))
	require.NoError(t, err)
	assert.Equal(t, "ODD1", m.Ticker)
	assert.Equal(t, contracts.MappingManual, m.Confidence)
}
