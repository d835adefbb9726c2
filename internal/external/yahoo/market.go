package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/edge10/backend/internal/contracts"
)

// DefaultIndexSymbol is the broad market proxy used for the index bias
// input.
const DefaultIndexSymbol = "QQQ"

// IndexBias returns the market direction on the anchor session of the
// given symbol: +1 for an up day, -1 for a down day, 0 when flat.
func (c *Client) IndexBias(ctx context.Context, symbol string, anchor time.Time) (int, error) {
	bar, err := c.barOn(ctx, symbol, anchor)
	if err != nil {
		return 0, err
	}
	switch {
	case bar.Close > bar.Open:
		return 1, nil
	case bar.Close < bar.Open:
		return -1, nil
	}
	return 0, nil
}

// DayStrength returns the intraday return of the symbol on the anchor
// session as a decimal. Used for sector ETF strength.
func (c *Client) DayStrength(ctx context.Context, symbol string, anchor time.Time) (float64, error) {
	bar, err := c.barOn(ctx, symbol, anchor)
	if err != nil {
		return 0, err
	}
	if bar.Open == 0 {
		return 0, fmt.Errorf("zero open for %s on %s", symbol, anchor.Format("2006-01-02"))
	}
	return bar.Close/bar.Open - 1, nil
}

func (c *Client) barOn(ctx context.Context, symbol string, anchor time.Time) (contracts.Bar, error) {
	from := anchor.AddDate(0, 0, -10)
	to := anchor.AddDate(0, 0, 1)
	series, err := c.FetchDailyBars(ctx, symbol, from, to)
	if err != nil {
		return contracts.Bar{}, err
	}
	bars := series.BarsThrough(anchor)
	if len(bars) == 0 {
		return contracts.Bar{}, fmt.Errorf("no bar for %s on or before %s", symbol, anchor.Format("2006-01-02"))
	}
	return bars[len(bars)-1], nil
}
