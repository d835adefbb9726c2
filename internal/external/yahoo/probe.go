package yahoo

import (
	"context"
	"time"

	"github.com/wonny/edge10/backend/internal/contracts"
)

// BarExists reports whether the ticker has a daily bar for the given
// session date. Used by the calendar panel probe.
func (c *Client) BarExists(ctx context.Context, ticker string, date time.Time) (bool, error) {
	from := date.AddDate(0, 0, -1)
	to := date.AddDate(0, 0, 1)
	series, err := c.FetchDailyBars(ctx, ticker, from, to)
	if err != nil {
		return false, err
	}
	_, ok := series.BarOn(contracts.Day(date))
	return ok, nil
}
