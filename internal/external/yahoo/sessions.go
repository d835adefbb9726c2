package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/edge10/backend/internal/contracts"
)

// DefaultCalendarSymbol is the reference index used to enumerate US
// equity trading sessions.
const DefaultCalendarSymbol = "^GSPC"

const regularCloseHour = 16 // exchange local time

// SessionCalendar describes the recent trading sessions of the
// reference exchange.
type SessionCalendar struct {
	Timezone   *time.Location
	Sessions   []time.Time // session dates, midnight UTC, ascending
	CurrentEnd time.Time   // regular close of the in-progress or latest session
}

// CloseOf returns the regular close instant of the given session date.
func (c *SessionCalendar) CloseOf(date time.Time) time.Time {
	if !c.CurrentEnd.IsZero() && contracts.SameDay(c.CurrentEnd, date) {
		return c.CurrentEnd
	}
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, regularCloseHour, 0, 0, 0, c.Timezone)
}

// LatestOnOrBefore returns the most recent session date not after the
// given date.
func (c *SessionCalendar) LatestOnOrBefore(date time.Time) (time.Time, bool) {
	day := contracts.Day(date)
	for i := len(c.Sessions) - 1; i >= 0; i-- {
		if !c.Sessions[i].After(day) {
			return c.Sessions[i], true
		}
	}
	return time.Time{}, false
}

// FetchSessionCalendar loads the trading sessions of the reference
// index over [from, to], along with the exchange timezone needed to
// place session closes.
func (c *Client) FetchSessionCalendar(ctx context.Context, symbol string, from, to time.Time) (*SessionCalendar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	body, err := c.http.GetBody(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("session calendar request: %w", err)
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("session calendar response has no result")
	}

	tzName := result.Get("meta.exchangeTimezoneName").String()
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.FixedZone("ET", -5*3600)
		c.log.WithField("tz", tzName).Warn("Unknown exchange timezone, using fixed offset")
	}

	cal := &SessionCalendar{Timezone: loc}
	for _, ts := range result.Get("timestamp").Array() {
		cal.Sessions = append(cal.Sessions, contracts.Day(time.Unix(ts.Int(), 0)))
	}
	if end := result.Get("meta.currentTradingPeriod.regular.end"); end.Exists() {
		cal.CurrentEnd = time.Unix(end.Int(), 0)
	}
	if len(cal.Sessions) == 0 {
		return nil, fmt.Errorf("session calendar for %s is empty", symbol)
	}
	return cal, nil
}
