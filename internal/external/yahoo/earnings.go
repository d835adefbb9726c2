package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/edge10/backend/internal/contracts"
)

const earningsCalendarURL = "https://finance.yahoo.com/calendar/earnings"

var earningsDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 02, 2006",
}

// EarningsDates scrapes the provider's earnings calendar page for a
// ticker and returns the announcement dates it lists. A ticker with no
// calendar page simply has no dates.
func (c *Client) EarningsDates(ctx context.Context, ticker string) ([]time.Time, error) {
	u := fmt.Sprintf("%s?symbol=%s", earningsCalendarURL, url.QueryEscape(ticker))
	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("earnings calendar request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("earnings calendar for %s: status %d", ticker, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse earnings calendar for %s: %w", ticker, err)
	}

	var dates []time.Time
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		row.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if d, ok := parseEarningsDate(cell.Text()); ok {
				dates = append(dates, d)
				return false
			}
			return true
		})
	})
	return dates, nil
}

// EarningsNear reports whether any announcement falls within the given
// number of days of the anchor date.
func (c *Client) EarningsNear(ctx context.Context, ticker string, anchor time.Time, windowDays int) (bool, error) {
	dates, err := c.EarningsDates(ctx, ticker)
	if err != nil {
		return false, err
	}
	day := contracts.Day(anchor)
	for _, d := range dates {
		diff := contracts.Day(d).Sub(day).Hours() / 24
		if diff >= -float64(windowDays) && diff <= float64(windowDays) {
			return true, nil
		}
	}
	return false, nil
}

func parseEarningsDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	// Cells like "Nov 15, 2025, 4 PMEST" carry a time suffix after the
	// second comma.
	if parts := strings.SplitN(text, ",", 3); len(parts) >= 2 {
		text = strings.TrimSpace(parts[0] + "," + parts[1])
	}
	for _, layout := range earningsDateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
