package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// Quote types the provider reports for listed instruments.
const (
	QuoteTypeEquity = "EQUITY"
	QuoteTypeETF    = "ETF"
)

// quoteTypeTTL bounds how long a classification is trusted; listings
// change class rarely.
const quoteTypeTTL = 24 * time.Hour

// QuoteType returns the provider's instrument classification for a
// ticker, e.g. "EQUITY" or "ETF". An empty result means the ticker is
// unknown to the provider. Classifications are cached when a cache is
// attached.
func (c *Client) QuoteType(ctx context.Context, ticker string) (string, error) {
	cacheKey := "quotetype:" + ticker
	if c.cache != nil {
		var cached string
		if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	u := fmt.Sprintf("%s/v1/finance/quoteType/?symbol=%s", c.baseURL, url.QueryEscape(ticker))
	body, err := c.http.GetBody(ctx, u)
	if err != nil {
		return "", fmt.Errorf("quoteType request for %s: %w", ticker, err)
	}
	result := gjson.GetBytes(body, "quoteType.result.0")
	if !result.Exists() {
		return "", nil
	}
	quoteType := result.Get("quoteType").String()

	if c.cache != nil && quoteType != "" {
		if err := c.cache.Set(ctx, cacheKey, quoteType, quoteTypeTTL); err != nil {
			c.log.WithError(err).Debug("Quote type cache write failed")
		}
	}
	return quoteType, nil
}

// ValidateTicker reports whether the ticker exists at the provider and
// classifies as a common equity. The bool distinguishes "known but not
// an equity" from transport errors.
func (c *Client) ValidateTicker(ctx context.Context, ticker string) (string, bool, error) {
	qt, err := c.QuoteType(ctx, ticker)
	if err != nil {
		return "", false, err
	}
	if qt == "" {
		return "", false, nil
	}
	return qt, qt == QuoteTypeEquity, nil
}
