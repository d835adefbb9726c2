package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/edge10/backend/internal/contracts"
)

// FetchDailyBars loads the daily OHLCV history of a single ticker over
// [from, to]. Bars with a null close are skipped.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) (*contracts.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit&includeAdjustedClose=true",
		c.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix())

	body, err := c.http.GetBody(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("chart request for %s: %w", ticker, err)
	}

	root := gjson.ParseBytes(body)
	if errDesc := root.Get("chart.error.description"); errDesc.Exists() && errDesc.String() != "" {
		return nil, fmt.Errorf("chart error for %s: %s", ticker, errDesc.String())
	}
	result := root.Get("chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("chart response for %s has no result", ticker)
	}
	series, err := parseChartResult(result, ticker)
	if err != nil {
		return nil, err
	}
	return series, nil
}

// FetchDailyBatch loads daily history for up to a page of tickers in a
// single spark request. Tickers absent from the response, or present
// without usable OHLCV arrays, are simply missing from the returned
// map so the caller can fall back per ticker.
func (c *Client) FetchDailyBatch(ctx context.Context, tickers []string, from, to time.Time) (map[string]*contracts.PriceSeries, error) {
	if len(tickers) == 0 {
		return map[string]*contracts.PriceSeries{}, nil
	}
	u := fmt.Sprintf("%s/v8/finance/spark?symbols=%s&period1=%d&period2=%d&interval=1d&indicators=quote&includeTimestamps=true",
		c.baseURL, url.QueryEscape(strings.Join(tickers, ",")), from.Unix(), to.Unix())

	body, err := c.http.GetBody(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("spark request: %w", err)
	}

	out := make(map[string]*contracts.PriceSeries, len(tickers))
	results := gjson.GetBytes(body, "spark.result")
	if !results.Exists() {
		// Some gateways return the map form instead of the array form.
		results = gjson.ParseBytes(body)
	}
	results.ForEach(func(_, item gjson.Result) bool {
		symbol := item.Get("symbol").String()
		resp := item.Get("response.0")
		if symbol == "" || !resp.Exists() {
			return true
		}
		series, err := parseChartResult(resp, symbol)
		if err != nil {
			c.log.WithField("ticker", symbol).Debug("Batch payload unusable, leaving for fallback")
			return true
		}
		out[symbol] = series
		return true
	})
	return out, nil
}

// parseChartResult converts one chart-shaped result object into a
// price series. Timestamps are normalized to the session date at
// midnight UTC.
func parseChartResult(result gjson.Result, ticker string) (*contracts.PriceSeries, error) {
	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	if len(timestamps) == 0 || !quote.Exists() {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	adjcloses := result.Get("indicators.adjclose.0.adjclose").Array()

	series := &contracts.PriceSeries{Ticker: ticker}
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		bar := contracts.Bar{
			Date:  contracts.Day(time.Unix(ts.Int(), 0)),
			Close: closes[i].Float(),
		}
		if i < len(opens) {
			bar.Open = opens[i].Float()
		}
		if i < len(highs) {
			bar.High = highs[i].Float()
		}
		if i < len(lows) {
			bar.Low = lows[i].Float()
		}
		if i < len(volumes) {
			bar.Volume = volumes[i].Int()
		}
		if i < len(adjcloses) && adjcloses[i].Type != gjson.Null {
			bar.AdjClose = adjcloses[i].Float()
		} else {
			bar.AdjClose = bar.Close
		}
		series.Bars = append(series.Bars, bar)
	}
	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("no usable bars for %s", ticker)
	}
	return series, nil
}
