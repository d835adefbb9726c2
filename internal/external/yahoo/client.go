// Package yahoo implements the market data provider client used for
// daily OHLCV history, symbol validation and calendar probing.
package yahoo

import (
	"github.com/wonny/edge10/backend/pkg/config"
	"github.com/wonny/edge10/backend/pkg/httputil"
	"github.com/wonny/edge10/backend/pkg/logger"
	"github.com/wonny/edge10/backend/pkg/redis"
)

// Client wraps the shared retrying HTTP client with the provider's
// endpoints. All methods are safe for concurrent use.
type Client struct {
	http    *httputil.Client
	baseURL string
	cache   *redis.Cache
	log     *logger.Logger
}

func New(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: cfg.Yahoo.BaseURL,
		log:     log.WithField("component", "yahoo"),
	}
}

// WithCache enables caching of quote-type lookups.
func (c *Client) WithCache(cache *redis.Cache) *Client {
	c.cache = cache
	return c
}
