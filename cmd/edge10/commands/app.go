package commands

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wonny/edge10/backend/internal/acquisition"
	"github.com/wonny/edge10/backend/internal/artifacts"
	"github.com/wonny/edge10/backend/internal/calendar"
	"github.com/wonny/edge10/backend/internal/external/capital"
	"github.com/wonny/edge10/backend/internal/external/yahoo"
	"github.com/wonny/edge10/backend/internal/features"
	"github.com/wonny/edge10/backend/internal/labeling"
	"github.com/wonny/edge10/backend/internal/mapping"
	"github.com/wonny/edge10/backend/internal/pipeline"
	"github.com/wonny/edge10/backend/internal/scoring"
	"github.com/wonny/edge10/backend/internal/selection"
	"github.com/wonny/edge10/backend/pkg/config"
	"github.com/wonny/edge10/backend/pkg/database"
	"github.com/wonny/edge10/backend/pkg/httputil"
	"github.com/wonny/edge10/backend/pkg/logger"
	"github.com/wonny/edge10/backend/pkg/redis"
)

// providerRateLimit caps local request pacing against the market data
// provider, in addition to the shared redis window when available.
const providerRateLimit = rate.Limit(5)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	yahoo    *yahoo.Client
	mappings mapping.Repository
	store    *artifacts.RunStore
	pipe     *pipeline.Pipeline
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without shared rate limiting")
		redisClient = &redis.Client{}
	}

	httpClient := httputil.NewWithTimeout(cfg, log, cfg.Yahoo.RequestTimeout)
	if redisClient.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(redisClient, "edge10"), redis.YahooRateLimit)
	}
	yahooClient := yahoo.New(cfg, httpClient, log)
	if redisClient.Enabled() {
		yahooClient = yahooClient.WithCache(redis.NewCache(redisClient, "edge10"))
	}

	mappingRepo := mapping.NewPostgresRepository(db)
	store := artifacts.NewRunStore(db)

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		yahoo:    yahooClient,
		mappings: mappingRepo,
		store:    store,
	}
	a.pipe = a.buildPipeline()
	return a, nil
}

func (a *app) buildPipeline() *pipeline.Pipeline {
	cfg, log := a.cfg, a.log

	feed := capital.NewFeed(cfg.Capital.InstrumentsCSV, log)
	filter := capital.NewFilter(cfg.Capital.MaxSpreadPct, cfg.Capital.MinMidPrice, log)
	resolver := mapping.NewResolver(a.mappings, a.yahoo, nil, log)
	probe := calendar.NewPanelProbe(a.yahoo, log)
	calResolver := calendar.NewResolver(a.yahoo, probe, log)
	limiter := rate.NewLimiter(providerRateLimit, int(providerRateLimit))
	fetcher := acquisition.NewFetcher(a.yahoo, limiter, cfg.Yahoo, log)

	return pipeline.New(pipeline.Deps{
		Feed:     feed,
		Filter:   filter,
		Resolver: resolver,
		Calendar: calResolver,
		Fetcher:  fetcher,
		Deriver:  features.NewDeriver(),
		Labeler:  labeling.NewLabeler(),
		Scorer:   scoring.NewScorer(log),
		Selector: selection.NewSelector(cfg.Pipeline.TopN, cfg.Pipeline.BroadN, log),
		Enricher: pipeline.NewMarketEnricher(a.yahoo, log),
		Sink:     artifacts.NewCSVWriter(cfg.Pipeline.OutDir, log),
		Store:    a.store,
	}, log)
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
