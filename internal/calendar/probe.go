package calendar

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// DefaultPanel is the liquid ticker panel probed when the session
// calendar is unavailable.
var DefaultPanel = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA"}

// panelMajority is the minimum number of panel tickers that must carry
// a bar for a date to count as a session.
const panelMajority = 3

// Prober checks whether a ticker has a daily bar for a session date.
type Prober interface {
	BarExists(ctx context.Context, ticker string, date time.Time) (bool, error)
}

// PanelProbe resolves an anchor by asking a panel of always-liquid
// tickers whether a candidate date traded. Weekends and holidays fail
// the majority vote and regress the candidate.
type PanelProbe struct {
	prober Prober
	panel  []string
	tz     *time.Location
	log    *logger.Logger
}

func NewPanelProbe(prober Prober, log *logger.Logger) *PanelProbe {
	tz, err := time.LoadLocation("America/New_York")
	if err != nil {
		tz = time.FixedZone("ET", -5*3600)
	}
	return &PanelProbe{
		prober: prober,
		panel:  DefaultPanel,
		tz:     tz,
		log:    log.WithField("component", "calendar.probe"),
	}
}

// Resolve walks back from the requested date, probing each candidate
// until a majority of the panel confirms a closed session.
func (p *PanelProbe) Resolve(ctx context.Context, requested, now time.Time) (contracts.AnchorDate, error) {
	day := contracts.Day(requested)
	for reg := 0; reg <= MaxRegressions; reg++ {
		candidate := day.AddDate(0, 0, -reg)
		close := p.sessionClose(candidate)
		if now.Before(close) {
			// Session would still be open, no point probing it.
			continue
		}

		hits, err := p.vote(ctx, candidate)
		if err != nil {
			return contracts.AnchorDate{}, err
		}
		p.log.WithFields(map[string]interface{}{
			"candidate": candidate.Format("2006-01-02"),
			"hits":      hits,
		}).Debug("Panel probe vote")
		if hits >= panelMajority {
			return contracts.AnchorDate{
				Date:         candidate,
				SessionClose: close,
				Regressions:  reg,
			}, nil
		}
	}
	return contracts.AnchorDate{}, fmt.Errorf("panel probe from %s: %w",
		day.Format("2006-01-02"), contracts.ErrNoClosedSession)
}

func (p *PanelProbe) vote(ctx context.Context, date time.Time) (int, error) {
	var hits int64
	g, gctx := errgroup.WithContext(ctx)
	for _, ticker := range p.panel {
		ticker := ticker
		g.Go(func() error {
			ok, err := p.prober.BarExists(gctx, ticker, date)
			if err != nil {
				// A single failing panel member must not sink the vote.
				p.log.WithError(err).WithField("ticker", ticker).Warn("Panel member probe failed")
				return nil
			}
			if ok {
				atomic.AddInt64(&hits, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(hits), nil
}

func (p *PanelProbe) sessionClose(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 16, 0, 0, 0, p.tz)
}
