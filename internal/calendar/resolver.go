// Package calendar resolves the evaluation anchor date. A run may only
// anchor on a session whose close has passed, so a requested date is
// walked back until that holds.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/internal/external/yahoo"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// MaxRegressions bounds how many days a requested date may be walked
// back before resolution fails.
const MaxRegressions = 7

// State of a resolution attempt, exposed for status reporting.
type State string

const (
	StateUnresolved State = "unresolved"
	StateProbing    State = "probing"
	StateResolved   State = "resolved"
	StateFailed     State = "failed"
)

// SessionSource provides the reference exchange session calendar.
// Implemented by the market data client.
type SessionSource interface {
	FetchSessionCalendar(ctx context.Context, symbol string, from, to time.Time) (*yahoo.SessionCalendar, error)
}

// Resolver turns a requested date into a closed-session anchor. It
// prefers the reference session calendar and falls back to probing a
// liquid ticker panel when the calendar cannot be loaded.
type Resolver struct {
	source SessionSource
	probe  *PanelProbe
	symbol string
	now    func() time.Time
	log    *logger.Logger

	state State
}

func NewResolver(source SessionSource, probe *PanelProbe, log *logger.Logger) *Resolver {
	return &Resolver{
		source: source,
		probe:  probe,
		symbol: yahoo.DefaultCalendarSymbol,
		now:    time.Now,
		log:    log.WithField("component", "calendar"),
		state:  StateUnresolved,
	}
}

// State returns the state of the last resolution attempt.
func (r *Resolver) State() State { return r.state }

// Resolve walks the requested date back to the most recent session
// with a completed close. Exceeding the regression bound fails with
// ErrNoClosedSession.
func (r *Resolver) Resolve(ctx context.Context, requested time.Time) (contracts.AnchorDate, error) {
	r.state = StateProbing

	anchor, err := r.resolveFromCalendar(ctx, requested)
	if err != nil {
		r.log.WithError(err).Warn("Session calendar unavailable, falling back to panel probe")
		anchor, err = r.probe.Resolve(ctx, requested, r.now())
	}
	if err != nil {
		r.state = StateFailed
		return contracts.AnchorDate{}, err
	}

	r.state = StateResolved
	r.log.WithFields(map[string]interface{}{
		"requested":   requested.Format("2006-01-02"),
		"anchor":      anchor.Date.Format("2006-01-02"),
		"regressions": anchor.Regressions,
	}).Info("Resolved anchor date")
	return anchor, nil
}

func (r *Resolver) resolveFromCalendar(ctx context.Context, requested time.Time) (contracts.AnchorDate, error) {
	day := contracts.Day(requested)
	cal, err := r.source.FetchSessionCalendar(ctx, r.symbol, day.AddDate(0, 0, -21), day.AddDate(0, 0, 1))
	if err != nil {
		return contracts.AnchorDate{}, err
	}

	now := r.now()
	candidate := day
	for reg := 0; reg <= MaxRegressions; reg++ {
		session, ok := cal.LatestOnOrBefore(candidate)
		if !ok || daysBetween(session, day) > MaxRegressions {
			break
		}
		close := cal.CloseOf(session)
		if !now.Before(close) {
			return contracts.AnchorDate{
				Date:         session,
				SessionClose: close,
				Regressions:  daysBetween(session, day),
			}, nil
		}
		// Session still open, step to the day before it.
		candidate = session.AddDate(0, 0, -1)
		if daysBetween(candidate, day) > MaxRegressions {
			break
		}
	}
	return contracts.AnchorDate{}, fmt.Errorf("requested %s: %w", day.Format("2006-01-02"), contracts.ErrNoClosedSession)
}

func daysBetween(earlier, later time.Time) int {
	return int(contracts.Day(later).Sub(contracts.Day(earlier)).Hours() / 24)
}
