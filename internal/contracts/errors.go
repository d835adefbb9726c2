package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across pipeline stages.
var (
	// ErrNoValidMapping means every mapping strategy was exhausted
	// without the provider confirming a ticker.
	ErrNoValidMapping = errors.New("no valid symbol mapping")

	// ErrNoClosedSession means no trading session with a completed
	// close could be resolved within the regression bound.
	ErrNoClosedSession = errors.New("no closed trading session within regression bound")

	// ErrInsufficientData means a series is too short for the
	// indicator windows.
	ErrInsufficientData = errors.New("insufficient price history")

	// ErrNonEquity means the mapped symbol resolved to a fund or
	// other non-equity instrument.
	ErrNonEquity = errors.New("symbol is not a common equity")

	// ErrEmptyUniverse means no instrument survived to scoring. The
	// run is aborted rather than emitting an empty ranking.
	ErrEmptyUniverse = errors.New("no instruments survived the pipeline")
)

// FetchError wraps a per-ticker acquisition failure after both the
// batch and fallback paths were tried.
type FetchError struct {
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
