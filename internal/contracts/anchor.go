package contracts

import "time"

// AnchorDate is the resolved evaluation date of a run. Every
// downstream computation is cut at this session, never past it.
type AnchorDate struct {
	Date         time.Time `json:"date"`          // session date, midnight UTC
	SessionClose time.Time `json:"session_close"` // regular close of that session
	Regressions  int       `json:"regressions"`   // days walked back from the requested date
}

// Closed reports whether the anchor session had closed at the given
// instant.
func (a AnchorDate) Closed(now time.Time) bool {
	return !a.SessionClose.IsZero() && !now.Before(a.SessionClose)
}
