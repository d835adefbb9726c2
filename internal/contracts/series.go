package contracts

import "time"

// Bar is one daily OHLCV record. Date carries the session date only,
// normalized to midnight UTC.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// PriceSeries holds the daily bars of one ticker in ascending date
// order.
type PriceSeries struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// BarOn returns the bar for the given session date, if present.
func (s *PriceSeries) BarOn(date time.Time) (Bar, bool) {
	for i := len(s.Bars) - 1; i >= 0; i-- {
		if SameDay(s.Bars[i].Date, date) {
			return s.Bars[i], true
		}
		if s.Bars[i].Date.Before(date) {
			break
		}
	}
	return Bar{}, false
}

// BarsThrough returns the bars dated on or before the given session
// date. The returned slice aliases the series.
func (s *PriceSeries) BarsThrough(date time.Time) []Bar {
	cut := len(s.Bars)
	for cut > 0 && s.Bars[cut-1].Date.After(dayEnd(date)) {
		cut--
	}
	return s.Bars[:cut]
}

// BarsBefore returns the bars dated strictly before the given session
// date. The returned slice aliases the series.
func (s *PriceSeries) BarsBefore(date time.Time) []Bar {
	cut := len(s.Bars)
	for cut > 0 && !s.Bars[cut-1].Date.Before(dayStart(date)) {
		cut--
	}
	return s.Bars[:cut]
}

// BarsAfter returns the bars dated strictly after the given session
// date.
func (s *PriceSeries) BarsAfter(date time.Time) []Bar {
	for i, b := range s.Bars {
		if b.Date.After(dayEnd(date)) {
			return s.Bars[i:]
		}
	}
	return nil
}

// DropLast removes the most recent bar in place.
func (s *PriceSeries) DropLast() {
	if len(s.Bars) > 0 {
		s.Bars = s.Bars[:len(s.Bars)-1]
	}
}

// SameDay reports whether two timestamps fall on the same UTC
// calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Day normalizes a timestamp to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayStart(t time.Time) time.Time { return Day(t) }

func dayEnd(t time.Time) time.Time {
	return Day(t).Add(24*time.Hour - time.Nanosecond)
}
