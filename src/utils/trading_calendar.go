package utils

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

const (
	// DateLayout is the wire format for all provider date parameters.
	DateLayout = "2006-01-02"

	// taipeiMIC is the ISO 10383 code for the Taiwan Stock Exchange.
	taipeiMIC = "xtai"
)

// TradingCalendar answers trading-day questions for the Taiwan market using
// scmhub/calendar, with a plain Mon-Fri fallback when the calendar data is
// unavailable.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

func NewTaiwanCalendar() *TradingCalendar {
	cal := calendar.GetCalendar(taipeiMIC)
	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s'. Using simple fallback (Mon-Fri, Asia/Taipei).", taipeiMIC)
		loc, _ := time.LoadLocation("Asia/Taipei")
		if loc == nil {
			loc = time.UTC // Worst case
		}
		return &TradingCalendar{Fallback: true, Timezone: loc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// DefaultRange returns a [start, end] pair ending at the given time and
// reaching back the requested number of trading days. Used when the request
// omits explicit date pickers.
func (tc *TradingCalendar) DefaultRange(now time.Time, lookbackTradingDays int) (string, string) {
	if tc.Timezone != nil {
		now = now.In(tc.Timezone)
	}
	end := now

	remaining := lookbackTradingDays
	start := end
	// Bounded scan: never walk back more than ~3 calendar days per trading day.
	for guard := 0; remaining > 0 && guard < lookbackTradingDays*3+10; guard++ {
		start = start.AddDate(0, 0, -1)
		if tc.IsTradingDay(start) {
			remaining--
		}
	}

	return start.Format(DateLayout), end.Format(DateLayout)
}
