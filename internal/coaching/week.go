// Package coaching maps program windows onto Monday-aligned coaching weeks.
package coaching

import "time"

// WeekInfo is the position of "now" inside a program. It is derived on demand and never stored.
// WeekNumber 0 together with IsBeforeWeek1 means the first Monday-aligned week has not begun.
type WeekInfo struct {
	WeekNumber    int       `json:"weekNumber"`
	Week1Start    time.Time `json:"week1Start"`
	IsBeforeWeek1 bool      `json:"isBeforeWeek1"`
}

// Week1Start returns the Monday that opens week 1 of a program starting on start.
// A Monday start is its own week 1; any other day rolls forward to the next Monday.
func Week1Start(start time.Time) time.Time {
	day := midnight(start)
	if day.Weekday() == time.Monday {
		return day
	}
	offset := (8 - int(day.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

// CurrentWeek computes the 1-based program week that now falls in.
func CurrentWeek(start, now time.Time) WeekInfo {
	w1 := Week1Start(start)
	days := daysBetween(w1, now)
	if days < 0 {
		return WeekInfo{WeekNumber: 0, Week1Start: w1, IsBeforeWeek1: true}
	}
	return WeekInfo{WeekNumber: days/7 + 1, Week1Start: w1}
}

// WeekRange returns the first and last calendar day of the given week.
func WeekRange(week1Start time.Time, weekNumber int) (time.Time, time.Time) {
	start := week1Start.AddDate(0, 0, (weekNumber-1)*7)
	return start, start.AddDate(0, 0, 6)
}

// midnight truncates t to the start of its calendar day in t's own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from the date of from to the date of to,
// reading both in from's location. It equals floor((to - from) / 24h) for a
// midnight-aligned from, without daylight-saving drift.
func daysBetween(from, to time.Time) int {
	to = to.In(from.Location())
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
