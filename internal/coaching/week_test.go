package coaching

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestWeek1Start_MondayIsItsOwnWeek1 checks every Monday in a year maps to itself.
func TestWeek1Start_MondayIsItsOwnWeek1(t *testing.T) {
	for d := date(2024, 1, 1); d.Year() == 2024; d = d.AddDate(0, 0, 7) {
		if got := Week1Start(d); !got.Equal(d) {
			t.Fatalf("Week1Start(%s) = %s, want same day", d.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

// TestWeek1Start_NonMondayRollsForward checks the next-Monday rule for every other weekday.
func TestWeek1Start_NonMondayRollsForward(t *testing.T) {
	for d := date(2024, 1, 2); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Monday {
			continue
		}
		got := Week1Start(d)
		if got.Weekday() != time.Monday {
			t.Fatalf("Week1Start(%s) = %s, not a Monday", d.Format("2006-01-02"), got.Weekday())
		}
		diff := got.Sub(d)
		if diff <= 0 || diff > 7*24*time.Hour {
			t.Fatalf("Week1Start(%s) = %s, want 1..7 days later", d.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

func TestWeek1Start_SundayIsOneDay(t *testing.T) {
	sunday := date(2024, 4, 7)
	if got, want := Week1Start(sunday), date(2024, 4, 8); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWeek1Start_TruncatesTimeOfDay(t *testing.T) {
	start := time.Date(2024, 4, 1, 17, 30, 0, 0, time.UTC)
	if got, want := Week1Start(start), date(2024, 4, 1); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		now        time.Time
		wantWeek   int
		wantBefore bool
		wantW1     time.Time
	}{
		{"wednesday start, first monday", date(2024, 4, 3), date(2024, 4, 8), 1, false, date(2024, 4, 8)},
		{"wednesday start, before program", date(2024, 4, 3), date(2024, 4, 1), 0, true, date(2024, 4, 8)},
		{"wednesday start, between start and monday", date(2024, 4, 3), date(2024, 4, 5), 0, true, date(2024, 4, 8)},
		{"monday start, two weeks in", date(2024, 4, 1), date(2024, 4, 15), 3, false, date(2024, 4, 1)},
		{"monday start, same day afternoon", date(2024, 4, 1), time.Date(2024, 4, 1, 15, 0, 0, 0, time.UTC), 1, false, date(2024, 4, 1)},
		{"monday start, last day of week 1", date(2024, 4, 1), time.Date(2024, 4, 7, 23, 59, 0, 0, time.UTC), 1, false, date(2024, 4, 1)},
		{"monday start, week 2", date(2024, 4, 1), date(2024, 4, 8), 2, false, date(2024, 4, 1)},
		{"night before week 1", date(2024, 4, 1), time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), 0, true, date(2024, 4, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentWeek(tt.start, tt.now)
			if got.WeekNumber != tt.wantWeek || got.IsBeforeWeek1 != tt.wantBefore {
				t.Errorf("CurrentWeek = {week %d, before %v}, want {week %d, before %v}",
					got.WeekNumber, got.IsBeforeWeek1, tt.wantWeek, tt.wantBefore)
			}
			if !got.Week1Start.Equal(tt.wantW1) {
				t.Errorf("Week1Start = %s, want %s", got.Week1Start, tt.wantW1)
			}
		})
	}
}

// TestCurrentWeek_Boundaries checks week 1 and week 2 open exactly on their Mondays for any start weekday.
func TestCurrentWeek_Boundaries(t *testing.T) {
	for start := date(2024, 6, 1); start.Before(date(2024, 6, 15)); start = start.AddDate(0, 0, 1) {
		w1 := Week1Start(start)
		if got := CurrentWeek(start, w1); got.WeekNumber != 1 || got.IsBeforeWeek1 {
			t.Errorf("start %s: at week1Start got %+v", start.Format("2006-01-02"), got)
		}
		if got := CurrentWeek(start, w1.AddDate(0, 0, 7)); got.WeekNumber != 2 {
			t.Errorf("start %s: a week after week1Start got week %d", start.Format("2006-01-02"), got.WeekNumber)
		}
		if got := CurrentWeek(start, w1.Add(-time.Minute)); got.WeekNumber != 0 || !got.IsBeforeWeek1 {
			t.Errorf("start %s: just before week1Start got %+v", start.Format("2006-01-02"), got)
		}
	}
}

func TestCurrentWeek_AcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, loc) // Monday before the March 10 shift
	now := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
	if got := CurrentWeek(start, now); got.WeekNumber != 2 {
		t.Fatalf("got week %d, want 2", got.WeekNumber)
	}
}

func TestWeekRange(t *testing.T) {
	w1 := date(2024, 4, 8)
	start, end := WeekRange(w1, 3)
	if !start.Equal(date(2024, 4, 22)) || !end.Equal(date(2024, 4, 28)) {
		t.Fatalf("WeekRange(3) = %s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	start, end = WeekRange(w1, 1)
	if !start.Equal(w1) || !end.Equal(date(2024, 4, 14)) {
		t.Fatalf("WeekRange(1) = %s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
}
