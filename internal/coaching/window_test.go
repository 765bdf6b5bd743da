package coaching

import (
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

func TestWindowFor(t *testing.T) {
	term := date(2024, 1, 3)
	access := date(2024, 2, 5)

	tests := []struct {
		name    string
		subject Subject
		want    *time.Time
		source  WindowSource
	}{
		{"nothing configured", Subject{}, nil, ""},
		{"free term", Subject{CoachingTermStart: ptr(term)}, &term, SourceCoachingTerm},
		{"paid uses access window", Subject{HasPaid: true, CoachingTermStart: ptr(term), AccessStart: ptr(access)}, &access, SourcePaidAccess},
		{"paid without access start", Subject{HasPaid: true, CoachingTermStart: ptr(term)}, nil, ""},
		{"unpaid ignores access window", Subject{AccessStart: ptr(access)}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowFor(tt.subject)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("got %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("got nil window")
			}
			if !got.Start.Equal(*tt.want) || got.Source != tt.source {
				t.Fatalf("got start %s source %s, want %s %s", got.Start, got.Source, *tt.want, tt.source)
			}
		})
	}
}

func TestTotalWeeks(t *testing.T) {
	start := date(2024, 1, 1)
	tests := []struct {
		end  *time.Time
		want int
	}{
		{nil, 0},
		{ptr(date(2024, 1, 1)), 0},
		{ptr(date(2024, 1, 8)), 1},
		{ptr(date(2024, 1, 9)), 2},
		{ptr(date(2024, 3, 25)), 12},
	}
	for _, tt := range tests {
		if got := TotalWeeks(ProgramWindow{Start: start, End: tt.end}); got != tt.want {
			t.Errorf("TotalWeeks(end=%v) = %d, want %d", tt.end, got, tt.want)
		}
	}
}

func TestTotalWeeks_EndBeforeStartUsesAbsoluteSpan(t *testing.T) {
	w := ProgramWindow{Start: date(2024, 1, 15), End: ptr(date(2024, 1, 1))}
	if got := TotalWeeks(w); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestStatus_NoWindowIsNil(t *testing.T) {
	if st := Status(Subject{}, date(2024, 4, 1)); st != nil {
		t.Fatalf("got %+v, want nil", st)
	}
}

func TestStatus_InProgram(t *testing.T) {
	s := Subject{CoachingTermStart: ptr(date(2024, 4, 3)), CoachingTermEnd: ptr(date(2024, 6, 26))}
	st := Status(s, date(2024, 4, 17))
	if st == nil {
		t.Fatal("got nil status")
	}
	if st.Week.WeekNumber != 2 {
		t.Errorf("week = %d, want 2", st.Week.WeekNumber)
	}
	if st.WeekStart == nil || !st.WeekStart.Equal(date(2024, 4, 15)) {
		t.Errorf("weekStart = %v, want 2024-04-15", st.WeekStart)
	}
	if st.WeekEnd == nil || !st.WeekEnd.Equal(date(2024, 4, 21)) {
		t.Errorf("weekEnd = %v, want 2024-04-21", st.WeekEnd)
	}
	if st.TotalWeeks != 12 || st.WeeksRemaining != 10 {
		t.Errorf("total/remaining = %d/%d, want 12/10", st.TotalWeeks, st.WeeksRemaining)
	}
	if st.Ended {
		t.Error("program reported as ended")
	}
}

func TestStatus_BeforeWeek1HasNoRange(t *testing.T) {
	st := Status(Subject{CoachingTermStart: ptr(date(2024, 4, 3))}, date(2024, 4, 4))
	if st == nil || !st.Week.IsBeforeWeek1 {
		t.Fatalf("got %+v, want before week 1", st)
	}
	if st.WeekStart != nil || st.WeekEnd != nil {
		t.Error("expected no week range before week 1")
	}
}

func TestStatus_Ended(t *testing.T) {
	s := Subject{HasPaid: true, AccessStart: ptr(date(2024, 1, 1)), AccessEnd: ptr(date(2024, 2, 1))}
	st := Status(s, date(2024, 3, 1))
	if st == nil || !st.Ended || st.WeeksRemaining != 0 {
		t.Fatalf("got %+v, want ended with 0 weeks remaining", st)
	}
}
