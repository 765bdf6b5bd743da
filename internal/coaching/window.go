package coaching

import (
	"time"

	"focuscoach/coaching-app/internal/domain"
)

// WindowSource says which pair of subject fields a window came from.
type WindowSource string

const (
	SourceCoachingTerm WindowSource = "coaching_term"
	SourcePaidAccess   WindowSource = "paid_access"
)

// ProgramWindow is the span of a subject's active program. End is optional.
type ProgramWindow struct {
	Start  time.Time    `json:"start"`
	End    *time.Time   `json:"end,omitempty"`
	Source WindowSource `json:"source"`
}

// Subject holds the fields of a student record the week calculator reads.
type Subject struct {
	HasPaid           bool
	CoachingTermStart *time.Time
	CoachingTermEnd   *time.Time
	AccessStart       *time.Time
	AccessEnd         *time.Time
}

// SubjectOf extracts the program fields from a user.
func SubjectOf(u *domain.User) Subject {
	return Subject{
		HasPaid:           u.HasPaid,
		CoachingTermStart: u.CoachingTermStart,
		CoachingTermEnd:   u.CoachingTermEnd,
		AccessStart:       u.AccessStart,
		AccessEnd:         u.AccessEnd,
	}
}

// WindowFor selects the subject's single active window: paid access when HasPaid,
// the free coaching term otherwise. It returns nil when that window has no start.
func WindowFor(s Subject) *ProgramWindow {
	if s.HasPaid {
		if s.AccessStart == nil {
			return nil
		}
		return &ProgramWindow{Start: *s.AccessStart, End: s.AccessEnd, Source: SourcePaidAccess}
	}
	if s.CoachingTermStart == nil {
		return nil
	}
	return &ProgramWindow{Start: *s.CoachingTermStart, End: s.CoachingTermEnd, Source: SourceCoachingTerm}
}

// TotalWeeks is the window length in weeks, rounded up. Open-ended windows report 0.
func TotalWeeks(w ProgramWindow) int {
	if w.End == nil {
		return 0
	}
	days := daysBetween(w.Start, *w.End)
	if days < 0 {
		days = -days
	}
	return (days + 6) / 7
}

// WeeksRemaining is only used for display; it never feeds back into WeekNumber.
func WeeksRemaining(w ProgramWindow, info WeekInfo) int {
	total := TotalWeeks(w)
	if total == 0 {
		return 0
	}
	left := total - info.WeekNumber
	if left < 0 {
		return 0
	}
	return left
}

// ProgramStatus is everything a dashboard needs to render a subject's program position.
type ProgramStatus struct {
	Window         ProgramWindow `json:"window"`
	Week           WeekInfo      `json:"week"`
	WeekStart      *time.Time    `json:"weekStart,omitempty"`
	WeekEnd        *time.Time    `json:"weekEnd,omitempty"`
	TotalWeeks     int           `json:"totalWeeks"`
	WeeksRemaining int           `json:"weeksRemaining"`
	Ended          bool          `json:"ended"`
}

// Status returns nil when the subject has no program window configured; callers
// render that as "not applicable" rather than as a failure.
func Status(s Subject, now time.Time) *ProgramStatus {
	w := WindowFor(s)
	if w == nil {
		return nil
	}
	info := CurrentWeek(w.Start, now)
	st := &ProgramStatus{
		Window:         *w,
		Week:           info,
		TotalWeeks:     TotalWeeks(*w),
		WeeksRemaining: WeeksRemaining(*w, info),
	}
	if info.WeekNumber >= 1 {
		start, end := WeekRange(info.Week1Start, info.WeekNumber)
		st.WeekStart, st.WeekEnd = &start, &end
	}
	if w.End != nil && daysBetween(*w.End, now) > 0 {
		st.Ended = true
	}
	return st
}
