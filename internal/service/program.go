package service

import (
	"focuscoach/coaching-app/internal/coaching"
	"focuscoach/coaching-app/internal/domain"
	"time"
)

// programStatus places a user in their program, counting days in loc.
// A nil result means no program window is configured.
func programStatus(u *domain.User, now time.Time, loc *time.Location) *coaching.ProgramStatus {
	subject := coaching.SubjectOf(u)
	subject.CoachingTermStart = inLocation(subject.CoachingTermStart, loc)
	subject.CoachingTermEnd = inLocation(subject.CoachingTermEnd, loc)
	subject.AccessStart = inLocation(subject.AccessStart, loc)
	subject.AccessEnd = inLocation(subject.AccessEnd, loc)
	return coaching.Status(subject, now.In(loc))
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}
