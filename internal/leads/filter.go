// Package leads derives filtered, sorted and summarized views over a student's leads.
// Every function is a pure transform; input slices are never modified.
package leads

import (
	"errors"
	"sort"
	"time"

	"focuscoach/coaching-app/internal/domain"
)

// DateFilterKind selects how a lead's creation time is matched.
type DateFilterKind string

const (
	DateAll        DateFilterKind = "all"
	DateLast7Days  DateFilterKind = "last7days"
	DateLast30Days DateFilterKind = "last30days"
	DateCustom     DateFilterKind = "custom"
)

var ErrInvalidDateFilter = errors.New("invalid date filter")

// DateFilter restricts leads by CreatedAt. Custom bounds are inclusive.
type DateFilter struct {
	Kind  DateFilterKind
	Start time.Time
	End   time.Time
}

// Validate checks the kind is known and that a custom range has ordered bounds.
func (d DateFilter) Validate() error {
	switch d.Kind {
	case "", DateAll, DateLast7Days, DateLast30Days:
		return nil
	case DateCustom:
		if d.Start.IsZero() || d.End.IsZero() || d.End.Before(d.Start) {
			return ErrInvalidDateFilter
		}
		return nil
	default:
		return ErrInvalidDateFilter
	}
}

// Filter narrows a lead collection. Empty sets impose no restriction.
type Filter struct {
	Sources        []string
	Statuses       []domain.LeadStatus
	EngagementTags []domain.TagType
	Date           DateFilter
}

// Matches reports whether lead passes every populated criterion of f.
func (f Filter) Matches(lead *domain.Lead, now time.Time) bool {
	if len(f.Sources) > 0 && !containsString(f.Sources, lead.Source) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, lead.Status) {
		return false
	}
	if len(f.EngagementTags) > 0 && !hasAnyTag(lead, f.EngagementTags) {
		return false
	}
	return f.Date.matches(lead.CreatedAt, now)
}

func (d DateFilter) matches(created, now time.Time) bool {
	switch d.Kind {
	case DateLast7Days:
		return !created.Before(now.AddDate(0, 0, -7))
	case DateLast30Days:
		return !created.Before(now.AddDate(0, 0, -30))
	case DateCustom:
		return !created.Before(d.Start) && !created.After(d.End)
	default:
		return true
	}
}

// SortOrder orders a lead collection by creation or last-contact time.
type SortOrder string

const (
	SortCreatedAsc      SortOrder = "createdAsc"
	SortCreatedDesc     SortOrder = "createdDesc"
	SortLastContactAsc  SortOrder = "lastContactAsc"
	SortLastContactDesc SortOrder = "lastContactDesc"
)

// Valid reports whether s is a known order. The empty order is accepted and means createdDesc.
func (s SortOrder) Valid() bool {
	switch s {
	case "", SortCreatedAsc, SortCreatedDesc, SortLastContactAsc, SortLastContactDesc:
		return true
	}
	return false
}

// Select returns the leads matching f, in input order.
func Select(in []domain.Lead, f Filter, now time.Time) []domain.Lead {
	out := make([]domain.Lead, 0, len(in))
	for i := range in {
		if f.Matches(&in[i], now) {
			out = append(out, in[i])
		}
	}
	return out
}

// Sorted returns a copy of in ordered by order. Ties keep their input order.
func Sorted(in []domain.Lead, order SortOrder) []domain.Lead {
	out := make([]domain.Lead, len(in))
	copy(out, in)

	key := func(l *domain.Lead) time.Time { return l.CreatedAt }
	if order == SortLastContactAsc || order == SortLastContactDesc {
		key = func(l *domain.Lead) time.Time { return l.LastContact() }
	}
	desc := order == "" || order == SortCreatedDesc || order == SortLastContactDesc

	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(&out[i]), key(&out[j])
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
	return out
}

// Apply filters then sorts. The two steps commute; filtering first sorts less.
func Apply(in []domain.Lead, f Filter, order SortOrder, now time.Time) []domain.Lead {
	return Sorted(Select(in, f, now), order)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsStatus(set []domain.LeadStatus, v domain.LeadStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func hasAnyTag(lead *domain.Lead, types []domain.TagType) bool {
	for _, t := range types {
		if lead.HasTag(t) {
			return true
		}
	}
	return false
}
