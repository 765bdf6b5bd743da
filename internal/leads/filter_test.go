package leads

import (
	"testing"
	"time"

	"focuscoach/coaching-app/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var now = time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 9, 0, 0, 0, time.UTC)
}

func tag(t domain.TagType) domain.EngagementTag {
	return domain.EngagementTag{ID: primitive.NewObjectID(), Type: t, CompletedDate: now}
}

func sampleLeads() []domain.Lead {
	follow := day(30)
	return []domain.Lead{
		{ID: primitive.NewObjectID(), FirstName: "Ana", Source: "Instagram", Status: domain.LeadStatusNew, CreatedAt: day(1)},
		{ID: primitive.NewObjectID(), FirstName: "Ben", Source: "Referral", Status: domain.LeadStatusConverted, CreatedAt: day(20),
			EngagementTags: []domain.EngagementTag{tag(domain.TagDMSent)}},
		{ID: primitive.NewObjectID(), FirstName: "Cy", Source: "Instagram", Status: domain.LeadStatusContacted, CreatedAt: day(28), FollowUpDate: &follow,
			EngagementTags: []domain.EngagementTag{tag(domain.TagEngagementDay1), tag(domain.TagCallBooked)}},
		{ID: primitive.NewObjectID(), FirstName: "Di", Source: "Facebook", Status: domain.LeadStatusLost, CreatedAt: day(25)},
		{ID: primitive.NewObjectID(), FirstName: "Ed", Source: "Instagram", Status: domain.LeadStatusConverted, CreatedAt: day(15)},
	}
}

func names(in []domain.Lead) []string {
	out := make([]string, len(in))
	for i, l := range in {
		out[i] = l.FirstName
	}
	return out
}

func equalNames(t *testing.T, got []domain.Lead, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func TestSelect_EmptyFilterKeepsAll(t *testing.T) {
	equalNames(t, Select(sampleLeads(), Filter{}, now), "Ana", "Ben", "Cy", "Di", "Ed")
}

func TestSelect_Sources(t *testing.T) {
	equalNames(t, Select(sampleLeads(), Filter{Sources: []string{"Referral", "Facebook"}}, now), "Ben", "Di")
}

func TestSelect_Statuses(t *testing.T) {
	f := Filter{Statuses: []domain.LeadStatus{domain.LeadStatusConverted}}
	equalNames(t, Select(sampleLeads(), f, now), "Ben", "Ed")
}

func TestSelect_TagsMatchAny(t *testing.T) {
	f := Filter{EngagementTags: []domain.TagType{domain.TagDMSent, domain.TagCallBooked}}
	equalNames(t, Select(sampleLeads(), f, now), "Ben", "Cy")
}

func TestSelect_Dates(t *testing.T) {
	tests := []struct {
		name string
		date DateFilter
		want []string
	}{
		{"all", DateFilter{Kind: DateAll}, []string{"Ana", "Ben", "Cy", "Di", "Ed"}},
		{"last 7 days", DateFilter{Kind: DateLast7Days}, []string{"Cy", "Di"}},
		{"last 30 days", DateFilter{Kind: DateLast30Days}, []string{"Ben", "Cy", "Di", "Ed"}},
		{"custom inclusive", DateFilter{Kind: DateCustom, Start: day(15), End: day(20)}, []string{"Ben", "Ed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equalNames(t, Select(sampleLeads(), Filter{Date: tt.date}, now), tt.want...)
		})
	}
}

func TestSelect_CombinedCriteria(t *testing.T) {
	f := Filter{Sources: []string{"Instagram"}, Statuses: []domain.LeadStatus{domain.LeadStatusConverted, domain.LeadStatusNew}}
	equalNames(t, Select(sampleLeads(), f, now), "Ana", "Ed")
}

func TestSorted(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortCreatedAsc, []string{"Ana", "Ed", "Ben", "Di", "Cy"}},
		{SortCreatedDesc, []string{"Cy", "Di", "Ben", "Ed", "Ana"}},
		{"", []string{"Cy", "Di", "Ben", "Ed", "Ana"}},
		{SortLastContactDesc, []string{"Cy", "Di", "Ben", "Ed", "Ana"}},
		{SortLastContactAsc, []string{"Ana", "Ed", "Ben", "Di", "Cy"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			equalNames(t, Sorted(sampleLeads(), tt.order), tt.want...)
		})
	}
}

func TestSorted_LastContactFallsBackToCreated(t *testing.T) {
	late := day(31)
	in := []domain.Lead{
		{FirstName: "old-but-recent-contact", CreatedAt: day(1), FollowUpDate: &late},
		{FirstName: "new", CreatedAt: day(20)},
	}
	equalNames(t, Sorted(in, SortLastContactDesc), "old-but-recent-contact", "new")
	equalNames(t, Sorted(in, SortCreatedDesc), "new", "old-but-recent-contact")
}

func TestSorted_DoesNotMutateInput(t *testing.T) {
	in := sampleLeads()
	_ = Sorted(in, SortCreatedAsc)
	equalNames(t, in, "Ana", "Ben", "Cy", "Di", "Ed")
}

// TestApply_InstagramNewestFirst filters by source then sorts newest first.
func TestApply_InstagramNewestFirst(t *testing.T) {
	got := Apply(sampleLeads(), Filter{Sources: []string{"Instagram"}}, SortCreatedDesc, now)
	for _, l := range got {
		if l.Source != "Instagram" {
			t.Fatalf("non-Instagram lead %q in result", l.FirstName)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("result not non-increasing at %d: %v", i, names(got))
		}
	}
	equalNames(t, got, "Cy", "Ed", "Ana")
}

func TestApply_FilterAndSortCommute(t *testing.T) {
	f := Filter{Statuses: []domain.LeadStatus{domain.LeadStatusConverted, domain.LeadStatusLost}}
	a := Apply(sampleLeads(), f, SortCreatedAsc, now)
	b := Select(Sorted(sampleLeads(), SortCreatedAsc), f, now)
	equalNames(t, a, names(b)...)
}

func TestDateFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		f       DateFilter
		wantErr bool
	}{
		{"empty", DateFilter{}, false},
		{"last7", DateFilter{Kind: DateLast7Days}, false},
		{"custom ok", DateFilter{Kind: DateCustom, Start: day(1), End: day(2)}, false},
		{"custom same day", DateFilter{Kind: DateCustom, Start: day(1), End: day(1)}, false},
		{"custom reversed", DateFilter{Kind: DateCustom, Start: day(2), End: day(1)}, true},
		{"custom missing end", DateFilter{Kind: DateCustom, Start: day(2)}, true},
		{"unknown", DateFilter{Kind: "yesterday"}, true},
	}
	for _, tt := range tests {
		if err := tt.f.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
