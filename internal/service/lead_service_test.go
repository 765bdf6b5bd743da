package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/leads"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var leadNow = time.Date(2024, time.May, 31, 12, 0, 0, 0, time.UTC)

func newTestLeadService(repo *fakeLeadRepo) *leadService {
	svc := NewLeadService(repo).(*leadService)
	svc.now = fixedClock(leadNow)
	return svc
}

func seedLead(t *testing.T, repo *fakeLeadRepo, owner primitive.ObjectID, first, source string, created time.Time) primitive.ObjectID {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.Lead{
		OwnerID:   owner,
		FirstName: first,
		Source:    source,
		Status:    domain.LeadStatusNew,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return id
}

func TestToggleEngagementTag_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)
	owner := primitive.NewObjectID()
	leadID := seedLead(t, repo, owner, "Ana", "Instagram", leadNow.AddDate(0, 0, -3))

	if _, err := svc.ToggleEngagementTag(ctx, owner, leadID, domain.TagEngagementDay2); err != nil {
		t.Fatalf("toggle day 2: %v", err)
	}

	res, err := svc.ToggleEngagementTag(ctx, owner, leadID, domain.TagDMSent)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if res.Lead == nil {
		t.Fatal("expected the toggled lead in the result")
	}
	tag := res.Lead.FindTag(domain.TagDMSent)
	if tag == nil {
		t.Fatal("expected dm_sent tag after first toggle")
	}
	if !tag.CompletedDate.Equal(leadNow) {
		t.Errorf("CompletedDate = %v, want %v", tag.CompletedDate, leadNow)
	}

	res, err = svc.ToggleEngagementTag(ctx, owner, leadID, domain.TagDMSent)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if res.Lead.HasTag(domain.TagDMSent) {
		t.Error("dm_sent should be gone after second toggle")
	}
	if !res.Lead.HasTag(domain.TagEngagementDay2) || len(res.Lead.EngagementTags) != 1 {
		t.Errorf("other tags must be untouched, got %+v", res.Lead.EngagementTags)
	}
}

func TestToggleEngagementTag_ConcurrentTogglesAreSerialized(t *testing.T) {
	repo := newFakeLeadRepo()
	repo.delay = 2 * time.Millisecond
	svc := newTestLeadService(repo)
	owner := primitive.NewObjectID()
	leadID := seedLead(t, repo, owner, "Ben", "Referral", leadNow)

	const toggles = 9
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ToggleEngagementTag(context.Background(), owner, leadID, domain.TagCallBooked)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
	}

	lead, _ := repo.GetByID(context.Background(), leadID)
	count := 0
	for _, tag := range lead.EngagementTags {
		if tag.Type == domain.TagCallBooked {
			count++
		}
	}
	// An odd number of serialized toggles leaves exactly one tag.
	if count != 1 {
		t.Errorf("call_booked tags = %d, want 1", count)
	}
	if n := svc.queue.pending(); n != 0 {
		t.Errorf("queue still tracks %d leads", n)
	}
}

func TestToggleEngagementTag_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)
	owner := primitive.NewObjectID()
	leadID := seedLead(t, repo, owner, "Cy", "Instagram", leadNow)

	tests := []struct {
		name    string
		owner   primitive.ObjectID
		lead    primitive.ObjectID
		tag     domain.TagType
		wantErr error
	}{
		{"unknown tag", owner, leadID, domain.TagType("waved"), ErrInvalidTagType},
		{"missing lead", owner, primitive.NewObjectID(), domain.TagDMSent, ErrLeadNotFound},
		{"someone else's lead", primitive.NewObjectID(), leadID, domain.TagDMSent, ErrLeadAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleEngagementTag(ctx, tt.owner, tt.lead, tt.tag)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	lead, _ := repo.GetByID(ctx, leadID)
	if len(lead.EngagementTags) != 0 {
		t.Errorf("failed toggles must not write, got %+v", lead.EngagementTags)
	}
}

func TestListLeads_FilterSortAndSummary(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)
	owner := primitive.NewObjectID()
	seedLead(t, repo, owner, "Old", "Instagram", leadNow.AddDate(0, 0, -20))
	seedLead(t, repo, owner, "New", "Instagram", leadNow.AddDate(0, 0, -1))
	seedLead(t, repo, owner, "Ref", "Referral", leadNow.AddDate(0, 0, -2))
	seedLead(t, repo, primitive.NewObjectID(), "Other", "Instagram", leadNow)

	list, err := svc.ListLeads(ctx, owner, LeadQuery{
		Filter: leads.Filter{Sources: []string{"Instagram"}},
		Sort:   leads.SortCreatedAsc,
	})
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(list.Leads) != 2 || list.Leads[0].FirstName != "Old" || list.Leads[1].FirstName != "New" {
		t.Fatalf("unexpected leads %+v", list.Leads)
	}
	if list.Summary.Total != 2 || list.Summary.BySource["Instagram"] != 2 {
		t.Errorf("summary = %+v", list.Summary)
	}

	_, err = svc.ListLeads(ctx, owner, LeadQuery{Sort: leads.SortOrder("alphabetical")})
	if !errors.Is(err, ErrInvalidLeadQuery) {
		t.Errorf("bad sort: err = %v", err)
	}
	_, err = svc.ListLeads(ctx, owner, LeadQuery{Filter: leads.Filter{Date: leads.DateFilter{Kind: leads.DateCustom}}})
	if !errors.Is(err, ErrInvalidLeadQuery) {
		t.Errorf("custom range without bounds: err = %v", err)
	}
}

func TestMutationsReloadCollection(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)
	owner := primitive.NewObjectID()
	seedLead(t, repo, owner, "Di", "Facebook", leadNow.AddDate(0, 0, -1))

	created, err := svc.CreateLead(ctx, owner, domain.Lead{FirstName: "  Ed ", Source: "Instagram"})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if created.Lead == nil || created.Lead.FirstName != "Ed" || created.Lead.OwnerID != owner {
		t.Fatalf("created lead = %+v", created.Lead)
	}
	if created.Summary.Total != 2 {
		t.Errorf("reloaded total = %d, want 2", created.Summary.Total)
	}

	before := repo.fetches
	// Status changes are not restricted to pipeline order.
	for _, st := range []domain.LeadStatus{domain.LeadStatusConverted, domain.LeadStatusNew} {
		res, err := svc.SetStatus(ctx, owner, created.Lead.ID, st)
		if err != nil {
			t.Fatalf("SetStatus(%s): %v", st, err)
		}
		if res.Lead.Status != st {
			t.Errorf("status = %s, want %s", res.Lead.Status, st)
		}
	}
	if repo.fetches != before+2 {
		t.Errorf("expected one reload per mutation, got %d", repo.fetches-before)
	}

	if _, err := svc.SetStatus(ctx, owner, created.Lead.ID, domain.LeadStatus("archived")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status: err = %v", err)
	}

	list, err := svc.DeleteLead(ctx, owner, created.Lead.ID)
	if err != nil {
		t.Fatalf("DeleteLead: %v", err)
	}
	if list.Summary.Total != 1 || list.Leads[0].FirstName != "Di" {
		t.Errorf("after delete: %+v", list.Leads)
	}
}

func TestCreateLead_Validation(t *testing.T) {
	svc := newTestLeadService(newFakeLeadRepo())
	owner := primitive.NewObjectID()

	if _, err := svc.CreateLead(context.Background(), owner, domain.Lead{FirstName: "  "}); !errors.Is(err, ErrLeadValidation) {
		t.Errorf("blank name: err = %v", err)
	}
	if _, err := svc.CreateLead(context.Background(), owner, domain.Lead{FirstName: "Fay", Status: "hot"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad status: err = %v", err)
	}
}

func TestLeadQueue_GivesUpWhenContextEnds(t *testing.T) {
	q := newLeadQueue()
	id := primitive.NewObjectID()

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- q.Do(context.Background(), id, func() error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ran := false
	err := q.Do(ctx, id, func() error { ran = true; return nil })
	if !errors.Is(err, context.DeadlineExceeded) || ran {
		t.Errorf("waiter: err = %v, ran = %v", err, ran)
	}

	// A different lead is not blocked.
	if err := q.Do(context.Background(), primitive.NewObjectID(), func() error { return nil }); err != nil {
		t.Errorf("other lead: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("holder: %v", err)
	}
	if n := q.pending(); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}
