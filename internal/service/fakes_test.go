package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/repository"
	"focuscoach/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the Mongo repositories.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateUser
		}
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) AddStudentIDToCoach(_ context.Context, coachID, studentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coach, ok := r.users[coachID]
	if !ok || coach.Role != domain.RoleCoach {
		return repository.ErrNotFound
	}
	for _, id := range coach.StudentIDs {
		if id == studentID {
			return nil
		}
	}
	coach.StudentIDs = append(coach.StudentIDs, studentID)
	return nil
}

func (r *fakeUserRepo) GetStudentsByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[coachID]; !ok {
		return nil, repository.ErrNotFound
	}
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == domain.RoleStudent && u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) SetCoachForStudent(_ context.Context, studentID, coachID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[studentID]
	if !ok || u.Role != domain.RoleStudent {
		return repository.ErrNotFound
	}
	if u.CoachID != nil && *u.CoachID != coachID {
		return repository.ErrCoachAssigned
	}
	id := coachID
	u.CoachID = &id
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id primitive.ObjectID, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.CoachID = nil
	u.StudentIDs = nil
	for _, other := range r.users {
		if other.CoachID != nil && *other.CoachID == id {
			other.CoachID = nil
		}
		kept := other.StudentIDs[:0]
		for _, sid := range other.StudentIDs {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		if len(other.StudentIDs) > 0 {
			other.StudentIDs = kept
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateProgramAccess(_ context.Context, id primitive.ObjectID, access domain.ProgramAccess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Role != domain.RoleStudent {
		return repository.ErrNotFound
	}
	u.HasPaid = access.HasPaid
	u.CoachingTermStart, u.CoachingTermEnd = access.CoachingTermStart, access.CoachingTermEnd
	u.AccessStart, u.AccessEnd = access.AccessStart, access.AccessEnd
	return nil
}

type fakeLeadRepo struct {
	mu      sync.Mutex
	leads   map[primitive.ObjectID]*domain.Lead
	fetches int

	// delay widens the window between a read and a write, to expose lost updates.
	delay time.Duration
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: map[primitive.ObjectID]*domain.Lead{}}
}

func copyLead(l *domain.Lead) *domain.Lead {
	c := *l
	c.EngagementTags = append([]domain.EngagementTag(nil), l.EngagementTags...)
	return &c
}

func (r *fakeLeadRepo) Create(_ context.Context, lead *domain.Lead) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead.ID = primitive.NewObjectID()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	r.leads[lead.ID] = copyLead(lead)
	return lead.ID, nil
}

func (r *fakeLeadRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyLead(l), nil
}

func (r *fakeLeadRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	out := []domain.Lead{}
	for _, l := range r.leads {
		if l.OwnerID == ownerID {
			out = append(out, *copyLead(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeLeadRepo) Update(_ context.Context, id primitive.ObjectID, upd domain.LeadUpdate) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.FirstName != nil {
		l.FirstName = *upd.FirstName
	}
	if upd.Source != nil {
		l.Source = *upd.Source
	}
	if upd.Status != nil {
		l.Status = *upd.Status
	}
	if upd.Notes != nil {
		l.Notes = *upd.Notes
	}
	if upd.FollowUpDate != nil {
		l.FollowUpDate = upd.FollowUpDate
	}
	return copyLead(l), nil
}

func (r *fakeLeadRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok || l.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) AddEngagementTag(_ context.Context, leadID primitive.ObjectID, tag domain.EngagementTag) (primitive.ObjectID, error) {
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[leadID]
	if !ok {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	tag.ID = primitive.NewObjectID()
	l.EngagementTags = append(l.EngagementTags, tag)
	return tag.ID, nil
}

func (r *fakeLeadRepo) RemoveEngagementTag(_ context.Context, leadID, tagID primitive.ObjectID) error {
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[leadID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := l.EngagementTags[:0]
	for _, t := range l.EngagementTags {
		if t.ID != tagID {
			kept = append(kept, t)
		}
	}
	l.EngagementTags = kept
	return nil
}

type fakeGoalRepo struct {
	mu    sync.Mutex
	goals map[primitive.ObjectID]*domain.Goal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: map[primitive.ObjectID]*domain.Goal{}}
}

func (r *fakeGoalRepo) Create(_ context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	goal.ID = primitive.NewObjectID()
	c := *goal
	r.goals[goal.ID] = &c
	return goal.ID, nil
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *g
	return &c, nil
}

func (r *fakeGoalRepo) GetByStudentID(_ context.Context, studentID primitive.ObjectID) ([]domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Goal{}
	for _, g := range r.goals {
		if g.StudentID == studentID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGoalRepo) Update(_ context.Context, id primitive.ObjectID, upd domain.GoalUpdate) (*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Title != nil {
		g.Title = *upd.Title
	}
	if upd.TargetValue != nil {
		g.TargetValue = *upd.TargetValue
	}
	if upd.CurrentValue != nil {
		g.CurrentValue = *upd.CurrentValue
	}
	if upd.Achieved != nil {
		g.Achieved = *upd.Achieved
	}
	c := *g
	return &c, nil
}

func (r *fakeGoalRepo) Delete(_ context.Context, id, studentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok || g.StudentID != studentID {
		return repository.ErrNotFound
	}
	delete(r.goals, id)
	return nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]*domain.WeeklyReport
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[primitive.ObjectID]*domain.WeeklyReport{}}
}

func (r *fakeReportRepo) Create(_ context.Context, report *domain.WeeklyReport) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.StudentID == report.StudentID && existing.WeekNumber == report.WeekNumber {
			return primitive.NilObjectID, repository.ErrDuplicateReport
		}
	}
	report.ID = primitive.NewObjectID()
	c := *report
	r.reports[report.ID] = &c
	return report.ID, nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WeeklyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *rep
	return &c, nil
}

func (r *fakeReportRepo) GetByStudentID(_ context.Context, studentID primitive.ObjectID) ([]domain.WeeklyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WeeklyReport{}
	for _, rep := range r.reports {
		if rep.StudentID == studentID {
			out = append(out, *rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber > out[j].WeekNumber })
	return out, nil
}

func (r *fakeReportRepo) GetByStudentAndWeek(_ context.Context, studentID primitive.ObjectID, weekNumber int) (*domain.WeeklyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.StudentID == studentID && rep.WeekNumber == weekNumber {
			c := *rep
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReportRepo) SetFeedback(_ context.Context, id primitive.ObjectID, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	rep.CoachFeedback = feedback
	return nil
}

func (r *fakeReportRepo) AddAttachmentID(_ context.Context, id, attachmentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	rep.AttachmentIDs = append(rep.AttachmentIDs, attachmentID)
	return nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(_ context.Context, a *domain.Attachment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attachments {
		if existing.S3ObjectKey == a.S3ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicateAttachment
		}
	}
	a.ID = primitive.NewObjectID()
	r.attachments = append(r.attachments, *a)
	return a.ID, nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attachments {
		if a.ID == id {
			c := a
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAttachmentRepo) GetByReportID(_ context.Context, reportID primitive.ObjectID) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Attachment{}
	for _, a := range r.attachments {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePricingRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.PricingPlan
}

func newFakePricingRepo() *fakePricingRepo {
	return &fakePricingRepo{plans: map[primitive.ObjectID]*domain.PricingPlan{}}
}

func (r *fakePricingRepo) Create(_ context.Context, plan *domain.PricingPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	c := *plan
	r.plans[plan.ID] = &c
	return plan.ID, nil
}

func (r *fakePricingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PricingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakePricingRepo) List(_ context.Context, activeOnly bool) ([]domain.PricingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PricingPlan{}
	for _, p := range r.plans {
		if !activeOnly || p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePricingRepo) Update(_ context.Context, plan *domain.PricingPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *plan
	r.plans[plan.ID] = &c
	return nil
}

// fakeStorage presigns fake URLs and reports sizes for keys marked as uploaded.
type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string]int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string]int64{}}
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://uploads.test/" + objectKey, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://downloads.test/" + objectKey, nil
}

func (f *fakeStorage) ObjectSize(_ context.Context, objectKey string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	size, ok := f.uploaded[objectKey]
	if !ok {
		return 0, storage.ErrObjectNotFound
	}
	return size, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploaded, objectKey)
	return nil
}

type sentReport struct {
	coach, student primitive.ObjectID
	week           int
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentReport
	err  error
}

func (n *fakeNotifier) WeeklyReportSubmitted(_ context.Context, coach, student *domain.User, report *domain.WeeklyReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentReport{coach: coach.ID, student: student.ID, week: report.WeekNumber})
	return n.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
