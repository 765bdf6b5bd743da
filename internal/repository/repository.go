package repository

import (
	"context"
	"focuscoach/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrDeleteFailed  = RepositoryError("delete failed")
	ErrDuplicateUser = RepositoryError("user with this email already exists")

	// ErrDuplicateReport is returned when a student already filed a report for the week.
	ErrDuplicateReport     = RepositoryError("weekly report already exists for this week")
	// ErrDuplicateAttachment is returned when an object key was already recorded.
	ErrDuplicateAttachment = RepositoryError("attachment already recorded for this object")
	// ErrCoachAssigned is returned when a student already belongs to a different coach.
	ErrCoachAssigned       = RepositoryError("student already has a coach")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddStudentIDToCoach(ctx context.Context, coachID, studentID primitive.ObjectID) error
	// GetStudentsByCoachID lists students whose coachId points at the coach.
	GetStudentsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	// SetCoachForStudent claims an unassigned student for the coach. It returns
	// ErrCoachAssigned when another coach holds the student.
	SetCoachForStudent(ctx context.Context, studentID, coachID primitive.ObjectID) error
	// UpdateRole replaces the role and drops every coach/student link held by or
	// pointing at the user.
	UpdateRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error
	UpdateProgramAccess(ctx context.Context, id primitive.ObjectID, access domain.ProgramAccess) error
}

// LeadRepository is the lead data service: fetch a student's leads, replace
// fields on one lead, and attach or detach engagement tags.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lead, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Lead, error)
	// Update applies the non-nil fields of upd and returns the stored lead.
	Update(ctx context.Context, id primitive.ObjectID, upd domain.LeadUpdate) (*domain.Lead, error)
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	AddEngagementTag(ctx context.Context, leadID primitive.ObjectID, tag domain.EngagementTag) (primitive.ObjectID, error)
	RemoveEngagementTag(ctx context.Context, leadID, tagID primitive.ObjectID) error
}

// GoalRepository defines the interface for interacting with student goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Goal, error)
	Update(ctx context.Context, id primitive.ObjectID, upd domain.GoalUpdate) (*domain.Goal, error)
	Delete(ctx context.Context, id, studentID primitive.ObjectID) error
}

// WeeklyReportRepository defines the interface for interacting with weekly reports.
type WeeklyReportRepository interface {
	Create(ctx context.Context, report *domain.WeeklyReport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyReport, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.WeeklyReport, error)
	GetByStudentAndWeek(ctx context.Context, studentID primitive.ObjectID, weekNumber int) (*domain.WeeklyReport, error)
	SetFeedback(ctx context.Context, id primitive.ObjectID, feedback string) error
	AddAttachmentID(ctx context.Context, id, attachmentID primitive.ObjectID) error
}

// AttachmentRepository defines the interface for interacting with report attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Attachment, error)
	GetByReportID(ctx context.Context, reportID primitive.ObjectID) ([]domain.Attachment, error)
}

// PricingRepository defines the interface for interacting with pricing plans.
type PricingRepository interface {
	Create(ctx context.Context, plan *domain.PricingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PricingPlan, error)
	List(ctx context.Context, activeOnly bool) ([]domain.PricingPlan, error)
	Update(ctx context.Context, plan *domain.PricingPlan) error
}
