package service

import (
	"context"
	"errors"
	"focuscoach/coaching-app/internal/coaching"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/repository"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrStudentAlreadyAssigned = errors.New("student is already assigned to a coach")
	ErrStudentNotManaged      = errors.New("student is not managed by this coach")
)

// StudentOverview pairs a managed student with where they are in their program.
type StudentOverview struct {
	Student *domain.User            `json:"student"`
	Program *coaching.ProgramStatus `json:"program"`
}

type CoachService interface {
	// Student management
	AddStudentByEmail(ctx context.Context, coachID primitive.ObjectID, studentEmail string) (*domain.User, error)
	GetManagedStudents(ctx context.Context, coachID primitive.ObjectID) ([]StudentOverview, error)

	// Read-only views of a managed student's work
	GetStudentLeads(ctx context.Context, coachID, studentID primitive.ObjectID, q LeadQuery) (*LeadList, error)
	GetStudentReports(ctx context.Context, coachID, studentID primitive.ObjectID) ([]domain.WeeklyReport, error)

	SubmitFeedback(ctx context.Context, coachID, reportID primitive.ObjectID, feedback string) (*domain.WeeklyReport, error)
}

type coachService struct {
	userRepo    repository.UserRepository
	reportRepo  repository.WeeklyReportRepository
	leadService LeadService
	location    *time.Location
	now         func() time.Time
}

func NewCoachService(
	userRepo repository.UserRepository,
	reportRepo repository.WeeklyReportRepository,
	leadService LeadService,
	location *time.Location,
) CoachService {
	if location == nil {
		location = time.UTC
	}
	return &coachService{
		userRepo:    userRepo,
		reportRepo:  reportRepo,
		leadService: leadService,
		location:    location,
		now:         time.Now,
	}
}

// AddStudentByEmail finds a student by email and assigns them to the coach.
// Adding a student the coach already manages is a no-op.
func (s *coachService) AddStudentByEmail(ctx context.Context, coachID primitive.ObjectID, studentEmail string) (*domain.User, error) {
	studentEmail = strings.ToLower(strings.TrimSpace(studentEmail))
	if coachID == primitive.NilObjectID || studentEmail == "" {
		return nil, errors.New("coach ID and student email are required")
	}

	student, err := s.userRepo.GetByEmail(ctx, studentEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrNotStudent
	}

	if student.CoachID != nil && *student.CoachID != primitive.NilObjectID && *student.CoachID != coachID {
		return nil, ErrStudentAlreadyAssigned
	}

	// Claim the student first; the conditional write settles concurrent claims.
	if err := s.userRepo.SetCoachForStudent(ctx, student.ID, coachID); err != nil {
		if errors.Is(err, repository.ErrCoachAssigned) {
			return nil, ErrStudentAlreadyAssigned
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	// Re-adding repairs a coach list left behind by an earlier failure.
	if err := s.userRepo.AddStudentIDToCoach(ctx, coachID, student.ID); err != nil {
		log.Printf("ERROR: Student %s assigned to coach %s but coach list not updated: %v", student.ID.Hex(), coachID.Hex(), err)
		return nil, err
	}

	student.CoachID = &coachID
	student.PasswordHash = ""
	return student, nil
}

// GetManagedStudents lists the coach's students with their current program week.
func (s *coachService) GetManagedStudents(ctx context.Context, coachID primitive.ObjectID) ([]StudentOverview, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	students, err := s.userRepo.GetStudentsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]StudentOverview, 0, len(students))
	for i := range students {
		st := &students[i]
		st.PasswordHash = ""
		out = append(out, StudentOverview{Student: st, Program: programStatus(st, now, s.location)})
	}
	return out, nil
}

func (s *coachService) getManagedStudent(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.User, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.CoachID == nil || *student.CoachID != coachID {
		return nil, ErrStudentNotManaged
	}
	return student, nil
}

func (s *coachService) GetStudentLeads(ctx context.Context, coachID, studentID primitive.ObjectID, q LeadQuery) (*LeadList, error) {
	if _, err := s.getManagedStudent(ctx, coachID, studentID); err != nil {
		return nil, err
	}
	return s.leadService.ListLeads(ctx, studentID, q)
}

func (s *coachService) GetStudentReports(ctx context.Context, coachID, studentID primitive.ObjectID) ([]domain.WeeklyReport, error) {
	if _, err := s.getManagedStudent(ctx, coachID, studentID); err != nil {
		return nil, err
	}
	return s.reportRepo.GetByStudentID(ctx, studentID)
}

// SubmitFeedback sets the coach's feedback on a report from one of their students.
func (s *coachService) SubmitFeedback(ctx context.Context, coachID, reportID primitive.ObjectID, feedback string) (*domain.WeeklyReport, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, errors.New("feedback cannot be empty")
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	// Ownership goes through the student record; the report's CoachID is a snapshot
	// from submit time and may predate a reassignment.
	if _, err := s.getManagedStudent(ctx, coachID, report.StudentID); err != nil {
		if errors.Is(err, ErrStudentNotManaged) {
			return nil, ErrReportAccessDenied
		}
		return nil, err
	}

	if err := s.reportRepo.SetFeedback(ctx, reportID, feedback); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	report.CoachFeedback = feedback
	return report, nil
}
