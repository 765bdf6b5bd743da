package service

import (
	"context"
	"errors"
	"focuscoach/coaching-app/internal/coaching"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/leads"
	"focuscoach/coaching-app/internal/notify"
	"focuscoach/coaching-app/internal/repository"
	"focuscoach/coaching-app/internal/storage"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrStudentNotFound    = errors.New("student user not found")
	ErrNotStudent         = errors.New("user is not a student")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrGoalAccessDenied   = errors.New("access denied to this goal")
	ErrGoalValidation     = errors.New("goal validation failed")
	ErrNoProgramWindow    = errors.New("no program window configured")
	ErrBeforeWeek1        = errors.New("program week 1 has not started yet")
	ErrReportExists       = errors.New("a report for this week was already submitted")
	ErrReportNotFound     = errors.New("weekly report not found")
	ErrReportAccessDenied = errors.New("access denied to this weekly report")
	ErrReportValidation   = errors.New("weekly report validation failed")
)

// recentReportsLimit caps the reports shown on the dashboard.
const recentReportsLimit = 4

// WeeklyReportInput is what a student fills in; week and dates are computed.
type WeeklyReportInput struct {
	Metrics    domain.ReportMetrics
	Wins       string
	Challenges string
}

// Dashboard is the student's landing view.
type Dashboard struct {
	Program             *coaching.ProgramStatus `json:"program"` // null renders as "not applicable"
	LeadSummary         leads.Summary           `json:"leadSummary"`
	Goals               []domain.Goal           `json:"goals"`
	RecentReports       []domain.WeeklyReport   `json:"recentReports"`
	CurrentWeekReported bool                    `json:"currentWeekReported"`
}

type StudentService interface {
	GetProgramStatus(ctx context.Context, studentID primitive.ObjectID) (*coaching.ProgramStatus, error)
	GetDashboard(ctx context.Context, studentID primitive.ObjectID) (*Dashboard, error)

	// Goals
	GetGoals(ctx context.Context, studentID primitive.ObjectID) ([]domain.Goal, error)
	CreateGoal(ctx context.Context, studentID primitive.ObjectID, goal domain.Goal) (*domain.Goal, error)
	UpdateGoal(ctx context.Context, studentID, goalID primitive.ObjectID, upd domain.GoalUpdate) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, studentID, goalID primitive.ObjectID) error

	// Weekly reports
	SubmitWeeklyReport(ctx context.Context, studentID primitive.ObjectID, input WeeklyReportInput) (*domain.WeeklyReport, error)
	GetMyReports(ctx context.Context, studentID primitive.ObjectID) ([]domain.WeeklyReport, error)

	// Report attachments
	RequestAttachmentUploadURL(ctx context.Context, studentID, reportID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmAttachment(ctx context.Context, studentID, reportID primitive.ObjectID, objectKey, fileName, contentType string) (*domain.Attachment, error)
	GetAttachments(ctx context.Context, studentID, reportID primitive.ObjectID) ([]AttachmentView, error)
}

type studentService struct {
	userRepo       repository.UserRepository
	goalRepo       repository.GoalRepository
	reportRepo     repository.WeeklyReportRepository
	attachmentRepo repository.AttachmentRepository
	leadService    LeadService
	fileStorage    storage.FileStorage
	notifier       notify.Notifier
	location       *time.Location
	now            func() time.Time
}

// NewStudentService creates a new instance of studentService. Program weeks are
// counted in location.
func NewStudentService(
	userRepo repository.UserRepository,
	goalRepo repository.GoalRepository,
	reportRepo repository.WeeklyReportRepository,
	attachmentRepo repository.AttachmentRepository,
	leadService LeadService,
	fileStorage storage.FileStorage,
	notifier notify.Notifier,
	location *time.Location,
) StudentService {
	if location == nil {
		location = time.UTC
	}
	return &studentService{
		userRepo:       userRepo,
		goalRepo:       goalRepo,
		reportRepo:     reportRepo,
		attachmentRepo: attachmentRepo,
		leadService:    leadService,
		fileStorage:    fileStorage,
		notifier:       notifier,
		location:       location,
		now:            time.Now,
	}
}

func (s *studentService) getStudent(ctx context.Context, studentID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !user.IsStudent() {
		return nil, ErrNotStudent
	}
	return user, nil
}

// GetProgramStatus returns nil without error when the student has no program window.
func (s *studentService) GetProgramStatus(ctx context.Context, studentID primitive.ObjectID) (*coaching.ProgramStatus, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return programStatus(student, s.now(), s.location), nil
}

// GetDashboard loads the program, leads, goals and reports concurrently.
func (s *studentService) GetDashboard(ctx context.Context, studentID primitive.ObjectID) (*Dashboard, error) {
	dash := &Dashboard{}
	var reports []domain.WeeklyReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		program, err := s.GetProgramStatus(gctx, studentID)
		dash.Program = program
		return err
	})
	g.Go(func() error {
		list, err := s.leadService.ListLeads(gctx, studentID, LeadQuery{})
		if err != nil {
			return err
		}
		dash.LeadSummary = list.Summary
		return nil
	})
	g.Go(func() error {
		goals, err := s.goalRepo.GetByStudentID(gctx, studentID)
		dash.Goals = goals
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.reportRepo.GetByStudentID(gctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Reports come back newest week first.
	if dash.Program != nil {
		current := dash.Program.Week.WeekNumber
		for _, r := range reports {
			if r.WeekNumber == current {
				dash.CurrentWeekReported = true
				break
			}
		}
	}
	if len(reports) > recentReportsLimit {
		reports = reports[:recentReportsLimit]
	}
	dash.RecentReports = reports
	return dash, nil
}

// === Goals ===

func (s *studentService) GetGoals(ctx context.Context, studentID primitive.ObjectID) ([]domain.Goal, error) {
	return s.goalRepo.GetByStudentID(ctx, studentID)
}

func (s *studentService) CreateGoal(ctx context.Context, studentID primitive.ObjectID, goal domain.Goal) (*domain.Goal, error) {
	goal.Title = strings.TrimSpace(goal.Title)
	if goal.Title == "" {
		return nil, ErrGoalValidation
	}
	if goal.TargetValue < 0 || goal.CurrentValue < 0 {
		return nil, ErrGoalValidation
	}
	goal.StudentID = studentID
	goal.Achieved = goal.Achieved || (goal.TargetValue > 0 && goal.CurrentValue >= goal.TargetValue)

	id, err := s.goalRepo.Create(ctx, &goal)
	if err != nil {
		return nil, err
	}
	goal.ID = id
	return &goal, nil
}

func (s *studentService) getOwnGoal(ctx context.Context, studentID, goalID primitive.ObjectID) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.StudentID != studentID {
		return nil, ErrGoalAccessDenied
	}
	return goal, nil
}

// UpdateGoal applies upd and marks the goal achieved once it reaches its target.
func (s *studentService) UpdateGoal(ctx context.Context, studentID, goalID primitive.ObjectID, upd domain.GoalUpdate) (*domain.Goal, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, ErrGoalValidation
	}
	if (upd.TargetValue != nil && *upd.TargetValue < 0) || (upd.CurrentValue != nil && *upd.CurrentValue < 0) {
		return nil, ErrGoalValidation
	}
	goal, err := s.getOwnGoal(ctx, studentID, goalID)
	if err != nil {
		return nil, err
	}

	target, current := goal.TargetValue, goal.CurrentValue
	if upd.TargetValue != nil {
		target = *upd.TargetValue
	}
	if upd.CurrentValue != nil {
		current = *upd.CurrentValue
	}
	if upd.Achieved == nil && target > 0 && current >= target {
		achieved := true
		upd.Achieved = &achieved
	}

	updated, err := s.goalRepo.Update(ctx, goalID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	return updated, err
}

func (s *studentService) DeleteGoal(ctx context.Context, studentID, goalID primitive.ObjectID) error {
	if _, err := s.getOwnGoal(ctx, studentID, goalID); err != nil {
		return err
	}
	err := s.goalRepo.Delete(ctx, goalID, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGoalNotFound
	}
	return err
}
