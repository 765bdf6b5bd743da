package service

import (
	"context"
	"errors"
	"fmt"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/repository"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCannotChangeOwnRole = errors.New("admins cannot change their own role")
	ErrInvalidAccessWindow = errors.New("access window ends before it starts")
	ErrPricingPlanNotFound = errors.New("pricing plan not found")
	ErrPricingPlanInvalid  = errors.New("pricing plan validation failed")
)

type AdminService interface {
	// SetUserRole normalizes rawRole with domain.ParseRole before storing it. A changed
	// role drops the user's coach and student links.
	SetUserRole(ctx context.Context, adminID, userID primitive.ObjectID, rawRole string) (*domain.User, error)
	// SetProgramAccess replaces a student's program window fields. A term with a start
	// and no end gets the default program length.
	SetProgramAccess(ctx context.Context, studentID primitive.ObjectID, access domain.ProgramAccess) (*domain.User, error)

	ListPricingPlans(ctx context.Context, activeOnly bool) ([]domain.PricingPlan, error)
	CreatePricingPlan(ctx context.Context, plan domain.PricingPlan) (*domain.PricingPlan, error)
	UpdatePricingPlan(ctx context.Context, planID primitive.ObjectID, plan domain.PricingPlan) (*domain.PricingPlan, error)
}

type adminService struct {
	userRepo         repository.UserRepository
	pricingRepo      repository.PricingRepository
	defaultTermWeeks int
}

func NewAdminService(userRepo repository.UserRepository, pricingRepo repository.PricingRepository, defaultTermWeeks int) AdminService {
	return &adminService{
		userRepo:         userRepo,
		pricingRepo:      pricingRepo,
		defaultTermWeeks: defaultTermWeeks,
	}
}

func (s *adminService) getUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminService) SetUserRole(ctx context.Context, adminID, userID primitive.ObjectID, rawRole string) (*domain.User, error) {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	if adminID == userID {
		return nil, ErrCannotChangeOwnRole
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	log.Printf("INFO: Admin %s changed role of user %s from %s to %s", adminID.Hex(), userID.Hex(), user.Role, role)
	user.Role = role
	user.CoachID = nil
	user.StudentIDs = nil
	return user, nil
}

func (s *adminService) SetProgramAccess(ctx context.Context, studentID primitive.ObjectID, access domain.ProgramAccess) (*domain.User, error) {
	if access.CoachingTermStart != nil && access.CoachingTermEnd == nil && s.defaultTermWeeks > 0 {
		end := access.CoachingTermStart.AddDate(0, 0, 7*s.defaultTermWeeks)
		access.CoachingTermEnd = &end
	}
	if endsBeforeStart(access.CoachingTermStart, access.CoachingTermEnd) || endsBeforeStart(access.AccessStart, access.AccessEnd) {
		return nil, ErrInvalidAccessWindow
	}

	user, err := s.getUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !user.IsStudent() {
		return nil, ErrNotStudent
	}
	if err := s.userRepo.UpdateProgramAccess(ctx, studentID, access); err != nil {
		return nil, err
	}

	user.HasPaid = access.HasPaid
	user.CoachingTermStart, user.CoachingTermEnd = access.CoachingTermStart, access.CoachingTermEnd
	user.AccessStart, user.AccessEnd = access.AccessStart, access.AccessEnd
	return user, nil
}

func endsBeforeStart(start, end *time.Time) bool {
	return start != nil && end != nil && end.Before(*start)
}

// === Pricing ===

func (s *adminService) ListPricingPlans(ctx context.Context, activeOnly bool) ([]domain.PricingPlan, error) {
	return s.pricingRepo.List(ctx, activeOnly)
}

func validatePlan(plan *domain.PricingPlan) error {
	plan.Name = strings.TrimSpace(plan.Name)
	plan.Currency = strings.ToUpper(strings.TrimSpace(plan.Currency))
	switch {
	case plan.Name == "":
		return fmt.Errorf("%w: name is required", ErrPricingPlanInvalid)
	case plan.PriceCents < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrPricingPlanInvalid)
	case len(plan.Currency) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrPricingPlanInvalid)
	case !plan.Interval.Valid():
		return fmt.Errorf("%w: unknown billing interval %q", ErrPricingPlanInvalid, plan.Interval)
	case plan.TermWeeks < 0:
		return fmt.Errorf("%w: term weeks cannot be negative", ErrPricingPlanInvalid)
	}
	return nil
}

func (s *adminService) CreatePricingPlan(ctx context.Context, plan domain.PricingPlan) (*domain.PricingPlan, error) {
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	id, err := s.pricingRepo.Create(ctx, &plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return &plan, nil
}

func (s *adminService) UpdatePricingPlan(ctx context.Context, planID primitive.ObjectID, plan domain.PricingPlan) (*domain.PricingPlan, error) {
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	existing, err := s.pricingRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPricingPlanNotFound
		}
		return nil, err
	}
	plan.ID = planID
	plan.CreatedAt = existing.CreatedAt
	if err := s.pricingRepo.Update(ctx, &plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPricingPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}
