package service

import (
	"context"
	"errors"
	"fmt"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/leads"
	"focuscoach/coaching-app/internal/repository"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrLeadAccessDenied = errors.New("access denied to this lead")
	ErrInvalidLeadQuery = errors.New("invalid lead filter or sort")
	ErrInvalidStatus    = errors.New("invalid lead status")
	ErrInvalidTagType   = errors.New("invalid engagement tag type")
	ErrLeadValidation   = errors.New("lead validation failed")
)

// LeadQuery is a filter plus an order over a student's leads.
type LeadQuery struct {
	Filter leads.Filter
	Sort   leads.SortOrder
}

// LeadList is a derived view of a student's leads with its statistics.
type LeadList struct {
	Leads   []domain.Lead `json:"leads"`
	Summary leads.Summary `json:"summary"`
}

// LeadMutation carries the changed lead and the freshly reloaded collection.
type LeadMutation struct {
	Lead *domain.Lead `json:"lead,omitempty"`
	LeadList
}

type LeadService interface {
	ListLeads(ctx context.Context, ownerID primitive.ObjectID, q LeadQuery) (*LeadList, error)
	GetLead(ctx context.Context, ownerID, leadID primitive.ObjectID) (*domain.Lead, error)
	CreateLead(ctx context.Context, ownerID primitive.ObjectID, lead domain.Lead) (*LeadMutation, error)
	UpdateLead(ctx context.Context, ownerID, leadID primitive.ObjectID, upd domain.LeadUpdate) (*LeadMutation, error)
	// SetStatus sets any status from any other; the pipeline order is not enforced.
	SetStatus(ctx context.Context, ownerID, leadID primitive.ObjectID, status domain.LeadStatus) (*LeadMutation, error)
	DeleteLead(ctx context.Context, ownerID, leadID primitive.ObjectID) (*LeadList, error)
	ToggleEngagementTag(ctx context.Context, ownerID, leadID primitive.ObjectID, tagType domain.TagType) (*LeadMutation, error)
}

type leadService struct {
	leadRepo repository.LeadRepository
	queue    *leadQueue
	now      func() time.Time
}

func NewLeadService(leadRepo repository.LeadRepository) LeadService {
	return &leadService{
		leadRepo: leadRepo,
		queue:    newLeadQueue(),
		now:      time.Now,
	}
}

// ListLeads fetches the owner's leads and returns the filtered, sorted view.
// The summary covers the filtered leads.
func (s *leadService) ListLeads(ctx context.Context, ownerID primitive.ObjectID, q LeadQuery) (*LeadList, error) {
	if err := q.Filter.Date.Validate(); err != nil || !q.Sort.Valid() {
		return nil, ErrInvalidLeadQuery
	}
	all, err := s.leadRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view := leads.Apply(all, q.Filter, q.Sort, s.now())
	return &LeadList{Leads: view, Summary: leads.Summarize(view)}, nil
}

func (s *leadService) GetLead(ctx context.Context, ownerID, leadID primitive.ObjectID) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if lead.OwnerID != ownerID {
		return nil, ErrLeadAccessDenied
	}
	return lead, nil
}

func (s *leadService) CreateLead(ctx context.Context, ownerID primitive.ObjectID, lead domain.Lead) (*LeadMutation, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	lead.FirstName = strings.TrimSpace(lead.FirstName)
	if lead.FirstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrLeadValidation)
	}
	if lead.Status != "" && !lead.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	lead.OwnerID = ownerID
	lead.EngagementTags = nil // Tags are only added by toggling

	id, err := s.leadRepo.Create(ctx, &lead)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, ownerID, id)
}

func (s *leadService) UpdateLead(ctx context.Context, ownerID, leadID primitive.ObjectID, upd domain.LeadUpdate) (*LeadMutation, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if upd.FirstName != nil && strings.TrimSpace(*upd.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name cannot be blank", ErrLeadValidation)
	}

	err := s.queue.Do(ctx, leadID, func() error {
		if _, err := s.GetLead(ctx, ownerID, leadID); err != nil {
			return err
		}
		if upd.IsEmpty() {
			return nil
		}
		_, err := s.leadRepo.Update(ctx, leadID, upd)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLeadNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, ownerID, leadID)
}

func (s *leadService) SetStatus(ctx context.Context, ownerID, leadID primitive.ObjectID, status domain.LeadStatus) (*LeadMutation, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.UpdateLead(ctx, ownerID, leadID, domain.LeadUpdate{Status: &status})
}

func (s *leadService) DeleteLead(ctx context.Context, ownerID, leadID primitive.ObjectID) (*LeadList, error) {
	err := s.queue.Do(ctx, leadID, func() error {
		if _, err := s.GetLead(ctx, ownerID, leadID); err != nil {
			return err
		}
		err := s.leadRepo.Delete(ctx, leadID, ownerID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLeadNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	m, err := s.reload(ctx, ownerID, leadID)
	if err != nil {
		return nil, err
	}
	return &m.LeadList, nil
}

// ToggleEngagementTag removes the lead's tag of tagType if present, or adds one
// stamped now. The decision is made on a fresh read inside the lead's queue slot.
func (s *leadService) ToggleEngagementTag(ctx context.Context, ownerID, leadID primitive.ObjectID, tagType domain.TagType) (*LeadMutation, error) {
	if !tagType.Valid() {
		return nil, ErrInvalidTagType
	}

	err := s.queue.Do(ctx, leadID, func() error {
		lead, err := s.GetLead(ctx, ownerID, leadID)
		if err != nil {
			return err
		}
		toggle := leads.PlanToggle(lead, tagType, s.now())
		if toggle.Remove != nil {
			err = s.leadRepo.RemoveEngagementTag(ctx, leadID, toggle.Remove.ID)
		} else {
			_, err = s.leadRepo.AddEngagementTag(ctx, leadID, *toggle.Add)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLeadNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, ownerID, leadID)
}

// reload re-fetches the owner's whole collection after a write instead of
// patching local state. Lead is left nil when leadID is no longer present.
func (s *leadService) reload(ctx context.Context, ownerID, leadID primitive.ObjectID) (*LeadMutation, error) {
	list, err := s.ListLeads(ctx, ownerID, LeadQuery{})
	if err != nil {
		log.Printf("ERROR: Lead write for owner %s succeeded but reload failed: %v", ownerID.Hex(), err)
		return nil, err
	}
	m := &LeadMutation{LeadList: *list}
	for i := range list.Leads {
		if list.Leads[i].ID == leadID {
			m.Lead = &list.Leads[i]
			break
		}
	}
	return m, nil
}
