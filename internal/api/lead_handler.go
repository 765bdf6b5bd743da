package api

import (
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/leads"
	"focuscoach/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// dateLayout is the calendar-date format of the from/to query parameters.
const dateLayout = "2006-01-02"

type LeadHandler struct {
	leadService service.LeadService
	location    *time.Location
}

// NewLeadHandler creates a LeadHandler. Custom date ranges are read as calendar days in location.
func NewLeadHandler(leadService service.LeadService, location *time.Location) *LeadHandler {
	if location == nil {
		location = time.UTC
	}
	return &LeadHandler{leadService: leadService, location: location}
}

// --- DTOs ---

// LeadQueryParams are the filter and sort controls of a lead list. Repeat a
// parameter to select several values, e.g. ?source=Instagram&source=Referral.
type LeadQueryParams struct {
	Sources  []string `form:"source" validate:"dive,min=1,max=100"`
	Statuses []string `form:"status" validate:"dive,leadstatus"`
	Tags     []string `form:"tag" validate:"dive,tagtype"`
	Date     string   `form:"date" validate:"omitempty,oneof=all last7days last30days custom"`
	From     string   `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string   `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Sort     string   `form:"sort" validate:"omitempty,oneof=createdAsc createdDesc lastContactAsc lastContactDesc"`
}

type ScriptComponentsDTO struct {
	Intro  string `json:"intro"`
	Hook   string `json:"hook"`
	Body1  string `json:"body1"`
	Body2  string `json:"body2"`
	Ending string `json:"ending"`
}

type CreateLeadRequest struct {
	FirstName        string               `json:"firstName" binding:"required"`
	LastName         string               `json:"lastName"`
	Email            string               `json:"email" binding:"omitempty,email"`
	Phone            string               `json:"phone"`
	SocialHandle     string               `json:"socialHandle"`
	Source           string               `json:"source" binding:"max=100"`
	Status           string               `json:"status" validate:"omitempty,leadstatus"`
	ScriptComponents *ScriptComponentsDTO `json:"scriptComponents"`
	Notes            string               `json:"notes"`
	FollowUpDate     *time.Time           `json:"followUpDate"`
}

// UpdateLeadRequest replaces only the fields present in the body.
type UpdateLeadRequest struct {
	FirstName        *string              `json:"firstName" binding:"omitempty,min=1"`
	LastName         *string              `json:"lastName"`
	Email            *string              `json:"email" binding:"omitempty,email"`
	Phone            *string              `json:"phone"`
	SocialHandle     *string              `json:"socialHandle"`
	Source           *string              `json:"source" binding:"omitempty,max=100"`
	Status           *string              `json:"status" validate:"omitempty,leadstatus"`
	ScriptComponents *ScriptComponentsDTO `json:"scriptComponents"`
	Notes            *string              `json:"notes"`
	FollowUpDate     *time.Time           `json:"followUpDate"`
}

type SetLeadStatusRequest struct {
	Status string `json:"status" binding:"required" validate:"leadstatus"`
}

type EngagementTagResponse struct {
	ID            string         `json:"id"`
	Type          domain.TagType `json:"type"`
	CompletedDate time.Time      `json:"completedDate"`
}

type LeadResponse struct {
	ID               string                  `json:"id"`
	OwnerID          string                  `json:"ownerId"`
	FirstName        string                  `json:"firstName"`
	LastName         string                  `json:"lastName,omitempty"`
	Email            string                  `json:"email,omitempty"`
	Phone            string                  `json:"phone,omitempty"`
	SocialHandle     string                  `json:"socialHandle,omitempty"`
	Source           string                  `json:"source,omitempty"`
	Status           domain.LeadStatus       `json:"status"`
	ScriptComponents ScriptComponentsDTO     `json:"scriptComponents"`
	EngagementTags   []EngagementTagResponse `json:"engagementTags"`
	Notes            string                  `json:"notes,omitempty"`
	FollowUpDate     *time.Time              `json:"followUpDate,omitempty"`
	LastContact      time.Time               `json:"lastContact"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

type LeadListResponse struct {
	Leads   []LeadResponse `json:"leads"`
	Summary leads.Summary  `json:"summary"`
}

// LeadMutationResponse returns the changed lead with the reloaded collection.
type LeadMutationResponse struct {
	Lead *LeadResponse `json:"lead,omitempty"`
	LeadListResponse
}

// --- Handler Methods ---

// ListLeads godoc
// @Summary List the student's leads
// @Description Filters and sorts the authenticated student's leads and returns summary statistics.
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LeadListResponse
// @Router /student/leads [get]
func (h *LeadHandler) ListLeads(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	query, ok := bindLeadQuery(c, h.location)
	if !ok {
		return
	}
	list, err := h.leadService.ListLeads(c.Request.Context(), studentID, query)
	if err != nil {
		respondWithServiceError(c, err, "retrieve leads")
		return
	}
	c.JSON(http.StatusOK, MapLeadListToResponse(list))
}

// CreateLead godoc
// @Summary Add a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lead body CreateLeadRequest true "Lead details"
// @Success 201 {object} LeadMutationResponse
// @Router /student/leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	lead := domain.Lead{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		SocialHandle: req.SocialHandle,
		Source:       req.Source,
		Status:       domain.LeadStatus(req.Status),
		Notes:        req.Notes,
		FollowUpDate: req.FollowUpDate,
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	if req.ScriptComponents != nil {
		lead.ScriptComponents = domain.ScriptComponents(*req.ScriptComponents)
	}

	res, err := h.leadService.CreateLead(c.Request.Context(), studentID, lead)
	if err != nil {
		respondWithServiceError(c, err, "create lead")
		return
	}
	c.JSON(http.StatusCreated, MapLeadMutationToResponse(res))
}

// UpdateLead godoc
// @Summary Update fields of a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param leadId path string true "Lead ID"
// @Param lead body UpdateLeadRequest true "Fields to change"
// @Success 200 {object} LeadMutationResponse
// @Router /student/leads/{leadId} [patch]
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	leadID, ok := pathObjectID(c, "leadId")
	if !ok {
		return
	}
	var req UpdateLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	upd := domain.LeadUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		SocialHandle: req.SocialHandle,
		Source:       req.Source,
		Notes:        req.Notes,
		FollowUpDate: req.FollowUpDate,
	}
	if req.Status != nil {
		status := domain.LeadStatus(*req.Status)
		upd.Status = &status
	}
	if req.ScriptComponents != nil {
		sc := domain.ScriptComponents(*req.ScriptComponents)
		upd.ScriptComponents = &sc
	}

	res, err := h.leadService.UpdateLead(c.Request.Context(), studentID, leadID, upd)
	if err != nil {
		respondWithServiceError(c, err, "update lead")
		return
	}
	c.JSON(http.StatusOK, MapLeadMutationToResponse(res))
}

// SetLeadStatus godoc
// @Summary Move a lead to any pipeline status
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param leadId path string true "Lead ID"
// @Param status body SetLeadStatusRequest true "New status"
// @Success 200 {object} LeadMutationResponse
// @Router /student/leads/{leadId}/status [put]
func (h *LeadHandler) SetLeadStatus(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	leadID, ok := pathObjectID(c, "leadId")
	if !ok {
		return
	}
	var req SetLeadStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.leadService.SetStatus(c.Request.Context(), studentID, leadID, domain.LeadStatus(req.Status))
	if err != nil {
		respondWithServiceError(c, err, "update lead status")
		return
	}
	c.JSON(http.StatusOK, MapLeadMutationToResponse(res))
}

// DeleteLead godoc
// @Summary Delete a lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param leadId path string true "Lead ID"
// @Success 200 {object} LeadListResponse
// @Router /student/leads/{leadId} [delete]
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	leadID, ok := pathObjectID(c, "leadId")
	if !ok {
		return
	}
	list, err := h.leadService.DeleteLead(c.Request.Context(), studentID, leadID)
	if err != nil {
		respondWithServiceError(c, err, "delete lead")
		return
	}
	c.JSON(http.StatusOK, MapLeadListToResponse(list))
}

// ToggleEngagementTag godoc
// @Summary Toggle an engagement tag on a lead
// @Description Removes the tag if the lead has one of that type, otherwise adds one completed now.
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param leadId path string true "Lead ID"
// @Param tagType path string true "Engagement tag type"
// @Success 200 {object} LeadMutationResponse
// @Router /student/leads/{leadId}/tags/{tagType}/toggle [post]
func (h *LeadHandler) ToggleEngagementTag(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	leadID, ok := pathObjectID(c, "leadId")
	if !ok {
		return
	}
	tagType := domain.TagType(c.Param("tagType"))
	if !tagType.Valid() {
		abortWithError(c, http.StatusBadRequest, "Unknown engagement tag type.")
		return
	}

	res, err := h.leadService.ToggleEngagementTag(c.Request.Context(), studentID, leadID, tagType)
	if err != nil {
		respondWithServiceError(c, err, "toggle engagement tag")
		return
	}
	c.JSON(http.StatusOK, MapLeadMutationToResponse(res))
}

// bindLeadQuery reads and validates lead list query parameters.
func bindLeadQuery(c *gin.Context, loc *time.Location) (service.LeadQuery, bool) {
	var params LeadQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithValidationError(c, err)
		return service.LeadQuery{}, false
	}
	if err := validate.Struct(params); err != nil {
		abortWithValidationError(c, err)
		return service.LeadQuery{}, false
	}
	query, err := params.ToQuery(loc)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return service.LeadQuery{}, false
	}
	return query, true
}

// ToQuery converts validated parameters. A custom range covers whole days: from
// midnight of From through the last instant of To, in loc.
func (p LeadQueryParams) ToQuery(loc *time.Location) (service.LeadQuery, error) {
	q := service.LeadQuery{
		Filter: leads.Filter{
			Sources: p.Sources,
			Date:    leads.DateFilter{Kind: leads.DateFilterKind(p.Date)},
		},
		Sort: leads.SortOrder(p.Sort),
	}
	for _, s := range p.Statuses {
		q.Filter.Statuses = append(q.Filter.Statuses, domain.LeadStatus(s))
	}
	for _, t := range p.Tags {
		q.Filter.EngagementTags = append(q.Filter.EngagementTags, domain.TagType(t))
	}

	if q.Filter.Date.Kind == leads.DateCustom {
		if p.From == "" || p.To == "" {
			return q, service.ErrInvalidLeadQuery
		}
		from, err := time.ParseInLocation(dateLayout, p.From, loc)
		if err != nil {
			return q, service.ErrInvalidLeadQuery
		}
		to, err := time.ParseInLocation(dateLayout, p.To, loc)
		if err != nil {
			return q, service.ErrInvalidLeadQuery
		}
		q.Filter.Date.Start = from
		q.Filter.Date.End = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return q, q.Filter.Date.Validate()
}

// --- Mappers ---

func MapLeadToResponse(lead *domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:               lead.ID.Hex(),
		OwnerID:          lead.OwnerID.Hex(),
		FirstName:        lead.FirstName,
		LastName:         lead.LastName,
		Email:            lead.Email,
		Phone:            lead.Phone,
		SocialHandle:     lead.SocialHandle,
		Source:           lead.Source,
		Status:           lead.Status,
		ScriptComponents: ScriptComponentsDTO(lead.ScriptComponents),
		EngagementTags:   make([]EngagementTagResponse, len(lead.EngagementTags)),
		Notes:            lead.Notes,
		FollowUpDate:     lead.FollowUpDate,
		LastContact:      lead.LastContact(),
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
	for i, tag := range lead.EngagementTags {
		resp.EngagementTags[i] = EngagementTagResponse{ID: tag.ID.Hex(), Type: tag.Type, CompletedDate: tag.CompletedDate}
	}
	return resp
}

func MapLeadListToResponse(list *service.LeadList) LeadListResponse {
	resp := LeadListResponse{Leads: make([]LeadResponse, len(list.Leads)), Summary: list.Summary}
	for i := range list.Leads {
		resp.Leads[i] = MapLeadToResponse(&list.Leads[i])
	}
	return resp
}

func MapLeadMutationToResponse(m *service.LeadMutation) LeadMutationResponse {
	resp := LeadMutationResponse{LeadListResponse: MapLeadListToResponse(&m.LeadList)}
	if m.Lead != nil {
		lead := MapLeadToResponse(m.Lead)
		resp.Lead = &lead
	}
	return resp
}
