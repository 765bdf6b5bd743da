package api

import (
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// --- DTOs ---

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ProgramAccessRequest replaces both program windows of a student. A coaching term
// with a start and no end is given the default program length.
type ProgramAccessRequest struct {
	HasPaid           bool       `json:"hasPaid"`
	CoachingTermStart *time.Time `json:"coachingTermStart"`
	CoachingTermEnd   *time.Time `json:"coachingTermEnd"`
	AccessStart       *time.Time `json:"accessStart"`
	AccessEnd         *time.Time `json:"accessEnd"`
}

type PricingPlanRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=2000"`
	PriceCents  int64  `json:"priceCents" binding:"min=0"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Interval    string `json:"interval" binding:"required" validate:"interval"`
	TermWeeks   int    `json:"termWeeks" binding:"min=0"`
	Active      bool   `json:"active"`
}

func (r PricingPlanRequest) toDomain() domain.PricingPlan {
	return domain.PricingPlan{
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Currency:    r.Currency,
		Interval:    domain.BillingInterval(r.Interval),
		TermWeeks:   r.TermWeeks,
		Active:      r.Active,
	}
}

// --- Handler Methods ---

// SetUserRole godoc
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param request body SetRoleRequest true "New role"
// @Success 200 {object} UserResponse
// @Router /admin/users/{userId}/role [put]
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	var req SetRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.adminService.SetUserRole(c.Request.Context(), adminID, userID, req.Role)
	if err != nil {
		respondWithServiceError(c, err, "set user role")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// SetProgramAccess godoc
// @Summary Grant paid access or a coaching term to a student
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Student ID"
// @Param request body ProgramAccessRequest true "Program windows"
// @Success 200 {object} UserResponse
// @Router /admin/users/{userId}/access [put]
func (h *AdminHandler) SetProgramAccess(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	var req ProgramAccessRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.adminService.SetProgramAccess(c.Request.Context(), userID, domain.ProgramAccess(req))
	if err != nil {
		respondWithServiceError(c, err, "set program access")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ListPricingPlans serves both the admin list (?all=true) and the active plans anyone may see.
func (h *AdminHandler) ListPricingPlans(c *gin.Context) {
	activeOnly := true
	if role, err := getUserRoleFromContext(c); err == nil && role == domain.RoleAdmin {
		activeOnly = c.Query("all") != "true"
	}
	plans, err := h.adminService.ListPricingPlans(c.Request.Context(), activeOnly)
	if err != nil {
		respondWithServiceError(c, err, "retrieve pricing plans")
		return
	}
	if plans == nil {
		plans = []domain.PricingPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

func (h *AdminHandler) CreatePricingPlan(c *gin.Context) {
	var req PricingPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.adminService.CreatePricingPlan(c.Request.Context(), req.toDomain())
	if err != nil {
		respondWithServiceError(c, err, "create pricing plan")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *AdminHandler) UpdatePricingPlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	var req PricingPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.adminService.UpdatePricingPlan(c.Request.Context(), planID, req.toDomain())
	if err != nil {
		respondWithServiceError(c, err, "update pricing plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}
