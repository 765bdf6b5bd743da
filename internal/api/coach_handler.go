package api

import (
	"focuscoach/coaching-app/internal/coaching"
	"focuscoach/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	coachService service.CoachService
	location     *time.Location
}

func NewCoachHandler(coachService service.CoachService, location *time.Location) *CoachHandler {
	if location == nil {
		location = time.UTC
	}
	return &CoachHandler{coachService: coachService, location: location}
}

// --- DTOs ---

type AddStudentRequest struct {
	StudentEmail string `json:"studentEmail" binding:"required,email"`
}

type StudentOverviewResponse struct {
	Student UserResponse    `json:"student"`
	Program ProgramResponse `json:"program"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required,max=10000"`
}

// --- Handler Methods ---

// AddStudentByEmail godoc
// @Summary Add a student to the coach's roster by email
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddStudentRequest true "Student's email"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "Student not found"
// @Failure 409 {object} gin.H "Student already has a coach"
// @Router /coach/students [post]
func (h *CoachHandler) AddStudentByEmail(c *gin.Context) {
	var req AddStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	student, err := h.coachService.AddStudentByEmail(c.Request.Context(), coachID, req.StudentEmail)
	if err != nil {
		respondWithServiceError(c, err, "add student")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(student))
}

// GetManagedStudents godoc
// @Summary List the coach's students with their current program week
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} StudentOverviewResponse
// @Router /coach/students [get]
func (h *CoachHandler) GetManagedStudents(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	students, err := h.coachService.GetManagedStudents(c.Request.Context(), coachID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve managed students")
		return
	}
	resp := make([]StudentOverviewResponse, len(students))
	for i, s := range students {
		resp[i] = StudentOverviewResponse{
			Student: MapUserToResponse(s.Student),
			Program: programResponse(s.Program),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetStudentLeads godoc
// @Summary View a managed student's leads
// @Description Accepts the same filter and sort parameters as the student's own lead list.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} LeadListResponse
// @Router /coach/students/{studentId}/leads [get]
func (h *CoachHandler) GetStudentLeads(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	query, ok := bindLeadQuery(c, h.location)
	if !ok {
		return
	}
	list, err := h.coachService.GetStudentLeads(c.Request.Context(), coachID, studentID, query)
	if err != nil {
		respondWithServiceError(c, err, "retrieve student leads")
		return
	}
	c.JSON(http.StatusOK, MapLeadListToResponse(list))
}

func (h *CoachHandler) GetStudentReports(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	reports, err := h.coachService.GetStudentReports(c.Request.Context(), coachID, studentID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve student reports")
		return
	}
	c.JSON(http.StatusOK, MapReportsToResponse(reports))
}

// SubmitFeedback godoc
// @Summary Give feedback on a student's weekly report
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Param request body FeedbackRequest true "Feedback"
// @Success 200 {object} WeeklyReportResponse
// @Router /coach/reports/{reportId}/feedback [put]
func (h *CoachHandler) SubmitFeedback(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID, ok := pathObjectID(c, "reportId")
	if !ok {
		return
	}
	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.coachService.SubmitFeedback(c.Request.Context(), coachID, reportID, req.Feedback)
	if err != nil {
		respondWithServiceError(c, err, "submit feedback")
		return
	}
	c.JSON(http.StatusOK, MapReportToResponse(report))
}

func programResponse(status *coaching.ProgramStatus) ProgramResponse {
	return ProgramResponse{Applicable: status != nil, Status: status}
}
