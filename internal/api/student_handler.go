package api

import (
	"focuscoach/coaching-app/internal/coaching"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/leads"
	"focuscoach/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	studentService service.StudentService
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// --- DTOs ---

// ProgramResponse is "not applicable" when the student has no program window.
type ProgramResponse struct {
	Applicable bool                    `json:"applicable"`
	Status     *coaching.ProgramStatus `json:"status,omitempty"`
}

type GoalRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description" binding:"max=2000"`
	TargetValue  int        `json:"targetValue" binding:"min=0"`
	CurrentValue int        `json:"currentValue" binding:"min=0"`
	DueDate      *time.Time `json:"dueDate"`
}

type UpdateGoalRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	TargetValue  *int       `json:"targetValue" binding:"omitempty,min=0"`
	CurrentValue *int       `json:"currentValue" binding:"omitempty,min=0"`
	DueDate      *time.Time `json:"dueDate"`
	Achieved     *bool      `json:"achieved"`
}

type GoalResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	TargetValue  int        `json:"targetValue"`
	CurrentValue int        `json:"currentValue"`
	Progress     float64    `json:"progress"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Achieved     bool       `json:"achieved"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type SubmitReportRequest struct {
	NewLeads      int    `json:"newLeads" binding:"min=0"`
	Conversations int    `json:"conversations" binding:"min=0"`
	ShootsBooked  int    `json:"shootsBooked" binding:"min=0"`
	RevenueCents  int64  `json:"revenueCents" binding:"min=0"`
	Wins          string `json:"wins" binding:"max=10000"`
	Challenges    string `json:"challenges" binding:"max=10000"`
}

type WeeklyReportResponse struct {
	ID            string               `json:"id"`
	StudentID     string               `json:"studentId"`
	WeekNumber    int                  `json:"weekNumber"`
	WeekStart     time.Time            `json:"weekStart"`
	WeekEnd       time.Time            `json:"weekEnd"`
	Metrics       domain.ReportMetrics `json:"metrics"`
	Wins          string               `json:"wins,omitempty"`
	Challenges    string               `json:"challenges,omitempty"`
	CoachFeedback string               `json:"coachFeedback,omitempty"`
	AttachmentIDs []string             `json:"attachmentIds,omitempty"`
	SubmittedAt   time.Time            `json:"submittedAt"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAttachmentRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
}

type DashboardResponse struct {
	Program             ProgramResponse        `json:"program"`
	LeadSummary         leads.Summary          `json:"leadSummary"`
	Goals               []GoalResponse         `json:"goals"`
	RecentReports       []WeeklyReportResponse `json:"recentReports"`
	CurrentWeekReported bool                   `json:"currentWeekReported"`
}

// --- Program ---

// GetProgram godoc
// @Summary Current program week of the student
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProgramResponse
// @Router /student/program [get]
func (h *StudentHandler) GetProgram(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	status, err := h.studentService.GetProgramStatus(c.Request.Context(), studentID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve program status")
		return
	}
	c.JSON(http.StatusOK, programResponse(status))
}

// GetDashboard godoc
// @Summary Student landing view
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Router /student/dashboard [get]
func (h *StudentHandler) GetDashboard(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	dash, err := h.studentService.GetDashboard(c.Request.Context(), studentID)
	if err != nil {
		respondWithServiceError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		Program:             programResponse(dash.Program),
		LeadSummary:         dash.LeadSummary,
		Goals:               MapGoalsToResponse(dash.Goals),
		RecentReports:       MapReportsToResponse(dash.RecentReports),
		CurrentWeekReported: dash.CurrentWeekReported,
	})
}

// --- Goals ---

func (h *StudentHandler) GetGoals(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	goals, err := h.studentService.GetGoals(c.Request.Context(), studentID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve goals")
		return
	}
	c.JSON(http.StatusOK, MapGoalsToResponse(goals))
}

func (h *StudentHandler) CreateGoal(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req GoalRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.studentService.CreateGoal(c.Request.Context(), studentID, domain.Goal{
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondWithServiceError(c, err, "create goal")
		return
	}
	c.JSON(http.StatusCreated, MapGoalToResponse(goal))
}

func (h *StudentHandler) UpdateGoal(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathObjectID(c, "goalId")
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.studentService.UpdateGoal(c.Request.Context(), studentID, goalID, domain.GoalUpdate{
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		DueDate:      req.DueDate,
		Achieved:     req.Achieved,
	})
	if err != nil {
		respondWithServiceError(c, err, "update goal")
		return
	}
	c.JSON(http.StatusOK, MapGoalToResponse(goal))
}

func (h *StudentHandler) DeleteGoal(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathObjectID(c, "goalId")
	if !ok {
		return
	}
	if err := h.studentService.DeleteGoal(c.Request.Context(), studentID, goalID); err != nil {
		respondWithServiceError(c, err, "delete goal")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Weekly Reports ---

// SubmitReport godoc
// @Summary File the weekly report for the current program week
// @Description The week number is computed from the student's program window.
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param report body SubmitReportRequest true "Weekly numbers and notes (markdown)"
// @Success 201 {object} WeeklyReportResponse
// @Failure 409 {object} gin.H "Already reported this week"
// @Failure 422 {object} gin.H "No program window, or week 1 has not started"
// @Router /student/reports [post]
func (h *StudentHandler) SubmitReport(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req SubmitReportRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.studentService.SubmitWeeklyReport(c.Request.Context(), studentID, service.WeeklyReportInput{
		Metrics: domain.ReportMetrics{
			NewLeads:      req.NewLeads,
			Conversations: req.Conversations,
			ShootsBooked:  req.ShootsBooked,
			RevenueCents:  req.RevenueCents,
		},
		Wins:       req.Wins,
		Challenges: req.Challenges,
	})
	if err != nil {
		respondWithServiceError(c, err, "submit weekly report")
		return
	}
	c.JSON(http.StatusCreated, MapReportToResponse(report))
}

func (h *StudentHandler) GetReports(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	reports, err := h.studentService.GetMyReports(c.Request.Context(), studentID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve weekly reports")
		return
	}
	c.JSON(http.StatusOK, MapReportsToResponse(reports))
}

// --- Attachments ---

// RequestUploadURL godoc
// @Summary Get a presigned URL to upload an image for a weekly report
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Param request body UploadURLRequest true "Image content type"
// @Success 200 {object} service.UploadURLResponse
// @Router /student/reports/{reportId}/attachments/upload-url [post]
func (h *StudentHandler) RequestUploadURL(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID, ok := pathObjectID(c, "reportId")
	if !ok {
		return
	}
	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.studentService.RequestAttachmentUploadURL(c.Request.Context(), studentID, reportID, req.ContentType)
	if err != nil {
		respondWithServiceError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmAttachment godoc
// @Summary Record an uploaded image against a weekly report
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Param request body ConfirmAttachmentRequest true "Uploaded object"
// @Success 201 {object} domain.Attachment
// @Router /student/reports/{reportId}/attachments [post]
func (h *StudentHandler) ConfirmAttachment(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID, ok := pathObjectID(c, "reportId")
	if !ok {
		return
	}
	var req ConfirmAttachmentRequest
	if !bindJSON(c, &req) {
		return
	}
	attachment, err := h.studentService.ConfirmAttachment(c.Request.Context(), studentID, reportID, req.ObjectKey, req.FileName, req.ContentType)
	if err != nil {
		respondWithServiceError(c, err, "confirm attachment")
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (h *StudentHandler) GetAttachments(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID, ok := pathObjectID(c, "reportId")
	if !ok {
		return
	}
	views, err := h.studentService.GetAttachments(c.Request.Context(), studentID, reportID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve attachments")
		return
	}
	c.JSON(http.StatusOK, views)
}

// --- Mappers ---

func MapGoalToResponse(g *domain.Goal) GoalResponse {
	return GoalResponse{
		ID:           g.ID.Hex(),
		Title:        g.Title,
		Description:  g.Description,
		TargetValue:  g.TargetValue,
		CurrentValue: g.CurrentValue,
		Progress:     g.Progress(),
		DueDate:      g.DueDate,
		Achieved:     g.Achieved,
		CreatedAt:    g.CreatedAt,
	}
}

func MapGoalsToResponse(goals []domain.Goal) []GoalResponse {
	resp := make([]GoalResponse, len(goals))
	for i := range goals {
		resp[i] = MapGoalToResponse(&goals[i])
	}
	return resp
}

func MapReportToResponse(r *domain.WeeklyReport) WeeklyReportResponse {
	resp := WeeklyReportResponse{
		ID:            r.ID.Hex(),
		StudentID:     r.StudentID.Hex(),
		WeekNumber:    r.WeekNumber,
		WeekStart:     r.WeekStart,
		WeekEnd:       r.WeekEnd,
		Metrics:       r.Metrics,
		Wins:          r.Wins,
		Challenges:    r.Challenges,
		CoachFeedback: r.CoachFeedback,
		SubmittedAt:   r.SubmittedAt,
	}
	for _, id := range r.AttachmentIDs {
		resp.AttachmentIDs = append(resp.AttachmentIDs, id.Hex())
	}
	return resp
}

func MapReportsToResponse(reports []domain.WeeklyReport) []WeeklyReportResponse {
	resp := make([]WeeklyReportResponse, len(reports))
	for i := range reports {
		resp[i] = MapReportToResponse(&reports[i])
	}
	return resp
}
