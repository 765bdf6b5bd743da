package api

import (
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Services groups what the router needs, so main and tests wire it in one place.
type Services struct {
	Auth    service.AuthService
	Leads   service.LeadService
	Student service.StudentService
	Coach   service.CoachService
	Admin   service.AdminService
}

// SetupRoutes registers every API route. Lead date ranges are read in location.
func SetupRoutes(router *gin.Engine, jwtSecret string, location *time.Location, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	leadHandler := NewLeadHandler(svc.Leads, location)
	studentHandler := NewStudentHandler(svc.Student)
	coachHandler := NewCoachHandler(svc.Coach, location)
	adminHandler := NewAdminHandler(svc.Admin)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// Active plans are visible to every signed-in user.
		protected.GET("/pricing", adminHandler.ListPricingPlans)

		// --- Student Routes ---
		studentGroup := protected.Group("/student")
		studentGroup.Use(RoleMiddleware(domain.RoleStudent))
		{
			studentGroup.GET("/program", studentHandler.GetProgram)
			studentGroup.GET("/dashboard", studentHandler.GetDashboard)

			// Leads
			studentGroup.GET("/leads", leadHandler.ListLeads)
			studentGroup.POST("/leads", leadHandler.CreateLead)
			studentGroup.PATCH("/leads/:leadId", leadHandler.UpdateLead)
			studentGroup.DELETE("/leads/:leadId", leadHandler.DeleteLead)
			studentGroup.PUT("/leads/:leadId/status", leadHandler.SetLeadStatus)
			studentGroup.POST("/leads/:leadId/tags/:tagType/toggle", leadHandler.ToggleEngagementTag)

			// Goals
			studentGroup.GET("/goals", studentHandler.GetGoals)
			studentGroup.POST("/goals", studentHandler.CreateGoal)
			studentGroup.PATCH("/goals/:goalId", studentHandler.UpdateGoal)
			studentGroup.DELETE("/goals/:goalId", studentHandler.DeleteGoal)

			// Weekly reports
			studentGroup.GET("/reports", studentHandler.GetReports)
			studentGroup.POST("/reports", studentHandler.SubmitReport)
			studentGroup.POST("/reports/:reportId/attachments/upload-url", studentHandler.RequestUploadURL)
			studentGroup.POST("/reports/:reportId/attachments", studentHandler.ConfirmAttachment)
			studentGroup.GET("/reports/:reportId/attachments", studentHandler.GetAttachments)
		}

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.GET("/students", coachHandler.GetManagedStudents)
			coachGroup.POST("/students", coachHandler.AddStudentByEmail)
			coachGroup.GET("/students/:studentId/leads", coachHandler.GetStudentLeads)
			coachGroup.GET("/students/:studentId/reports", coachHandler.GetStudentReports)
			coachGroup.PUT("/reports/:reportId/feedback", coachHandler.SubmitFeedback)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.PUT("/users/:userId/role", adminHandler.SetUserRole)
			adminGroup.PUT("/users/:userId/access", adminHandler.SetProgramAccess)
			adminGroup.GET("/pricing", adminHandler.ListPricingPlans)
			adminGroup.POST("/pricing", adminHandler.CreatePricingPlan)
			adminGroup.PUT("/pricing/:planId", adminHandler.UpdatePricingPlan)
		}
	}
}
