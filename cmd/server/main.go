package main

import (
	"context"
	"errors"
	"focuscoach/coaching-app/internal/api"
	"focuscoach/coaching-app/internal/config"
	"focuscoach/coaching-app/internal/notify"
	"focuscoach/coaching-app/internal/repository/mongo"
	"focuscoach/coaching-app/internal/service"
	"focuscoach/coaching-app/internal/storage"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Coaching API
// @version 1.0
// @description API for real-estate photography coaching: leads, weekly reports, goals and program weeks.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Coaching App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("FATAL: JWT_SECRET must be set")
	}
	location := cfg.Coaching.Location()
	log.Printf("Configuration loaded (coaching timezone %s).", location)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(initCtx, cfg.S3)
	initCancel()
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	notifier := notify.NewNotifier(cfg.Email.APIKey, cfg.Email.From)

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	leadRepo := mongo.NewMongoLeadRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	reportRepo := mongo.NewMongoWeeklyReportRepository(appDB)
	attachmentRepo := mongo.NewMongoAttachmentRepository(appDB)
	pricingRepo := mongo.NewMongoPricingRepository(appDB)

	// --- Initialize Services ---
	leadService := service.NewLeadService(leadRepo)
	services := api.Services{
		Auth:    service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Leads:   leadService,
		Student: service.NewStudentService(userRepo, goalRepo, reportRepo, attachmentRepo, leadService, fileStorage, notifier, location),
		Coach:   service.NewCoachService(userRepo, reportRepo, leadService, location),
		Admin:   service.NewAdminService(userRepo, pricingRepo, cfg.Coaching.DefaultTermWeeks),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, cfg.JWT.Secret, location, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
