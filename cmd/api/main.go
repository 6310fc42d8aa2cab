package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/deadline-mate/api/internal/config"
	"github.com/deadline-mate/api/internal/database"
	"github.com/deadline-mate/api/internal/handler"
	"github.com/deadline-mate/api/internal/middleware"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
	"github.com/deadline-mate/api/internal/router"
	"github.com/deadline-mate/api/internal/service"
	cloud "github.com/deadline-mate/api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.TeacherProfile{},
		&models.Group{},
		&models.GroupMembership{},
		&models.GroupTeacher{},
		&models.Assignment{},
		&models.AssignmentGroup{},
		&models.AssignmentAttachment{},
		&models.Submission{},
		&models.SubmissionAttachment{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.UploadCloudName,
		APIKey:    cfg.UploadAPIKey,
		APISecret: cfg.UploadAPISecret,
		Folder:    cfg.UploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	tokens := service.TokenConfig{
		Secret:        cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.AppName,
	}

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	groupService := service.NewGroupService(groupRepo, membershipRepo, userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, groupRepo, validate, uploader, activityService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, activityService, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, activityService, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, gradingService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		GroupHandler:      groupHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		DashboardHandler:  dashboardHandler,
		ActivityHandler:   activityHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		RateLimiter:       middleware.RateLimit("auth", cfg.RateLimitMax, cfg.RateLimitWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
