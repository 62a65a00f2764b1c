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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/seguimiento-cmr/seguimiento-api/internal/config"
	"github.com/seguimiento-cmr/seguimiento-api/internal/database"
	"github.com/seguimiento-cmr/seguimiento-api/internal/handler"
	"github.com/seguimiento-cmr/seguimiento-api/internal/middleware"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
	"github.com/seguimiento-cmr/seguimiento-api/internal/repository"
	"github.com/seguimiento-cmr/seguimiento-api/internal/router"
	"github.com/seguimiento-cmr/seguimiento-api/internal/service"
	"github.com/seguimiento-cmr/seguimiento-api/pkg/sheets"
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

	if err := db.AutoMigrate(&models.Component{}, &models.Activity{}, &models.User{}, &models.Evidence{}, &models.Admin{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, task board cache disabled")
	}

	var sheetClient service.SheetClient
	if cfg.SpreadsheetID != "" {
		client, err := sheets.New(context.Background(), sheets.Config{
			CredentialsJSON: cfg.SheetsCredJSON,
			CredentialsFile: cfg.SheetsCredFile,
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create sheets client: %v", err)
		}
		sheetClient = client
	} else {
		logger.Warn().Msg("spreadsheet id not configured, sheet sync disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	componentRepo := repository.NewComponentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	mirror := service.NewSheetSync(sheetClient, cfg.SyncMode, cfg.SyncTimeout, logger)

	componentService := service.NewComponentService(componentRepo, activityRepo, evidenceRepo, validate, logger)
	activityService := service.NewActivityService(activityRepo, componentRepo, validate, logger)
	evidenceService := service.NewEvidenceService(evidenceRepo, activityRepo, userRepo, mirror, validate, logger)
	taskBoardService := service.NewTaskBoardService(evidenceService, redisClient, cfg.TaskBoardCacheTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	authService := service.NewAuthService(adminRepo, cfg.JWTSecret, validate, logger)

	componentHandler := handler.NewComponentHandler(componentService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	evidenceHandler := handler.NewEvidenceHandler(evidenceService, taskBoardService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ComponentHandler: componentHandler,
		ActivityHandler:  activityHandler,
		EvidenceHandler:  evidenceHandler,
		UserHandler:      userHandler,
		AuthHandler:      authHandler,
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
