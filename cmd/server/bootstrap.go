package main

import (
	"context"
	"time"

	"github.com/teachmate/backend/internal/config"
	"github.com/teachmate/backend/internal/handlers"
	"github.com/teachmate/backend/internal/models"
	"github.com/teachmate/backend/internal/services"
	"github.com/teachmate/backend/internal/utils"
	"github.com/teachmate/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	promoterService *services.PromoterService
	taskQueue       services.TaskQueue
	worker          *services.Worker
	authHandler     *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Create default admin user
	authService := services.NewAuthService(models.GetDB(), &cfg.JWT)
	if err := authService.EnsureAdmin(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	// Promoter: periodic sweep plus eager per-match promotion from the queue
	promoterService := services.NewPromoterService(models.GetDB(), cfg.Promoter.BatchSize)
	if err := promoterService.StartScheduler(cfg.Promoter.CronSpec); err != nil {
		logger.Fatalf("Failed to start promoter scheduler: %v", err)
	}

	promote := func(ctx context.Context, task *services.PromotionTask) error {
		promoted, err := promoterService.PromoteMatch(task.MatchingID, time.Now())
		if err != nil {
			return err
		}
		if promoted {
			logger.Infof("[Promoter] match %d promoted to finished", task.MatchingID)
		}
		return nil
	}

	// Task queue (uses Redis if enabled, otherwise in-process timers)
	taskQueue := services.InitTaskQueue(cfg)
	if timerQueue, ok := taskQueue.(*services.TimerQueue); ok {
		timerQueue.SetProcessor(promote)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(promote)
			worker.Start()
		}
	}

	return &appServices{
		promoterService: promoterService,
		taskQueue:       taskQueue,
		worker:          worker,
		authHandler:     handlers.NewAuthHandler(models.GetDB(), cfg),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.promoterService.StopScheduler()
	logger.Info().Msg("Promoter scheduler stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
