package main

import (
	"context"
	"fmt"
	"os"

	"constituency-service/internal/auth"
	"constituency-service/internal/cache"
	"constituency-service/internal/config"
	"constituency-service/internal/db"
	"constituency-service/internal/events"
	httphandler "constituency-service/internal/http"
	"constituency-service/internal/http/middleware"
	"constituency-service/internal/logger"
	"constituency-service/internal/repository"
	"constituency-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	// Redis and RabbitMQ are optional; the service degrades to direct reads
	// and silent event drops when they are not configured.
	var statsCache *cache.Cache
	if cfg.Redis.Addr != "" {
		statsCache, err = cache.New(context.Background(), cfg.Redis)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer statsCache.Close()
	}

	var publisher events.Publisher
	if cfg.MQ.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	userRepo := repository.NewUserRepository(database)
	visitorRepo := repository.NewVisitorRepository(database)
	appointmentRepo := repository.NewAppointmentRepository(database)
	visitRepo := repository.NewVisitRepository(database)
	issueRepo := repository.NewIssueRepository(database)
	resumeRepo := repository.NewResumeRepository(database)

	visitorService := service.NewVisitorService(visitorRepo, visitRepo, appointmentRepo, issueRepo, resumeRepo)
	appointmentService := service.NewAppointmentService(database, appointmentRepo, visitorRepo, userRepo, publisher, appLogger)
	visitService := service.NewVisitService(database, visitRepo, visitorRepo, appointmentRepo, userRepo, publisher, appLogger)
	issueService := service.NewIssueService(issueRepo, visitorRepo, userRepo, publisher, appLogger)
	resumeService := service.NewResumeService(database, resumeRepo, visitorRepo)
	reportService := service.NewReportService(visitorRepo, visitRepo, appointmentRepo, issueRepo, statsCache, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(
		visitorService,
		appointmentService,
		visitService,
		issueService,
		resumeService,
		reportService,
		appLogger,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting constituency service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
