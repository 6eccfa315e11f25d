package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spotter-eld/hos-service/internal/auth"
	"github.com/spotter-eld/hos-service/internal/config"
	"github.com/spotter-eld/hos-service/internal/db"
	"github.com/spotter-eld/hos-service/internal/excel"
	httphandler "github.com/spotter-eld/hos-service/internal/http"
	"github.com/spotter-eld/hos-service/internal/http/middleware"
	"github.com/spotter-eld/hos-service/internal/logger"
	"github.com/spotter-eld/hos-service/internal/pdf"
	"github.com/spotter-eld/hos-service/internal/repository"
	"github.com/spotter-eld/hos-service/internal/scheduler"
	"github.com/spotter-eld/hos-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	intervalRepo := repository.NewIntervalRepository(database)
	summaryRepo := repository.NewSummaryRepository(database)
	violationRepo := repository.NewViolationRepository(database)
	tripRepo := repository.NewTripRepository(database)
	profileRepo := repository.NewProfileRepository(database)

	intervalService := service.NewIntervalService(intervalRepo)
	summaryService := service.NewSummaryService(summaryRepo, intervalRepo)
	complianceService := service.NewComplianceService(summaryService, intervalRepo, violationRepo)
	tripService := service.NewTripService(tripRepo, profileRepo)

	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		intervalService,
		summaryService,
		complianceService,
		tripService,
		pdfGenerator,
		excelGenerator,
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(
		intervalRepo,
		tripRepo,
		profileRepo,
		cfg.Scheduler.TickInterval,
		cfg.Scheduler.TickBudget,
		cfg.Scheduler.RevertTolerance,
		log,
	)
	go sched.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting hos service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
