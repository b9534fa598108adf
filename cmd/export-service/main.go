package main

import (
	"fmt"
	"os"

	"github.com/shinoburc/drivelog-export/internal/auth"
	"github.com/shinoburc/drivelog-export/internal/config"
	"github.com/shinoburc/drivelog-export/internal/db"
	"github.com/shinoburc/drivelog-export/internal/export"
	httphandler "github.com/shinoburc/drivelog-export/internal/http"
	"github.com/shinoburc/drivelog-export/internal/http/middleware"
	"github.com/shinoburc/drivelog-export/internal/logger"
	"github.com/shinoburc/drivelog-export/internal/pdf"
	"github.com/shinoburc/drivelog-export/internal/repository"
	"github.com/shinoburc/drivelog-export/internal/service"
	"github.com/shinoburc/drivelog-export/internal/xlsx"
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

	tripRepo := repository.NewTripRepository(database)
	settingsRepo := repository.NewSettingsRepository(database, cfg.Export.HistoryLimit)

	orchestrator := export.NewOrchestrator(tripRepo, settingsRepo, log)
	orchestrator.MaxArtifactBytes = cfg.Export.MaxArtifactBytes

	exportService := service.NewExportService(
		tripRepo,
		settingsRepo,
		orchestrator,
		xlsx.NewGenerator(),
		pdf.NewGenerator(),
		export.NewFileSink(cfg.Export.OutputDir),
		log,
	)
	settingsService := service.NewSettingsService(settingsRepo, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(exportService, settingsService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting export service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
