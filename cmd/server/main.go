// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bodegapp/backend-go/internal/api"
	"github.com/bodegapp/backend-go/internal/cache"
	"github.com/bodegapp/backend-go/internal/config"
	"github.com/bodegapp/backend-go/internal/drive"
	"github.com/bodegapp/backend-go/internal/service"
	"github.com/bodegapp/backend-go/internal/store/postgres"
	"github.com/bodegapp/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, running without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	st := postgres.NewStore(db)

	services := &api.Services{
		UploadDir:         cfg.App.UploadDir,
		InventoryService:  service.NewInventoryService(st, forecastCache),
		CatalogService:    service.NewCatalogService(st, forecastCache),
		MonthlyService:    service.NewMonthlyService(st, forecastCache),
		PackagingService:  service.NewPackagingService(st),
		CategoriesService: service.NewCategoriesService(st),
		ForecastService:   service.NewForecastService(st, forecastCache),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)

	if cfg.Drive.Enabled {
		driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Fatalf("Failed to initialize Google Drive service: %v", err)
		}
		ingestService := drive.NewIngestService(driveService, drive.IngestServices{
			Inventory:  services.InventoryService,
			Catalog:    services.CatalogService,
			Monthly:    services.MonthlyService,
			Packaging:  services.PackagingService,
			Categories: services.CategoriesService,
		})

		driveRouter := mux.NewRouter()
		drive.NewHandler(driveService, ingestService, cfg.Drive.FolderPath).RegisterRoutes(driveRouter)
		router.Any("/api/drive/*path", gin.WrapH(driveRouter))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
