// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/bodegapp/backend-go/internal/api/handlers"
	"github.com/bodegapp/backend-go/internal/api/middleware"
	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	UploadDir         string
	InventoryService  *service.InventoryService
	CatalogService    *service.CatalogService
	MonthlyService    *service.MonthlyService
	PackagingService  *service.PackagingService
	CategoriesService *service.CategoriesService
	ForecastService   *service.ForecastService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		handlers.SetArchiveDir(services.UploadDir)

		if services.InventoryService != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
			inventoryGroup := apiGroup.Group("/inventory")
			{
				inventoryGroup.POST("/import", inventoryHandler.Import)
				inventoryGroup.GET("", inventoryHandler.List)
				inventoryGroup.GET("/alerts", inventoryHandler.Alerts)
				inventoryGroup.DELETE("", inventoryHandler.Clear)
				inventoryGroup.PUT("/medications/:id", inventoryHandler.UpdateMedication)
				inventoryGroup.DELETE("/medications/:id", inventoryHandler.DeleteMedication)
			}
			apiGroup.GET("/dashboard/stats", inventoryHandler.Stats)
		}

		if services.CatalogService != nil {
			catalogHandler := handlers.NewCatalogHandler(services.CatalogService)
			catalogGroup := apiGroup.Group("/catalog")
			{
				catalogGroup.POST("/import", catalogHandler.Import)
				catalogGroup.DELETE("", catalogHandler.Clear)
			}
		}

		if services.MonthlyService != nil {
			consumptionHandler := handlers.NewConsumptionHandler(services.MonthlyService)
			consumptionGroup := apiGroup.Group("/consumption")
			{
				consumptionGroup.POST("/import", consumptionHandler.Import)
				consumptionGroup.GET("", consumptionHandler.List)
				consumptionGroup.GET("/summary", consumptionHandler.Summary)
				consumptionGroup.GET("/selected", consumptionHandler.Selected)
				consumptionGroup.PUT("/selected/:id", consumptionHandler.Select)
			}
		}

		if services.PackagingService != nil {
			packagingHandler := handlers.NewPackagingHandler(services.PackagingService)
			packagingGroup := apiGroup.Group("/packaging")
			{
				packagingGroup.POST("/import", packagingHandler.Import)
				packagingGroup.GET("", packagingHandler.List)
				packagingGroup.DELETE("", packagingHandler.Clear)
			}
		}

		if services.CategoriesService != nil {
			categoriesHandler := handlers.NewCategoriesHandler(services.CategoriesService)
			categoriesGroup := apiGroup.Group("/categories")
			{
				categoriesGroup.POST("/import", categoriesHandler.Import)
				categoriesGroup.GET("", categoriesHandler.List)
				categoriesGroup.DELETE("", categoriesHandler.Clear)
			}
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			apiGroup.GET("/orders/forecast", forecastHandler.Get)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
