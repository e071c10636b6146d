// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/ussd-go/internal/application/container"
	"github.com/AtRiskMedia/ussd-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/ussd-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	gatewayHandlers := handlers.NewGatewayHandlers(container.EngineService, container.Logger)
	adminHandlers := handlers.NewAdminHandlers(container.MenuService, container.AuthService, container.Logger)
	simulatorHandlers := handlers.NewSimulatorHandlers(container.EngineService, container.Logger)

	api := r.Group("/api/v1")
	{
		// Gateway surface
		api.POST("/ussd", gatewayHandlers.PostUSSD)

		// Simulator console
		api.GET("/simulator/ws", simulatorHandlers.GetWS)

		// Auth
		api.POST("/auth/login", adminHandlers.PostLogin)

		// Menu builder, bearer-token protected
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(container.AuthService))
		{
			admin.GET("/screens", adminHandlers.GetScreens)
			admin.GET("/screens/:name", adminHandlers.GetScreen)
			admin.PUT("/screens/:name", adminHandlers.PutScreen)
			admin.DELETE("/screens/:name", adminHandlers.DeleteScreen)

			admin.GET("/services", adminHandlers.GetServices)
			admin.PUT("/services/:name", adminHandlers.PutService)
			admin.DELETE("/services/:name", adminHandlers.DeleteService)

			admin.GET("/menu/export", adminHandlers.GetExport)
			admin.POST("/menu/import", adminHandlers.PostImport)
			admin.POST("/menu/reload", adminHandlers.PostReload)

			admin.GET("/logs/levels", adminHandlers.GetLogLevels)
		}
	}

	return r
}
