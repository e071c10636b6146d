package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/ussd-go/internal/application/services"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/menu"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
)

// AdminHandlers contains the menu builder HTTP handlers
type AdminHandlers struct {
	menuService *services.MenuService
	authService *services.AuthService
	logger      *logging.ChanneledLogger
}

// NewAdminHandlers creates admin handlers with injected dependencies
func NewAdminHandlers(menuService *services.MenuService, authService *services.AuthService, logger *logging.ChanneledLogger) *AdminHandlers {
	return &AdminHandlers{
		menuService: menuService,
		authService: authService,
		logger:      logger,
	}
}

// PostLogin handles POST /api/v1/auth/login - admin authentication
func (h *AdminHandlers) PostLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	result := h.authService.AuthenticateAdmin(req.Password)
	if !result.Success {
		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Error})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": result.Token, "role": result.Role})
}

// GetScreens handles GET /api/v1/admin/screens - list all stored screens
func (h *AdminHandlers) GetScreens(c *gin.Context) {
	screens, err := h.menuService.Repository().ListScreens(c.Request.Context())
	if err != nil {
		h.logger.LogError(logging.ChannelDatabase, "listScreens", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list screens"})
		return
	}
	c.JSON(http.StatusOK, screens)
}

// GetScreen handles GET /api/v1/admin/screens/:name
func (h *AdminHandlers) GetScreen(c *gin.Context) {
	name := c.Param("name")
	screen, err := h.menuService.Repository().GetScreen(c.Request.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "screen not found"})
		return
	}
	if err != nil {
		h.logger.LogError(logging.ChannelDatabase, "getScreen", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load screen"})
		return
	}
	c.JSON(http.StatusOK, screen)
}

// PutScreen handles PUT /api/v1/admin/screens/:name - create or replace
func (h *AdminHandlers) PutScreen(c *gin.Context) {
	name := c.Param("name")

	var screen menu.Screen
	if err := c.ShouldBindJSON(&screen); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.menuService.Repository().UpsertScreen(c.Request.Context(), name, screen); err != nil {
		h.logger.LogError(logging.ChannelDatabase, "upsertScreen", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store screen"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

// DeleteScreen handles DELETE /api/v1/admin/screens/:name
func (h *AdminHandlers) DeleteScreen(c *gin.Context) {
	name := c.Param("name")
	err := h.menuService.Repository().DeleteScreen(c.Request.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "screen not found"})
		return
	}
	if err != nil {
		h.logger.LogError(logging.ChannelDatabase, "deleteScreen", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete screen"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetServices handles GET /api/v1/admin/services - list all stored services
func (h *AdminHandlers) GetServices(c *gin.Context) {
	svcs, err := h.menuService.Repository().ListServices(c.Request.Context())
	if err != nil {
		h.logger.LogError(logging.ChannelDatabase, "listServices", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, svcs)
}

// PutService handles PUT /api/v1/admin/services/:name - create or replace
func (h *AdminHandlers) PutService(c *gin.Context) {
	name := c.Param("name")

	var svc menu.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.menuService.Repository().UpsertService(c.Request.Context(), name, svc); err != nil {
		h.logger.LogError(logging.ChannelDatabase, "upsertService", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store service"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

// DeleteService handles DELETE /api/v1/admin/services/:name
func (h *AdminHandlers) DeleteService(c *gin.Context) {
	name := c.Param("name")
	err := h.menuService.Repository().DeleteService(c.Request.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	if err != nil {
		h.logger.LogError(logging.ChannelDatabase, "deleteService", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete service"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetExport handles GET /api/v1/admin/menu/export - full menu document
func (h *AdminHandlers) GetExport(c *gin.Context) {
	m := h.menuService.Active()
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active menu"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// PostImport handles POST /api/v1/admin/menu/import - replace the whole menu
func (h *AdminHandlers) PostImport(c *gin.Context) {
	var m menu.Menu
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.menuService.Import(c.Request.Context(), &m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"screens":  len(m.Screens),
		"services": len(m.Services),
	})
}

// PostReload handles POST /api/v1/admin/menu/reload - republish from storage
func (h *AdminHandlers) PostReload(c *gin.Context) {
	if err := h.menuService.Reload(c.Request.Context()); err != nil {
		h.logger.LogError(logging.ChannelSystem, "reloadMenu", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels
func (h *AdminHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}
