// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/ussd-go/internal/application/services"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/gateway"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
)

// GatewayHandlers contains the USSD gateway-facing HTTP handlers
type GatewayHandlers struct {
	engine *services.EngineService
	logger *logging.ChanneledLogger
}

// NewGatewayHandlers creates gateway handlers with injected dependencies
func NewGatewayHandlers(engine *services.EngineService, logger *logging.ChanneledLogger) *GatewayHandlers {
	return &GatewayHandlers{
		engine: engine,
		logger: logger,
	}
}

// PostUSSD handles POST /api/v1/ussd - one gateway exchange in, one screen out
func (h *GatewayHandlers) PostUSSD(c *gin.Context) {
	var req gateway.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Gateway().Warn("Malformed gateway request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and msisdn are required"})
		return
	}

	resp := h.engine.ProcessRequest(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}
