package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/AtRiskMedia/ussd-go/internal/application/services"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/gateway"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
)

// SimulatorHandlers serves the websocket phone simulator for menu authors.
// Each connection is one conversation: every text frame is treated as one
// USSD input and answered with the rendered screen.
type SimulatorHandlers struct {
	engine   *services.EngineService
	logger   *logging.ChanneledLogger
	upgrader websocket.Upgrader
}

// NewSimulatorHandlers creates simulator handlers with injected dependencies
func NewSimulatorHandlers(engine *services.EngineService, logger *logging.ChanneledLogger) *SimulatorHandlers {
	return &SimulatorHandlers{
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The simulator is a development tool behind CORS; origin
			// checking is delegated to the browser.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetWS handles GET /api/v1/simulator/ws
func (h *SimulatorHandlers) GetWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Simulator().Warn("WebSocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	sessionID := ulid.Make().String()
	msisdn := c.DefaultQuery("msisdn", "233200000000")
	language := c.DefaultQuery("language", "en")

	h.logger.Simulator().Info("Simulator session started",
		"sessionId", logging.SanitizeSessionID(sessionID))

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			h.logger.Simulator().Debug("Simulator connection closed", "error", err.Error())
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := h.engine.ProcessRequest(c.Request.Context(), &gateway.Request{
			SessionID: sessionID,
			MSISDN:    msisdn,
			Input:     string(payload),
			Language:  language,
		})

		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Simulator().Warn("Failed to write simulator response", "error", err.Error())
			return
		}

		if resp.EndSession {
			h.logger.Simulator().Info("Simulator session ended",
				"sessionId", logging.SanitizeSessionID(sessionID))
			return
		}
	}
}
