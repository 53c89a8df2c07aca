package handler

import (
	"strings"

	"chatpulse/internal/pkg/logger"
	internalWS "chatpulse/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveHandler upgrades UI clients to a WebSocket that receives every live
// event for one identifier.
type LiveHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewLiveHandler(hub *internalWS.Hub, log logger.ILogger) *LiveHandler {
	return &LiveHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *LiveHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/live/:identifier", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	identifier := strings.TrimSpace(c.Params("identifier"))
	if identifier == "" {
		return fiber.NewError(fiber.StatusBadRequest, "identifier is required")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("LiveHandler", "Starting WebSocket session", map[string]interface{}{"identifier": identifier})
		internalWS.ServeWs(h.hub, conn, identifier)
		h.logger.Info("LiveHandler", "WebSocket session ended", map[string]interface{}{"identifier": identifier})
	})(c)
}
