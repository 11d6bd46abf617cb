package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/linechat-server/internal/config"
	"github.com/avolkov/linechat-server/internal/core"
	"github.com/avolkov/linechat-server/internal/transport/ws"
)

// NewServer builds the HTTP server carrying the read-only admin API and
// the WebSocket bridge.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	h := NewHandlers(hub, logger)
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.GET("/rooms", h.ListRooms)
	api.GET("/clients", h.ListClients)

	router.GET("/ws", ws.NewHandler(hub, logger).Handle)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
