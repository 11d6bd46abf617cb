package ws

import (
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/linechat-server/internal/core"
	"github.com/avolkov/linechat-server/internal/transport/tcp"
)

// Handler bridges WebSocket connections onto the same line protocol the
// TCP listener speaks: each text frame carries newline-terminated lines
// exactly as a TCP peer would send them, and the session loop is shared.
type Handler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewHandler builds the WebSocket bridge.
func NewHandler(hub *core.Hub, logger *zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: logger}
}

// Handle upgrades the request and runs a chat session over the adapted
// connection until the peer closes it.
func (h *Handler) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	h.log.Info().Str("remote", c.Request.RemoteAddr).Msg("ws client connected")

	nc := websocket.NetConn(c.Request.Context(), conn, websocket.MessageText)
	tcp.ServeConn(h.hub, nc, h.log)

	conn.Close(websocket.StatusNormalClosure, "closing")
}
