package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/linechat-server/internal/core"
)

// Handlers provides the read-only observability endpoints.
type Handlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewHandlers creates the handler set over the hub.
func NewHandlers(hub *core.Hub, logger *zerolog.Logger) *Handlers {
	return &Handlers{hub: hub, log: logger}
}

// RoomResponse represents one room in API responses.
type RoomResponse struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Occupancy int    `json:"occupancy"`
	VIP       bool   `json:"vip,omitempty"`
}

// ClientResponse represents one connected client in API responses.
type ClientResponse struct {
	Name string `json:"name"`
	// Room is the 1-based room number; 0 means not in any room.
	Room     int    `json:"room"`
	RoomName string `json:"room_name,omitempty"`
}

// HealthResponse reports liveness plus a client count.
type HealthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

// Health handles liveness checks.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Clients: h.hub.ClientCount()})
}

// ListRooms returns every room with its live occupancy.
// GET /api/rooms
func (h *Handlers) ListRooms(c *gin.Context) {
	rooms := h.hub.Rooms()
	response := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		response = append(response, RoomResponse{
			Number:    r.Index + 1,
			Name:      r.Name,
			Occupancy: r.Occupancy,
			VIP:       r.Index == core.VIPRoomIndex,
		})
	}
	c.JSON(http.StatusOK, response)
}

// ListClients returns a snapshot of connected clients and their rooms.
// GET /api/clients
func (h *Handlers) ListClients(c *gin.Context) {
	rooms := h.hub.Rooms()
	clients := h.hub.Clients()
	response := make([]ClientResponse, 0, len(clients))
	for _, m := range clients {
		cr := ClientResponse{Name: m.Name}
		if m.Room != core.NoRoom {
			cr.Room = m.Room + 1
			cr.RoomName = rooms[m.Room].Name
		}
		response = append(response, cr)
	}
	c.JSON(http.StatusOK, response)
}
