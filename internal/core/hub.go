package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Hub coordinates the registry, the room table, and the router. Session
// loops call into it for every command; it owns the user-facing message
// wording and the lock-order discipline (registry, then room table, on
// every path that touches both).
type Hub struct {
	reg    *Registry
	rooms  *RoomTable
	router *Router
	vip    *AccessController
	log    *zerolog.Logger
}

// NewHub builds the hub with empty state and the given VIP secret.
func NewHub(vipSecret string, logger *zerolog.Logger) *Hub {
	reg := NewRegistry(MaxClients)
	return &Hub{
		reg:    reg,
		rooms:  NewRoomTable(),
		router: NewRouter(reg, logger),
		vip:    NewAccessController(vipSecret),
		log:    logger,
	}
}

// NameTaken reports whether a registered client already holds the name.
func (h *Hub) NameTaken(name string) bool {
	return h.reg.NameTaken(name)
}

// Register inserts the client and announces the join to everyone else.
// On server_full or a lost name race the caller gets the error and no
// state changes; the caller sends the rejection and, for server_full,
// closes the connection.
func (h *Hub) Register(c *Client) *CoreError {
	if cerr := h.reg.Register(c); cerr != nil {
		return cerr
	}
	h.router.BroadcastAll(c.Handle, fmt.Sprintf("Server: %s has joined the chat.", c.Name))
	h.log.Info().Str("client", c.Name).Str("handle", c.Handle).Msg("client registered")
	return nil
}

// Disconnect removes the client and, if it was still registered,
// announces the leave to everyone. The removal and the occupancy
// decrement of an occupied room happen as one atomic step; calling
// Disconnect twice removes and decrements exactly once.
func (h *Hub) Disconnect(c *Client) {
	removed, room := h.reg.Remove(c.Handle, h.rooms)
	if !removed {
		return
	}
	if room != NoRoom {
		h.log.Info().Str("client", c.Name).Int("room", room+1).Msg("client left room on disconnect")
	}
	h.router.BroadcastAll(c.Handle, fmt.Sprintf("Server: %s has left the chat.", c.Name))
	h.log.Info().Str("client", c.Name).Str("handle", c.Handle).Msg("client disconnected")
}

// IsVIPRoom reports whether the 1-based room number is access-controlled.
func (h *Hub) IsVIPRoom(roomNumber int) bool {
	return h.rooms.IsVIP(roomNumber - 1)
}

// AuthorizeVIP runs the password challenge on the client's own stream.
func (h *Hub) AuthorizeVIP(c *Client, readLine func() (string, error)) (AccessState, error) {
	state, err := h.vip.Authorize(c.conn, readLine)
	if state == AccessDenied {
		h.log.Info().Str("client", c.Name).Msg("vip access denied after failed attempts")
	}
	return state, err
}

// JoinRoom moves the client into the 1-based room number. The caller has
// already validated the range and run the VIP gate. Joining the current
// room is rejected; joining from another room runs the full leave first,
// announcements included, so the client is never counted in two rooms.
func (h *Hub) JoinRoom(c *Client, roomNumber int) *CoreError {
	idx := roomNumber - 1

	if h.reg.Room(c.Handle) == idx {
		c.Send("Server: You are already in this room!")
		return coreError(ErrCodeAlreadyInRoom, "already in this room")
	}
	if h.reg.Room(c.Handle) != NoRoom {
		h.LeaveRoom(c)
	}

	if !h.reg.EnterRoom(c.Handle, idx, h.rooms) {
		return coreError(ErrCodeNotFound, "client not registered")
	}

	name := h.rooms.Name(idx)
	h.router.BroadcastRoom(c.Handle, idx,
		fmt.Sprintf("Server: %s has joined room %d (%s)", c.Name, roomNumber, name))
	c.Send(fmt.Sprintf("Server: You joined room %d (%s)", roomNumber, name))
	h.log.Info().Str("client", c.Name).Int("room", roomNumber).Str("room_name", name).
		Int("occupancy", h.rooms.Occupancy(idx)).Msg("client joined room")
	return nil
}

// LeaveRoom removes the client from its current room, announces to the
// remaining occupants, and confirms to the leaver.
func (h *Hub) LeaveRoom(c *Client) *CoreError {
	idx, ok := h.reg.ExitRoom(c.Handle, h.rooms)
	if !ok {
		c.Send("Server: You are not in any room")
		return coreError(ErrCodeNotInRoom, "not in any room")
	}

	name := h.rooms.Name(idx)
	h.router.BroadcastRoom(c.Handle, idx,
		fmt.Sprintf("Server: %s has left room %d (%s)", c.Name, idx+1, name))
	c.Send(fmt.Sprintf("Server: You left room %d (%s)", idx+1, name))
	h.log.Info().Str("client", c.Name).Int("room", idx+1).Str("room_name", name).
		Int("occupancy", h.rooms.Occupancy(idx)).Msg("client left room")
	return nil
}

// RoomChat broadcasts a chat line to the client's current room. The line
// is clamped so "name: text" fits the fixed message budget with the name
// prefix intact.
func (h *Hub) RoomChat(c *Client, text string) *CoreError {
	idx := h.reg.Room(c.Handle)
	if idx == NoRoom {
		c.Send("Server: You must join a room first. Use /join<number>")
		return coreError(ErrCodeNotInRoom, "not in any room")
	}

	budget := MessageMaxLength - len(c.Name) - 2
	if len(text) > budget {
		text = text[:budget]
	}
	h.router.BroadcastRoom(c.Handle, idx, c.Name+": "+text)
	return nil
}

// Private delivers a private message, reporting lookup and mute outcomes
// to the sender.
func (h *Hub) Private(c *Client, targetName, text string) *CoreError {
	cerr := h.router.SendPrivate(c.Handle, targetName, text)
	if cerr == nil {
		return nil
	}
	switch cerr.Code {
	case ErrCodeNotFound:
		c.Send(fmt.Sprintf("No client named '%s' found.", targetName))
	case ErrCodeNotDelivered:
		c.Send(fmt.Sprintf("%s has muted you. Message not delivered.", targetName))
	}
	return cerr
}

// Mute adds the named client, or with "-all" every other current client,
// to the owner's mute list.
func (h *Hub) Mute(c *Client, target string) *CoreError {
	if target == "-all" {
		if cerr := h.reg.MuteAll(c.Handle); cerr != nil {
			return cerr
		}
		c.Send("All users muted.")
		return nil
	}

	cerr := h.reg.Mute(c.Handle, target)
	switch {
	case cerr == nil:
		c.Send(fmt.Sprintf("User %s muted.", target))
	case cerr.Code == ErrCodeNotFound:
		c.Send(fmt.Sprintf("No client named '%s' found.", target))
	case cerr.Code == ErrCodeAlreadyMuted:
		c.Send(fmt.Sprintf("User %s is already muted.", target))
	case cerr.Code == ErrCodeMuteListFull:
		c.Send("Mute list full. Cannot mute more users.")
	}
	return cerr
}

// Unmute removes the named client, or with "-all" everyone, from the
// owner's mute list.
func (h *Hub) Unmute(c *Client, target string) *CoreError {
	if target == "-all" {
		if cerr := h.reg.UnmuteAll(c.Handle); cerr != nil {
			return cerr
		}
		c.Send("All users unmuted.")
		return nil
	}

	cerr := h.reg.Unmute(c.Handle, target)
	switch {
	case cerr == nil:
		c.Send(fmt.Sprintf("User %s unmuted.", target))
	case cerr.Code == ErrCodeNotMuted:
		c.Send(fmt.Sprintf("User '%s' is not in your mute list.", target))
	}
	return cerr
}

// SendRoomList writes the room listing with live occupancy to conn.
func (h *Hub) SendRoomList(conn Conn) {
	var b strings.Builder
	b.WriteString("Available chat rooms:\n")
	for _, info := range h.rooms.Describe() {
		fmt.Fprintf(&b, "  %d. %s (%d users)\n", info.Index+1, info.Name, info.Occupancy)
	}
	b.WriteString("Use /join<number> to join a room (e.g., /join1 for General)\n")
	b.WriteString("Use /help to know about all the commands")
	conn.WriteLine(b.String())
}

// SendRoomInfo tells the client which room it is in and with how many
// other users.
func (h *Hub) SendRoomInfo(c *Client) {
	idx := h.reg.Room(c.Handle)
	if idx == NoRoom {
		c.Send("Server: You are not in any room. Use /join<number> to join a room.")
		return
	}
	c.Send(fmt.Sprintf("Server: You are in room %d (%s) with %d other users",
		idx+1, h.rooms.Name(idx), h.rooms.Occupancy(idx)-1))
}

// SendRoomOccupants lists the occupants of the 1-based room number;
// number 0 is the "not in any room" bucket.
func (h *Hub) SendRoomOccupants(conn Conn, roomNumber int) {
	var b strings.Builder
	if roomNumber > 0 {
		fmt.Fprintf(&b, "[ Room %d: %s ]\n", roomNumber, h.rooms.Name(roomNumber-1))
	} else {
		b.WriteString("[ Not in Any Room ]\n")
	}

	names := h.reg.RoomMembers(roomNumber - 1)
	if len(names) == 0 {
		b.WriteString("  (No clients in this room)")
	} else {
		for i, name := range names {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("  - " + name)
		}
	}
	conn.WriteLine(b.String())
}

// SendAllOccupants lists every bucket: roomless clients first, then each
// room in order.
func (h *Hub) SendAllOccupants(conn Conn) {
	for n := 0; n <= RoomCount; n++ {
		h.SendRoomOccupants(conn, n)
	}
}

// Rooms returns the room listing for the admin API.
func (h *Hub) Rooms() []RoomInfo {
	return h.rooms.Describe()
}

// Clients returns a consistent snapshot of registered clients for the
// admin API.
func (h *Hub) Clients() []Member {
	return h.reg.Snapshot()
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	return h.reg.Len()
}
