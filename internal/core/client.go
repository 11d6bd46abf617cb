package core

import "strings"

// Capacity limits. These are part of the observable contract: exceeding
// them is reported to the client, not absorbed by growing a structure.
const (
	// MaxClients bounds the registry and, transitively, every mute list.
	MaxClients = 10
	// RoomCount is the number of fixed rooms.
	RoomCount = 5
	// NameMaxLength bounds display names, in bytes.
	NameMaxLength = 50
	// MessageMaxLength bounds a single protocol line, in bytes.
	MessageMaxLength = 1024
	// MaxPasswordAttempts bounds one VIP join attempt.
	MaxPasswordAttempts = 5
)

// NoRoom is the current-room value of a client that is in no room.
const NoRoom = -1

// Conn is the write half of a client's transport stream. Implementations
// must be safe for concurrent use: broadcasts write from other clients'
// goroutines. Writes are best-effort; a failed write never escalates
// beyond the one recipient.
type Conn interface {
	WriteLine(line string) error
}

// Client is one connected, named participant. Handle and Name are fixed
// for the lifetime of the connection; room and the mute list are mutable
// and guarded by the owning Registry's lock.
type Client struct {
	Handle string
	Name   string

	conn  Conn
	room  int
	muted []string
}

// NewClient builds an unregistered client record for a live connection.
func NewClient(handle, name string, conn Conn) *Client {
	return &Client{
		Handle: handle,
		Name:   name,
		conn:   conn,
		room:   NoRoom,
	}
}

// Send writes one line to the client, best-effort.
func (c *Client) Send(line string) error {
	return c.conn.WriteLine(line)
}

// hasMuted reports whether name is in the client's mute list,
// case-insensitively. Caller holds the registry lock.
func (c *Client) hasMuted(name string) bool {
	if name == "" {
		return false
	}
	for _, muted := range c.muted {
		if strings.EqualFold(muted, name) {
			return true
		}
	}
	return false
}
