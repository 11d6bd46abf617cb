package core

import (
	"strings"
	"sync"
)

// Registry is the authoritative set of connected, named clients, keyed
// by connection handle. All reads and writes of the mapping and of any
// mutable Client field happen under the registry lock; scans hold it for
// the whole pass so broadcasts and listings see a consistent snapshot.
type Registry struct {
	mu       sync.Mutex
	byHandle map[string]*Client
	limit    int
}

// NewRegistry builds an empty registry bounded to limit clients.
func NewRegistry(limit int) *Registry {
	return &Registry{
		byHandle: make(map[string]*Client, limit),
		limit:    limit,
	}
}

// Register inserts the client. It re-checks the name under the lock so
// two connections racing on the same name cannot both win.
func (r *Registry) Register(c *Client) *CoreError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.byHandle) >= r.limit {
		return coreError(ErrCodeServerFull, "chat room full")
	}
	for _, existing := range r.byHandle {
		if strings.EqualFold(existing.Name, c.Name) {
			return coreError(ErrCodeNameTaken, "name already taken")
		}
	}
	r.byHandle[c.Handle] = c
	return nil
}

// NameTaken reports whether a currently-registered client holds the
// name, case-insensitively.
func (r *Registry) NameTaken(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.byHandle {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// Remove deletes the client if present. When the removed client occupied
// a room, the occupancy decrement happens inside the same critical
// section, so no concurrent scan observes a removed client still counted
// in a room. Removing an unknown handle is a no-op, which makes the
// disconnect path idempotent.
func (r *Registry) Remove(handle string, rooms *RoomTable) (removed bool, room int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byHandle[handle]
	if !ok {
		return false, NoRoom
	}
	delete(r.byHandle, handle)
	if c.room != NoRoom {
		rooms.decrement(c.room)
	}
	return true, c.room
}

// Room returns the client's current room, or NoRoom for an unknown handle.
func (r *Registry) Room(handle string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byHandle[handle]; ok {
		return c.room
	}
	return NoRoom
}

// EnterRoom sets the client's room and increments the room's occupancy
// as one step with respect to concurrent scans.
func (r *Registry) EnterRoom(handle string, room int, rooms *RoomTable) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byHandle[handle]
	if !ok {
		return false
	}
	c.room = room
	rooms.increment(room)
	return true
}

// ExitRoom clears the client's room and decrements the old room's
// occupancy, returning the room that was left.
func (r *Registry) ExitRoom(handle string, rooms *RoomTable) (room int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, found := r.byHandle[handle]
	if !found || c.room == NoRoom {
		return NoRoom, false
	}
	room = c.room
	c.room = NoRoom
	rooms.decrement(room)
	return room, true
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHandle)
}

// Member is a point-in-time view of one registered client.
type Member struct {
	Handle string
	Name   string
	Room   int
}

// Snapshot returns a consistent view of every registered client.
func (r *Registry) Snapshot() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Member, 0, len(r.byHandle))
	for _, c := range r.byHandle {
		out = append(out, Member{Handle: c.Handle, Name: c.Name, Room: c.room})
	}
	return out
}

// RoomMembers returns the names of clients currently in the room,
// observed in a single pass under the lock.
func (r *Registry) RoomMembers(room int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, c := range r.byHandle {
		if c.room == room {
			names = append(names, c.Name)
		}
	}
	return names
}

// findByName looks a client up by display name. Caller holds the lock.
func (r *Registry) findByName(name string) *Client {
	for _, c := range r.byHandle {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}
