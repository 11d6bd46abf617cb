package core

import "sync"

// VIPRoomIndex is the access-controlled room (room number 5).
const VIPRoomIndex = 4

var defaultRoomNames = [RoomCount]string{"General", "Gaming", "Music", "Study", "VIP"}

// RoomInfo is one row of the room listing.
type RoomInfo struct {
	Index     int
	Name      string
	Occupancy int
}

// RoomTable holds the fixed set of rooms and their live occupancy
// counts, guarded by its own lock. When a code path touches both the
// registry and the table, the registry lock is acquired first.
type RoomTable struct {
	mu        sync.Mutex
	names     [RoomCount]string
	occupancy [RoomCount]int
}

// NewRoomTable builds the table with the five predefined rooms.
func NewRoomTable() *RoomTable {
	return &RoomTable{names: defaultRoomNames}
}

// Name returns the label of room i. Names are fixed after construction.
func (t *RoomTable) Name(i int) string {
	return t.names[i]
}

// IsVIP reports whether room i is the access-controlled room.
func (t *RoomTable) IsVIP(i int) bool {
	return i == VIPRoomIndex
}

// Occupancy returns the live count for room i.
func (t *RoomTable) Occupancy(i int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.occupancy[i]
}

// Describe returns (index, name, occupancy) for every room, in order.
func (t *RoomTable) Describe() []RoomInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]RoomInfo, 0, RoomCount)
	for i := 0; i < RoomCount; i++ {
		out = append(out, RoomInfo{Index: i, Name: t.names[i], Occupancy: t.occupancy[i]})
	}
	return out
}

func (t *RoomTable) increment(i int) {
	t.mu.Lock()
	t.occupancy[i]++
	t.mu.Unlock()
}

// decrement never lets a count go negative; join/leave pairing is what
// keeps the underflow branch unreachable.
func (t *RoomTable) decrement(i int) {
	t.mu.Lock()
	if t.occupancy[i] > 0 {
		t.occupancy[i]--
	}
	t.mu.Unlock()
}
