package tcp

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/linechat-server/internal/core"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestHub() *core.Hub {
	return core.NewHub("vip123", nopLogger())
}

// testClient drives one end of a net.Pipe against a live session.
type testClient struct {
	t     *testing.T
	conn  net.Conn
	lines chan string
}

func connect(t *testing.T, hub *core.Hub) *testClient {
	t.Helper()

	server, client := net.Pipe()
	go ServeConn(hub, server, nopLogger())

	tc := &testClient{t: t, conn: client, lines: make(chan string, 256)}
	go func() {
		scan := bufio.NewScanner(client)
		scan.Buffer(make([]byte, core.MessageMaxLength*2), core.MessageMaxLength*2)
		for scan.Scan() {
			tc.lines <- scan.Text()
		}
		close(tc.lines)
	}()
	t.Cleanup(func() { client.Close() })
	return tc
}

// register connects and completes name negotiation.
func register(t *testing.T, hub *core.Hub, name string) *testClient {
	t.Helper()

	tc := connect(t, hub)
	tc.send(name)
	tc.expect("Welcome, " + name + "!")
	tc.expect("Available chat rooms:")
	return tc
}

func (c *testClient) send(line string) {
	c.t.Helper()

	c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("write %q: %v", line, err)
	}
}

// expect reads lines until one contains substr.
func (c *testClient) expect(substr string) string {
	c.t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-timeout:
			c.t.Fatalf("timed out waiting for a line containing %q", substr)
		}
	}
}

// expectClosed drains until the server closes the connection.
func (c *testClient) expectClosed() {
	c.t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return
			}
		case <-timeout:
			c.t.Fatal("timed out waiting for the connection to close")
		}
	}
}

// neverReceived checks every line buffered so far.
func (c *testClient) neverReceived(substr string) {
	c.t.Helper()

	for {
		select {
		case line, ok := <-c.lines:
			if ok && strings.Contains(line, substr) {
				c.t.Fatalf("unexpected line containing %q: %q", substr, line)
			}
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func occupancy(hub *core.Hub, roomNumber int) int {
	for _, info := range hub.Rooms() {
		if info.Index == roomNumber-1 {
			return info.Occupancy
		}
	}
	return -1
}

func waitOccupancy(t *testing.T, hub *core.Hub, roomNumber, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if occupancy(hub, roomNumber) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %d occupancy never reached %d (have %d)", roomNumber, want, occupancy(hub, roomNumber))
}

func TestNameNegotiation(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	bob := connect(t, hub)
	bob.send("ALICE")
	bob.expect("Name already taken. Please choose another name:")
	bob.send("")
	bob.expect("Name cannot be empty. Please choose another name:")
	bob.send("bob")
	bob.expect("Welcome, bob!")

	alice.expect("bob has joined the chat.")
}

func TestJoinAndRoomChat(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")

	alice.send("/join1")
	alice.expect("Server: You joined room 1 (General)")
	require.Equal(t, 1, occupancy(hub, 1))

	bob.send("/join1")
	bob.expect("You joined room 1 (General)")
	alice.expect("bob has joined room 1 (General)")

	alice.send("hello there")
	bob.expect("alice: hello there")
}

func TestChatWithoutRoomRejected(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	alice.send("anyone home?")
	alice.expect("You must join a room first. Use /join<number>")
}

func TestInvalidJoinArguments(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	alice.send("/join99")
	alice.expect("Invalid room number. Please choose 1-5")
	alice.send("/join")
	alice.expect("Invalid room number. Please choose 1-5")
	alice.send("/joinx")
	alice.expect("Invalid room number. Please choose 1-5")
}

func TestExitAndRoomInfo(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	alice.send("/join3")
	alice.expect("You joined room 3 (Music)")
	alice.send("/room")
	alice.expect("You are in room 3 (Music) with 0 other users")
	alice.send("/exit")
	alice.expect("You left room 3 (Music)")
	alice.send("/room")
	alice.expect("You are not in any room.")
	alice.send("/exit")
	alice.expect("You are not in any room")
}

func TestMuteSuppressesRoomMessages(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")
	carol := register(t, hub, "carol")

	for _, tc := range []*testClient{alice, bob, carol} {
		tc.send("/join1")
		tc.expect("You joined room 1 (General)")
	}

	alice.send("/mute Bob")
	alice.expect("User Bob muted.")

	bob.send("can you hear me")
	carol.expect("bob: can you hear me")

	// Give any stray delivery time to land before asserting absence.
	time.Sleep(50 * time.Millisecond)
	alice.neverReceived("can you hear me")

	// One-way: alice's messages still reach bob.
	alice.send("loud and clear")
	bob.expect("alice: loud and clear")
}

func TestVIPLockoutThenFreshAttempt(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	alice.send("/join5")
	alice.expect("Enter VIP room password:")
	for i := 0; i < core.MaxPasswordAttempts; i++ {
		alice.send("wrong")
		alice.expect("Incorrect password. Try again:")
	}
	alice.expect("Too many failed attempts. Access denied.")

	alice.send("/room")
	alice.expect("You are not in any room.")
	require.Equal(t, 0, occupancy(hub, 5))

	// The attempt counter is per join attempt, not global.
	alice.send("/join5")
	alice.expect("Enter VIP room password:")
	alice.send("vip123")
	alice.expect("Correct password! Access granted to VIP room.")
	alice.expect("You joined room 5 (VIP)")
	require.Equal(t, 1, occupancy(hub, 5))
}

func TestVIPPromptBlocksOnlyThatClient(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")

	// Alice is parked at the password prompt.
	alice.send("/join5")
	alice.expect("Enter VIP room password:")

	// Bob's world keeps moving.
	bob.send("/join2")
	bob.expect("You joined room 2 (Gaming)")
	bob.send("/rooms")
	bob.expect("2. Gaming (1 users)")

	alice.send("vip123")
	alice.expect("You joined room 5 (VIP)")
}

func TestPrivateMessages(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")

	alice.send("/private-Bob psst")
	bob.expect("Private from alice: psst")

	alice.send("/private-ghost hello")
	alice.expect("No client named 'ghost' found.")

	alice.send("/private-bob")
	alice.expect("Usage: /private-<name> <message>")
}

func TestDisconnectCommand(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")

	alice.send("/disconnect")
	bob.expect("alice has left the chat.")
	alice.expectClosed()

	for _, m := range hub.Clients() {
		require.NotEqual(t, "alice", m.Name)
	}
}

func TestAbruptDisconnectWhileInRoom(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")

	alice.send("/join2")
	alice.expect("You joined room 2 (Gaming)")
	bob.send("/join2")
	bob.expect("You joined room 2 (Gaming)")
	require.Equal(t, 2, occupancy(hub, 2))

	alice.conn.Close()

	bob.expect("alice has left the chat.")
	waitOccupancy(t, hub, 2, 1)
	for _, m := range hub.Clients() {
		require.NotEqual(t, "alice", m.Name)
	}
}

func TestServerFullRejectsNewName(t *testing.T) {
	hub := newTestHub()
	for i := 0; i < core.MaxClients; i++ {
		register(t, hub, fmt.Sprintf("user%d", i))
	}

	extra := connect(t, hub)
	extra.send("late")
	extra.expect("Chat room full. Try again later.")
	extra.expectClosed()
}

func TestRoomListings(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")
	bob := register(t, hub, "bob")

	alice.send("/join1")
	alice.expect("You joined room 1 (General)")

	bob.send("/ls -all")
	bob.expect("[ Not in Any Room ]")
	bob.expect("- bob")
	bob.expect("[ Room 1: General ]")
	bob.expect("- alice")
	bob.expect("[ Room 5: VIP ]")
	bob.expect("(No clients in this room)")

	bob.send("/ls -1")
	bob.expect("[ Room 1: General ]")

	bob.send("/ls -9")
	bob.expect("Invalid room number. Use 1-5 or /ls -all.")

	bob.send("/ls")
	bob.expect("Usage: /ls -<room_number> or /ls -all")

	bob.send("/rooms")
	bob.expect("1. General (1 users)")
}

func TestHelpListsCommands(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	alice.send("/help")
	alice.expect("/private-<name> <message>")
	alice.expect("/mute <name> | -all")
}

func TestMuteUsageErrors(t *testing.T) {
	hub := newTestHub()
	alice := register(t, hub, "alice")

	alice.send("/mute")
	alice.expect("Usage: /mute <username> or /mute -all")
	alice.send("/unmute")
	alice.expect("Usage: /unmute <username> or /unmute -all")
}
