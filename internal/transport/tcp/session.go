package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avolkov/linechat-server/internal/core"
	"github.com/avolkov/linechat-server/internal/utils"
)

// lineConn adapts a net.Conn into the core's line-oriented write
// interface. The mutex serializes writes from broadcast goroutines with
// the session's own confirmations.
type lineConn struct {
	mu   sync.Mutex
	conn net.Conn
}

func (l *lineConn) WriteLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.conn.Write([]byte(line + "\n"))
	return err
}

// Session drives one connection from name negotiation through the
// command loop until the peer goes away. Commands are processed strictly
// in receipt order; nothing on this connection runs concurrently.
type Session struct {
	hub  *core.Hub
	conn net.Conn
	out  *lineConn
	scan *bufio.Scanner
	log  *zerolog.Logger

	client *core.Client
}

// ServeConn runs a session to completion and closes the connection. It
// is the shared entry point for the TCP listener and the WebSocket
// bridge.
func ServeConn(hub *core.Hub, conn net.Conn, logger *zerolog.Logger) {
	scan := bufio.NewScanner(conn)
	scan.Buffer(make([]byte, core.MessageMaxLength), core.MessageMaxLength)

	s := &Session{
		hub:  hub,
		conn: conn,
		out:  &lineConn{conn: conn},
		scan: scan,
		log:  logger,
	}
	s.run()
}

func (s *Session) run() {
	defer s.conn.Close()

	client, err := s.awaitName()
	if err != nil {
		// Peer gone or registry full before registration: nothing to
		// unwind.
		return
	}
	s.client = client
	defer s.hub.Disconnect(client)

	s.hub.SendRoomList(s.out)

	for {
		line, err := s.readLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug().Err(err).Str("client", client.Name).Msg("read failed, treating as disconnect")
			}
			return
		}
		if line == "/disconnect" {
			s.log.Info().Str("client", client.Name).Msg("client requested disconnect")
			return
		}
		s.dispatch(line)
	}
}

// readLine returns the next newline-delimited line with trailing CR
// stripped. Lines longer than the message budget fail the scan and are
// treated as a disconnect.
func (s *Session) readLine() (string, error) {
	if !s.scan.Scan() {
		if err := s.scan.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(s.scan.Text(), "\r"), nil
}

// awaitName loops until the connection supplies a unique non-empty name,
// then registers the client and announces it. A read failure at this
// stage aborts the connection with no further action.
func (s *Session) awaitName() (*core.Client, error) {
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(line)
		if name == "" {
			s.out.WriteLine("Name cannot be empty. Please choose another name:")
			continue
		}
		if len(name) > core.NameMaxLength {
			name = name[:core.NameMaxLength]
		}
		if s.hub.NameTaken(name) {
			s.out.WriteLine("Name already taken. Please choose another name:")
			continue
		}

		client := core.NewClient(utils.NewHandle(), name, s.out)
		if cerr := s.hub.Register(client); cerr != nil {
			if cerr.Code == core.ErrCodeServerFull {
				s.out.WriteLine("Chat room full. Try again later.")
				s.log.Warn().Str("remote", s.conn.RemoteAddr().String()).Msg("rejected connection, server full")
				return nil, cerr
			}
			// Lost a race on the name between NameTaken and Register.
			s.out.WriteLine("Name already taken. Please choose another name:")
			continue
		}

		s.out.WriteLine(fmt.Sprintf("Welcome, %s!", name))
		return client, nil
	}
}

func (s *Session) dispatch(line string) {
	switch {
	case strings.HasPrefix(line, "/join"):
		s.handleJoin(line[len("/join"):])
	case line == "/exit":
		s.hub.LeaveRoom(s.client)
	case line == "/rooms":
		s.hub.SendRoomList(s.out)
	case line == "/room":
		s.hub.SendRoomInfo(s.client)
	case strings.HasPrefix(line, "/unmute"):
		s.handleUnmute(line)
	case strings.HasPrefix(line, "/mute"):
		s.handleMute(line)
	case strings.HasPrefix(line, "/ls"):
		s.handleList(line)
	case strings.HasPrefix(line, "/private-"):
		s.handlePrivate(line[len("/private-"):])
	case line == "/help":
		s.sendHelp()
	default:
		s.hub.RoomChat(s.client, line)
	}
}

func (s *Session) handleJoin(arg string) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > core.RoomCount {
		s.out.WriteLine(fmt.Sprintf("Server: Invalid room number. Please choose 1-%d", core.RoomCount))
		return
	}

	if s.hub.IsVIPRoom(n) {
		state, err := s.hub.AuthorizeVIP(s.client, s.readLine)
		if err != nil {
			// Disconnect while prompting: abort the join silently; the
			// command loop's next read observes the same failure.
			return
		}
		if state != core.AccessGranted {
			return
		}
	}

	s.hub.JoinRoom(s.client, n)
}

func (s *Session) handleMute(line string) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "/mute" {
		s.out.WriteLine("Usage: /mute <username> or /mute -all")
		return
	}
	s.hub.Mute(s.client, clampName(fields[1]))
}

func (s *Session) handleUnmute(line string) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "/unmute" {
		s.out.WriteLine("Usage: /unmute <username> or /unmute -all")
		return
	}
	s.hub.Unmute(s.client, clampName(fields[1]))
}

func (s *Session) handleList(line string) {
	switch {
	case line == "/ls -all":
		s.hub.SendAllOccupants(s.out)
	case strings.HasPrefix(line, "/ls -"):
		n, err := strconv.Atoi(line[len("/ls -"):])
		if err != nil || n < 0 || n > core.RoomCount {
			s.out.WriteLine(fmt.Sprintf("Invalid room number. Use 1-%d or /ls -all.", core.RoomCount))
			return
		}
		s.hub.SendRoomOccupants(s.out, n)
	default:
		s.out.WriteLine("Usage: /ls -<room_number> or /ls -all")
	}
}

func (s *Session) handlePrivate(rest string) {
	idx := strings.Index(rest, " ")
	if idx < 0 {
		s.out.WriteLine("Server: Usage: /private-<name> <message>")
		return
	}
	s.hub.Private(s.client, rest[:idx], rest[idx+1:])
}

func (s *Session) sendHelp() {
	s.out.WriteLine(strings.Join([]string{
		"Available commands:",
		"  /join<number>              join a room",
		"  /exit                      leave the current room",
		"  /rooms                     list rooms and occupancy",
		"  /room                      show your current room",
		"  /ls -all                   list clients in every room",
		"  /ls -<number>              list clients in one room",
		"  /mute <name> | -all        stop receiving messages from a user",
		"  /unmute <name> | -all      receive messages again",
		"  /private-<name> <message>  send a private message",
		"  /disconnect                leave the server",
	}, "\n"))
}

func clampName(name string) string {
	if len(name) > core.NameMaxLength {
		return name[:core.NameMaxLength]
	}
	return name
}
