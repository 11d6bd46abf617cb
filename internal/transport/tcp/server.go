package tcp

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avolkov/linechat-server/internal/core"
)

// Server accepts TCP connections and runs one session goroutine per
// accepted connection.
type Server struct {
	addr string
	hub  *core.Hub
	log  *zerolog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer builds a chat listener for the given address.
func NewServer(addr string, hub *core.Hub, logger *zerolog.Logger) *Server {
	return &Server{
		addr:  addr,
		hub:   hub,
		log:   logger,
		conns: make(map[net.Conn]struct{}),
	}
}

// ListenAndServe accepts connections until ctx is cancelled, then closes
// the listener and every live connection and waits for the sessions to
// drain. Returns nil on a ctx-driven stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.log.Info().Str("addr", s.addr).Msg("chat listener started")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			ServeConn(s.hub, conn, s.log)
		}()
	}

	s.closeAll()
	s.wg.Wait()
	s.log.Info().Msg("chat listener stopped")
	return nil
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeAll interrupts the blocked reads of every live session so their
// disconnect paths run.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
