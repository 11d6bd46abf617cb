package core

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recorderConn captures everything written to a client.
type recorderConn struct {
	mu    sync.Mutex
	lines []string
	fail  bool
}

func (r *recorderConn) WriteLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errClosed
	}
	r.lines = append(r.lines, line)
	return nil
}

func (r *recorderConn) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

func (r *recorderConn) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

var errClosed = &CoreError{Code: "closed", Message: "connection closed"}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestHub() *Hub {
	return NewHub("vip123", nopLogger())
}

// addClient registers a named client and returns it with its recorder.
func addClient(t *testing.T, hub *Hub, name string) (*Client, *recorderConn) {
	t.Helper()

	conn := &recorderConn{}
	c := NewClient("handle-"+name, name, conn)
	if cerr := hub.Register(c); cerr != nil {
		t.Fatalf("register %s: %v", name, cerr)
	}
	return c, conn
}

// mustContain waits briefly for a line containing substr to show up.
func mustContain(t *testing.T, conn *recorderConn, substr string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn.Contains(substr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected a line containing %q, got %v", substr, conn.Lines())
}

// scriptedReader feeds canned answers to the VIP prompt.
func scriptedReader(answers ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(answers) {
			return "", errClosed
		}
		line := answers[i]
		i++
		return line, nil
	}
}
