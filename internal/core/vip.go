package core

import (
	"github.com/avolkov/linechat-server/internal/auth"
)

// AccessState is the state of one VIP join attempt.
type AccessState int

const (
	// AccessPrompting means the password prompt has been sent and no
	// answer has been read yet.
	AccessPrompting AccessState = iota
	// AccessRetrying means at least one wrong answer has been received.
	AccessRetrying
	// AccessGranted means the passphrase matched; proceed with the join.
	AccessGranted
	// AccessDenied means the attempt budget ran out; abort the join.
	AccessDenied
)

// AccessController runs the VIP password challenge. It executes
// synchronously on the requesting client's own goroutine, blocking on
// that client's incoming bytes and holding no locks, so a silent peer
// stalls only its own connection. The attempt counter is per join
// attempt: a later /join of the VIP room starts fresh.
type AccessController struct {
	secret      string
	maxAttempts int
}

// NewAccessController builds a controller for the configured secret
// (plaintext or bcrypt hash, see internal/auth).
func NewAccessController(secret string) *AccessController {
	return &AccessController{
		secret:      secret,
		maxAttempts: MaxPasswordAttempts,
	}
}

// Authorize prompts for the passphrase and reads answers from readLine
// until a match, the attempt budget is exhausted, or the peer goes away.
// A read error aborts silently with the error; the caller treats it as a
// disconnect.
func (a *AccessController) Authorize(conn Conn, readLine func() (string, error)) (AccessState, error) {
	if err := conn.WriteLine("Enter VIP room password:"); err != nil {
		return AccessPrompting, err
	}

	state := AccessPrompting
	attempts := 0
	for {
		line, err := readLine()
		if err != nil {
			return state, err
		}
		attempts++

		if auth.VerifySecret(a.secret, trimLine(line)) {
			_ = conn.WriteLine("Correct password! Access granted to VIP room.")
			return AccessGranted, nil
		}

		_ = conn.WriteLine("Incorrect password. Try again:")
		state = AccessRetrying

		if attempts >= a.maxAttempts {
			_ = conn.WriteLine("Too many failed attempts. Access denied.")
			return AccessDenied, nil
		}
	}
}
