package core

import (
	"strings"

	"github.com/rs/zerolog"
)

// Router delivers lines to registered clients, applying per-recipient
// mute filtering at delivery time against the sender's current name.
// Recipients are collected in one scan under the registry lock; the
// actual writes happen without holding it, so a slow peer cannot stall
// unrelated registry or room operations. A recipient that disconnects
// in the gap simply fails its write, which is ignored.
type Router struct {
	reg *Registry
	log *zerolog.Logger
}

// NewRouter builds a router over the registry.
func NewRouter(reg *Registry, logger *zerolog.Logger) *Router {
	return &Router{reg: reg, log: logger}
}

// BroadcastAll delivers line to every registered client except the
// sender, skipping recipients that have muted the sender. A sender that
// is no longer registered (the disconnect announcement path) has no
// name, so no mute entry can match and everyone else receives the line.
func (rt *Router) BroadcastAll(senderHandle, line string) {
	rt.deliver(rt.collect(senderHandle, NoRoom, false), line)
}

// BroadcastRoom is BroadcastAll restricted to clients currently in room.
func (rt *Router) BroadcastRoom(senderHandle string, room int, line string) {
	rt.deliver(rt.collect(senderHandle, room, true), line)
}

// SendPrivate delivers a tagged private message to the named client. The
// lookup is case-insensitive. A target that has muted the sender reports
// not_delivered and nothing is sent.
func (rt *Router) SendPrivate(senderHandle, targetName, text string) *CoreError {
	rt.reg.mu.Lock()
	sender, ok := rt.reg.byHandle[senderHandle]
	if !ok {
		rt.reg.mu.Unlock()
		return coreError(ErrCodeNotFound, "sender not registered")
	}
	target := rt.reg.findByName(targetName)
	if target == nil {
		rt.reg.mu.Unlock()
		return coreError(ErrCodeNotFound, "no client named "+targetName)
	}
	if target.hasMuted(sender.Name) {
		rt.reg.mu.Unlock()
		return coreError(ErrCodeNotDelivered, "message not delivered")
	}
	senderName := sender.Name
	rt.reg.mu.Unlock()

	if err := target.Send("Private from " + senderName + ": " + text); err != nil {
		rt.log.Debug().Err(err).Str("to", target.Name).Msg("private send failed")
	}
	return nil
}

// collect scans the registry once under its lock and returns the
// recipients the line should go to.
func (rt *Router) collect(senderHandle string, room int, roomOnly bool) []*Client {
	rt.reg.mu.Lock()
	defer rt.reg.mu.Unlock()

	senderName := ""
	if sender, ok := rt.reg.byHandle[senderHandle]; ok {
		senderName = sender.Name
	}

	var recipients []*Client
	for _, c := range rt.reg.byHandle {
		if c.Handle == senderHandle {
			continue
		}
		if roomOnly && c.room != room {
			continue
		}
		if senderName != "" && c.hasMuted(senderName) {
			continue
		}
		recipients = append(recipients, c)
	}
	return recipients
}

func (rt *Router) deliver(recipients []*Client, line string) {
	for _, c := range recipients {
		if err := c.Send(line); err != nil {
			rt.log.Debug().Err(err).Str("to", c.Name).Msg("broadcast send failed")
		}
	}
}

// trimLine strips a trailing CR/LF pair from a received line.
func trimLine(s string) string {
	return strings.TrimRight(s, "\r\n")
}
