// controller/callsigns.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package controller

import (
	"errors"
	"log/slog"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/log"
)

var (
	ErrCallsignAlreadyActive = errors.New("Callsign already active")
	ErrUnknownCallsign       = errors.New("Unknown callsign")
)

// ActiveCallsignHandler is notified when controllers log on and off.
// userCallsign is true when the callsign is the user's own.
type ActiveCallsignHandler interface {
	ActiveCallsignAdded(cs av.ActiveCallsign, userCallsign bool)
	ActiveCallsignRemoved(cs av.ActiveCallsign, userCallsign bool)
}

// ActiveCallsignCollection holds the controllers currently logged on,
// at most one of which is the user. Handlers are called in the order
// they were registered, after the collection itself has been updated.
type ActiveCallsignCollection struct {
	active   map[string]av.ActiveCallsign
	user     string
	handlers []ActiveCallsignHandler
	lg       *log.Logger
}

func NewActiveCallsignCollection(lg *log.Logger) *ActiveCallsignCollection {
	return &ActiveCallsignCollection{
		active: make(map[string]av.ActiveCallsign),
		lg:     lg,
	}
}

func (c *ActiveCallsignCollection) AddHandler(h ActiveCallsignHandler) {
	c.handlers = append(c.handlers, h)
}

func (c *ActiveCallsignCollection) AddCallsign(cs av.ActiveCallsign) error {
	return c.add(cs, false)
}

func (c *ActiveCallsignCollection) AddUserCallsign(cs av.ActiveCallsign) error {
	return c.add(cs, true)
}

func (c *ActiveCallsignCollection) add(cs av.ActiveCallsign, user bool) error {
	if _, ok := c.active[cs.Callsign]; ok {
		return ErrCallsignAlreadyActive
	}

	c.active[cs.Callsign] = cs
	if user {
		c.user = cs.Callsign
	}
	c.lg.Info("controller logged on", slog.String("callsign", cs.Callsign),
		slog.Bool("user", user))

	for _, h := range c.handlers {
		h.ActiveCallsignAdded(cs, user)
	}
	return nil
}

func (c *ActiveCallsignCollection) RemoveCallsign(callsign string) error {
	cs, ok := c.active[callsign]
	if !ok {
		return ErrUnknownCallsign
	}

	user := c.user == callsign
	delete(c.active, callsign)
	if user {
		c.user = ""
	}
	c.lg.Info("controller logged off", slog.String("callsign", callsign),
		slog.Bool("user", user))

	for _, h := range c.handlers {
		h.ActiveCallsignRemoved(cs, user)
	}
	return nil
}

func (c *ActiveCallsignCollection) Get(callsign string) (av.ActiveCallsign, bool) {
	cs, ok := c.active[callsign]
	return cs, ok
}

func (c *ActiveCallsignCollection) UserHasCallsign() bool {
	return c.user != ""
}

func (c *ActiveCallsignCollection) UserCallsign() (av.ActiveCallsign, bool) {
	if c.user == "" {
		return av.ActiveCallsign{}, false
	}
	return c.active[c.user], true
}

// IsUserCallsign reports whether cs is the user's currently active
// session.
func (c *ActiveCallsignCollection) IsUserCallsign(cs av.ActiveCallsign) bool {
	return c.user != "" && c.user == cs.Callsign
}

func (c *ActiveCallsignCollection) Len() int {
	return len(c.active)
}
