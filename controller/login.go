// controller/login.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package controller

import (
	"time"

	"github.com/climbout/climbout/clock"
)

// NotLoggedIn is reported as the login time while the user isn't
// connected, so that any "logged in for at least" check fails.
var NotLoggedIn = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Login tracks when the user's controller session connected.
type Login struct {
	clock     clock.Clock
	loginTime time.Time
}

func NewLogin(c clock.Clock) *Login {
	if c == nil {
		c = clock.Real()
	}
	return &Login{clock: c, loginTime: NotLoggedIn}
}

func (l *Login) LoginTime() time.Time {
	return l.loginTime
}

func (l *Login) SetLoginTime(t time.Time) {
	l.loginTime = t
}

// Connected records that the user's session came up now. Repeated calls
// while already connected keep the original login time.
func (l *Login) Connected() {
	if l.loginTime.Equal(NotLoggedIn) {
		l.loginTime = l.clock.Now()
	}
}

func (l *Login) Disconnected() {
	l.loginTime = NotLoggedIn
}

// LoggedInFor returns how long the session has been up, or zero if it
// isn't.
func (l *Login) LoggedInFor() time.Duration {
	d := l.clock.Now().Sub(l.loginTime)
	if d < 0 {
		return 0
	}
	return d
}
