// initalt/cache.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	av "github.com/climbout/climbout/aviation"
)

// AssignmentCache remembers, per callsign, the SID for which an initial
// altitude was last issued. Entries live until the aircraft disconnects.
type AssignmentCache struct {
	assigned map[av.Callsign]string
}

func NewAssignmentCache() *AssignmentCache {
	return &AssignmentCache{assigned: make(map[av.Callsign]string)}
}

// WasAssigned returns the SID recorded for the callsign, if any.
func (c *AssignmentCache) WasAssigned(callsign av.Callsign) (string, bool) {
	sid, ok := c.assigned[callsign]
	return sid, ok
}

func (c *AssignmentCache) RecordAssignment(callsign av.Callsign, sid string) {
	c.assigned[callsign] = sid
}

// Purge forgets the callsign; it's fine to call for unknown callsigns.
func (c *AssignmentCache) Purge(callsign av.Callsign) {
	delete(c.assigned, callsign)
}

func (c *AssignmentCache) Len() int {
	return len(c.assigned)
}
