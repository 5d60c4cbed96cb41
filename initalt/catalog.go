// initalt/catalog.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"maps"
	"slices"

	av "github.com/climbout/climbout/aviation"
)

// SIDAltitude is a single catalog entry.
type SIDAltitude struct {
	Airfield string `msgpack:"airfield" json:"airfield"`
	SID      string `msgpack:"sid" json:"sid"`
	Altitude int    `msgpack:"altitude" json:"altitude"`
}

// SIDAltitudeCatalog maps each airfield's SIDs to their initial
// altitudes. Identifiers are matched exactly (case-sensitive). A SID
// that carries the deprecation marker also matches its canonical entry,
// but an entry registered with the marker is matched verbatim first.
type SIDAltitudeCatalog struct {
	sids map[string]map[string]int // airfield -> SID -> altitude
}

func NewSIDAltitudeCatalog() *SIDAltitudeCatalog {
	return &SIDAltitudeCatalog{sids: make(map[string]map[string]int)}
}

// Register adds the entry, replacing any existing altitude for the same
// airfield and SID.
func (c *SIDAltitudeCatalog) Register(airfield, sid string, altitude int) {
	m, ok := c.sids[airfield]
	if !ok {
		m = make(map[string]int)
		c.sids[airfield] = m
	}
	m[sid] = altitude
}

// InitialAltitude returns the initial altitude for the SID at the given
// airfield.
func (c *SIDAltitudeCatalog) InitialAltitude(airfield, sid string) (int, bool) {
	m, ok := c.sids[airfield]
	if !ok {
		return 0, false
	}
	if alt, ok := m[sid]; ok {
		return alt, true
	}
	if av.IsDeprecatedSID(sid) {
		alt, ok := m[av.CanonicalSID(sid)]
		return alt, ok
	}
	return 0, false
}

func (c *SIDAltitudeCatalog) HasSID(airfield, sid string) bool {
	_, ok := c.InitialAltitude(airfield, sid)
	return ok
}

func (c *SIDAltitudeCatalog) Airfields() []string {
	return slices.Sorted(maps.Keys(c.sids))
}

// Len returns the number of entries in the catalog.
func (c *SIDAltitudeCatalog) Len() int {
	n := 0
	for _, m := range c.sids {
		n += len(m)
	}
	return n
}

// Entries returns all entries sorted by airfield and then SID.
func (c *SIDAltitudeCatalog) Entries() []SIDAltitude {
	var e []SIDAltitude
	for _, ap := range c.Airfields() {
		for _, sid := range slices.Sorted(maps.Keys(c.sids[ap])) {
			e = append(e, SIDAltitude{Airfield: ap, SID: sid, Altitude: c.sids[ap][sid]})
		}
	}
	return e
}
