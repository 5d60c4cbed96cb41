// controller/ownership.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package controller

import (
	"log/slog"
	"maps"
	"slices"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/log"
)

// AirfieldOwnershipManager decides which logged-on controller is
// responsible for each airfield. Each airfield has a top-down order of
// positions; the owner is the first of them that is currently active.
type AirfieldOwnershipManager struct {
	topDown   map[string][]string // airfield -> position callsigns
	callsigns *ActiveCallsignCollection
	owners    map[string]av.ActiveCallsign
	lg        *log.Logger
}

func NewAirfieldOwnershipManager(callsigns *ActiveCallsignCollection, lg *log.Logger) *AirfieldOwnershipManager {
	return &AirfieldOwnershipManager{
		topDown:   make(map[string][]string),
		callsigns: callsigns,
		owners:    make(map[string]av.ActiveCallsign),
		lg:        lg,
	}
}

// AddAirfield sets the top-down order of positions for an airfield and
// recomputes its owner.
func (m *AirfieldOwnershipManager) AddAirfield(icao string, positions []string) {
	icao = av.NormalizeAirfield(icao)
	m.topDown[icao] = slices.Clone(positions)
	m.RefreshOwner(icao)
}

func (m *AirfieldOwnershipManager) Airfields() []string {
	return slices.Sorted(maps.Keys(m.topDown))
}

// RefreshOwner recomputes the owner of a single airfield.
func (m *AirfieldOwnershipManager) RefreshOwner(icao string) {
	prev, hadPrev := m.owners[icao]
	delete(m.owners, icao)

	for _, pos := range m.topDown[icao] {
		if cs, ok := m.callsigns.Get(pos); ok {
			m.owners[icao] = cs
			break
		}
	}

	cur, hasCur := m.owners[icao]
	if hadPrev != hasCur || prev.Callsign != cur.Callsign {
		m.lg.Debug("airfield owner changed", slog.String("airfield", icao),
			slog.String("from", prev.Callsign), slog.String("to", cur.Callsign))
	}
}

func (m *AirfieldOwnershipManager) RefreshAll() {
	for icao := range m.topDown {
		m.RefreshOwner(icao)
	}
}

// AirfieldOwner returns the controller currently responsible for the
// airfield, if any.
func (m *AirfieldOwnershipManager) AirfieldOwner(icao string) (av.ActiveCallsign, bool) {
	cs, ok := m.owners[icao]
	return cs, ok
}

func (m *AirfieldOwnershipManager) AirfieldOwnedByUser(icao string) bool {
	cs, ok := m.owners[icao]
	return ok && m.callsigns.IsUserCallsign(cs)
}

// AirfieldsOwnedBy returns the airfields currently owned by the given
// callsign.
func (m *AirfieldOwnershipManager) AirfieldsOwnedBy(callsign string) []string {
	var owned []string
	for icao, cs := range m.owners {
		if cs.Callsign == callsign {
			owned = append(owned, icao)
		}
	}
	slices.Sort(owned)
	return owned
}

// ActiveCallsignAdded and ActiveCallsignRemoved keep ownership current
// as controllers come and go; only airfields that list the position in
// their top-down order are affected.
func (m *AirfieldOwnershipManager) ActiveCallsignAdded(cs av.ActiveCallsign, userCallsign bool) {
	m.refreshFor(cs.Callsign)
}

func (m *AirfieldOwnershipManager) ActiveCallsignRemoved(cs av.ActiveCallsign, userCallsign bool) {
	m.refreshFor(cs.Callsign)
}

func (m *AirfieldOwnershipManager) refreshFor(callsign string) {
	for icao, positions := range m.topDown {
		if slices.Contains(positions, callsign) {
			m.RefreshOwner(icao)
		}
	}
}
