// initalt/gate.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"log/slog"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/clock"
)

// Decision records what the gate learned about a flight on the way to its
// verdict. Fields the gate never needed to look at are left zero.
type Decision struct {
	Callsign av.Callsign
	Origin   string
	SID      string
	Altitude int
}

func (d Decision) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", string(d.Callsign)),
		slog.String("origin", d.Origin),
		slog.String("sid", d.SID),
		slog.Int("altitude", d.Altitude))
}

// Gate decides whether a flight should be given its SID's initial
// altitude.
type Gate struct {
	cfg       Config
	clock     clock.Clock
	catalog   Catalog
	cache     *AssignmentCache
	session   SessionOracle
	ownership OwnershipOracle
	enabled   func() bool
}

// Evaluate runs the eligibility checks in order and stops at the first
// one that fails, so later (and possibly more expensive) flight and
// oracle queries are skipped. It returns nil if an altitude should be
// assigned, ErrLoginTooRecent if the decision should be retried later, and
// another error if the flight is rejected.
func (g *Gate) Evaluate(f Flight) (Decision, error) {
	var d Decision

	if !g.enabled() {
		return d, ErrAssignmentsDisabled
	}
	if g.clock.Now().Sub(g.session.LoginTime()) < g.cfg.MinimumLogin {
		return d, ErrLoginTooRecent
	}

	if fl := f.FlightLevel(); fl <= 0 || fl > g.cfg.MaxAltitude {
		return d, ErrFlightLevelRange
	}
	if dist := f.DistanceFromOrigin(); dist <= 0 || dist > g.cfg.MaxDistanceNM {
		return d, ErrOriginDistanceRange
	}
	if f.GroundSpeed() > g.cfg.MaxSpeedKts {
		return d, ErrGroundSpeedTooHigh
	}
	if f.HasClearedAltitude() {
		return d, ErrClearedAltitudeSet
	}
	if f.IsTracked() {
		return d, ErrTrackedAircraft
	}
	if f.IsSimulated() {
		return d, ErrSimulatedAircraft
	}

	d.Origin = f.Origin()
	if owner, ok := g.ownership.AirfieldOwner(d.Origin); !ok || !g.session.IsUserCallsign(owner) {
		return d, ErrNotOwnedByUser
	}

	d.SID = f.SIDName()
	alt, ok := g.catalog.InitialAltitude(d.Origin, d.SID)
	if !ok {
		return d, ErrNoSIDAltitude
	}
	d.Altitude = alt

	d.Callsign = f.Callsign()
	if sid, ok := g.cache.WasAssigned(d.Callsign); ok && sid == d.SID {
		return d, ErrAlreadyAssigned
	}

	if f.CruiseLevel() < d.Altitude {
		return d, ErrCruiseBelowInitial
	}

	return d, nil
}
