// initalt/interfaces.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"time"

	av "github.com/climbout/climbout/aviation"
)

// Flight gives access to the live state of an aircraft and its flight
// plan. Implementations may compute values on demand; the gate calls
// only as many methods as it needs to reach a verdict.
type Flight interface {
	Callsign() av.Callsign
	Origin() string
	Destination() string
	SIDName() string
	FlightLevel() int            // feet
	DistanceFromOrigin() float64 // nautical miles
	GroundSpeed() int            // knots
	CruiseLevel() int            // feet
	HasClearedAltitude() bool    // a controller has set a cleared altitude
	IsTracked() bool
	IsTrackedByUser() bool
	IsSimulated() bool
}

// AltitudeSetter applies a cleared altitude to an aircraft. It is the
// only side effect the engine has.
type AltitudeSetter interface {
	SetClearedAltitude(callsign av.Callsign, altitude int) error
}

// FlightProvider resolves a callsign to the live flight, if the aircraft
// is still around.
type FlightProvider interface {
	Flight(callsign av.Callsign) (Flight, error)
}

// Catalog maps (airfield, SID) to the SID's initial altitude.
type Catalog interface {
	InitialAltitude(airfield, sid string) (int, bool)
}

// SessionOracle answers questions about the user's controller session.
type SessionOracle interface {
	LoginTime() time.Time
	IsUserCallsign(cs av.ActiveCallsign) bool
}

// OwnershipOracle reports which controller is responsible for an airfield.
type OwnershipOracle interface {
	AirfieldOwner(icao string) (av.ActiveCallsign, bool)
}

// StoredFlightplans lists flight plans known to the host, including ones
// for aircraft that may not currently be visible.
type StoredFlightplans interface {
	Plans() []av.StoredFlightplan
}

type SettingsReader interface {
	Get(key string) string
}

type SettingsWriter interface {
	SettingsReader
	Set(key, value string)
}
