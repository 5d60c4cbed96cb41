// host/traffic.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package host

import (
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/brunoga/deep"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/clock"
	"github.com/climbout/climbout/initalt"
	"github.com/climbout/climbout/log"
)

var ErrUnknownAircraft = errors.New("Unknown aircraft")

// Aircraft is the state of a departure as reported by the traffic feed.
type Aircraft struct {
	Callsign       av.Callsign `yaml:"callsign" json:"callsign"`
	Origin         string      `yaml:"origin" json:"origin"`
	Destination    string      `yaml:"destination" json:"destination"`
	SID            string      `yaml:"sid" json:"sid"`
	Altitude       int         `yaml:"altitude" json:"altitude"`
	DistanceNM     float64     `yaml:"distance_nm" json:"distance_nm"`
	GroundSpeed    int         `yaml:"ground_speed" json:"ground_speed"`
	CruiseAltitude int         `yaml:"cruise_altitude" json:"cruise_altitude"`

	// ClearedAltitude is nil until some controller (or the engine)
	// assigns one.
	ClearedAltitude *int   `yaml:"cleared_altitude,omitempty" json:"cleared_altitude,omitempty"`
	TrackedBy       string `yaml:"tracked_by,omitempty" json:"tracked_by,omitempty"`
	Simulated       bool   `yaml:"simulated,omitempty" json:"simulated,omitempty"`
}

func (ac *Aircraft) StoredFlightplan() av.StoredFlightplan {
	return av.StoredFlightplan{
		Callsign:    ac.Callsign,
		Origin:      ac.Origin,
		Destination: ac.Destination,
	}
}

// Traffic holds the aircraft currently visible to the host. It provides
// the engine with live flight state and applies the altitudes it clears.
type Traffic struct {
	aircraft map[av.Callsign]*Aircraft
	// userCallsign returns the callsign the user is logged on as, or ""
	userCallsign func() string
	clock        clock.Clock
	events       *EventStream
	lg           *log.Logger
}

func NewTraffic(userCallsign func() string, c clock.Clock, events *EventStream, lg *log.Logger) *Traffic {
	return &Traffic{
		aircraft:     make(map[av.Callsign]*Aircraft),
		userCallsign: userCallsign,
		clock:        c,
		events:       events,
		lg:           lg,
	}
}

// Update replaces the state of the aircraft, adding it if it's new, and
// returns a Flight for it.
func (t *Traffic) Update(ac Aircraft) initalt.Flight {
	ac.Origin = av.NormalizeAirfield(ac.Origin)
	ac.Destination = av.NormalizeAirfield(ac.Destination)
	t.aircraft[ac.Callsign] = deep.MustCopy(&ac)
	return &trafficFlight{traffic: t, callsign: ac.Callsign}
}

func (t *Traffic) Remove(callsign av.Callsign) bool {
	if _, ok := t.aircraft[callsign]; !ok {
		return false
	}
	delete(t.aircraft, callsign)
	return true
}

func (t *Traffic) Get(callsign av.Callsign) (Aircraft, bool) {
	ac, ok := t.aircraft[callsign]
	if !ok {
		return Aircraft{}, false
	}
	return *deep.MustCopy(ac), true
}

func (t *Traffic) Flight(callsign av.Callsign) (initalt.Flight, error) {
	if _, ok := t.aircraft[callsign]; !ok {
		return nil, ErrUnknownAircraft
	}
	return &trafficFlight{traffic: t, callsign: callsign}, nil
}

func (t *Traffic) SetClearedAltitude(callsign av.Callsign, altitude int) error {
	ac, ok := t.aircraft[callsign]
	if !ok {
		return ErrUnknownAircraft
	}

	ac.ClearedAltitude = &altitude
	t.lg.Debug("cleared altitude set", slog.String("callsign", string(callsign)),
		slog.Int("altitude", altitude))
	t.events.Post(Event{
		Type:     ClearedAltitudeEvent,
		Time:     t.clock.Now(),
		Callsign: callsign,
		Altitude: altitude,
	})
	return nil
}

// Snapshot returns a copy of the state of all aircraft.
func (t *Traffic) Snapshot() map[av.Callsign]Aircraft {
	snap := make(map[av.Callsign]Aircraft, len(t.aircraft))
	for cs, ac := range t.aircraft {
		snap[cs] = *deep.MustCopy(ac)
	}
	return snap
}

func (t *Traffic) Callsigns() []av.Callsign {
	return slices.Sorted(maps.Keys(t.aircraft))
}

// trafficFlight reads the aircraft's state from Traffic on each call, so
// a Flight held across a deferred retry sees the state at the time of the
// retry. Once the aircraft is gone every value is zero.
type trafficFlight struct {
	traffic  *Traffic
	callsign av.Callsign
}

func (f *trafficFlight) ac() *Aircraft {
	if ac, ok := f.traffic.aircraft[f.callsign]; ok {
		return ac
	}
	return &Aircraft{Callsign: f.callsign}
}

func (f *trafficFlight) Callsign() av.Callsign { return f.callsign }
func (f *trafficFlight) Origin() string { return f.ac().Origin }
func (f *trafficFlight) Destination() string { return f.ac().Destination }
func (f *trafficFlight) SIDName() string { return f.ac().SID }
func (f *trafficFlight) FlightLevel() int { return f.ac().Altitude }
func (f *trafficFlight) DistanceFromOrigin() float64 { return f.ac().DistanceNM }
func (f *trafficFlight) GroundSpeed() int { return f.ac().GroundSpeed }
func (f *trafficFlight) CruiseLevel() int { return f.ac().CruiseAltitude }
func (f *trafficFlight) HasClearedAltitude() bool { return f.ac().ClearedAltitude != nil }
func (f *trafficFlight) IsTracked() bool { return f.ac().TrackedBy != "" }
func (f *trafficFlight) IsSimulated() bool { return f.ac().Simulated }

func (f *trafficFlight) IsTrackedByUser() bool {
	tracker := f.ac().TrackedBy
	return tracker != "" && tracker == f.traffic.userCallsign()
}
