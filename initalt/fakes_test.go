// initalt/fakes_test.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"errors"
	"time"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/clock"
	"github.com/climbout/climbout/controller"
	"github.com/climbout/climbout/flightplan"
	"github.com/climbout/climbout/settings"
)

// testFlight is a Flight whose accessors count how often they're called.
type testFlight struct {
	callsign        av.Callsign
	origin, dest    string
	sid             string
	level           int
	distance        float64
	speed           int
	cruise          int
	clearedAltitude bool
	tracked         bool
	trackedByUser   bool
	simulated       bool

	calls map[string]int
}

func (f *testFlight) count(m string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[m]++
}

func (f *testFlight) Callsign() av.Callsign { f.count("Callsign"); return f.callsign }
func (f *testFlight) Origin() string { f.count("Origin"); return f.origin }
func (f *testFlight) Destination() string { f.count("Destination"); return f.dest }
func (f *testFlight) SIDName() string { f.count("SIDName"); return f.sid }
func (f *testFlight) FlightLevel() int { f.count("FlightLevel"); return f.level }
func (f *testFlight) DistanceFromOrigin() float64 { f.count("DistanceFromOrigin"); return f.distance }
func (f *testFlight) GroundSpeed() int { f.count("GroundSpeed"); return f.speed }
func (f *testFlight) CruiseLevel() int { f.count("CruiseLevel"); return f.cruise }
func (f *testFlight) HasClearedAltitude() bool { f.count("HasClearedAltitude"); return f.clearedAltitude }
func (f *testFlight) IsTracked() bool { f.count("IsTracked"); return f.tracked }
func (f *testFlight) IsTrackedByUser() bool { f.count("IsTrackedByUser"); return f.trackedByUser }
func (f *testFlight) IsSimulated() bool { f.count("IsSimulated"); return f.simulated }
func (f *testFlight) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type clearance struct {
	callsign av.Callsign
	altitude int
}

type recordingSetter struct {
	cleared []clearance
	err     error
}

func (s *recordingSetter) SetClearedAltitude(callsign av.Callsign, altitude int) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = append(s.cleared, clearance{callsign, altitude})
	return nil
}

var errNoSuchFlight = errors.New("no such flight")

type flightMap map[av.Callsign]Flight

func (m flightMap) Flight(callsign av.Callsign) (Flight, error) {
	if f, ok := m[callsign]; ok {
		return f, nil
	}
	return nil, errNoSuchFlight
}

var testStart = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

// testEnv wires an Engine to the real controller, flightplan and
// settings implementations, as the host does.
type testEnv struct {
	cfg         Config
	clock       *clock.FakeClock
	login       *controller.Login
	callsigns   *controller.ActiveCallsignCollection
	owners      *controller.AirfieldOwnershipManager
	catalog     *SIDAltitudeCatalog
	setter      *recordingSetter
	flights     flightMap
	flightplans *flightplan.StoredFlightplanCollection
	settings    *settings.Store
	engine      *Engine
}

func userPosition() av.ActiveCallsign {
	return av.ActiveCallsign{
		Callsign:       "LON_S_CTR",
		ControllerName: "Test",
		Position: av.ControllerPosition{
			Callsign:  "LON_S_CTR",
			Frequency: av.NewFrequency(129.42),
			Type:      "CTR",
			Airfields: []string{"EGKK"},
		},
	}
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cfg:         DefaultConfig(),
		clock:       clock.Fake(testStart),
		catalog:     NewSIDAltitudeCatalog(),
		setter:      &recordingSetter{},
		flights:     make(flightMap),
		flightplans: flightplan.NewStoredFlightplanCollection(0, 0),
		settings:    settings.New(""),
	}
	env.login = controller.NewLogin(env.clock)
	env.login.SetLoginTime(testStart.Add(-15 * time.Minute))
	env.callsigns = controller.NewActiveCallsignCollection(nil)
	env.owners = controller.NewAirfieldOwnershipManager(env.callsigns, nil)
	env.callsigns.AddHandler(env.owners)

	env.catalog.Register("EGKK", "ADMAG2X", 6000)
	env.catalog.Register("EGKK", "CLN3X", 5000)
	env.owners.AddAirfield("EGKK", []string{"LON_S_CTR"})

	env.build()
	return env
}

// build (re)creates the engine from the environment's current config.
func (env *testEnv) build() {
	env.engine = NewEngine(env.cfg, Dependencies{
		Catalog:     env.catalog,
		Session:     sessionOracle{env.login, env.callsigns},
		Ownership:   env.owners,
		Setter:      env.setter,
		Flights:     env.flights,
		Flightplans: env.flightplans,
		Settings:    env.settings,
		Clock:       env.clock,
	}, nil)
}

// logOnUser makes the user the owner of EGKK.
func (env *testEnv) logOnUser() {
	if err := env.callsigns.AddUserCallsign(userPosition()); err != nil {
		panic(err)
	}
}

// sessionOracle combines the login time with the active callsigns, as
// the host's adapter does.
type sessionOracle struct {
	login     *controller.Login
	callsigns *controller.ActiveCallsignCollection
}

func (s sessionOracle) LoginTime() time.Time { return s.login.LoginTime() }
func (s sessionOracle) IsUserCallsign(cs av.ActiveCallsign) bool {
	return s.callsigns.IsUserCallsign(cs)
}

// eligibleFlight returns BAW123 departing EGKK on the given SID in a
// state that passes every check.
func (env *testEnv) eligibleFlight(sid string) *testFlight {
	return &testFlight{
		callsign: "BAW123",
		origin:   "EGKK",
		dest:     "EGPF",
		sid:      sid,
		level:    env.cfg.MaxAltitude,
		distance: env.cfg.MaxDistanceNM,
		speed:    env.cfg.MaxSpeedKts,
		cruise:   6000,
	}
}
