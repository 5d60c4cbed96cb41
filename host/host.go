// host/host.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package host replays scripted traffic against the initial altitude
// engine. It plays the part of the surrounding ATC client: it tracks the
// visible aircraft, who is logged on where, and which airfields they own,
// and it drives the engine's callbacks and retry queue from a simulated
// clock.
package host

import (
	"context"
	"log/slog"
	"time"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/clock"
	"github.com/climbout/climbout/controller"
	"github.com/climbout/climbout/flightplan"
	"github.com/climbout/climbout/initalt"
	"github.com/climbout/climbout/log"
	"github.com/climbout/climbout/settings"
)

type Host struct {
	scenario *Scenario
	cfg      initalt.Config

	clock       *clock.FakeClock
	login       *controller.Login
	callsigns   *controller.ActiveCallsignCollection
	owners      *controller.AirfieldOwnershipManager
	flightplans *flightplan.StoredFlightplanCollection
	settings    *settings.Store
	traffic     *Traffic
	events      *EventStream
	engine      *initalt.Engine

	lg *log.Logger
}

// Report summarizes a replay.
type Report struct {
	Start, End     time.Time
	Clearances     []Event
	Events         []Event
	PendingRetries int
	Aircraft       map[av.Callsign]Aircraft
}

// New sets up a host for the scenario. The scenario's SIDs are added to
// catalog, which may be nil. st may also be nil, in which case an
// in-memory settings store is used.
func New(cfg initalt.Config, catalog *initalt.SIDAltitudeCatalog, st *settings.Store, sc *Scenario,
	lg *log.Logger) *Host {
	if catalog == nil {
		catalog = initalt.NewSIDAltitudeCatalog()
	}
	for ap, sids := range sc.SIDs {
		for sid, alt := range sids {
			catalog.Register(av.NormalizeAirfield(ap), sid, alt)
		}
	}
	if st == nil {
		st = settings.New("")
	}

	h := &Host{
		scenario:    sc,
		cfg:         cfg,
		clock:       clock.Fake(sc.Start),
		flightplans: flightplan.NewStoredFlightplanCollection(0, 0),
		settings:    st,
		events:      NewEventStream(lg),
		lg:          lg,
	}
	h.login = controller.NewLogin(h.clock)
	h.callsigns = controller.NewActiveCallsignCollection(lg)
	h.owners = controller.NewAirfieldOwnershipManager(h.callsigns, lg)
	for ap, positions := range sc.Airfields {
		h.owners.AddAirfield(ap, positions)
	}
	h.traffic = NewTraffic(h.userCallsign, h.clock, h.events, lg)

	h.engine = initalt.NewEngine(cfg, initalt.Dependencies{
		Catalog:     catalog,
		Session:     session{h.login, h.callsigns},
		Ownership:   h.owners,
		Setter:      h.traffic,
		Flights:     h.traffic,
		Flightplans: h.flightplans,
		Settings:    h.settings,
		Clock:       h.clock,
	}, lg)

	// Ownership has to be current before the engine reconsiders flights
	// for a new session.
	h.callsigns.AddHandler(h.owners)
	h.callsigns.AddHandler(sessionHandler{h})

	return h
}

func (h *Host) userCallsign() string {
	if cs, ok := h.callsigns.UserCallsign(); ok {
		return cs.Callsign
	}
	return ""
}

func (h *Host) Engine() *initalt.Engine { return h.engine }
func (h *Host) Traffic() *Traffic { return h.traffic }
func (h *Host) Events() *EventStream { return h.events }
func (h *Host) Settings() *settings.Store { return h.settings }
func (h *Host) Now() time.Time { return h.clock.Now() }

// Run replays the scenario. Time advances a tick at a time; at each tick
// the events that are due are applied in order and then the engine's due
// retries are run. The replay continues past the last event for long
// enough that retries queued by it come due.
func (h *Host) Run(ctx context.Context) (*Report, error) {
	sub := h.events.Subscribe()
	defer sub.Unsubscribe()

	sc := h.scenario
	h.logonInitial()

	end := sc.Duration() + h.cfg.RetryMax + sc.Tick
	next := 0
	for elapsed := time.Duration(0); elapsed <= end; elapsed += sc.Tick {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		h.clock.Set(sc.Start.Add(elapsed))
		for next < len(sc.Events) && sc.Events[next].At <= elapsed {
			h.Apply(sc.Events[next])
			next++
		}
		if n := h.engine.PollDeferred(h.clock.Now()); n > 0 {
			h.lg.Debug("ran deferred tasks", slog.Int("count", n), slog.Duration("elapsed", elapsed))
		}
	}

	r := &Report{
		Start:          sc.Start,
		End:            h.clock.Now(),
		Events:         sub.Get(),
		PendingRetries: h.engine.PendingRetries(),
		Aircraft:       h.traffic.Snapshot(),
	}
	for _, ev := range r.Events {
		if ev.Type == ClearedAltitudeEvent {
			r.Clearances = append(r.Clearances, ev)
		}
	}
	h.lg.Info("replay finished", slog.Int("events", len(r.Events)), slog.Int("clearances", len(r.Clearances)),
		slog.Int("pending_retries", r.PendingRetries))
	return r, nil
}

func (h *Host) logonInitial() {
	sc := h.scenario
	for _, c := range sc.Controllers {
		h.logon(c, false)
	}
	if sc.User != nil {
		h.login.SetLoginTime(h.clock.Now().Add(-sc.User.LoggedInFor))
		h.logon(*sc.User, true)
	}
}

// Apply handles a single scenario event at the current time.
func (h *Host) Apply(ev ScenarioEvent) {
	switch ev.Type {
	case UpdateEvent:
		f := h.traffic.Update(*ev.Aircraft)
		if ac, ok := h.traffic.Get(ev.Aircraft.Callsign); ok {
			h.flightplans.UpdatePlan(ac.StoredFlightplan())
		}
		h.post(Event{Type: AircraftUpdatedEvent, Callsign: ev.Aircraft.Callsign})
		h.engine.OnFlightUpdate(f)

	case DisconnectEvent:
		if !h.traffic.Remove(ev.Callsign) {
			h.lg.Warn("disconnect of unknown aircraft", slog.String("callsign", string(ev.Callsign)))
		}
		h.post(Event{Type: AircraftDisconnectedEvent, Callsign: ev.Callsign})
		h.engine.OnDisconnect(ev.Callsign)

	case RecycleEvent:
		f, err := h.traffic.Flight(ev.Callsign)
		if err != nil {
			h.lg.Warn("unable to recycle", slog.String("callsign", string(ev.Callsign)), slog.Any("error", err))
			return
		}
		h.engine.Recycle(f, initalt.RecycleContext{Item: "initial altitude", Source: "scenario"})

	case LogonEvent:
		if ev.User {
			h.login.Connected()
		}
		h.logon(*ev.Controller, ev.User)

	case LogoffEvent:
		callsign := ev.Controller.Callsign
		user := h.userCallsign() == callsign
		if err := h.callsigns.RemoveCallsign(callsign); err != nil {
			h.lg.Warn("logoff failed", slog.String("callsign", callsign), slog.Any("error", err))
			return
		}
		if user {
			h.login.Disconnected()
		}
		h.post(Event{Type: ControllerLogoffEvent, Controller: callsign})

	case ToggleEvent:
		if ev.Enabled != nil {
			h.engine.SetAutomaticAssignmentEnabled(*ev.Enabled)
		} else {
			h.settings.Set(initalt.ToggleSettingKey, *ev.Value)
			h.engine.UserSettingsUpdated(h.settings)
		}
		h.post(Event{Type: ToggleChangedEvent, Enabled: h.engine.AutomaticAssignmentEnabled()})

	default:
		h.lg.Warn("ignoring unknown scenario event", slog.String("type", ev.Type))
	}
}

func (h *Host) logon(c Controller, user bool) {
	cs := c.ActiveCallsign()

	var err error
	if user {
		err = h.callsigns.AddUserCallsign(cs)
	} else {
		err = h.callsigns.AddCallsign(cs)
	}
	if err != nil {
		h.lg.Warn("logon failed", slog.String("callsign", cs.Callsign), slog.Any("error", err))
		return
	}
	h.post(Event{Type: ControllerLogonEvent, Controller: cs.Callsign})
}

func (h *Host) post(ev Event) {
	ev.Time = h.clock.Now()
	h.events.Post(ev)
}

///////////////////////////////////////////////////////////////////////////

// session answers the engine's questions about the user's session.
type session struct {
	login     *controller.Login
	callsigns *controller.ActiveCallsignCollection
}

func (s session) LoginTime() time.Time { return s.login.LoginTime() }

func (s session) IsUserCallsign(cs av.ActiveCallsign) bool {
	return s.callsigns.IsUserCallsign(cs)
}

// sessionHandler tells the engine when controllers log on.
type sessionHandler struct {
	h *Host
}

func (s sessionHandler) ActiveCallsignAdded(cs av.ActiveCallsign, userCallsign bool) {
	s.h.engine.OnSessionActivated(cs, userCallsign)
}

func (s sessionHandler) ActiveCallsignRemoved(cs av.ActiveCallsign, userCallsign bool) {}
