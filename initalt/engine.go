// initalt/engine.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package initalt assigns departing aircraft the initial altitude of
// their SID shortly after they get airborne, provided the user owns the
// departure airfield and no controller has already cleared the aircraft
// to an altitude.
//
// All Engine methods must be called from a single goroutine. Retries are
// queued rather than run in the background; the host must call
// PollDeferred regularly for them to happen.
package initalt

import (
	"errors"
	"log/slog"
	"time"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/clock"
	"github.com/climbout/climbout/deferred"
	"github.com/climbout/climbout/log"
	"github.com/climbout/climbout/rand"
	"github.com/climbout/climbout/settings"
)

// Dependencies are the collaborators the Engine consults. Catalog,
// Session, Ownership, and Setter are required. Flights and Flightplans
// are only needed for OnSessionActivated; Settings may be nil, in which
// case automatic assignment starts out enabled.
type Dependencies struct {
	Catalog     Catalog
	Session     SessionOracle
	Ownership   OwnershipOracle
	Setter      AltitudeSetter
	Flights     FlightProvider
	Flightplans StoredFlightplans
	Settings    SettingsReader

	// Clock defaults to the real clock and Queue to a new queue using
	// Clock. A Queue shared with other subsystems is drained by
	// PollDeferred along with the Engine's own retries.
	Clock clock.Clock
	Queue *deferred.Queue
}

// RecycleContext describes where a recycle request came from. It's only
// used for logging.
type RecycleContext struct {
	Item   string
	Source string
}

type Engine struct {
	cfg   Config
	deps  Dependencies
	gate  *Gate
	cache *AssignmentCache
	queue *deferred.Queue
	rand  rand.Rand
	lg    *log.Logger

	enabled bool
	// Outstanding retries per callsign. A retry whose entry has been
	// replaced or removed (the aircraft disconnected) is dropped when it
	// fires.
	pending map[av.Callsign]*pendingRetries
}

type pendingRetries struct {
	count int
}

func NewEngine(cfg Config, deps Dependencies, lg *log.Logger) *Engine {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Queue == nil {
		deps.Queue = deferred.NewQueue(deps.Clock)
	}

	e := &Engine{
		cfg:     cfg,
		deps:    deps,
		cache:   NewAssignmentCache(),
		queue:   deps.Queue,
		rand:    rand.Make(),
		lg:      lg,
		enabled: true,
		pending: make(map[av.Callsign]*pendingRetries),
	}
	e.gate = &Gate{
		cfg:       cfg,
		clock:     deps.Clock,
		catalog:   deps.Catalog,
		cache:     e.cache,
		session:   deps.Session,
		ownership: deps.Ownership,
		enabled:   func() bool { return e.enabled },
	}
	if deps.Settings != nil {
		e.UserSettingsUpdated(deps.Settings)
	}
	return e
}

// OnFlightUpdate runs a full decision for the flight and assigns the
// initial altitude if it passes. If the user hasn't been logged in long
// enough, the decision is queued to be retried after a short random
// delay.
func (e *Engine) OnFlightUpdate(f Flight) {
	d, err := e.gate.Evaluate(f)
	switch {
	case err == nil:
		e.assign(d)
	case errors.Is(err, ErrLoginTooRecent):
		e.deferDecision(f)
	case errors.Is(err, ErrAssignmentsDisabled):
		// Nothing worth logging on every update.
	default:
		e.lg.Debug("initial altitude not assigned", slog.Any("decision", d),
			slog.String("reason", err.Error()))
	}
}

func (e *Engine) deferDecision(f Flight) {
	callsign := f.Callsign()

	p, ok := e.pending[callsign]
	if !ok {
		p = &pendingRetries{}
		e.pending[callsign] = p
	}
	if e.cfg.MaxPendingRetries > 0 && p.count >= e.cfg.MaxPendingRetries {
		e.lg.Debug("initial altitude retry already pending", slog.String("callsign", string(callsign)))
		return
	}
	p.count++

	delay := e.rand.DurationIn(e.cfg.RetryMin, e.cfg.RetryMax)
	at := e.queue.Schedule(delay, func() {
		if e.pending[callsign] != p {
			return
		}
		if p.count--; p.count <= 0 {
			delete(e.pending, callsign)
		}
		e.OnFlightUpdate(f)
	})
	e.lg.Debug("initial altitude deferred until login settles", slog.String("callsign", string(callsign)),
		slog.Time("retry_at", at))
}

func (e *Engine) assign(d Decision) {
	e.cache.RecordAssignment(d.Callsign, d.SID)

	if err := e.deps.Setter.SetClearedAltitude(d.Callsign, d.Altitude); err != nil {
		// Forget the assignment so that a later update can try again.
		e.cache.Purge(d.Callsign)
		e.lg.Warn("unable to set initial altitude", slog.Any("decision", d), slog.Any("error", err))
		return
	}
	e.lg.Info("initial altitude assigned", slog.Any("decision", d))
}

// Recycle reapplies the initial altitude for the flight's current SID,
// regardless of whether it was assigned before. Nothing happens if
// another controller is tracking the aircraft or the SID is unknown.
func (e *Engine) Recycle(f Flight, ctx RecycleContext) {
	if f.IsTracked() && !f.IsTrackedByUser() {
		e.lg.Debug("recycle ignored", slog.String("reason", ErrTrackedByOther.Error()),
			slog.String("item", ctx.Item), slog.String("source", ctx.Source))
		return
	}

	d := Decision{Origin: f.Origin(), SID: f.SIDName()}
	alt, ok := e.deps.Catalog.InitialAltitude(d.Origin, d.SID)
	if !ok {
		e.lg.Debug("recycle ignored", slog.Any("decision", d), slog.String("reason", ErrNoSIDAltitude.Error()))
		return
	}
	d.Altitude = alt
	d.Callsign = f.Callsign()

	e.assign(d)
}

// OnSessionActivated reconsiders known departures when the user logs on
// to a position: every stored flight plan departing an airfield the
// position controls (or now owns) is resolved to its live flight and
// evaluated. Activations of other controllers are ignored.
func (e *Engine) OnSessionActivated(cs av.ActiveCallsign, isUser bool) {
	if !isUser || e.deps.Flightplans == nil || e.deps.Flights == nil {
		return
	}

	for _, fp := range e.deps.Flightplans.Plans() {
		if !e.sessionServes(cs, fp.Origin) {
			continue
		}

		f, err := e.deps.Flights.Flight(fp.Callsign)
		if err == nil && f == nil {
			err = ErrUnresolvableFlight
		}
		if err != nil {
			e.lg.Debug("skipping stored flight plan", slog.String("callsign", string(fp.Callsign)),
				slog.Any("error", err))
			continue
		}
		e.OnFlightUpdate(f)
	}
}

func (e *Engine) sessionServes(cs av.ActiveCallsign, airfield string) bool {
	if cs.Position.CanControl(airfield) {
		return true
	}
	owner, ok := e.deps.Ownership.AirfieldOwner(airfield)
	return ok && owner.Callsign == cs.Callsign
}

// OnDisconnect forgets everything about the callsign, so that if it
// reconnects it is treated as a new departure. Retries that are already
// queued for it are dropped when they come due.
func (e *Engine) OnDisconnect(callsign av.Callsign) {
	e.cache.Purge(callsign)
	delete(e.pending, callsign)
}

// PollDeferred runs queued retries that are due at or before now.
func (e *Engine) PollDeferred(now time.Time) int {
	return e.queue.DrainDue(now)
}

func (e *Engine) AutomaticAssignmentEnabled() bool {
	return e.enabled
}

// UserSettingsUpdated rereads the enable toggle.
func (e *Engine) UserSettingsUpdated(s SettingsReader) {
	e.enabled = settings.ParseBool(s.Get(ToggleSettingKey), true)
}

// SetAutomaticAssignmentEnabled changes the toggle and, if the settings
// can be written, records the new value there.
func (e *Engine) SetAutomaticAssignmentEnabled(enabled bool) {
	e.enabled = enabled
	if w, ok := e.deps.Settings.(SettingsWriter); ok {
		if enabled {
			w.Set(ToggleSettingKey, "1")
		} else {
			w.Set(ToggleSettingKey, "0")
		}
	}
	e.lg.Info("automatic initial altitude assignment toggled", slog.Bool("enabled", enabled))
}

// Cache returns the engine's assignment cache; it must not be modified.
func (e *Engine) Cache() *AssignmentCache {
	return e.cache
}

// PendingRetries returns the number of queued retries, including any
// scheduled on a shared queue by other subsystems.
func (e *Engine) PendingRetries() int {
	return e.queue.Len()
}
