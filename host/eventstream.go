// host/eventstream.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package host

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/log"
)

// EventStream is a basic pub/sub event log: the host posts what happens
// during a replay and any number of subscribers read the events back in
// order. Events posted before a subscription was made are never reported
// to it.
type EventStream struct {
	mu            sync.Mutex
	events        []Event
	subscriptions map[*EventsSubscription]any
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is offset in the EventStream stream array up to which the
	// subscriber has consumed events so far.
	offset int
	source string
}

func (e *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", e.offset),
		slog.String("source", e.source))
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]any),
		lg:            lg,
	}
}

func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite for debugging.
	_, fn, line, _ := runtime.Caller(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &EventsSubscription{
		stream: e,
		offset: len(e.events),
		source: fmt.Sprintf("%s:%d", fn, line),
	}
	e.subscriptions[sub] = nil
	return sub
}

func (e *EventsSubscription) Unsubscribe() {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", e)
	}
	delete(e.stream.subscriptions, e)
	e.stream.compact()
	e.stream = nil
}

func (e *EventStream) Post(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) > 0 {
		e.events = append(e.events, event)
	}
}

// Get returns all of the events posted since the subscription's last call
// to Get.
func (e *EventsSubscription) Get() []Event {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", e)
		return nil
	}

	events := slices.Clone(e.stream.events[e.offset:])
	e.offset = len(e.stream.events)
	e.stream.compact()

	return events
}

// compact reclaims storage for events that all subscribers have seen.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		minOffset = min(minOffset, sub.offset)
	}

	if minOffset > cap(e.events)/2 {
		n := len(e.events) - minOffset

		copy(e.events, e.events[minOffset:])
		e.events = e.events[:n]

		for sub := range e.subscriptions {
			sub.offset -= minOffset
		}
	}
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	ClearedAltitudeEvent EventType = iota
	AircraftUpdatedEvent
	AircraftDisconnectedEvent
	ControllerLogonEvent
	ControllerLogoffEvent
	ToggleChangedEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"ClearedAltitude", "AircraftUpdated", "AircraftDisconnected",
		"ControllerLogon", "ControllerLogoff", "ToggleChanged"}[t]
}

type Event struct {
	Type       EventType
	Time       time.Time
	Callsign   av.Callsign
	Controller string
	Altitude   int
	Enabled    bool // ToggleChangedEvent
}

func (e Event) String() string {
	switch e.Type {
	case ClearedAltitudeEvent:
		return fmt.Sprintf("%s %s: %s cleared to %d", e.Time.Format(time.TimeOnly), e.Type, e.Callsign, e.Altitude)
	case ControllerLogonEvent, ControllerLogoffEvent:
		return fmt.Sprintf("%s %s: %s", e.Time.Format(time.TimeOnly), e.Type, e.Controller)
	case ToggleChangedEvent:
		return fmt.Sprintf("%s %s: enabled %v", e.Time.Format(time.TimeOnly), e.Type, e.Enabled)
	default:
		return fmt.Sprintf("%s %s: %s", e.Time.Format(time.TimeOnly), e.Type, e.Callsign)
	}
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String()), slog.Time("time", e.Time)}
	if e.Callsign != "" {
		attrs = append(attrs, slog.String("callsign", string(e.Callsign)))
	}
	if e.Controller != "" {
		attrs = append(attrs, slog.String("controller", e.Controller))
	}
	if e.Type == ClearedAltitudeEvent {
		attrs = append(attrs, slog.Int("altitude", e.Altitude))
	}
	if e.Type == ToggleChangedEvent {
		attrs = append(attrs, slog.Bool("enabled", e.Enabled))
	}
	return slog.GroupValue(attrs...)
}
