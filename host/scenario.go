// host/scenario.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package host

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/util"
)

// Scenario is a script of timed traffic and controller events to replay
// against the engine. Scenario files are YAML (or JSON, which YAML
// accepts) and may be zstd-compressed.
type Scenario struct {
	Start time.Time     `yaml:"start"`
	Tick  time.Duration `yaml:"tick"`

	// User is logged on when the replay starts.
	User        *Controller  `yaml:"user,omitempty"`
	Controllers []Controller `yaml:"controllers,omitempty"`

	// Airfields gives each airfield's positions in top-down order.
	Airfields map[string][]string `yaml:"airfields"`
	// SIDs adds to the SID altitude catalog: airfield -> SID -> altitude.
	SIDs map[string]map[string]int `yaml:"sids,omitempty"`

	Events []ScenarioEvent `yaml:"events"`
}

type Controller struct {
	Callsign  string   `yaml:"callsign"`
	Name      string   `yaml:"name,omitempty"`
	Frequency float32  `yaml:"frequency,omitempty"`
	Type      string   `yaml:"type,omitempty"`
	Airfields []string `yaml:"airfields,omitempty"`

	// LoggedInFor backdates the user's login when the replay starts.
	LoggedInFor time.Duration `yaml:"logged_in_for,omitempty"`
}

func (c Controller) ActiveCallsign() av.ActiveCallsign {
	airfields := make([]string, len(c.Airfields))
	for i, ap := range c.Airfields {
		airfields[i] = av.NormalizeAirfield(ap)
	}
	return av.ActiveCallsign{
		Callsign:       c.Callsign,
		ControllerName: c.Name,
		Position: av.ControllerPosition{
			Callsign:  c.Callsign,
			Frequency: av.NewFrequency(c.Frequency),
			Type:      c.Type,
			Airfields: airfields,
		},
	}
}

const (
	UpdateEvent     = "update"
	DisconnectEvent = "disconnect"
	RecycleEvent    = "recycle"
	LogonEvent      = "logon"
	LogoffEvent     = "logoff"
	ToggleEvent     = "toggle"
)

// ScenarioEvent happens At after the start of the replay. Which of the
// other fields are needed depends on the Type:
//
//	update:     Aircraft
//	disconnect: Callsign
//	recycle:    Callsign
//	logon:      Controller, User if it's the user logging on
//	logoff:     Controller (only its callsign is used)
//	toggle:     Enabled, or Value to store the raw setting
type ScenarioEvent struct {
	At         time.Duration `yaml:"at"`
	Type       string        `yaml:"type"`
	Aircraft   *Aircraft     `yaml:"aircraft,omitempty"`
	Callsign   av.Callsign   `yaml:"callsign,omitempty"`
	Controller *Controller   `yaml:"controller,omitempty"`
	User       bool          `yaml:"user,omitempty"`
	Enabled    *bool         `yaml:"enabled,omitempty"`
	Value      *string       `yaml:"value,omitempty"`
}

// LoadScenario reads and validates a scenario file. Its events are
// returned sorted by time; events at the same time keep their order in
// the file.
func LoadScenario(path string) (*Scenario, error) {
	b, err := util.ReadResource(path)
	if err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	e.Push(path)
	sc, err := ParseScenario(b, &e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if e.HaveErrors() {
		return nil, e.Err()
	}
	return sc, nil
}

// ParseScenario decodes a scenario. Decoding errors are returned; problems
// with the scenario's contents are reported to e.
func ParseScenario(b []byte, e *util.ErrorLogger) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, err
	}

	if sc.Tick == 0 {
		sc.Tick = time.Second
	}
	if sc.Start.IsZero() {
		sc.Start = time.Now().UTC().Truncate(time.Second)
	}
	slices.SortStableFunc(sc.Events, func(a, b ScenarioEvent) int { return cmp.Compare(a.At, b.At) })

	sc.Validate(e)
	return &sc, nil
}

func (sc *Scenario) Validate(e *util.ErrorLogger) {
	if sc.Tick < 0 {
		e.ErrorString("tick %s must be positive", sc.Tick)
	}
	if sc.User != nil && sc.User.Callsign == "" {
		e.ErrorString("user: no callsign given")
	}
	for i, c := range sc.Controllers {
		if c.Callsign == "" {
			e.ErrorString("controller %d: no callsign given", i)
		}
	}
	for ap, positions := range sc.Airfields {
		if len(positions) == 0 {
			e.ErrorString("%s: no positions given", ap)
		}
	}
	for ap, sids := range sc.SIDs {
		for sid, alt := range sids {
			if alt <= 0 {
				e.ErrorString("%s/%s: altitude %d must be positive", ap, sid, alt)
			}
		}
	}

	for i, ev := range sc.Events {
		e.Push(fmt.Sprintf("event %d (%s at %s)", i, ev.Type, ev.At))
		ev.validate(e)
		e.Pop()
	}
}

func (ev ScenarioEvent) validate(e *util.ErrorLogger) {
	if ev.At < 0 {
		e.ErrorString("negative time")
	}

	switch ev.Type {
	case UpdateEvent:
		if ev.Aircraft == nil {
			e.ErrorString("no aircraft given")
		} else if ev.Aircraft.Callsign == "" {
			e.ErrorString("aircraft has no callsign")
		}
	case DisconnectEvent, RecycleEvent:
		if ev.Callsign == "" {
			e.ErrorString("no callsign given")
		}
	case LogonEvent, LogoffEvent:
		if ev.Controller == nil || ev.Controller.Callsign == "" {
			e.ErrorString("no controller callsign given")
		}
	case ToggleEvent:
		if (ev.Enabled == nil) == (ev.Value == nil) {
			e.ErrorString("exactly one of \"enabled\" and \"value\" must be given")
		}
	default:
		e.ErrorString("unknown event type")
	}
}

// Duration returns the time of the last event.
func (sc *Scenario) Duration() time.Duration {
	if len(sc.Events) == 0 {
		return 0
	}
	return sc.Events[len(sc.Events)-1].At
}
