// host/scenario_test.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package host

import (
	"strings"
	"testing"
	"time"

	"github.com/climbout/climbout/util"
)

func TestParseScenarioSortsEvents(t *testing.T) {
	var e util.ErrorLogger
	sc, err := ParseScenario([]byte(`{
  "events": [
    {"at": "10s", "type": "disconnect", "callsign": "B"},
    {"at": "5s", "type": "disconnect", "callsign": "A"},
    {"at": "10s", "type": "disconnect", "callsign": "C"}
  ]
}`), &e)
	if err != nil {
		t.Fatal(err)
	}
	if e.HaveErrors() {
		t.Fatal(e.String())
	}

	var order string
	for _, ev := range sc.Events {
		order += string(ev.Callsign)
	}
	if order != "ABC" {
		t.Errorf("events in order %q, expected \"ABC\"", order)
	}
	if sc.Tick != time.Second || sc.Start.IsZero() {
		t.Errorf("defaults not applied: tick %s start %s", sc.Tick, sc.Start)
	}
	if sc.Duration() != 10*time.Second {
		t.Errorf("Duration() = %s", sc.Duration())
	}
}

func TestScenarioValidate(t *testing.T) {
	for _, test := range []struct {
		name, yaml, expected string
	}{
		{"unknown type", `events: [{at: 1s, type: takeoff}]`, "unknown event type"},
		{"update without aircraft", `events: [{at: 1s, type: update}]`, "no aircraft"},
		{"aircraft without callsign", `events: [{at: 1s, type: update, aircraft: {sid: ADMAG2X}}]`, "no callsign"},
		{"recycle without callsign", `events: [{at: 1s, type: recycle}]`, "no callsign"},
		{"logon without controller", `events: [{at: 1s, type: logon}]`, "no controller"},
		{"toggle with both", `events: [{at: 1s, type: toggle, enabled: true, value: "1"}]`, "exactly one"},
		{"toggle with neither", `events: [{at: 1s, type: toggle}]`, "exactly one"},
		{"negative time", `events: [{at: -1s, type: disconnect, callsign: A}]`, "negative time"},
		{"user without callsign", `user: {airfields: [EGKK]}`, "user: no callsign"},
		{"airfield without positions", `airfields: {EGKK: []}`, "EGKK: no positions"},
		{"bad altitude", `sids: {EGKK: {ADMAG2X: 0}}`, "EGKK/ADMAG2X"},
	} {
		t.Run(test.name, func(t *testing.T) {
			var e util.ErrorLogger
			if _, err := ParseScenario([]byte(test.yaml), &e); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(e.String(), test.expected) {
				t.Errorf("errors %q don't mention %q", e.String(), test.expected)
			}
		})
	}

	var e util.ErrorLogger
	if _, err := ParseScenario([]byte(`events: [{at: soon}]`), &e); err == nil {
		t.Errorf("expected decoding error")
	}
}
