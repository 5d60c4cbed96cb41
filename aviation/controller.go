// aviation/controller.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "slices"

// ControllerPosition is a position that a controller may log on to, such
// as "LON_S_CTR". Airfields lists the airfields the position can provide
// top-down service to.
type ControllerPosition struct {
	Callsign  string    `json:"callsign" yaml:"callsign"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	Type      string    `json:"type" yaml:"type"` // DEL, GND, TWR, APP, CTR...
	Airfields []string  `json:"airfields,omitempty" yaml:"airfields,omitempty"`
}

func (p ControllerPosition) CanControl(airfield string) bool {
	return slices.Contains(p.Airfields, airfield)
}

// ActiveCallsign is a controller who is currently logged on to a position.
type ActiveCallsign struct {
	Callsign       string
	ControllerName string
	Position       ControllerPosition
}

func (a ActiveCallsign) String() string {
	return a.Callsign + " (" + a.ControllerName + ")"
}
