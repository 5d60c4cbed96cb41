// aviation/aviation.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"
)

// Callsign identifies an aircraft for as long as it is connected. The
// same callsign may be reused by a later, unrelated connection.
type Callsign string

func (c Callsign) String() string { return string(c) }

// Frequencies are scaled by 1000 and then stored in integers.
type Frequency int

func NewFrequency(f float32) Frequency {
	// 0.5 is key for handling rounding!
	return Frequency(f*1000 + 0.5)
}

func (f Frequency) String() string {
	s := fmt.Sprintf("%03d.%03d", f/1000, f%1000)
	for len(s) < 7 {
		s += "0"
	}
	return s
}

// StoredFlightplan is the part of a flight plan that is remembered after
// the aircraft itself is no longer visible.
type StoredFlightplan struct {
	Callsign    Callsign `json:"callsign" yaml:"callsign"`
	Origin      string   `json:"origin" yaml:"origin"`
	Destination string   `json:"destination" yaml:"destination"`
}

// NormalizeAirfield upper-cases and trims an ICAO airfield identifier.
func NormalizeAirfield(icao string) string {
	return strings.ToUpper(strings.TrimSpace(icao))
}
