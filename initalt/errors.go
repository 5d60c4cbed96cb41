// initalt/errors.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"errors"
)

// Verdicts returned by Gate.Evaluate. ErrLoginTooRecent means the decision
// should be retried later; all of the others are final.
var (
	ErrAlreadyAssigned      = errors.New("Initial altitude already assigned for SID")
	ErrAssignmentsDisabled  = errors.New("Automatic initial altitude assignment disabled")
	ErrClearedAltitudeSet   = errors.New("Aircraft already has a cleared altitude")
	ErrCruiseBelowInitial   = errors.New("Cruise level below initial altitude")
	ErrFlightLevelRange     = errors.New("Flight level outside assignment range")
	ErrGroundSpeedTooHigh   = errors.New("Ground speed too high")
	ErrLoginTooRecent       = errors.New("Not logged in long enough")
	ErrNoSIDAltitude        = errors.New("No initial altitude for SID")
	ErrNotOwnedByUser       = errors.New("Origin not owned by user")
	ErrOriginDistanceRange  = errors.New("Distance from origin outside assignment range")
	ErrSimulatedAircraft    = errors.New("Aircraft is simulated")
	ErrTrackedAircraft      = errors.New("Aircraft is tracked")
	ErrTrackedByOther       = errors.New("Aircraft is tracked by another controller")
	ErrUnresolvableFlight   = errors.New("Flight not available")
	ErrInvalidCatalogEntry  = errors.New("Invalid SID altitude entry")
	ErrDuplicateCatalogSID  = errors.New("Duplicate SID in catalog")
	ErrInvalidConfiguration = errors.New("Invalid configuration")
)
