// flightplan/stored.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package flightplan remembers flight plans for aircraft that may not
// currently be visible, so that work can be redone for them when, for
// example, the user logs on to a new position.
package flightplan

import (
	"cmp"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	av "github.com/climbout/climbout/aviation"
)

const (
	DefaultCapacity  = 4096
	DefaultRetention = 2 * time.Hour
)

// StoredFlightplanCollection holds the most recently seen flight plans.
// A plan is forgotten once it hasn't been updated for the retention
// period, or when the collection is full and it's the least recently
// updated.
type StoredFlightplanCollection struct {
	plans *expirable.LRU[av.Callsign, av.StoredFlightplan]
}

// NewStoredFlightplanCollection returns a collection holding at most
// capacity plans, each retained for the given period after its last
// update. Non-positive values select the defaults.
func NewStoredFlightplanCollection(capacity int, retention time.Duration) *StoredFlightplanCollection {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &StoredFlightplanCollection{
		plans: expirable.NewLRU[av.Callsign, av.StoredFlightplan](capacity, nil, retention),
	}
}

func (c *StoredFlightplanCollection) UpdatePlan(fp av.StoredFlightplan) {
	c.plans.Add(fp.Callsign, fp)
}

func (c *StoredFlightplanCollection) RemovePlan(callsign av.Callsign) {
	c.plans.Remove(callsign)
}

func (c *StoredFlightplanCollection) Get(callsign av.Callsign) (av.StoredFlightplan, bool) {
	return c.plans.Peek(callsign)
}

func (c *StoredFlightplanCollection) Len() int {
	return c.plans.Len()
}

// Plans returns the stored plans sorted by callsign.
func (c *StoredFlightplanCollection) Plans() []av.StoredFlightplan {
	plans := c.plans.Values()
	slices.SortFunc(plans, func(a, b av.StoredFlightplan) int {
		return cmp.Compare(a.Callsign, b.Callsign)
	})
	return plans
}

// DeparturesFrom returns the stored plans whose origin is one of the
// given airfields, sorted by callsign.
func (c *StoredFlightplanCollection) DeparturesFrom(airfields []string) []av.StoredFlightplan {
	var deps []av.StoredFlightplan
	for _, fp := range c.Plans() {
		if slices.Contains(airfields, fp.Origin) {
			deps = append(deps, fp)
		}
	}
	return deps
}
