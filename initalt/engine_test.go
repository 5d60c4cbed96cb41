// initalt/engine_test.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"errors"
	"testing"
	"time"

	av "github.com/climbout/climbout/aviation"
)

func expectClearances(t *testing.T, env *testEnv, expected ...clearance) {
	t.Helper()

	if len(env.setter.cleared) != len(expected) {
		t.Fatalf("got clearances %+v, expected %+v", env.setter.cleared, expected)
	}
	for i := range expected {
		if env.setter.cleared[i] != expected[i] {
			t.Errorf("clearance %d: got %+v, expected %+v", i, env.setter.cleared[i], expected[i])
		}
	}
}

func TestAssignsInitialAltitude(t *testing.T) {
	env := newTestEnv()
	env.cfg.MaxAltitude = 6000
	env.build()
	env.logOnUser()

	f := env.eligibleFlight("ADMAG2X")
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env, clearance{"BAW123", 6000})

	if sid, ok := env.engine.Cache().WasAssigned("BAW123"); !ok || sid != "ADMAG2X" {
		t.Errorf("cache has %q, %v", sid, ok)
	}

	// A SID change gets the new SID's altitude.
	f.sid = "CLN3X"
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env, clearance{"BAW123", 6000}, clearance{"BAW123", 5000})
}

func TestUnknownSIDNotAssigned(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()

	env.engine.OnFlightUpdate(env.eligibleFlight("ADMAG1X"))
	expectClearances(t, env)
	if env.engine.Cache().Len() != 0 {
		t.Errorf("rejected flight was cached")
	}
}

func TestDeprecatedSIDAssigned(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()

	env.engine.OnFlightUpdate(env.eligibleFlight("#ADMAG2X"))
	expectClearances(t, env, clearance{"BAW123", 6000})
}

func TestCruiseBelowInitialAltitude(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()

	f := env.eligibleFlight("ADMAG2X")
	f.cruise = 5000
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env)

	// CLN3X's 5000 is fine though.
	f.sid = "CLN3X"
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env, clearance{"BAW123", 5000})
}

func TestAssignmentIsIdempotent(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()

	f := env.eligibleFlight("ADMAG2X")
	for range 5 {
		env.engine.OnFlightUpdate(f)
	}
	expectClearances(t, env, clearance{"BAW123", 6000})

	// After a disconnect the callsign is a new aircraft.
	env.engine.OnDisconnect("BAW123")
	if _, ok := env.engine.Cache().WasAssigned("BAW123"); ok {
		t.Errorf("disconnect didn't purge the cache")
	}
	env.engine.OnFlightUpdate(f)
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env, clearance{"BAW123", 6000}, clearance{"BAW123", 6000})

	// Disconnecting something unknown is harmless.
	env.engine.OnDisconnect("NOSUCH")
}

func TestRejectedFlightReconsideredOnLaterUpdate(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()

	f := env.eligibleFlight("ADMAG2X")
	f.level = 0
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env)
	if env.engine.PendingRetries() != 0 {
		t.Errorf("rejection queued a retry")
	}

	f.level = 500
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env, clearance{"BAW123", 6000})
}

func TestSetterFailurePurgesCache(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()
	env.setter.err = errors.New("aircraft not found")

	f := env.eligibleFlight("ADMAG2X")
	env.engine.OnFlightUpdate(f)
	if env.engine.Cache().Len() != 0 {
		t.Errorf("failed assignment left in cache")
	}

	env.setter.err = nil
	env.engine.OnFlightUpdate(f)
	expectClearances(t, env, clearance{"BAW123", 6000})
}

func TestDeferredUntilLoginSettles(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()
	env.login.SetLoginTime(testStart.Add(-time.Second))

	f := env.eligibleFlight("ADMAG2X")
	env.engine.OnFlightUpdate(f)

	expectClearances(t, env)
	if env.engine.Cache().Len() != 0 {
		t.Errorf("deferred decision touched the cache")
	}
	if n := env.engine.PendingRetries(); n != 1 {
		t.Fatalf("%d retries pending, expected 1", n)
	}
	at, ok := env.engine.queue.NextEventTime()
	if !ok {
		t.Fatalf("no next event time")
	}
	if delay := at.Sub(env.clock.Now()); delay <= 3*time.Second || delay > 5*time.Second {
		t.Errorf("retry delay %s not in (3s, 5s]", delay)
	}

	// Nothing is due yet.
	if n := env.engine.PollDeferred(env.clock.Now()); n != 0 {
		t.Errorf("%d retries ran early", n)
	}

	// Further updates while one retry is pending don't pile up more.
	env.engine.OnFlightUpdate(f)
	if n := env.engine.PendingRetries(); n != 1 {
		t.Errorf("%d retries pending after second update, expected 1", n)
	}

	env.clock.Advance(5 * time.Second)
	if n := env.engine.PollDeferred(env.clock.Now()); n != 1 {
		t.Errorf("%d retries ran, expected 1", n)
	}
	expectClearances(t, env, clearance{"BAW123", 6000})
	if env.engine.PendingRetries() != 0 || len(env.engine.pending) != 0 {
		t.Errorf("retry bookkeeping left behind")
	}
}

func TestDeferredJitterVaries(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()
	// Late enough that every retry succeeds.
	env.login.SetLoginTime(testStart.Add(-2 * time.Second))

	for i := range 50 {
		f := env.eligibleFlight("ADMAG2X")
		f.callsign = av.Callsign("BAW" + string(rune('A'+i%26)) + string(rune('A'+i/26)))
		env.engine.OnFlightUpdate(f)
	}
	if n := env.engine.PendingRetries(); n != 50 {
		t.Fatalf("%d retries pending, expected 50", n)
	}

	seen := make(map[time.Time]struct{})
	for env.engine.PendingRetries() > 0 {
		at, _ := env.engine.queue.NextEventTime()
		if d := at.Sub(testStart); d <= 3*time.Second || d > 5*time.Second {
			t.Fatalf("retry delay %s not in (3s, 5s]", d)
		}
		seen[at] = struct{}{}
		env.clock.Set(at)
		env.engine.PollDeferred(at)
	}
	if len(seen) < 2 {
		t.Errorf("all retries scheduled for the same time")
	}
	if len(env.setter.cleared) != 50 {
		t.Errorf("%d clearances, expected 50", len(env.setter.cleared))
	}
}

func TestDeferredRetryDefersAgain(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()
	env.login.Disconnected()

	env.engine.OnFlightUpdate(env.eligibleFlight("ADMAG2X"))
	env.clock.Advance(5 * time.Second)
	if n := env.engine.PollDeferred(env.clock.Now()); n != 1 {
		t.Fatalf("%d retries ran, expected 1", n)
	}

	expectClearances(t, env)
	if n := env.engine.PendingRetries(); n != 1 {
		t.Errorf("%d retries pending, expected the retry to be requeued", n)
	}
}

func TestUnboundedPendingRetries(t *testing.T) {
	env := newTestEnv()
	env.cfg.MaxPendingRetries = 0
	env.build()
	env.logOnUser()
	env.login.SetLoginTime(testStart)

	f := env.eligibleFlight("ADMAG2X")
	for range 3 {
		env.engine.OnFlightUpdate(f)
	}
	if n := env.engine.PendingRetries(); n != 3 {
		t.Fatalf("%d retries pending, expected 3", n)
	}

	env.clock.Advance(5 * time.Second)
	env.engine.PollDeferred(env.clock.Now())
	expectClearances(t, env, clearance{"BAW123", 6000})
}

func TestDisconnectDropsPendingRetry(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()
	env.login.SetLoginTime(testStart.Add(-time.Second))

	f := env.eligibleFlight("ADMAG2X")
	env.engine.OnFlightUpdate(f)
	env.engine.OnDisconnect("BAW123")

	// The reconnected aircraft gets its own retry.
	env.engine.OnFlightUpdate(f)
	if n := env.engine.PendingRetries(); n != 2 {
		t.Fatalf("%d retries pending, expected 2", n)
	}

	env.clock.Advance(5 * time.Second)
	if n := env.engine.PollDeferred(env.clock.Now()); n != 2 {
		t.Errorf("%d retries ran, expected 2", n)
	}
	expectClearances(t, env, clearance{"BAW123", 6000})
}

func TestToggle(t *testing.T) {
	for _, test := range []struct {
		value   string
		enabled bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
		{"maybe", true},
	} {
		env := newTestEnv()
		env.logOnUser()
		env.settings.Set(ToggleSettingKey, test.value)
		env.engine.UserSettingsUpdated(env.settings)

		if env.engine.AutomaticAssignmentEnabled() != test.enabled {
			t.Errorf("%q: enabled = %v, expected %v", test.value, !test.enabled, test.enabled)
		}

		f := env.eligibleFlight("ADMAG2X")
		env.engine.OnFlightUpdate(f)
		if test.enabled {
			expectClearances(t, env, clearance{"BAW123", 6000})
		} else {
			expectClearances(t, env)
			if f.totalCalls() != 0 {
				t.Errorf("%q: flight queried while disabled: %v", test.value, f.calls)
			}
			if env.engine.PendingRetries() != 0 {
				t.Errorf("%q: retry queued while disabled", test.value)
			}
		}
	}
}

func TestToggleReadAtStartup(t *testing.T) {
	env := newTestEnv()
	env.settings.Set(ToggleSettingKey, "0")
	env.build()

	if env.engine.AutomaticAssignmentEnabled() {
		t.Errorf("stored toggle ignored")
	}
}

func TestSetAutomaticAssignmentEnabled(t *testing.T) {
	env := newTestEnv()
	env.logOnUser()

	env.engine.SetAutomaticAssignmentEnabled(false)
	if got := env.settings.Get(ToggleSettingKey); got != "0" {
		t.Errorf("stored %q, expected \"0\"", got)
	}
	env.engine.OnFlightUpdate(env.eligibleFlight("ADMAG2X"))
	expectClearances(t, env)

	env.engine.SetAutomaticAssignmentEnabled(true)
	if got := env.settings.Get(ToggleSettingKey); got != "1" {
		t.Errorf("stored %q, expected \"1\"", got)
	}
	env.engine.OnFlightUpdate(env.eligibleFlight("ADMAG2X"))
	expectClearances(t, env, clearance{"BAW123", 6000})
}

func TestRecycle(t *testing.T) {
	ctx := RecycleContext{Item: "initial altitude", Source: "test"}

	t.Run("tracked by another controller", func(t *testing.T) {
		env := newTestEnv()
		env.logOnUser()
		f := env.eligibleFlight("ADMAG2X")
		f.tracked = true

		env.engine.Recycle(f, ctx)
		expectClearances(t, env)
	})

	t.Run("untracked", func(t *testing.T) {
		env := newTestEnv()
		env.logOnUser()
		f := env.eligibleFlight("ADMAG2X")

		env.engine.Recycle(f, ctx)
		expectClearances(t, env, clearance{"BAW123", 6000})
		if sid, ok := env.engine.Cache().WasAssigned("BAW123"); !ok || sid != "ADMAG2X" {
			t.Errorf("cache has %q, %v", sid, ok)
		}

		env.engine.OnFlightUpdate(f)
		expectClearances(t, env, clearance{"BAW123", 6000})
	})

	t.Run("tracked by user", func(t *testing.T) {
		env := newTestEnv()
		env.logOnUser()
		f := env.eligibleFlight("CLN3X")
		f.tracked, f.trackedByUser = true, true

		env.engine.Recycle(f, ctx)
		expectClearances(t, env, clearance{"BAW123", 5000})
	})

	t.Run("unknown SID", func(t *testing.T) {
		env := newTestEnv()
		env.logOnUser()

		env.engine.Recycle(env.eligibleFlight("ADMAG1X"), ctx)
		expectClearances(t, env)
	})

	t.Run("repeats an assignment", func(t *testing.T) {
		env := newTestEnv()
		env.logOnUser()
		f := env.eligibleFlight("ADMAG2X")

		env.engine.OnFlightUpdate(f)
		env.engine.Recycle(f, ctx)
		expectClearances(t, env, clearance{"BAW123", 6000}, clearance{"BAW123", 6000})
	})

	t.Run("ignores the other checks", func(t *testing.T) {
		env := newTestEnv()
		env.login.Disconnected()
		env.engine.SetAutomaticAssignmentEnabled(false)
		f := env.eligibleFlight("ADMAG2X")
		f.level, f.clearedAltitude, f.cruise = 8000, true, 3000

		env.engine.Recycle(f, ctx)
		expectClearances(t, env, clearance{"BAW123", 6000})
		if env.engine.PendingRetries() != 0 {
			t.Errorf("recycle queued a retry")
		}
	})
}

func TestSessionActivated(t *testing.T) {
	setup := func() (*testEnv, *testFlight, *testFlight) {
		env := newTestEnv()
		env.catalog.Register("EGLL", "CPT5J", 6000)

		kk := env.eligibleFlight("ADMAG2X")
		ll := env.eligibleFlight("CPT5J")
		ll.callsign, ll.origin = "SHT8", "EGLL"
		env.flights[kk.callsign] = kk
		env.flights[ll.callsign] = ll

		env.flightplans.UpdatePlan(av.StoredFlightplan{Callsign: "AAA100", Origin: "EGKK", Destination: "LFPG"})
		env.flightplans.UpdatePlan(av.StoredFlightplan{Callsign: "BAW123", Origin: "EGKK", Destination: "EGPF"})
		env.flightplans.UpdatePlan(av.StoredFlightplan{Callsign: "SHT8", Origin: "EGLL", Destination: "EGPH"})
		return env, kk, ll
	}

	t.Run("user", func(t *testing.T) {
		env, _, ll := setup()
		env.logOnUser()
		env.engine.OnSessionActivated(userPosition(), true)

		// AAA100 has no live flight and is skipped; EGLL isn't the
		// user's.
		expectClearances(t, env, clearance{"BAW123", 6000})
		if ll.totalCalls() != 0 {
			t.Errorf("flight from another airfield was evaluated: %v", ll.calls)
		}
	})

	t.Run("other controller", func(t *testing.T) {
		env, kk, _ := setup()
		env.logOnUser()
		other := userPosition()
		other.Callsign = "LON_SC_CTR"
		env.engine.OnSessionActivated(other, false)

		expectClearances(t, env)
		if kk.totalCalls() != 0 {
			t.Errorf("flight evaluated for another controller's session: %v", kk.calls)
		}
	})

	t.Run("owned but not listed", func(t *testing.T) {
		env, _, _ := setup()
		env.owners.AddAirfield("EGLL", []string{"LON_S_CTR"})
		env.logOnUser()
		env.engine.OnSessionActivated(userPosition(), true)

		expectClearances(t, env, clearance{"BAW123", 6000}, clearance{"SHT8", 6000})
	})

	t.Run("no stored flight plans", func(t *testing.T) {
		env := newTestEnv()
		env.logOnUser()
		env.engine.OnSessionActivated(userPosition(), true)
		expectClearances(t, env)
	})
}
