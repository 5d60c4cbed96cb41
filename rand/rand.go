// rand/rand.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"time"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

type Rand struct {
	r *pcg.PCG32
}

func New() Rand {
	return Rand{r: pcg.NewPCG32()}
}

// Make returns a Rand seeded from the current time so that separate
// instances don't produce the same sequence.
func Make() Rand {
	r := New()
	r.Seed(time.Now().UnixNano())
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Int63n(n int64) int64 {
	if n <= 1<<32-1 {
		return int64(r.r.Bounded(uint32(n)))
	}
	// Wide ranges don't come up for jitter windows, but be correct anyway.
	v := int64(r.r.Random())<<31 ^ int64(r.r.Random())
	if v < 0 {
		v = -v
	}
	return v % n
}

// DurationIn returns a duration d with lo < d <= hi at millisecond
// granularity. If hi-lo is less than a millisecond, hi is returned.
func (r *Rand) DurationIn(lo, hi time.Duration) time.Duration {
	steps := int64((hi - lo) / time.Millisecond)
	if steps <= 0 {
		return hi
	}
	return lo + time.Duration(1+r.Int63n(steps))*time.Millisecond
}
