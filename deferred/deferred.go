// deferred/deferred.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package deferred provides a queue of callbacks to be run at or after a
// given time. Nothing runs in the background: the host polls DrainDue
// from its update loop and due callbacks run synchronously on the
// caller's goroutine.
package deferred

import (
	"container/heap"
	"time"

	"github.com/climbout/climbout/clock"
)

// Queue holds pending callbacks ordered by execution time. Tasks with
// the same execution time run in the order they were scheduled. A Queue
// is not safe for concurrent use.
type Queue struct {
	clock clock.Clock
	tasks taskHeap
	seq   uint64
}

type task struct {
	at  time.Time
	seq uint64
	fn  func()
}

// taskHeap is a min-heap of tasks ordered by (at, seq).
type taskHeap []task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = task{}
	*h = old[:n-1]
	return t
}

func NewQueue(c clock.Clock) *Queue {
	if c == nil {
		c = clock.Real()
	}
	return &Queue{clock: c}
}

// Schedule arranges for fn to be called by the first DrainDue whose time
// is at or after now+delay.
func (q *Queue) Schedule(delay time.Duration, fn func()) time.Time {
	at := q.clock.Now().Add(delay)
	q.seq++
	heap.Push(&q.tasks, task{at: at, seq: q.seq, fn: fn})
	return at
}

// Len returns the number of tasks that haven't run yet.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// NextEventTime returns the execution time of the earliest pending task.
func (q *Queue) NextEventTime() (time.Time, bool) {
	if len(q.tasks) == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].at, true
}

// DrainDue runs and removes every task scheduled at or before now, in
// execution-time order, and returns how many ran. Tasks that are
// scheduled by a callback during the drain are left for a later call,
// even if they are already due.
func (q *Queue) DrainDue(now time.Time) int {
	var due []task
	for len(q.tasks) > 0 && !q.tasks[0].at.After(now) {
		due = append(due, heap.Pop(&q.tasks).(task))
	}

	for _, t := range due {
		t.fn()
	}
	return len(due)
}
