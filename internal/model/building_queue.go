package model

import "time"

// QueueKey identifies which of the two tribe-concurrent build slots a job
// or freeze applies to.
type QueueKey string

const (
	QueueInside  QueueKey = "inside"
	QueueOutside QueueKey = "outside"
)

// QueueKeyForGID returns the QueueKey a building gid belongs to.
func QueueKeyForGID(gid int) QueueKey {
	if IsResourcePit(gid) {
		return QueueOutside
	}
	return QueueInside
}

// BuildingJob is an in-progress construction observed in the game's
// building queue UI.
type BuildingJob struct {
	BuildingName         string
	TargetLevel          int
	TimeRemainingSeconds int
	JobID                string // empty if this entry was scanned, not planned
}

type slot struct {
	job         *BuildingJob
	freezeUntil time.Time
	freezeJobID string
}

func (s *slot) isFree(now time.Time) bool {
	if s.job != nil {
		return false
	}
	return !s.freezeUntil.After(now)
}

// BuildingQueue models one village's tribe-aware concurrency: Romans and
// Huns get two independent slots (center, resourceField); every other
// tribe shares one slot usable for either.
type BuildingQueue struct {
	parallelAllowed bool
	slots           map[QueueKey]*slot
}

// NewBuildingQueue constructs an empty queue for a tribe.
func NewBuildingQueue(tribe Tribe) *BuildingQueue {
	return &BuildingQueue{
		parallelAllowed: tribe.HasIndependentQueueSlots(),
		slots: map[QueueKey]*slot{
			QueueInside:  {},
			QueueOutside: {},
		},
	}
}

// ParallelBuildingAllowed reports whether this tribe can run inside and
// outside construction concurrently.
func (q *BuildingQueue) ParallelBuildingAllowed() bool {
	return q.parallelAllowed
}

// CanBuildInside reports whether a center-slot job can be started now.
func (q *BuildingQueue) CanBuildInside() bool {
	return q.canBuild(QueueInside, time.Now())
}

// CanBuildOutside reports whether a resource-field job can be started now.
func (q *BuildingQueue) CanBuildOutside() bool {
	return q.canBuild(QueueOutside, time.Now())
}

func (q *BuildingQueue) canBuild(key QueueKey, now time.Time) bool {
	if q.parallelAllowed {
		return q.slots[key].isFree(now)
	}
	// Shared slot: either key name routes to the same single capacity.
	return q.slots[QueueInside].isFree(now) && q.slots[QueueOutside].isFree(now)
}

// IsEmpty reports whether no slot is occupied or frozen.
func (q *BuildingQueue) IsEmpty() bool {
	now := time.Now()
	return q.slots[QueueInside].isFree(now) && q.slots[QueueOutside].isFree(now)
}

// storageKey returns the single key non-parallel tribes actually store
// state under — both logical keys alias to QueueInside.
func (q *BuildingQueue) storageKey(key QueueKey) QueueKey {
	if q.parallelAllowed {
		return key
	}
	return QueueInside
}

// AddJob records an observed job occupying the given slot, replacing any
// prior job there (scanner reconciliation).
func (q *BuildingQueue) AddJob(key QueueKey, job BuildingJob) {
	s := q.slots[q.storageKey(key)]
	s.job = &job
	// An observed job supersedes any in-memory freeze for that slot.
	s.freezeUntil = time.Time{}
	s.freezeJobID = ""
}

// FreezeUntil marks a slot as claimed by a planned-but-not-yet-observed job
// so the next planning pass doesn't duplicate it.
func (q *BuildingQueue) FreezeUntil(until time.Time, key QueueKey, jobID string) {
	s := q.slots[q.storageKey(key)]
	s.freezeUntil = until
	s.freezeJobID = jobID
}

// IsFrozen reports whether key is currently claimed by a freeze (not an
// observed job) and, if so, returns the freeze's job id.
func (q *BuildingQueue) IsFrozen(key QueueKey) (jobID string, frozen bool) {
	s := q.slots[q.storageKey(key)]
	now := time.Now()
	if s.job == nil && s.freezeUntil.After(now) {
		return s.freezeJobID, true
	}
	return "", false
}

// Unfreeze immediately clears key's freeze regardless of its until time.
// Used when a planned job fails execution: the slot must become plannable
// again without waiting for the freeze to lapse on its own.
func (q *BuildingQueue) Unfreeze(key QueueKey) {
	s := q.slots[q.storageKey(key)]
	s.freezeUntil = time.Time{}
	s.freezeJobID = ""
}

// EarliestTimeRemaining returns the smallest TimeRemainingSeconds among the
// queue's currently observed (in-game, not merely frozen) jobs. Used by the
// executor to judge how far away the nearest completion in this village is.
func (q *BuildingQueue) EarliestTimeRemaining() (time.Duration, bool) {
	var best time.Duration
	found := false
	for _, key := range []QueueKey{QueueInside, QueueOutside} {
		s := q.slots[q.storageKey(key)]
		if s.job == nil {
			continue
		}
		d := time.Duration(s.job.TimeRemainingSeconds) * time.Second
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// ClearStaleFreeze drops a freeze whose until has passed while the slot
// still shows no observed work.
func (q *BuildingQueue) ClearStaleFreeze(key QueueKey) {
	s := q.slots[q.storageKey(key)]
	if s.job == nil && !s.freezeUntil.IsZero() && !s.freezeUntil.After(time.Now()) {
		s.freezeUntil = time.Time{}
		s.freezeJobID = ""
	}
}

// Reconcile replaces the queue's observed contents wholesale (as the
// scanner would after re-reading the in-game queue page), while preserving
// any freeze whose until still lies in the future.
func (q *BuildingQueue) Reconcile(fresh *BuildingQueue) {
	for _, key := range []QueueKey{QueueInside, QueueOutside} {
		sk := q.storageKey(key)
		freshSlot := fresh.slots[fresh.storageKey(key)]
		cur := q.slots[sk]

		preserveUntil := cur.freezeUntil
		preserveJobID := cur.freezeJobID

		cur.job = freshSlot.job
		if preserveUntil.After(time.Now()) {
			cur.freezeUntil = preserveUntil
			cur.freezeJobID = preserveJobID
		} else {
			cur.freezeUntil = time.Time{}
			cur.freezeJobID = ""
		}
	}
}
