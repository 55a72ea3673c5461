package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travian-agent/internal/job"
)

func trainJob(villageID string, scheduledTime time.Time, quantity int) *job.Job {
	return job.NewTrain(villageID, scheduledTime, job.TrainPayload{
		MilitaryBuildingID: 19,
		TroopType:          "legionnaire",
		Quantity:           quantity,
	})
}

func TestQueue_PushPopDue_OrdersByScheduledTime(t *testing.T) {
	q := New()
	now := time.Now()

	late := trainJob("v1", now.Add(2*time.Hour), 5)
	early := trainJob("v1", now.Add(time.Hour), 5)

	q.Push(late)
	q.Push(early)

	assert.Equal(t, 2, q.Len())
	assert.Nil(t, q.PopDue(now))

	popped := q.PopDue(now.Add(90 * time.Minute))
	require.NotNil(t, popped)
	assert.Same(t, early, popped)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_PopDue_StableFIFOWithinSameTimestamp(t *testing.T) {
	q := New()
	now := time.Now()

	first := trainJob("v1", now, 1)
	second := trainJob("v1", now, 2)

	q.Push(first)
	q.Push(second)

	assert.Same(t, first, q.PopDue(now))
	assert.Same(t, second, q.PopDue(now))
}

func TestQueue_PeekNextTime(t *testing.T) {
	q := New()
	_, ok := q.PeekNextTime()
	assert.False(t, ok)

	now := time.Now()
	j := trainJob("v1", now.Add(time.Minute), 1)
	q.Push(j)

	next, ok := q.PeekNextTime()
	require.True(t, ok)
	assert.True(t, next.Equal(j.ScheduledTime))
}

func TestQueue_RemoveExpired(t *testing.T) {
	q := New()
	now := time.Now()

	stale := trainJob("v1", now.Add(-2*time.Hour), 1)
	fresh := trainJob("v1", now.Add(-time.Minute), 1)

	q.Push(stale)
	q.Push(fresh)

	expired := q.RemoveExpired(now, time.Hour)
	require.Len(t, expired, 1)
	assert.Same(t, stale, expired[0])
	assert.Equal(t, job.Expired, stale.Status)
	assert.Equal(t, 1, q.Len())
}
