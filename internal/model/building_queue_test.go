package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildingQueue_RomansParallel(t *testing.T) {
	q := NewBuildingQueue(TribeRomans)
	assert.True(t, q.ParallelBuildingAllowed())
	assert.True(t, q.CanBuildInside())
	assert.True(t, q.CanBuildOutside())

	q.FreezeUntil(time.Now().Add(time.Hour), QueueInside, "job-1")
	assert.False(t, q.CanBuildInside())
	assert.True(t, q.CanBuildOutside(), "outside slot is independent for Romans")
}

func TestBuildingQueue_NonParallelSharesOneSlot(t *testing.T) {
	q := NewBuildingQueue(TribeGauls)
	assert.False(t, q.ParallelBuildingAllowed())

	q.FreezeUntil(time.Now().Add(time.Hour), QueueOutside, "job-1")
	assert.False(t, q.CanBuildInside(), "shared slot occupied by outside job blocks inside too")
	assert.False(t, q.CanBuildOutside())
}

func TestBuildingQueue_FreezeExpiresNaturally(t *testing.T) {
	q := NewBuildingQueue(TribeRomans)
	q.FreezeUntil(time.Now().Add(-time.Second), QueueInside, "job-1")
	assert.True(t, q.CanBuildInside(), "a freeze in the past no longer blocks planning")
}

func TestBuildingQueue_ClearStaleFreeze(t *testing.T) {
	q := NewBuildingQueue(TribeRomans)
	q.FreezeUntil(time.Now().Add(-time.Second), QueueInside, "job-1")
	_, frozen := q.IsFrozen(QueueInside)
	assert.False(t, frozen)
	q.ClearStaleFreeze(QueueInside)
	assert.True(t, q.CanBuildInside())
}

func TestBuildingQueue_ReconcilePreservesFutureFreeze(t *testing.T) {
	q := NewBuildingQueue(TribeRomans)
	future := time.Now().Add(time.Hour)
	q.FreezeUntil(future, QueueInside, "job-1")

	fresh := NewBuildingQueue(TribeRomans)
	fresh.AddJob(QueueOutside, BuildingJob{BuildingName: "Woodcutter", TargetLevel: 5})

	q.Reconcile(fresh)

	assert.False(t, q.CanBuildInside(), "future freeze survives reconciliation")
	assert.False(t, q.CanBuildOutside(), "observed job replaces queue contents")
}

func TestBuildingQueue_QueueKeyForGID(t *testing.T) {
	assert.Equal(t, QueueOutside, QueueKeyForGID(BuildingWoodcutter.GID))
	assert.Equal(t, QueueInside, QueueKeyForGID(BuildingWarehouse.GID))
}
