package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travian-agent/internal/resources"
)

func newTestVillage() *Village {
	return &Village{
		ID:                "v1",
		Name:              "Capital",
		Tribe:             TribeGauls,
		WarehouseCapacity: 1000,
		GranaryCapacity:   1000,
		HourlyProduction:  resources.Set{Lumber: 100, Clay: 50, Iron: 50, Crop: 20},
		BuildingQueue:     NewBuildingQueue(TribeGauls),
		Troops:            map[string]int{},
	}
}

func TestVillage_MaxPitLevel(t *testing.T) {
	v := newTestVillage()
	assert.Equal(t, 10, v.MaxPitLevel())

	v.IsUpgradedToCity = true
	assert.Equal(t, 12, v.MaxPitLevel())

	v.IsPermanentCapital = true
	assert.Equal(t, 20, v.MaxPitLevel())
}

func TestVillage_UpgradablePits(t *testing.T) {
	v := newTestVillage()
	v.Pits = []ResourcePit{
		{ID: 1, Kind: BuildingWoodcutter, Level: 10},
		{ID: 2, Kind: BuildingClayPit, Level: 3},
	}
	up := v.UpgradablePits()
	assert.Len(t, up, 1)
	assert.Equal(t, 2, up[0].ID)
}

func TestVillage_WarehouseHoursUntilFull(t *testing.T) {
	v := newTestVillage()
	v.WarehouseCapacity = 1000
	v.Resources = resources.Set{Lumber: 0}
	v.HourlyProduction = resources.Set{Lumber: 10000}

	hours, ok := v.WarehouseHoursUntilFull()
	assert.True(t, ok)
	assert.InDelta(t, 0.1, hours, 0.0001)
}

func TestVillage_SettlerCount(t *testing.T) {
	v := newTestVillage()
	v.Troops["Settlers"] = 3
	assert.Equal(t, 3, v.SettlerCount())
}
