// Package calculator implements the pure building-cost function:
// (buildingKind, targetLevel, mainBuildingLevel, serverSpeed) ->
// Cost{resources, seconds}. Same inputs always produce the same output,
// bit-exact for integer fields.
package calculator

import (
	"fmt"
	"math"

	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// Cost is the result of one calculator.Cost call.
type Cost struct {
	Resources resources.Set
	TotalSum  int
	Seconds   int
	Formatted string
}

// levelData parameterizes one BuildingKind's cost and time curves. Which
// fields apply depends on the kind's TimeForm.
type levelData struct {
	baseCost   resources.Set // cost at level 1
	costGrowth float64       // per-level resource growth factor
	// Exponential time form.
	baseTimeSeconds int
	timeGrowth      float64
	// Table / TableWithOffset time forms: index 0 == level 1.
	timeTableSeconds []int
	tableOffset      int
}

var levelTable = map[int]levelData{
	model.BuildingWoodcutter.GID: {baseCost: resources.Set{Lumber: 40, Clay: 100, Iron: 50, Crop: 60}, costGrowth: 1.67, baseTimeSeconds: 260, timeGrowth: 1.16},
	model.BuildingClayPit.GID:    {baseCost: resources.Set{Lumber: 80, Clay: 40, Iron: 80, Crop: 50}, costGrowth: 1.67, baseTimeSeconds: 260, timeGrowth: 1.16},
	model.BuildingIronMine.GID:   {baseCost: resources.Set{Lumber: 100, Clay: 80, Iron: 30, Crop: 60}, costGrowth: 1.67, baseTimeSeconds: 280, timeGrowth: 1.16},
	model.BuildingCropland.GID:   {baseCost: resources.Set{Lumber: 70, Clay: 90, Iron: 70, Crop: 20}, costGrowth: 1.67, baseTimeSeconds: 250, timeGrowth: 1.16},
	model.BuildingWarehouse.GID:  {baseCost: resources.Set{Lumber: 130, Clay: 160, Iron: 90, Crop: 40}, costGrowth: 1.28, baseTimeSeconds: 1600, timeGrowth: 1.16},
	model.BuildingGranary.GID:    {baseCost: resources.Set{Lumber: 80, Clay: 100, Iron: 70, Crop: 20}, costGrowth: 1.28, baseTimeSeconds: 1340, timeGrowth: 1.16},
	model.BuildingMainBuilding.GID: {baseCost: resources.Set{Lumber: 70, Clay: 40, Iron: 60, Crop: 20}, costGrowth: 1.28, baseTimeSeconds: 1900, timeGrowth: 1.16},
	model.BuildingResidence.GID:  {baseCost: resources.Set{Lumber: 580, Clay: 460, Iron: 350, Crop: 180}, costGrowth: 1.26, baseTimeSeconds: 5500, timeGrowth: 1.16},
	model.BuildingBarracks.GID: {
		baseCost:         resources.Set{Lumber: 210, Clay: 140, Iron: 260, Crop: 120},
		costGrowth:       1.28,
		timeTableSeconds: []int{3200, 4200, 5400, 6900, 8700, 10900, 13600, 16900, 20900, 25700},
		tableOffset:      0,
	},
	model.BuildingWonder.GID: {
		baseCost:         resources.Set{Lumber: 33200, Clay: 33200, Iron: 33200, Crop: 24900},
		costGrowth:       1.0,
		timeTableSeconds: []int{1059500, 1059500, 1059500, 1059500, 1059500},
		tableOffset:      95,
	},
}

const wonderCap = 1_000_000

// Cost computes the resource and time cost of the single upgrade step that
// brings b to targetLevel, given the village's main building level and the
// server's speed multiplier. Costs of lower levels are not added in.
func Cost(b model.BuildingKind, targetLevel, mainBuildingLevel int, serverSpeed float64) (Cost, error) {
	if targetLevel == 0 {
		return Cost{}, nil
	}
	if targetLevel < 0 || targetLevel > b.MaxLevel {
		return Cost{}, fmt.Errorf("target level %d out of range for %s (max %d)", targetLevel, b.Name, b.MaxLevel)
	}

	data, ok := levelTable[b.GID]
	if !ok {
		return Cost{}, fmt.Errorf("no cost data for building gid %d (%s)", b.GID, b.Name)
	}

	res := resourceCostAtLevel(data, targetLevel)
	if b.GID == model.BuildingWonder.GID {
		res = capAt(res, wonderCap)
	}

	baseTime := baseTimeAtLevel(data, targetLevel)

	reference := mainBuildingLevel
	if b.GID == model.BuildingMainBuilding.GID {
		reference = mainBuildingLevel - 1
	}
	factor := MainBuildingTimeFactor(reference)

	seconds := 0
	if serverSpeed > 0 {
		seconds = int(math.Floor(float64(baseTime) * factor / serverSpeed))
	}
	if seconds < 0 {
		seconds = 0
	}

	return Cost{
		Resources: res,
		TotalSum:  res.Lumber + res.Clay + res.Iron + res.Crop,
		Seconds:   seconds,
		Formatted: formatDuration(seconds),
	}, nil
}

func resourceCostAtLevel(data levelData, level int) resources.Set {
	scale := math.Pow(data.costGrowth, float64(level-1))
	return resources.Set{
		Lumber: roundToNearest5(float64(data.baseCost.Lumber) * scale),
		Clay:   roundToNearest5(float64(data.baseCost.Clay) * scale),
		Iron:   roundToNearest5(float64(data.baseCost.Iron) * scale),
		Crop:   roundToNearest5(float64(data.baseCost.Crop) * scale),
	}
}

func baseTimeAtLevel(data levelData, level int) int {
	if data.timeTableSeconds != nil {
		idx := level - 1 - data.tableOffset
		if idx < 0 {
			idx = 0
		}
		if idx >= len(data.timeTableSeconds) {
			idx = len(data.timeTableSeconds) - 1
		}
		return data.timeTableSeconds[idx]
	}
	return int(math.Round(float64(data.baseTimeSeconds) * math.Pow(data.timeGrowth, float64(level-1))))
}

// MainBuildingTimeFactor returns the smooth decreasing build-time
// multiplier driven by the main building's level. Level 0 is special-cased
// to 5.0; the main building upgrading itself passes mbLevel-1 as the
// reference level (handled by the caller).
func MainBuildingTimeFactor(mbLevel int) float64 {
	if mbLevel <= 0 {
		return 5.0
	}
	factor := 1.0 * math.Pow(0.8317, float64(mbLevel-1))
	if factor < 0.1 {
		factor = 0.1
	}
	return factor
}

func roundToNearest5(x float64) int {
	return int(math.Round(x/5.0) * 5.0)
}

func capAt(s resources.Set, cap int) resources.Set {
	clampOne := func(v int) int {
		if v > cap {
			return cap
		}
		return v
	}
	return resources.Set{
		Lumber: clampOne(s.Lumber),
		Clay:   clampOne(s.Clay),
		Iron:   clampOne(s.Iron),
		Crop:   clampOne(s.Crop),
	}
}

func formatDuration(totalSeconds int) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
