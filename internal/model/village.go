package model

import (
	"time"

	"travian-agent/internal/resources"
)

// Village is owned by the GameState for the duration of one planning pass.
type Village struct {
	ID     string
	Name   string
	X, Y   int
	Tribe  Tribe

	Resources resources.Set
	FreeCrop  int

	WarehouseCapacity int
	GranaryCapacity   int

	HourlyProduction resources.Set
	FreeCropHourly   int

	Pits      []ResourcePit
	Buildings []Building

	BuildingQueue *BuildingQueue

	IsUpgradedToCity     bool
	IsPermanentCapital   bool
	HasQuestMasterReward bool
	IsUnderAttack        bool
	IncomingAttackCount  int
	NextAttackSeconds    *int

	Troops       map[string]int
	LastTrainTime *time.Time
}

// MaxPitLevel returns the per-village pit level ceiling.
func (v *Village) MaxPitLevel() int {
	switch {
	case v.IsPermanentCapital:
		return 20
	case v.IsUpgradedToCity:
		return 12
	default:
		return 10
	}
}

// PitByKind returns the first pit of the given kind, if any.
func (v *Village) PitByKind(kind BuildingKind) (ResourcePit, bool) {
	for _, p := range v.Pits {
		if p.Kind.GID == kind.GID {
			return p, true
		}
	}
	return ResourcePit{}, false
}

// UpgradablePits returns pits that are below both the building's own max
// level and this village's city/capital-status pit ceiling.
func (v *Village) UpgradablePits() []ResourcePit {
	max := v.MaxPitLevel()
	out := make([]ResourcePit, 0, len(v.Pits))
	for _, p := range v.Pits {
		if p.Level < max && p.Level < p.Kind.MaxLevel {
			out = append(out, p)
		}
	}
	return out
}

// BuildingByKind returns the first center building of the given kind, if
// any exists in this village.
func (v *Village) BuildingByKind(kind BuildingKind) (Building, bool) {
	for _, b := range v.Buildings {
		if b.Kind.GID == kind.GID {
			return b, true
		}
	}
	return Building{}, false
}

// SettlerCount returns how many "Settlers" troops this village currently
// holds.
func (v *Village) SettlerCount() int {
	return v.Troops["Settlers"]
}

// WarehouseHoursUntilFull estimates hours until the warehouse caps out on
// its fastest-filling resource kind (lumber/clay/iron), given current
// stock and hourly production. Returns false if none of those three
// resources are still producing.
func (v *Village) WarehouseHoursUntilFull() (hours float64, ok bool) {
	return hoursUntilFull(v.WarehouseCapacity,
		[3]int{v.Resources.Lumber, v.Resources.Clay, v.Resources.Iron},
		[3]int{v.HourlyProduction.Lumber, v.HourlyProduction.Clay, v.HourlyProduction.Iron})
}

// GranaryHoursUntilFull estimates hours until the granary caps out on
// crop, given current stock and hourly crop production.
func (v *Village) GranaryHoursUntilFull() (hours float64, ok bool) {
	return hoursUntilFull(v.GranaryCapacity, [3]int{v.Resources.Crop, 0, 0}, [3]int{v.HourlyProduction.Crop, 0, 0})
}

func hoursUntilFull(capacity int, stocks, rates [3]int) (float64, bool) {
	best := -1.0
	found := false
	for i := range stocks {
		if rates[i] <= 0 {
			continue
		}
		h := float64(capacity-stocks[i]) / float64(rates[i])
		if h < 0 {
			h = 0
		}
		if !found || h < best {
			best = h
			found = true
		}
	}
	return best, found
}

// WarehouseCapacityRatio returns capacity / (24h production), the tie-break
// metric for the storage guard: lower capacity/24h production ratio wins
// when both warehouse and granary fill within the same horizon.
func (v *Village) WarehouseCapacityRatio() float64 {
	daily := (v.HourlyProduction.Lumber + v.HourlyProduction.Clay + v.HourlyProduction.Iron) * 24
	if daily <= 0 {
		return float64(v.WarehouseCapacity)
	}
	return float64(v.WarehouseCapacity) / float64(daily)
}

func (v *Village) GranaryCapacityRatio() float64 {
	daily := v.HourlyProduction.Crop * 24
	if daily <= 0 {
		return float64(v.GranaryCapacity)
	}
	return float64(v.GranaryCapacity) / float64(daily)
}
