// Package model implements the domain entities built on top of the
// resource algebra (Village, ResourcePit, Building, BuildingQueue,
// HeroInfo, Account, GameState) and their invariants.
package model

import (
	"github.com/mitchellh/hashstructure/v2"
	"github.com/samber/lo"

	"travian-agent/internal/resources"
)

// GameState is the top-level aggregate of one planning pass. A fresh
// GameState is constructed every pass; nothing on it survives between
// passes except what the scheduler/BuildingQueue freezes encode.
type GameState struct {
	// PassID correlates log lines across one scan->plan->execute pass.
	PassID   string
	Account  Account
	Villages []*Village
	Hero     *HeroInfo
}

// GlobalResources sums every village's stock plus the hero's inventory.
func (g *GameState) GlobalResources() resources.Set {
	total := resources.Zero
	for _, v := range g.Villages {
		total = total.Add(v.Resources)
	}
	if g.Hero != nil {
		total = total.Add(g.Hero.Inventory)
	}
	return total
}

// GlobalHourlyProduction sums every village's hourly production.
func (g *GameState) GlobalHourlyProduction() resources.Set {
	total := resources.Zero
	for _, v := range g.Villages {
		total = total.Add(v.HourlyProduction)
	}
	return total
}

// GlobalLowestResourceIn projects globalResources + hourlyProduction*hours
// + heroInventory forward and returns the resulting MinType.
func (g *GameState) GlobalLowestResourceIn(hours float64) resources.Kind {
	projected := resources.Zero
	for _, v := range g.Villages {
		p := v.HourlyProduction
		projected = projected.Add(v.Resources).Add(resources.Set{
			Lumber: int(float64(p.Lumber) * hours),
			Clay:   int(float64(p.Clay) * hours),
			Iron:   int(float64(p.Iron) * hours),
			Crop:   int(float64(p.Crop) * hours),
		})
	}
	if g.Hero != nil {
		projected = projected.Add(g.Hero.Inventory)
	}
	return projected.MinType()
}

// HasGlobalResourcePreference implements the dispersion gate: a ~10%
// spread between the richest and poorest resource kind is treated as
// noise, and callers should use no preference at all in that case rather
// than the (possibly arbitrary) MinType.
func HasGlobalResourcePreference(s resources.Set) (kind resources.Kind, has bool) {
	max := s.MaxType()
	maxVal := s.Get(max)
	if maxVal == 0 {
		return 0, false
	}
	min := s.MinType()
	minVal := s.Get(min)
	spread := float64(maxVal-minVal) / float64(maxVal)
	if spread < 0.1 {
		return 0, false
	}
	return min, true
}

// VillageByID looks up a village by id.
func (g *GameState) VillageByID(id string) (*Village, bool) {
	v, ok := lo.Find(g.Villages, func(v *Village) bool { return v.ID == id })
	return v, ok
}

// StructuralHash returns a hash of the GameState's observable content,
// excluding PassID (a fresh UUID every pass would otherwise make two
// structurally-equal passes hash differently). Two GameState values with
// equal content therefore hash equally.
func (g *GameState) StructuralHash() (uint64, error) {
	snapshot := struct {
		Account  Account
		Villages []*Village
		Hero     *HeroInfo
	}{g.Account, g.Villages, g.Hero}
	return hashstructure.Hash(snapshot, hashstructure.FormatV2, nil)
}
