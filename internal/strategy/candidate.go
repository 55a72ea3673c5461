package strategy

import (
	"time"

	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// planKind discriminates the one decision a village's cascade can settle
// on for a single queue slot this pass.
type planKind int

const (
	planNone planKind = iota
	planFoundNewVillage
	planBuildPit
	planBuildStorage
	planBuildNewStorage
	planTrain
)

// candidate is the strategy's intermediate, pre-cost representation of a
// single decision. materialize resolves it into a concrete job.Job.
type candidate struct {
	kind     planKind
	queueKey model.QueueKey

	villageName string

	pit          model.ResourcePit
	building     model.Building
	buildingKind model.BuildingKind
	targetLevel  int
	slotID       int

	quantity int
}

func starvationRatio(v *model.Village) (float64, bool) {
	if v.FreeCropHourly <= 0 {
		return 0, false
	}
	return float64(v.FreeCrop) / float64(v.FreeCropHourly), true
}

// lowestUpgradablePitOfKind returns the upgradable pit of kind with the
// lowest level, ties broken by lower slot id.
func lowestUpgradablePitOfKind(v *model.Village, kind model.BuildingKind) (model.ResourcePit, bool) {
	var best model.ResourcePit
	found := false
	for _, p := range v.UpgradablePits() {
		if p.Kind.GID != kind.GID {
			continue
		}
		if !found || p.Level < best.Level || (p.Level == best.Level && p.ID < best.ID) {
			best = p
			found = true
		}
	}
	return best, found
}

// lowestUpgradablePitOverall is the economy-growth fallback: the
// lowest-level pit among every upgradable one, ties broken by declared
// resource kind order then slot id.
func lowestUpgradablePitOverall(v *model.Village) (model.ResourcePit, bool) {
	pits := v.UpgradablePits()
	if len(pits) == 0 {
		return model.ResourcePit{}, false
	}
	best := pits[0]
	for _, p := range pits[1:] {
		switch {
		case p.Level < best.Level:
			best = p
		case p.Level == best.Level && p.Kind.GID < best.Kind.GID:
			best = p
		case p.Level == best.Level && p.Kind.GID == best.Kind.GID && p.ID < best.ID:
			best = p
		}
	}
	return best, true
}

func pitKindForResource(k resources.Kind) model.BuildingKind {
	switch k {
	case resources.Lumber:
		return model.BuildingWoodcutter
	case resources.Clay:
		return model.BuildingClayPit
	case resources.Iron:
		return model.BuildingIronMine
	default:
		return model.BuildingCropland
	}
}

// freeCenterSlot finds the lowest unused slot id in the center-slot range
// for a building this village doesn't have yet.
func freeCenterSlot(v *model.Village) (int, bool) {
	used := make(map[int]bool, len(v.Buildings))
	for _, b := range v.Buildings {
		used[b.ID] = true
	}
	for id := 19; id <= 40; id++ {
		if !used[id] {
			return id, true
		}
	}
	return 0, false
}

func (s *BalancedEconomicGrowth) storageGuardCandidate(v *model.Village) *candidate {
	type option struct {
		hours float64
		ok    bool
		kind  model.BuildingKind
		ratio float64
	}
	wh := option{ok: false, kind: model.BuildingWarehouse, ratio: v.WarehouseCapacityRatio()}
	wh.hours, wh.ok = v.WarehouseHoursUntilFull()
	gr := option{ok: false, kind: model.BuildingGranary, ratio: v.GranaryCapacityRatio()}
	gr.hours, gr.ok = v.GranaryHoursUntilFull()

	var chosen *option
	for _, o := range []option{wh, gr} {
		o := o
		if !o.ok || o.hours >= s.Config.MinimumStorageCapacityHours {
			continue
		}
		if chosen == nil || o.hours < chosen.hours || (o.hours == chosen.hours && o.ratio < chosen.ratio) {
			chosen = &o
		}
	}
	if chosen == nil {
		return nil
	}

	if b, ok := v.BuildingByKind(chosen.kind); ok {
		return &candidate{kind: planBuildStorage, queueKey: model.QueueInside, building: b, buildingKind: chosen.kind, targetLevel: b.Level + 1}
	}
	slotID, ok := freeCenterSlot(v)
	if !ok {
		return nil
	}
	return &candidate{kind: planBuildNewStorage, queueKey: model.QueueInside, buildingKind: chosen.kind, slotID: slotID, targetLevel: 1}
}

func economyGrowthCandidate(v *model.Village, hasGlobalPreference bool, globalLowest resources.Kind) *candidate {
	if hasGlobalPreference {
		if pit, ok := lowestUpgradablePitOfKind(v, pitKindForResource(globalLowest)); ok {
			return &candidate{kind: planBuildPit, queueKey: model.QueueOutside, pit: pit, buildingKind: pit.Kind, targetLevel: pit.Level + 1}
		}
	}
	if pit, ok := lowestUpgradablePitOverall(v); ok {
		return &candidate{kind: planBuildPit, queueKey: model.QueueOutside, pit: pit, buildingKind: pit.Kind, targetLevel: pit.Level + 1}
	}
	return nil
}

const trainCooldown = 15 * time.Minute

func trainCandidate(v *model.Village, now time.Time) *candidate {
	barracks, ok := v.BuildingByKind(model.BuildingBarracks)
	if !ok {
		return nil
	}
	if v.LastTrainTime != nil && now.Sub(*v.LastTrainTime) < trainCooldown {
		return nil
	}
	qty := trainableQuantity(v)
	if qty <= 0 {
		return nil
	}
	return &candidate{kind: planTrain, building: barracks, quantity: qty}
}

// selectCandidate runs the priority cascade for one queue-slot opportunity.
// allowTrain is false on the parallel second pass, since training isn't
// queue-bound and must only be considered once per village per pass.
func (s *BalancedEconomicGrowth) selectCandidate(v *model.Village, canInside, canOutside, hasGlobalPreference bool, globalLowest resources.Kind, allowTrain bool, now time.Time) *candidate {
	if v.SettlerCount() >= 3 {
		return &candidate{kind: planFoundNewVillage, villageName: v.Name + " II"}
	}

	if canOutside {
		if ratio, ok := starvationRatio(v); ok && ratio < 0.1 {
			if pit, ok := lowestUpgradablePitOfKind(v, model.BuildingCropland); ok {
				return &candidate{kind: planBuildPit, queueKey: model.QueueOutside, pit: pit, buildingKind: pit.Kind, targetLevel: pit.Level + 1}
			}
		}
	}

	if canInside {
		if c := s.storageGuardCandidate(v); c != nil {
			return c
		}
	}

	if canOutside {
		if c := economyGrowthCandidate(v, hasGlobalPreference, globalLowest); c != nil {
			return c
		}
	}

	if allowTrain {
		if c := trainCandidate(v, now); c != nil {
			return c
		}
	}

	return nil
}
