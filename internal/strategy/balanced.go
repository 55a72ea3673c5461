package strategy

import (
	"math"
	"time"

	"go.uber.org/zap"

	"travian-agent/internal/calculator"
	"travian-agent/internal/job"
	"travian-agent/internal/logger"
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// BalancedEconomicGrowth is the default policy: steady resource-field and
// infrastructure growth with starvation/storage guards, opportunistic
// troop training, and hero/questmaster/ad sweeps. It never attacks.
type BalancedEconomicGrowth struct {
	Config Config
	Finder job.AbandonedValleyFinder
}

// NewBalancedEconomicGrowth constructs the policy with the given config and
// abandoned-valley finder, used only by the settler-emigration path.
func NewBalancedEconomicGrowth(cfg Config, finder job.AbandonedValleyFinder) *BalancedEconomicGrowth {
	return &BalancedEconomicGrowth{Config: cfg, Finder: finder}
}

// Plan implements Strategy. With the same GameState it always produces the
// same job sequence: every choice below is resolved by an explicit,
// declared tie-break rather than map iteration order.
func (s *BalancedEconomicGrowth) Plan(state *model.GameState, now time.Time) []*job.Job {
	var jobs []*job.Job

	globalLowest, hasGlobalPreference := model.HasGlobalResourcePreference(state.GlobalResources())

	for _, v := range state.Villages {
		jobs = append(jobs, s.planVillage(v, state, now, hasGlobalPreference, globalLowest)...)
	}

	jobs = append(jobs, s.planHero(state, now)...)

	for _, v := range state.Villages {
		if v.HasQuestMasterReward {
			jobs = append(jobs, job.NewCollectQuestmaster(v.ID, now))
		}
	}

	if len(state.Villages) > 0 && !state.Account.ProductionBoostActive.AllActive() {
		if boostJob := s.planProductionBoost(state.Villages[0], state.Account, now); boostJob != nil {
			jobs = append(jobs, boostJob)
		}
	}

	return jobs
}

// planVillage runs the priority cascade once for the village's free slot,
// and a second time for tribes with independent inside/outside queues if a
// second slot is still free afterward.
func (s *BalancedEconomicGrowth) planVillage(v *model.Village, state *model.GameState, now time.Time, hasGlobalPreference bool, globalLowest resources.Kind) []*job.Job {
	canInside := v.BuildingQueue.CanBuildInside()
	canOutside := v.BuildingQueue.CanBuildOutside()
	if !canInside && !canOutside {
		return nil
	}

	primary := s.selectCandidate(v, canInside, canOutside, hasGlobalPreference, globalLowest, true, now)
	if primary == nil {
		return nil
	}
	var jobs []*job.Job
	if j := s.materialize(v, state, now, *primary); j != nil {
		jobs = append(jobs, j)
	}

	if v.BuildingQueue.ParallelBuildingAllowed() && primary.queueKey != "" {
		remainingInside, remainingOutside := canInside, canOutside
		if primary.queueKey == model.QueueInside {
			remainingInside = false
		} else {
			remainingOutside = false
		}
		if remainingInside || remainingOutside {
			if secondary := s.selectCandidate(v, remainingInside, remainingOutside, hasGlobalPreference, globalLowest, false, now); secondary != nil {
				if j := s.materialize(v, state, now, *secondary); j != nil {
					jobs = append(jobs, j)
				}
			}
		}
	}

	return jobs
}

func (s *BalancedEconomicGrowth) materialize(v *model.Village, state *model.GameState, now time.Time, c candidate) *job.Job {
	switch c.kind {
	case planFoundNewVillage:
		return job.NewFoundNewVillage(v.ID, c.villageName, now, s.Finder)
	case planTrain:
		return job.NewTrain(v.ID, now, job.TrainPayload{
			MilitaryBuildingID: c.building.ID,
			TroopType:          infantryName(v.Tribe),
			Quantity:           c.quantity,
		})
	case planBuildPit, planBuildStorage:
		return s.materializeBuild(v, state, now, c)
	case planBuildNewStorage:
		return s.materializeBuildNew(v, state, now, c)
	default:
		return nil
	}
}

func (s *BalancedEconomicGrowth) mainBuildingLevel(v *model.Village) int {
	if mb, ok := v.BuildingByKind(model.BuildingMainBuilding); ok {
		return mb.Level
	}
	return 0
}

func (s *BalancedEconomicGrowth) materializeBuild(v *model.Village, state *model.GameState, now time.Time, c candidate) *job.Job {
	cost, err := calculator.Cost(c.buildingKind, c.targetLevel, s.mainBuildingLevel(v), state.Account.ServerSpeed)
	if err != nil {
		logger.Get().Warn("cost calculation failed", zap.String("village_id", v.ID), zap.String("building", c.buildingKind.Name), zap.Error(err))
		return nil
	}

	slotID := c.pit.ID
	if c.kind == planBuildStorage {
		slotID = c.building.ID
	}

	support, scheduledTime, freezeUntil, feasible := s.resolveSchedule(v, state, cost, now)
	if !feasible {
		return nil
	}

	j := job.NewBuild(v.ID, c.queueKey, scheduledTime, cost.Seconds, job.BuildPayload{
		SlotID:         slotID,
		BuildingGID:    c.buildingKind.GID,
		TargetName:     c.buildingKind.Name,
		TargetLevel:    c.targetLevel,
		Support:        support,
		FreezeUntil:    freezeUntil,
		FreezeQueueKey: c.queueKey,
	})
	v.BuildingQueue.FreezeUntil(freezeUntil, c.queueKey, j.ID)
	return j
}

// materializeBuildNew places a brand-new storage building. Hero support is
// still reserved against the village's shortage (resolveSchedule), but
// BuildNewPayload has no support field to carry it through at execution
// time — a brand-new building contract has no "transfer resources" step the
// way an existing slot's upgrade does.
func (s *BalancedEconomicGrowth) materializeBuildNew(v *model.Village, state *model.GameState, now time.Time, c candidate) *job.Job {
	cost, err := calculator.Cost(c.buildingKind, c.targetLevel, s.mainBuildingLevel(v), state.Account.ServerSpeed)
	if err != nil {
		logger.Get().Warn("cost calculation failed", zap.String("village_id", v.ID), zap.String("building", c.buildingKind.Name), zap.Error(err))
		return nil
	}

	_, scheduledTime, freezeUntil, feasible := s.resolveSchedule(v, state, cost, now)
	if !feasible {
		return nil
	}

	j := job.NewBuildNew(v.ID, c.queueKey, scheduledTime, cost.Seconds, job.BuildNewPayload{
		SlotID:      c.slotID,
		BuildingGID: c.buildingKind.GID,
		TargetName:  c.buildingKind.Name,
	})
	v.BuildingQueue.FreezeUntil(freezeUntil, c.queueKey, j.ID)
	return j
}

// resolveSchedule covers the remaining cost shortage with hero support
// first, then a scheduling delay against the village's own production.
// feasible is false when a shortage remains in a resource the village
// produces nothing of and the configured delay ceiling can't absorb it.
func (s *BalancedEconomicGrowth) resolveSchedule(v *model.Village, state *model.GameState, cost calculator.Cost, now time.Time) (support resources.Set, scheduledTime, freezeUntil time.Time, feasible bool) {
	duration := time.Duration(cost.Seconds) * time.Second
	shortage := cost.Resources.SubFloored(v.Resources)
	if shortage.IsZero() {
		return resources.Zero, now, now.Add(duration), true
	}

	if state.Hero != nil {
		resp := state.Hero.SendRequest(shortage)
		support = resp.Provided
	}
	remaining := shortage.SubFloored(support)
	if remaining.IsZero() {
		return support, now, now.Add(duration), true
	}

	hours, feasible := resources.HoursToCover(remaining, v.HourlyProduction, s.Config.DelayCeilingHours)
	if !feasible {
		logger.Get().Info("plan infeasible: shortage exceeds delay ceiling against own production",
			zap.String("village_id", v.ID))
		return resources.Zero, time.Time{}, time.Time{}, false
	}

	delay := time.Duration(math.Ceil(hours*3600)) * time.Second
	scheduledTime = now.Add(delay)
	return support, scheduledTime, scheduledTime.Add(duration), true
}

func (s *BalancedEconomicGrowth) planHero(state *model.GameState, now time.Time) []*job.Job {
	hero := state.Hero
	if hero == nil {
		return nil
	}

	var jobs []*job.Job
	if hero.CanGoOnAdventure() && hero.Health >= s.Config.HeroMinimalHealth {
		jobs = append(jobs, job.NewHeroAdventure(now))
	}
	if hero.PointsAvailable > 0 {
		jobs = append(jobs, job.NewAllocateAttributes(now, job.AllocateAttributesPayload{
			Points:  hero.PointsAvailable,
			Current: hero.Attributes,
		}))
	}
	if hero.HasDailyQuestIndicator {
		jobs = append(jobs, job.NewCollectDailyQuests(now, s.Config.DailyQuestThreshold))
	}
	return jobs
}

// planProductionBoost targets the account's boost-ad job at the first
// village: the four boost flags are account-wide, not per-village, so one
// job per pass fully covers every still-inactive kind.
func (s *BalancedEconomicGrowth) planProductionBoost(v *model.Village, account model.Account, now time.Time) *job.Job {
	var eligible []resources.Kind
	if !account.ProductionBoostActive.Lumber {
		eligible = append(eligible, resources.Lumber)
	}
	if !account.ProductionBoostActive.Clay {
		eligible = append(eligible, resources.Clay)
	}
	if !account.ProductionBoostActive.Iron {
		eligible = append(eligible, resources.Iron)
	}
	if !account.ProductionBoostActive.Crop {
		eligible = append(eligible, resources.Crop)
	}
	if len(eligible) == 0 {
		return nil
	}
	return job.NewIncreaseProductionByAds(v.ID, now, eligible)
}
