package job

import (
	"context"
	"fmt"
	"time"

	"travian-agent/internal/driver"
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// BuildPayload upgrades an existing slot — a resource pit or a center
// building already placed in the village.
type BuildPayload struct {
	SlotID         int
	BuildingGID    int
	TargetName     string
	TargetLevel    int
	Support        resources.Set // hero resources to transfer before building, if any
	FreezeUntil    time.Time
	FreezeQueueKey model.QueueKey
}

func buildSlotPath(slotID int) string {
	return fmt.Sprintf("/build.php?id=%d", slotID)
}

// execute navigates to the build contract for the target slot, transfers
// any hero support first, then clicks the standard build button. When the
// accelerated duration is shorter it starts the video-ad subroutine, but
// with adTimeFallback as its reader no ad time is ever read, so the ad is
// cancelled and the standard build button is clicked.
func (p *BuildPayload) execute(ctx context.Context, d driver.Driver, villageID string) bool {
	if err := d.NavigateToVillage(ctx, villageID); err != nil {
		return false
	}
	if !p.Support.IsZero() {
		if err := d.TransferResourcesFromHero(ctx, p.Support); err != nil {
			return false
		}
	}
	if err := d.Navigate(ctx, buildSlotPath(p.SlotID)); err != nil {
		return false
	}
	if !d.WaitForSelector(ctx, ".contractContainer", driver.DefaultSelectorTimeout) {
		return false
	}

	normal, accelerated := readDurations(ctx, d)
	delta := normal - accelerated
	if delta > 0 {
		if watchVideo(ctx, d, adTimeFallback{}, delta) {
			return true
		}
	}
	return d.Click(ctx, ".buildingButton")
}

// adTimeFallback is the AdTimeReader BuildPayload.execute always passes to
// watchVideo. It never reports a remaining time, so watchVideo cancels the
// ad and returns false, and the build falls through to the standard button.
type adTimeFallback struct{}

func (adTimeFallback) ScanAdvertiseRemainingTime(string) (int, bool) { return 0, false }

func readDurations(ctx context.Context, d driver.Driver) (normal, accelerated time.Duration) {
	normalText := d.GetTextContent(ctx, ".normalDuration")
	acceleratedText := d.GetTextContent(ctx, ".acceleratedDuration")
	normal = parseHMS(normalText)
	accelerated = parseHMS(acceleratedText)
	return normal, accelerated
}

func parseHMS(s string) time.Duration {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
}

// BuildNewPayload places a brand-new building into a free slot.
type BuildNewPayload struct {
	SlotID      int
	BuildingGID int
	TargetName  string
}

func (p *BuildNewPayload) execute(ctx context.Context, d driver.Driver, villageID string) bool {
	if err := d.NavigateToVillage(ctx, villageID); err != nil {
		return false
	}
	if err := d.Navigate(ctx, buildSlotPath(p.SlotID)); err != nil {
		return false
	}
	if d.Click(ctx, fmt.Sprintf(".contract.gid%d", p.BuildingGID)) {
		return true
	}
	return d.Click(ctx, ".contract")
}

// TrainPayload queues troop training in a military building.
type TrainPayload struct {
	MilitaryBuildingID int
	TroopType          string
	Quantity           int
}

func (p *TrainPayload) execute(ctx context.Context, d driver.Driver, villageID string) bool {
	err := d.TrainTroops(ctx, villageID, fmt.Sprint(p.MilitaryBuildingID), p.TroopType, p.Quantity)
	return err == nil
}

// HeroAdventurePayload sends the hero on the first available adventure.
type HeroAdventurePayload struct{}

func (p *HeroAdventurePayload) execute(ctx context.Context, d driver.Driver, ads AdTimeReader) bool {
	if err := d.Navigate(ctx, "/hero/adventures"); err != nil {
		return false
	}
	watchVideo(ctx, d, ads, 30*time.Second)
	if !d.Click(ctx, ".adventureExploreButton") {
		return false
	}
	d.WaitForLoadState(ctx, driver.DefaultSelectorTimeout)

	continued := d.ClickFirst(ctx, []string{
		".continueButton",
		".heroAdventureContinue",
		".dialogButtonOk",
	})
	if continued {
		watchVideo(ctx, d, ads, 30*time.Second)
	}
	return continued
}

// AttributeKind identifies one of the hero's four allocatable attributes,
// in declared tie-break order.
type AttributeKind int

const (
	FightingStrength AttributeKind = iota
	OffBonus
	DefBonus
	ProductionPoints
)

var AttributeKinds = [4]AttributeKind{FightingStrength, OffBonus, DefBonus, ProductionPoints}

func (a AttributeKind) String() string {
	switch a {
	case FightingStrength:
		return "fighting_strength"
	case OffBonus:
		return "off_bonus"
	case DefBonus:
		return "def_bonus"
	case ProductionPoints:
		return "production_points"
	default:
		return "unknown"
	}
}

// AttributeConfig carries the per-attribute allocation targets the
// strategy's configuration supplies: absolute step targets to satisfy
// first, then a ratio to greedily balance the remainder toward.
type AttributeConfig struct {
	Steps [4]int     // absolute target per AttributeKind, 0 means no step target
	Ratio [4]float64 // proportion in [0,1] per AttributeKind, used once steps are met
}

// AllocateAttributesPayload spends the hero's unallocated attribute
// points.
type AllocateAttributesPayload struct {
	Points  int
	Current [4]int // current value per AttributeKind before this job runs
}

func (p *AllocateAttributesPayload) execute(ctx context.Context, d driver.Driver, cfg AttributeConfig) bool {
	if p.Points <= 0 {
		return false
	}
	plan := planAttributeAllocation(p.Points, p.Current, cfg)
	clicked := false
	for i, count := range plan {
		for n := 0; n < count; n++ {
			if d.ClickNth(ctx, ".attributePlusButton", i) {
				clicked = true
			}
		}
	}
	if !clicked {
		return false
	}
	return d.Click(ctx, ".saveAttributesButton")
}

// planAttributeAllocation spends points one at a time: first toward any
// unmet absolute step target (in declared attribute order), then greedily
// toward whichever attribute has the largest deficit against its target
// ratio of the running total, ties broken by declared order.
func planAttributeAllocation(points int, current [4]int, cfg AttributeConfig) [4]int {
	var plan [4]int
	values := current

	for points > 0 {
		steppedIdx := -1
		for i, k := range AttributeKinds {
			target := cfg.Steps[k]
			if target > 0 && values[i] < target {
				steppedIdx = i
				break
			}
		}
		if steppedIdx >= 0 {
			plan[steppedIdx]++
			values[steppedIdx]++
			points--
			continue
		}

		total := 0
		for _, v := range values {
			total += v
		}
		bestIdx := 0
		bestDeficit := -1.0
		for i := range AttributeKinds {
			deficit := cfg.Ratio[i]*float64(total+1) - float64(values[i])
			if deficit > bestDeficit {
				bestDeficit = deficit
				bestIdx = i
			}
		}
		plan[bestIdx]++
		values[bestIdx]++
		points--
	}
	return plan
}

// CollectDailyQuestsPayload collects the daily quest reward if enough
// points have been achieved.
type CollectDailyQuestsPayload struct {
	Threshold int
}

func (p *CollectDailyQuestsPayload) execute(ctx context.Context, d driver.Driver) bool {
	if !d.Click(ctx, ".dailyQuestsButton") {
		return false
	}
	achievedText := d.GetTextContent(ctx, ".dailyQuestAchievedPoints")
	var achieved int
	if _, err := fmt.Sscanf(achievedText, "%d", &achieved); err != nil || achieved < p.Threshold {
		d.Click(ctx, ".dialogCloseButton")
		return false
	}
	return d.Click(ctx, ".collectRewardsButton")
}

// CollectQuestmasterPayload sweeps every collectible reward from the
// village questmaster, across both its village-task and general-task tabs.
type CollectQuestmasterPayload struct{}

func (p *CollectQuestmasterPayload) execute(ctx context.Context, d driver.Driver, villageID string) bool {
	if err := d.NavigateToVillage(ctx, villageID); err != nil {
		return false
	}
	if !d.Click(ctx, ".questmasterButton") {
		return false
	}
	collectAnyTab(ctx, d)
	if d.Click(ctx, ".generalTasksTab") {
		collectAnyTab(ctx, d)
	}
	d.Click(ctx, ".dialogCloseButton")
	return true
}

func collectAnyTab(ctx context.Context, d driver.Driver) {
	for {
		d.ClickAll(ctx, []string{".questCollectButton"})
		if d.CatchFullClassesBySelector(ctx, ".questForwardButton") != "disabled" {
			if !d.Click(ctx, ".questForwardButton") {
				return
			}
			continue
		}
		return
	}
}

// AbandonedValleyFinder locates a coordinate to found a new village at.
// Its real implementation (scanning the map overview for an unclaimed
// valley) is out of scope; tests and the default wiring use a stub.
type AbandonedValleyFinder interface {
	FindAbandonedValley(ctx context.Context, d driver.Driver) (x, y int, ok bool)
}

// FoundNewVillagePayload sends a batch of settlers to found a new village.
type FoundNewVillagePayload struct {
	VillageName string
	Finder      AbandonedValleyFinder
}

func (p *FoundNewVillagePayload) execute(ctx context.Context, d driver.Driver, villageID string) bool {
	if err := d.NavigateToVillage(ctx, villageID); err != nil {
		return false
	}
	if !d.Click(ctx, ".mapOverviewButton") {
		return false
	}
	x, y, ok := p.Finder.FindAbandonedValley(ctx, d)
	if !ok {
		return false
	}
	if err := d.Navigate(ctx, fmt.Sprintf("/karte.php?x=%d&y=%d", x, y)); err != nil {
		return false
	}
	d.SelectOption(ctx, ".tribeSelect", "3") // Gauls
	return d.Click(ctx, ".foundVillageSubmitButton")
}

// IncreaseProductionByAdsPayload watches a video ad for each per-resource
// boost that isn't already active.
type IncreaseProductionByAdsPayload struct {
	Eligible []resources.Kind
}

func (p *IncreaseProductionByAdsPayload) execute(ctx context.Context, d driver.Driver, villageID string, ads AdTimeReader) bool {
	if err := d.NavigateToVillage(ctx, villageID); err != nil {
		return false
	}
	if err := d.Navigate(ctx, "/dorf1.php"); err != nil {
		return false
	}
	any := false
	for range p.Eligible {
		if d.Click(ctx, ".productionBoostButton") {
			watchVideo(ctx, d, ads, 30*time.Second)
			any = true
		}
	}
	return any
}
