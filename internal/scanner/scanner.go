// Package scanner turns rendered game HTML into the typed domain model:
// the only place in the agent that knows about CSS selectors and DOM
// class-token conventions. Every method except Scan is a pure function of
// its HTML input; Scan fetches the pages it needs through the Driver.
package scanner

import (
	"context"

	"travian-agent/internal/driver"
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// VillageIdentity is the minimal per-village record scanVillageList
// produces; every other scan method is keyed off one of these.
type VillageIdentity struct {
	ID   string
	Name string
	X, Y int
}

// StockBar is the parsed content of the resource bar shown on every page.
type StockBar struct {
	Resources         resources.Set
	FreeCrop          int
	WarehouseCapacity int
	GranaryCapacity   int
}

// IncomingAttacks summarizes the movements overview for one village.
type IncomingAttacks struct {
	Count             int
	NextAttackSeconds *int
}

// Scanner is the capability interface the strategy's caller uses to
// convert driver-fetched HTML into a GameState. Implementations must
// tolerate malformed or partial HTML on a per-village basis: a parse
// failure for one village must not abort the pass for the rest.
type Scanner interface {
	// Scan drives the driver to fetch every page one pass needs and
	// assembles a complete GameState. Per-village parse failures are
	// collected and returned as a single aggregated error alongside a
	// GameState that omits only the villages that failed.
	Scan(ctx context.Context, d driver.Driver, passID string) (*model.GameState, error)

	ScanVillageList(dorf1HTML string) ([]VillageIdentity, error)
	ScanAccountInfo(dorf1HTML string) (model.Account, error)
	ScanVillage(identity VillageIdentity, dorf1HTML, dorf2HTML string) (*model.Village, error)
	ScanStockBar(html string) (StockBar, error)
	ScanProduction(html string) (hourly resources.Set, freeCropHourly int, err error)
	ScanResourceFields(html string) ([]model.ResourcePit, error)
	ScanVillageCenter(html string) ([]model.Building, error)
	ScanBuildingQueue(html string, parallelAllowed bool) (*model.BuildingQueue, error)
	ScanHeroInfo(heroAttrsHTML, inventoryHTML string) (*model.HeroInfo, error)
	ScanTroops(html string) (map[string]int, error)
	IsRewardAvailable(html string) bool
	IsDailyQuestIndicator(navFragment string) bool
	ScanAdvertiseRemainingTime(iframeHTML string) (seconds int, ok bool)
	ScanIncomingAttacks(movementsHTML string) (IncomingAttacks, error)
	IdentifyTribe(dorf2HTML string) (model.Tribe, error)
}
