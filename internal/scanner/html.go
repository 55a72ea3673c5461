package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"travian-agent/internal/driver"
	agenterrors "travian-agent/internal/errors"
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// HTMLScanner implements Scanner against goquery-parsed DOM trees, with a
// per-pass Cache to avoid re-fetching a page two scan methods both need.
type HTMLScanner struct {
	cache *Cache
}

// NewHTMLScanner constructs a Scanner backed by a fresh per-pass cache.
func NewHTMLScanner() *HTMLScanner {
	return &HTMLScanner{cache: NewCache()}
}

func parseDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Scan assembles a full GameState, fetching every page the pass needs
// through d and caching dorf1/dorf2 HTML per village so scanStockBar and
// scanProduction don't each force a round trip.
func (s *HTMLScanner) Scan(ctx context.Context, d driver.Driver, passID string) (*model.GameState, error) {
	s.cache.Reset()

	dorf1, err := s.getHTML(ctx, d, "dorf1")
	if err != nil {
		return nil, &agenterrors.DriverError{Op: "GetHTML(dorf1)", Cause: err}
	}

	identities, err := s.ScanVillageList(dorf1)
	if err != nil {
		return nil, &agenterrors.ParseError{Field: "villageList", Cause: err}
	}

	account, err := s.ScanAccountInfo(dorf1)
	if err != nil {
		return nil, &agenterrors.ParseError{Field: "accountInfo", Cause: err}
	}

	var villages []*model.Village
	var scanErr error
	for _, identity := range identities {
		v1HTML, v2HTML, err := s.getVillageInnerHTML(ctx, d, identity.ID)
		if err != nil {
			scanErr = multierr.Append(scanErr, &agenterrors.DriverError{Op: "GetVillageInnerHTML", Cause: err})
			continue
		}
		village, err := s.ScanVillage(identity, v1HTML, v2HTML)
		if err != nil {
			scanErr = multierr.Append(scanErr, &agenterrors.ParseError{Village: identity.ID, Cause: err})
			continue
		}
		villages = append(villages, village)
	}

	heroAttrsHTML, err := s.getHTML(ctx, d, "hero/attributes")
	if err != nil {
		return nil, &agenterrors.DriverError{Op: "GetHTML(hero/attributes)", Cause: err}
	}
	heroInventoryHTML, err := s.getHTML(ctx, d, "hero/inventory")
	if err != nil {
		return nil, &agenterrors.DriverError{Op: "GetHTML(hero/inventory)", Cause: err}
	}
	hero, err := s.ScanHeroInfo(heroAttrsHTML, heroInventoryHTML)
	if err != nil {
		scanErr = multierr.Append(scanErr, &agenterrors.ParseError{Field: "heroInfo", Cause: err})
	}

	return &model.GameState{
		PassID:   passID,
		Account:  account,
		Villages: villages,
		Hero:     hero,
	}, scanErr
}

// getHTML memoizes d.GetHTML by page name for the rest of the current pass,
// so a page fetched once here (dorf1, hero/attributes, ...) never forces a
// second round trip if another scan method needs it again before Reset.
func (s *HTMLScanner) getHTML(ctx context.Context, d driver.Driver, pageName string) (string, error) {
	if html, ok := s.cache.Get(pageName); ok {
		return html, nil
	}
	html, err := d.GetHTML(ctx, pageName)
	if err != nil {
		return "", err
	}
	s.cache.Set(pageName, html)
	return html, nil
}

// getVillageInnerHTML memoizes d.GetVillageInnerHTML per village, caching
// the dorf1/dorf2 pair under village-scoped keys. Those keys are distinct
// from getHTML's page-name keys, so the two caches never serve each other.
func (s *HTMLScanner) getVillageInnerHTML(ctx context.Context, d driver.Driver, villageID string) (dorf1HTML, dorf2HTML string, err error) {
	dorf1Key := "village/" + villageID + "/dorf1"
	dorf2Key := "village/" + villageID + "/dorf2"

	cachedDorf1, ok1 := s.cache.Get(dorf1Key)
	cachedDorf2, ok2 := s.cache.Get(dorf2Key)
	if ok1 && ok2 {
		return cachedDorf1, cachedDorf2, nil
	}

	dorf1HTML, dorf2HTML, err = d.GetVillageInnerHTML(ctx, villageID)
	if err != nil {
		return "", "", err
	}
	s.cache.Set(dorf1Key, dorf1HTML)
	s.cache.Set(dorf2Key, dorf2HTML)
	return dorf1HTML, dorf2HTML, nil
}

// ScanVillageList reads the sidebar village list.
func (s *HTMLScanner) ScanVillageList(dorf1HTML string) ([]VillageIdentity, error) {
	doc, err := parseDoc(dorf1HTML)
	if err != nil {
		return nil, err
	}
	var out []VillageIdentity
	doc.Find("a.villageLink").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("data-did")
		if id == "" {
			return
		}
		name := strings.TrimSpace(sel.Find(".name").Text())
		x, _ := parseInt(sel.AttrOr("data-x", ""))
		y, _ := parseInt(sel.AttrOr("data-y", ""))
		out = append(out, VillageIdentity{ID: id, Name: name, X: x, Y: y})
	})
	return out, nil
}

// ScanAccountInfo reads server-wide and player-wide values embedded in
// dorf1.
func (s *HTMLScanner) ScanAccountInfo(dorf1HTML string) (model.Account, error) {
	doc, err := parseDoc(dorf1HTML)
	if err != nil {
		return model.Account{}, err
	}

	root := doc.Find("[data-server-speed]").First()
	speed, ok := parseFloat(root.AttrOr("data-server-speed", "1"))
	if !ok {
		speed = 1
	}
	expires, _ := parseInt(root.AttrOr("data-protection-expires", "0"))

	var culturePoints, villageSlots *int
	if cp, ok := parseInt(doc.Find(".culturePoints .value").Text()); ok {
		culturePoints = &cp
	}
	if vs, ok := parseInt(doc.Find(".villageSlots .value").Text()); ok {
		villageSlots = &vs
	}

	flags := model.ResourceBoostFlags{
		Lumber: doc.Find(".productionBoost.lumber.active").Length() > 0,
		Clay:   doc.Find(".productionBoost.clay.active").Length() > 0,
		Iron:   doc.Find(".productionBoost.iron.active").Length() > 0,
		Crop:   doc.Find(".productionBoost.crop.active").Length() > 0,
	}

	return model.Account{
		ServerSpeed:                      speed,
		WhenBeginnersProtectionExpiresAt: int64(expires),
		CulturePoints:                    culturePoints,
		VillageSlots:                     villageSlots,
		ProductionBoostActive:            flags,
	}, nil
}

// ScanVillage assembles a full Village from its identity plus dorf1/dorf2
// HTML.
func (s *HTMLScanner) ScanVillage(identity VillageIdentity, dorf1HTML, dorf2HTML string) (*model.Village, error) {
	stock, err := s.ScanStockBar(dorf1HTML)
	if err != nil {
		return nil, fmt.Errorf("stock bar: %w", err)
	}
	hourly, freeCropHourly, err := s.ScanProduction(dorf1HTML)
	if err != nil {
		return nil, fmt.Errorf("production: %w", err)
	}
	pits, err := s.ScanResourceFields(dorf1HTML)
	if err != nil {
		return nil, fmt.Errorf("resource fields: %w", err)
	}
	buildings, err := s.ScanVillageCenter(dorf2HTML)
	if err != nil {
		return nil, fmt.Errorf("village center: %w", err)
	}
	tribe, err := s.IdentifyTribe(dorf2HTML)
	if err != nil {
		return nil, fmt.Errorf("tribe: %w", err)
	}

	doc1, err := parseDoc(dorf1HTML)
	if err != nil {
		return nil, err
	}
	parallelAllowed := tribe.HasIndependentQueueSlots()
	queue, err := s.ScanBuildingQueue(dorf1HTML, parallelAllowed)
	if err != nil {
		return nil, fmt.Errorf("building queue: %w", err)
	}

	troops, err := s.ScanTroops(dorf1HTML)
	if err != nil {
		return nil, fmt.Errorf("troops: %w", err)
	}

	incoming, err := s.ScanIncomingAttacks(dorf1HTML)
	if err != nil {
		return nil, fmt.Errorf("incoming attacks: %w", err)
	}

	return &model.Village{
		ID:                   identity.ID,
		Name:                 identity.Name,
		X:                    identity.X,
		Y:                    identity.Y,
		Tribe:                tribe,
		Resources:            stock.Resources,
		FreeCrop:             stock.FreeCrop,
		WarehouseCapacity:    stock.WarehouseCapacity,
		GranaryCapacity:      stock.GranaryCapacity,
		HourlyProduction:     hourly,
		FreeCropHourly:       freeCropHourly,
		Pits:                 pits,
		Buildings:            buildings,
		BuildingQueue:        queue,
		IsUpgradedToCity:     doc1.Find(".villageStatus.city").Length() > 0,
		IsPermanentCapital:   doc1.Find(".villageStatus.capital").Length() > 0,
		HasQuestMasterReward: doc1.Find(".questmasterReward.available").Length() > 0,
		IsUnderAttack:        incoming.Count > 0,
		IncomingAttackCount:  incoming.Count,
		NextAttackSeconds:    incoming.NextAttackSeconds,
		Troops:               troops,
	}, nil
}

// ScanStockBar reads the resource bar shown on every page.
func (s *HTMLScanner) ScanStockBar(html string) (StockBar, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return StockBar{}, err
	}
	get := func(selector string) int {
		v, _ := parseInt(doc.Find(selector).Text())
		return v
	}
	return StockBar{
		Resources: resources.Set{
			Lumber: get("#l1"),
			Clay:   get("#l2"),
			Iron:   get("#l3"),
			Crop:   get("#l4"),
		},
		FreeCrop:          get("#stockBarFreeCrop"),
		WarehouseCapacity: get("#stockBarWarehouse .capacity"),
		GranaryCapacity:   get("#stockBarGranary .capacity"),
	}, nil
}

// ScanProduction reads the hourly-production figures from the text of
// dorf1's .production elements.
func (s *HTMLScanner) ScanProduction(html string) (resources.Set, int, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return resources.Zero, 0, err
	}
	get := func(selector string) int {
		v, _ := parseInt(doc.Find(selector).Text())
		return v
	}
	hourly := resources.Set{
		Lumber: get(".production .lumber"),
		Clay:   get(".production .clay"),
		Iron:   get(".production .iron"),
		Crop:   get(".production .crop"),
	}
	return hourly, get(".production .freeCrop"), nil
}

// ScanResourceFields reads the 18 outside field slots.
func (s *HTMLScanner) ScanResourceFields(html string) ([]model.ResourcePit, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	var out []model.ResourcePit
	doc.Find("#resourceFieldContainer .buildingSlot").Each(func(_ int, sel *goquery.Selection) {
		classes := sel.AttrOr("class", "")
		slotID, ok := extractSlotID(classes)
		if !ok {
			return
		}
		gid, ok := extractGID(classes)
		if !ok || !model.IsResourcePit(gid) {
			return
		}
		level, _ := extractLevel(classes)
		kind, found := lo.Find(model.ResourcePitKinds[:], func(k model.BuildingKind) bool { return k.GID == gid })
		if !found {
			return
		}
		out = append(out, model.ResourcePit{ID: slotID, Kind: kind, Level: level})
	})
	return out, nil
}

// ScanVillageCenter reads the center-slot buildings from dorf2.
func (s *HTMLScanner) ScanVillageCenter(html string) ([]model.Building, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	var out []model.Building
	doc.Find("#villageContent .buildingSlot").Each(func(_ int, sel *goquery.Selection) {
		classes := sel.AttrOr("class", "")
		slotID, ok := extractSlotID(classes)
		if !ok {
			return
		}
		gid, ok := extractGID(classes)
		if !ok || model.IsResourcePit(gid) {
			return
		}
		level, _ := extractLevel(classes)
		name := strings.TrimSpace(sel.Find(".name").Text())
		out = append(out, model.Building{
			ID:    slotID,
			Kind:  model.BuildingKind{GID: gid, Name: name, MaxLevel: 20},
			Level: level,
		})
	})
	return out, nil
}

// ScanBuildingQueue reads the in-progress construction queue.
func (s *HTMLScanner) ScanBuildingQueue(html string, parallelAllowed bool) (*model.BuildingQueue, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	tribe := model.TribeUnknown
	if parallelAllowed {
		tribe = model.TribeRomans
	}
	queue := model.NewBuildingQueue(tribe)

	doc.Find("#buildingQueue .entry").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".name").Text())
		level, _ := parseInt(sel.Find(".level").Text())
		remaining, _ := parseHMSSeconds(sel.Find(".timer").Text())
		jobID := sel.AttrOr("data-job-id", "")
		key := model.QueueKeyForGID(extractQueueGID(sel))
		queue.AddJob(key, model.BuildingJob{
			BuildingName:         name,
			TargetLevel:          level,
			TimeRemainingSeconds: remaining,
			JobID:                jobID,
		})
	})
	return queue, nil
}

func extractQueueGID(sel *goquery.Selection) int {
	gid, _ := extractGID(sel.AttrOr("class", ""))
	return gid
}

// ScanHeroInfo reads the hero's attribute and inventory pages.
func (s *HTMLScanner) ScanHeroInfo(heroAttrsHTML, inventoryHTML string) (*model.HeroInfo, error) {
	attrsDoc, err := parseDoc(heroAttrsHTML)
	if err != nil {
		return nil, err
	}
	invDoc, err := parseDoc(inventoryHTML)
	if err != nil {
		return nil, err
	}

	health, _ := parseInt(attrsDoc.Find(".heroHealth .value").Text())
	experience, _ := parseInt(attrsDoc.Find(".heroExperience .value").Text())
	adventures, _ := parseInt(attrsDoc.Find(".heroAdventureCount").Text())
	available := attrsDoc.Find(".heroStatus.home").Length() > 0
	points, _ := parseInt(attrsDoc.Find(".heroPointsAvailable").Text())
	dailyQuest := attrsDoc.Find(".heroDailyQuest.indicator").Length() > 0

	get := func(selector string) int {
		v, _ := parseInt(invDoc.Find(selector).Text())
		return v
	}
	inventory := resources.Set{
		Lumber: get(".heroInventory .lumber"),
		Clay:   get(".heroInventory .clay"),
		Iron:   get(".heroInventory .iron"),
		Crop:   get(".heroInventory .crop"),
	}

	hero := model.NewHeroInfo(health, experience, adventures, available, points, inventory, dailyQuest)
	fightingStrength, _ := parseInt(attrsDoc.Find(".heroAttribute.fightingStrength .value").Text())
	offBonus, _ := parseInt(attrsDoc.Find(".heroAttribute.offBonus .value").Text())
	defBonus, _ := parseInt(attrsDoc.Find(".heroAttribute.defBonus .value").Text())
	productionPoints, _ := parseInt(attrsDoc.Find(".heroAttribute.productionPoints .value").Text())
	hero.Attributes = [4]int{fightingStrength, offBonus, defBonus, productionPoints}

	return hero, nil
}

// ScanTroops reads the per-village troop counts from the village stats
// page, keyed by unit name.
func (s *HTMLScanner) ScanTroops(html string) (map[string]int, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	troops := map[string]int{}
	doc.Find("#troops .troopRow").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".unitName").Text())
		count, ok := parseInt(sel.Find(".unitCount").Text())
		if name == "" || !ok {
			return
		}
		troops[name] = count
	})
	return troops, nil
}

// IsRewardAvailable reports whether dorf1 shows a pending daily-quest or
// other collectible reward indicator.
func (s *HTMLScanner) IsRewardAvailable(html string) bool {
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	return doc.Find(".rewardIndicator.available").Length() > 0
}

// IsDailyQuestIndicator reports whether the navigation fragment shows an
// unread daily-quest indicator.
func (s *HTMLScanner) IsDailyQuestIndicator(navFragment string) bool {
	doc, err := parseDoc(navFragment)
	if err != nil {
		return false
	}
	return doc.Find(".dailyQuestIndicator.unread").Length() > 0
}

// ScanAdvertiseRemainingTime reads the remaining-seconds counter from a
// video ad's iframe. A zero or missing counter means "unavailable".
func (s *HTMLScanner) ScanAdvertiseRemainingTime(iframeHTML string) (int, bool) {
	doc, err := parseDoc(iframeHTML)
	if err != nil {
		return 0, false
	}
	text := doc.Find(".adRemainingTime").Text()
	seconds, ok := parseInt(text)
	if !ok || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

// ScanIncomingAttacks reads the movements overview for incoming attack
// indicators.
func (s *HTMLScanner) ScanIncomingAttacks(movementsHTML string) (IncomingAttacks, error) {
	doc, err := parseDoc(movementsHTML)
	if err != nil {
		return IncomingAttacks{}, err
	}
	count := doc.Find(".movement.incomingAttack").Length()
	var next *int
	if count > 0 {
		if seconds, ok := parseHMSSeconds(doc.Find(".movement.incomingAttack").First().Find(".timer").Text()); ok {
			next = &seconds
		}
	}
	return IncomingAttacks{Count: count, NextAttackSeconds: next}, nil
}

// IdentifyTribe reads the village's tribe from dorf2's body class.
func (s *HTMLScanner) IdentifyTribe(dorf2HTML string) (model.Tribe, error) {
	doc, err := parseDoc(dorf2HTML)
	if err != nil {
		return model.TribeUnknown, err
	}
	classes := doc.Find("body").AttrOr("class", "")
	switch {
	case strings.Contains(classes, "tribe1"):
		return model.TribeRomans, nil
	case strings.Contains(classes, "tribe2"):
		return model.TribeTeutons, nil
	case strings.Contains(classes, "tribe3"):
		return model.TribeGauls, nil
	case strings.Contains(classes, "tribe4"):
		return model.TribeSpartans, nil
	case strings.Contains(classes, "tribe5"):
		return model.TribeNors, nil
	case strings.Contains(classes, "tribe6"):
		return model.TribeHuns, nil
	case strings.Contains(classes, "tribe7"):
		return model.TribeEgyptians, nil
	default:
		return model.TribeUnknown, nil
	}
}
