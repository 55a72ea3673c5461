// Package drivertest provides an in-memory Driver fake for exercising jobs
// and the executor without a real browser.
package drivertest

import (
	"context"
	"time"

	"travian-agent/internal/resources"
)

// Fake is a scriptable, call-recording Driver implementation.
type Fake struct {
	HTMLByPage     map[string]string
	VillageHTML    map[string][2]string // villageID -> (dorf1, dorf2)
	VisibleByCSS   map[string]bool
	TextBySelector map[string]string
	ClassesBySelector map[string]string

	ClickResults     map[string]bool
	WaitForSelectorResults map[string]bool

	TrainCalls    []TrainCall
	TransferCalls []resources.Set
	MerchantCalls []MerchantCall
	Clicks        []string
	Navigations   []string

	StopCalled bool
	FailStop   bool
}

type TrainCall struct {
	VillageID, BuildingID, TroopType string
	Quantity                         int
}

type MerchantCall struct {
	OriginVillageID, MarketBuildingID string
	TargetX, TargetY                 int
	Amount                            resources.Set
}

// New constructs an empty, all-zero-valued Fake.
func New() *Fake {
	return &Fake{
		HTMLByPage:             map[string]string{},
		VillageHTML:            map[string][2]string{},
		VisibleByCSS:           map[string]bool{},
		TextBySelector:         map[string]string{},
		ClassesBySelector:      map[string]string{},
		ClickResults:           map[string]bool{},
		WaitForSelectorResults: map[string]bool{},
	}
}

func (f *Fake) Navigate(_ context.Context, path string) error {
	f.Navigations = append(f.Navigations, path)
	return nil
}

func (f *Fake) NavigateToVillage(_ context.Context, villageID string) error {
	f.Navigations = append(f.Navigations, "village:"+villageID)
	return nil
}

func (f *Fake) Stop() error {
	f.StopCalled = true
	if f.FailStop {
		return context.DeadlineExceeded
	}
	return nil
}

func (f *Fake) GetHTML(_ context.Context, pageName string) (string, error) {
	return f.HTMLByPage[pageName], nil
}

func (f *Fake) GetVillageInnerHTML(_ context.Context, villageID string) (string, string, error) {
	pair := f.VillageHTML[villageID]
	return pair[0], pair[1], nil
}

func (f *Fake) GetPageSource(_ context.Context, iframeSelector string) (string, error) {
	return f.HTMLByPage[iframeSelector], nil
}

func (f *Fake) Click(_ context.Context, selector string) bool {
	f.Clicks = append(f.Clicks, selector)
	if v, ok := f.ClickResults[selector]; ok {
		return v
	}
	return true
}

func (f *Fake) ClickFirst(ctx context.Context, selectors []string) bool {
	for _, s := range selectors {
		if f.Click(ctx, s) {
			return true
		}
	}
	return false
}

func (f *Fake) ClickAll(ctx context.Context, selectors []string) int {
	n := 0
	for _, s := range selectors {
		if f.Click(ctx, s) {
			n++
		}
	}
	return n
}

func (f *Fake) ClickNth(ctx context.Context, selector string, index int) bool {
	return f.Click(ctx, selector)
}

func (f *Fake) WaitForLoadState(_ context.Context, _ time.Duration) {}

func (f *Fake) WaitForSelector(_ context.Context, selector string, _ time.Duration) bool {
	if v, ok := f.WaitForSelectorResults[selector]; ok {
		return v
	}
	return true
}

func (f *Fake) WaitForSelectorAndClick(ctx context.Context, selector string, timeout time.Duration) {
	if f.WaitForSelector(ctx, selector, timeout) {
		f.Click(ctx, selector)
	}
}

func (f *Fake) CurrentURL(_ context.Context) string { return "" }

func (f *Fake) IsVisible(_ context.Context, selector string) bool {
	return f.VisibleByCSS[selector]
}

func (f *Fake) GetTextContent(_ context.Context, selector string) string {
	return f.TextBySelector[selector]
}

func (f *Fake) CatchFullClassesBySelector(_ context.Context, selector string) string {
	return f.ClassesBySelector[selector]
}

func (f *Fake) TransferResourcesFromHero(_ context.Context, amount resources.Set) error {
	f.TransferCalls = append(f.TransferCalls, amount)
	return nil
}

func (f *Fake) PressKey(_ context.Context, _ string) {}

func (f *Fake) SelectOption(_ context.Context, _, _ string) {}

func (f *Fake) SendMerchant(_ context.Context, originVillageID, marketBuildingID string, targetX, targetY int, amount resources.Set) error {
	f.MerchantCalls = append(f.MerchantCalls, MerchantCall{originVillageID, marketBuildingID, targetX, targetY, amount})
	return nil
}

func (f *Fake) TrainTroops(_ context.Context, villageID, buildingID, troopType string, quantity int) error {
	f.TrainCalls = append(f.TrainCalls, TrainCall{villageID, buildingID, troopType, quantity})
	return nil
}

func (f *Fake) Sleep(_ context.Context, _ time.Duration) {}
