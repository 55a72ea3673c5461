// Package driver defines the capability interface jobs and the executor
// use to dispatch browser actions. The headless browser and CSS-selector
// click/type mechanics are deliberately out of scope here — this package
// only fixes the contract. Tests exercise the core against an in-memory
// fake implementing this interface instead of a real browser.
package driver

import (
	"context"
	"time"

	"travian-agent/internal/resources"
)

// Driver is the narrow capability surface jobs and the Scanner's HTML
// fetch path depend on. No job may retain a Driver handle past its
// Execute call returns.
type Driver interface {
	Navigate(ctx context.Context, path string) error
	NavigateToVillage(ctx context.Context, villageID string) error
	Stop() error

	GetHTML(ctx context.Context, pageName string) (string, error)
	GetVillageInnerHTML(ctx context.Context, villageID string) (dorf1HTML, dorf2HTML string, err error)
	GetPageSource(ctx context.Context, iframeSelector string) (string, error)

	Click(ctx context.Context, selector string) bool
	ClickFirst(ctx context.Context, selectors []string) bool
	ClickAll(ctx context.Context, selectors []string) int
	ClickNth(ctx context.Context, selector string, index int) bool

	WaitForLoadState(ctx context.Context, timeout time.Duration)
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) bool
	WaitForSelectorAndClick(ctx context.Context, selector string, timeout time.Duration)

	CurrentURL(ctx context.Context) string
	IsVisible(ctx context.Context, selector string) bool
	GetTextContent(ctx context.Context, selector string) string
	CatchFullClassesBySelector(ctx context.Context, selector string) string

	TransferResourcesFromHero(ctx context.Context, amount resources.Set) error
	PressKey(ctx context.Context, key string)
	SelectOption(ctx context.Context, selector, value string)
	SendMerchant(ctx context.Context, originVillageID, marketBuildingID string, targetX, targetY int, amount resources.Set) error
	TrainTroops(ctx context.Context, villageID, buildingID, troopType string, quantity int) error

	Sleep(ctx context.Context, d time.Duration)
}

// DefaultSelectorTimeout is the default timeout driver primitives apply
// when the caller doesn't specify one.
const DefaultSelectorTimeout = 3 * time.Second
