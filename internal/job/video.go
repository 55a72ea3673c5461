package job

import (
	"context"
	"time"

	"travian-agent/internal/driver"
)

// AdTimeReader reads the remaining seconds of an in-flight video ad from
// the iframe HTML the driver hands back. A zero or unparseable value means
// "unavailable" — callers fall back to the normal path.
type AdTimeReader interface {
	ScanAdvertiseRemainingTime(iframeHTML string) (seconds int, ok bool)
}

const (
	videoButtonSelector  = ".videoFeatureButton"
	videoConfirmSelector = ".dialogButtonOk"
	videoAreaSelector    = "#videoArea"
	videoCancelSelector  = ".videoCancelButton"
	videoIframeSelector  = "#videoArea iframe"
)

// watchVideo implements the shared "watch an in-game video ad" subroutine:
// click the video button, confirm the dialog, wait for the video area,
// read the ad's remaining time from its iframe, and either wait it out or
// cancel early if it would exceed budget. Returns true iff a video was
// watched to completion.
func watchVideo(ctx context.Context, d driver.Driver, ads AdTimeReader, budget time.Duration) bool {
	if !d.IsVisible(ctx, videoButtonSelector) {
		return false
	}
	if !d.Click(ctx, videoButtonSelector) {
		return false
	}
	d.WaitForSelectorAndClick(ctx, videoConfirmSelector, driver.DefaultSelectorTimeout)
	if !d.WaitForSelector(ctx, videoAreaSelector, driver.DefaultSelectorTimeout) {
		return false
	}

	html, err := d.GetPageSource(ctx, videoIframeSelector)
	if err != nil {
		return false
	}
	remaining, ok := ads.ScanAdvertiseRemainingTime(html)
	if !ok || remaining <= 0 {
		d.Click(ctx, videoCancelSelector)
		return false
	}
	if time.Duration(remaining)*time.Second > budget {
		d.Click(ctx, videoCancelSelector)
		return false
	}

	d.Sleep(ctx, time.Duration(remaining)*time.Second)
	return true
}
