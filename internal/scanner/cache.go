package scanner

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// passTTL bounds how long a cached page can outlive the pass that fetched
// it, in case Reset is not called. It is a safety net, not
// the primary invalidation path — Reset is.
const passTTL = 5 * time.Minute

const cleanupInterval = 10 * time.Minute

// Cache memoizes driver.GetHTML/GetVillageInnerHTML results for the
// duration of one scan pass, so two Scanner calls that both need dorf1
// (e.g. ScanStockBar and ScanProduction) don't force a second round trip
// to the browser.
type Cache struct {
	c *gocache.Cache
}

// NewCache constructs an empty per-pass HTML cache.
func NewCache() *Cache {
	return &Cache{c: gocache.New(passTTL, cleanupInterval)}
}

// Get returns the cached HTML for key, if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Set stores html under key for the remainder of the current pass.
func (c *Cache) Set(key, html string) {
	c.c.SetDefault(key, html)
}

// Reset clears every cached page. HTMLScanner.Scan calls it once per pass,
// at the start of each fresh scan.
func (c *Cache) Reset() {
	c.c.Flush()
}
