package model

// Account holds server-wide and player-wide values.
type Account struct {
	ServerSpeed                      float64
	WhenBeginnersProtectionExpiresAt int64 // unix seconds
	CulturePoints                    *int
	VillageSlots                     *int
	ProductionBoostActive            ResourceBoostFlags
}

// ResourceBoostFlags tracks whether the per-resource "watch an ad, get a
// temporary production boost" flag is currently active for each kind.
type ResourceBoostFlags struct {
	Lumber bool
	Clay   bool
	Iron   bool
	Crop   bool
}

// AllActive reports whether every one of the four boosts is active.
func (f ResourceBoostFlags) AllActive() bool {
	return f.Lumber && f.Clay && f.Iron && f.Crop
}
