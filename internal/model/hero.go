package model

import "travian-agent/internal/resources"

// ReservationStatus is the verdict HeroInfo.SendRequest returns for one
// planning pass's shortage request.
type ReservationStatus int

const (
	Rejected ReservationStatus = iota
	Accepted
	PartiallyAccepted
)

func (s ReservationStatus) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case PartiallyAccepted:
		return "partially_accepted"
	default:
		return "rejected"
	}
}

// ReservationResponse is the result of a HeroInfo.SendRequest call.
type ReservationResponse struct {
	Status   ReservationStatus
	Provided resources.Set
}

// HeroInfo treats the hero's inventory as a bounded, transactional resource
// pool within a single planning pass. Reserved never persists between
// passes — each pass starts from a fresh GameState.
type HeroInfo struct {
	Health                 int
	Experience             int
	Adventures             int
	IsAvailable            bool
	PointsAvailable        int
	Inventory              resources.Set
	HasDailyQuestIndicator bool
	reserved               resources.Set

	// Attributes holds the hero's four current attribute values in
	// [fighting strength, off bonus, def bonus, production points] order.
	// Zero until the scanner populates it; unused unless PointsAvailable > 0.
	Attributes [4]int
}

// NewHeroInfo constructs a HeroInfo with an empty reservation ledger.
func NewHeroInfo(health, experience, adventures int, available bool, points int, inventory resources.Set, dailyQuest bool) *HeroInfo {
	return &HeroInfo{
		Health:                 health,
		Experience:             experience,
		Adventures:             adventures,
		IsAvailable:            available,
		PointsAvailable:        points,
		Inventory:              inventory,
		HasDailyQuestIndicator: dailyQuest,
	}
}

// Reserved returns the portion of the inventory already committed this
// pass.
func (h *HeroInfo) Reserved() resources.Set {
	return h.reserved
}

// CanGoOnAdventure reports whether the hero can be sent on an adventure
// right now.
func (h *HeroInfo) CanGoOnAdventure() bool {
	return h.IsAvailable && h.Adventures > 0 && h.Health > 20
}

// SendRequest asks the hero's inventory to cover request, a single
// planned job's resource shortage.
//
// Design note: an asymmetric version of this accepted/partially-accepted
// split is tempting — only reserving on the partial path — but that lets a
// job whose support the hero fully committed to have that same inventory
// handed out again to a second job planned later in the same pass. Both
// branches reserve, deliberately, for symmetry. See DESIGN.md.
func (h *HeroInfo) SendRequest(request resources.Set) ReservationResponse {
	if request.IsZero() {
		return ReservationResponse{Status: Rejected, Provided: resources.Zero}
	}

	available := h.Inventory.Sub(h.reserved)

	if available.Dominates(request) {
		h.reserved = h.reserved.Add(request)
		return ReservationResponse{Status: Accepted, Provided: request}
	}

	if resources.IsDisjoint(available, request) {
		return ReservationResponse{Status: Rejected, Provided: resources.Zero}
	}

	provided := resources.ProvideUpTo(available, request)
	h.reserved = h.reserved.Add(provided)
	return ReservationResponse{Status: PartiallyAccepted, Provided: provided}
}
