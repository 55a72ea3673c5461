package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travian-agent/internal/resources"
)

func TestHeroInfo_SendRequest_ZeroIsRejected(t *testing.T) {
	h := NewHeroInfo(100, 0, 1, true, 0, resources.Set{Lumber: 100}, false)
	resp := h.SendRequest(resources.Zero)
	assert.Equal(t, Rejected, resp.Status)
	assert.True(t, resp.Provided.IsZero())
}

func TestHeroInfo_SendRequest_Accepted(t *testing.T) {
	h := NewHeroInfo(100, 0, 1, true, 0, resources.Set{Lumber: 1000, Clay: 1000, Iron: 1000, Crop: 1000}, false)
	resp := h.SendRequest(resources.Set{Lumber: 100, Clay: 100, Iron: 100, Crop: 100})

	assert.Equal(t, Accepted, resp.Status)
	assert.Equal(t, resources.Set{Lumber: 100, Clay: 100, Iron: 100, Crop: 100}, resp.Provided)
	// Reserved grows even on the accepted path (documented design decision).
	assert.Equal(t, resp.Provided, h.Reserved())
}

func TestHeroInfo_SendRequest_Disjoint(t *testing.T) {
	h := NewHeroInfo(100, 0, 1, true, 0, resources.Set{Iron: 100}, false)
	resp := h.SendRequest(resources.Set{Lumber: 10, Clay: 5})

	assert.Equal(t, Rejected, resp.Status)
	assert.True(t, resp.Provided.IsZero())
	assert.True(t, h.Reserved().IsZero(), "reserved must not mutate on a disjoint rejection")
}

func TestHeroInfo_SendRequest_PartiallyAccepted(t *testing.T) {
	h := NewHeroInfo(100, 0, 1, true, 0, resources.Set{Lumber: 5, Clay: 100}, false)
	resp := h.SendRequest(resources.Set{Lumber: 10, Clay: 10})

	assert.Equal(t, PartiallyAccepted, resp.Status)
	assert.Equal(t, resources.Set{Lumber: 5, Clay: 10}, resp.Provided)
	assert.Equal(t, resources.Set{Lumber: 5, Clay: 10}, h.Reserved())
}

func TestHeroInfo_SendRequest_MonotonicAcrossCalls(t *testing.T) {
	h := NewHeroInfo(100, 0, 1, true, 0, resources.Set{Lumber: 10, Clay: 10}, false)

	first := h.SendRequest(resources.Set{Lumber: 5})
	assert.Equal(t, Accepted, first.Status)
	assert.Equal(t, resources.Set{Lumber: 5}, h.Reserved())

	second := h.SendRequest(resources.Set{Lumber: 10})
	assert.Equal(t, PartiallyAccepted, second.Status)
	assert.Equal(t, resources.Set{Lumber: 5}, second.Provided)
	assert.Equal(t, resources.Set{Lumber: 10}, h.Reserved())

	assert.True(t, h.Inventory.Dominates(h.Reserved()))
}

func TestHeroInfo_CanGoOnAdventure(t *testing.T) {
	h := NewHeroInfo(21, 0, 1, true, 0, resources.Zero, false)
	assert.True(t, h.CanGoOnAdventure())

	h.Health = 20
	assert.False(t, h.CanGoOnAdventure())

	h.Health = 50
	h.Adventures = 0
	assert.False(t, h.CanGoOnAdventure())

	h.Adventures = 1
	h.IsAvailable = false
	assert.False(t, h.CanGoOnAdventure())
}
