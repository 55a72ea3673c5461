package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travian-agent/internal/resources"
)

func TestGameState_GlobalResources(t *testing.T) {
	v1 := newTestVillage()
	v1.Resources = resources.Set{Lumber: 10}
	v2 := newTestVillage()
	v2.ID = "v2"
	v2.Resources = resources.Set{Lumber: 5, Clay: 20}

	g := &GameState{
		Villages: []*Village{v1, v2},
		Hero:     NewHeroInfo(100, 0, 0, true, 0, resources.Set{Iron: 7}, false),
	}

	assert.Equal(t, resources.Set{Lumber: 15, Clay: 20, Iron: 7}, g.GlobalResources())
}

func TestHasGlobalResourcePreference_NoPreferenceWhenBalanced(t *testing.T) {
	_, has := HasGlobalResourcePreference(resources.Set{Lumber: 100, Clay: 98, Iron: 95, Crop: 100})
	assert.False(t, has)
}

func TestHasGlobalResourcePreference_PrefersScarceKind(t *testing.T) {
	kind, has := HasGlobalResourcePreference(resources.Set{Lumber: 1000, Clay: 100, Iron: 900, Crop: 950})
	assert.True(t, has)
	assert.Equal(t, resources.Clay, kind)
}

func TestGameState_StructuralHash_SameForEqualState(t *testing.T) {
	mk := func() *GameState {
		return &GameState{
			PassID:   "pass-1",
			Villages: []*Village{newTestVillage()},
			Hero:     NewHeroInfo(100, 0, 0, true, 0, resources.Set{}, false),
		}
	}
	a, b := mk(), mk()
	a.PassID = "pass-a"
	b.PassID = "pass-b"

	ha, err := a.StructuralHash()
	require.NoError(t, err)
	hb, err := b.StructuralHash()
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "PassID must not affect structural equality")
}
