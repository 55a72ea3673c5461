// Package strategy implements the policy layer: given a GameState it
// decides which Jobs to plan this pass. A Strategy never touches the
// driver directly — it only reads the GameState and the cost calculator
// and returns job.Job values for the scheduler to queue.
package strategy

import (
	"time"

	"travian-agent/internal/job"
	"travian-agent/internal/model"
)

// Strategy consumes one GameState snapshot and produces the jobs the
// executor should schedule this pass.
type Strategy interface {
	Plan(state *model.GameState, now time.Time) []*job.Job
}

// Config is the policy-tunable surface loaded from the agent's YAML
// configuration (internal/config).
type Config struct {
	MinimumStorageCapacityHours float64
	DailyQuestThreshold         int
	HeroMinimalHealth           int
	HeroIncreaseDifficulty      bool
	HeroSupportVillages         bool
	Attributes                  job.AttributeConfig

	// DelayCeilingHours caps the scheduling offset: a shortage in a kind with
	// zero hourly production, or one that would take longer than the ceiling
	// to cover, is scheduled at the ceiling. Only a non-positive ceiling with
	// a shortage in a zero-production kind makes the candidate infeasible.
	DelayCeilingHours float64
}

// DefaultConfig mirrors the defaults documented for the configuration
// surface when a field is left unset in the YAML file.
func DefaultConfig() Config {
	return Config{
		MinimumStorageCapacityHours: 24,
		DailyQuestThreshold:         50,
		HeroMinimalHealth:           50,
		DelayCeilingHours:           72,
		Attributes: job.AttributeConfig{
			Ratio: [4]float64{0.25, 0.25, 0.25, 0.25},
		},
	}
}
