// Package config loads the agent's YAML configuration file: driver
// connection details, the chosen strategy, and the policy knobs strategy.Config
// exposes. Loading happens once at startup, never during the run loop.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"travian-agent/internal/job"
	"travian-agent/internal/strategy"
)

// AttributesConfig mirrors the YAML mapping keyed by attribute name rather
// than the job package's positional [4]float64/[4]int arrays.
type AttributesConfig struct {
	FightingStrength float64 `yaml:"fighting-strength"`
	OffBonus         float64 `yaml:"off-bonus"`
	DefBonus         float64 `yaml:"def-bonus"`
	ProductionPoints float64 `yaml:"production-points"`
}

// HeroAdventuresConfig is the `hero.adventures` YAML block.
type HeroAdventuresConfig struct {
	MinimalHealth      int  `yaml:"minimal-health"`
	IncreaseDifficulty bool `yaml:"increase-difficulty"`
}

// HeroResourcesConfig is the `hero.resources` YAML block.
type HeroResourcesConfig struct {
	SupportVillages bool             `yaml:"support-villages"`
	AttributesRatio AttributesConfig `yaml:"attributes-ratio"`
	AttributesSteps AttributesConfig `yaml:"attributes-steps"`
}

// HeroConfig is the `hero` YAML block.
type HeroConfig struct {
	Adventures HeroAdventuresConfig `yaml:"adventures"`
	Resources  HeroResourcesConfig  `yaml:"resources"`
}

// Config is the full YAML configuration surface.
type Config struct {
	ServerURL    string `yaml:"server_url"`
	UserLogin    string `yaml:"user_login"`
	UserPassword string `yaml:"user_password"`
	Headless     bool   `yaml:"headless"`

	Speed    float64 `yaml:"speed"`
	Strategy string  `yaml:"strategy"`

	MinimumStorageCapacityInHours float64 `yaml:"minimum_storage_capacity_in_hours"`
	DailyQuestThreshold           int     `yaml:"daily_quest_threshold"`

	Hero HeroConfig `yaml:"hero"`

	LogLevel string `yaml:"log_level"`
}

const (
	StrategyBalancedEconomicGrowth = "balanced_economic_growth"
	StrategyDefendArmy             = "defend_army"

	configFileName = "config.yaml"
)

func defaults() Config {
	return Config{
		Headless:                      true,
		Speed:                         1,
		Strategy:                      StrategyBalancedEconomicGrowth,
		MinimumStorageCapacityInHours: 24,
		DailyQuestThreshold:           50,
		Hero: HeroConfig{
			Adventures: HeroAdventuresConfig{MinimalHealth: 50},
			Resources: HeroResourcesConfig{
				AttributesRatio: AttributesConfig{
					FightingStrength: 25, OffBonus: 25, DefBonus: 25, ProductionPoints: 25,
				},
			},
		},
		LogLevel: "info",
	}
}

// Load resolves the config file via Locate, expands ${VAR} references
// against the process environment, and unmarshals it over the documented
// defaults.
func Load(explicitPath string) (Config, error) {
	path, err := Locate(explicitPath)
	if err != nil {
		return Config{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.Expand(string(raw), func(name string) string {
		return os.Getenv(name)
	})

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Locate implements the documented discovery order: an explicit path, the
// CONFIG_PATH environment variable, the current working directory, each
// parent directory up to the filesystem root, and finally the directory
// this package's source lives in (for running straight from a checkout).
func Locate(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config: explicit path %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; ; {
			candidate := filepath.Join(dir, configFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		candidate := filepath.Join(filepath.Dir(file), configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config: %s not found in explicit path, CONFIG_PATH, cwd, any parent directory, or the config package directory", configFileName)
}

// StrategyConfig projects the loaded YAML onto the policy surface the
// strategy package actually reads.
func (c Config) StrategyConfig() strategy.Config {
	cfg := strategy.DefaultConfig()
	cfg.MinimumStorageCapacityHours = c.MinimumStorageCapacityInHours
	cfg.DailyQuestThreshold = c.DailyQuestThreshold
	cfg.HeroMinimalHealth = c.Hero.Adventures.MinimalHealth
	cfg.HeroIncreaseDifficulty = c.Hero.Adventures.IncreaseDifficulty
	cfg.HeroSupportVillages = c.Hero.Resources.SupportVillages
	cfg.Attributes = job.AttributeConfig{
		Ratio: attributesArray(c.Hero.Resources.AttributesRatio, 100),
		Steps: intAttributesArray(c.Hero.Resources.AttributesSteps),
	}
	return cfg
}

func attributesArray(a AttributesConfig, scale float64) [4]float64 {
	return [4]float64{
		a.FightingStrength / scale,
		a.OffBonus / scale,
		a.DefBonus / scale,
		a.ProductionPoints / scale,
	}
}

func intAttributesArray(a AttributesConfig) [4]int {
	return [4]int{
		int(a.FightingStrength),
		int(a.OffBonus),
		int(a.DefBonus),
		int(a.ProductionPoints),
	}
}
