package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"travian-agent/internal/config"
	"travian-agent/internal/driver"
	"travian-agent/internal/executor"
	"travian-agent/internal/job"
	"travian-agent/internal/logger"
	"travian-agent/internal/scanner"
	"travian-agent/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "travian-agent: "+err.Error())
		os.Exit(1)
	}

	if err := logger.Init(&cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "travian-agent: logger init: "+err.Error())
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDriver(ctx, cfg)
	if err != nil {
		log.Fatal("driver startup failed", zap.Error(err))
	}

	strat, err := newStrategy(cfg)
	if err != nil {
		log.Fatal("strategy wiring failed", zap.Error(err))
	}

	exec := executor.New(d, scanner.NewHTMLScanner(), strat, cfg.StrategyConfig().Attributes, executor.DefaultConfig(), func(ctx context.Context) (driver.Driver, error) {
		return newDriver(ctx, cfg)
	})

	log.Info("agent starting", zap.String("strategy", cfg.Strategy), zap.String("server_url", cfg.ServerURL))
	if err := exec.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("agent stopped with error", zap.Error(err))
	}
	log.Info("agent exiting")
}

// newDriver constructs the browser-backed Driver for cfg. The headless
// browser session and its CSS-selector click/type mechanics are the one
// external collaborator this repository doesn't own (see DESIGN.md); a
// concrete implementation plugs in here without touching the executor or
// job packages, which only ever see the driver.Driver interface.
func newDriver(ctx context.Context, cfg config.Config) (driver.Driver, error) {
	return nil, errors.New("no browser driver.Driver implementation is wired; provide one via newDriver")
}

// newStrategy builds the configured Strategy implementation. Only
// balanced_economic_growth has a documented decision tree; defend_army is
// accepted by the configuration schema but has no behavior to wire yet.
func newStrategy(cfg config.Config) (strategy.Strategy, error) {
	switch cfg.Strategy {
	case config.StrategyBalancedEconomicGrowth, "":
		return strategy.NewBalancedEconomicGrowth(cfg.StrategyConfig(), noAbandonedValleys{}), nil
	case config.StrategyDefendArmy:
		return nil, fmt.Errorf("strategy %q is not yet implemented", cfg.Strategy)
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}

// noAbandonedValleys is the default AbandonedValleyFinder: locating a real
// abandoned valley requires scanning the map search UI, which no Scanner
// method currently exposes. It always reports no valley, so every
// FoundNewVillage job wired with it returns false without founding one.
type noAbandonedValleys struct{}

func (noAbandonedValleys) FindAbandonedValley(ctx context.Context, d driver.Driver) (x, y int, ok bool) {
	return 0, 0, false
}

var _ job.AbandonedValleyFinder = noAbandonedValleys{}
