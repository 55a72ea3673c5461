// Package executor runs the single-threaded cooperative loop: scan, plan,
// merge into the scheduled queue, execute whatever is due, reconcile
// freezes, and sleep until the next interesting moment. No exception
// escapes Run — it is the single point of recovery for the whole agent.
package executor

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/avast/retry-go"

	"travian-agent/internal/driver"
	"travian-agent/internal/job"
	"travian-agent/internal/logger"
	"travian-agent/internal/model"
	"travian-agent/internal/scanner"
	"travian-agent/internal/scheduler"
	"travian-agent/internal/strategy"
)

// Config bounds the loop's own cadence, separate from strategy.Config (the
// policy-tunable surface the strategy reads).
type Config struct {
	// MaxPollInterval caps how long the loop sleeps between passes even if
	// nothing is due sooner.
	MaxPollInterval time.Duration
	// ExitHorizon is the configured large horizon: the loop only exits when
	// the nearest expected completion is further away than this.
	ExitHorizon time.Duration
	// DriverRestartAttempts bounds the retry-go backoff used to recover
	// from a fatal driver failure before giving up the pass entirely.
	DriverRestartAttempts uint
}

// DefaultConfig mirrors the defaults documented for the loop's own cadence.
func DefaultConfig() Config {
	return Config{
		MaxPollInterval:       30 * time.Second,
		ExitHorizon:           6 * time.Hour,
		DriverRestartAttempts: 3,
	}
}

// RestartDriver rebuilds a fresh Driver after a fatal failure (browser
// crashed). Supplied by cmd/agent, since only main knows how to construct
// the concrete browser session.
type RestartDriver func(ctx context.Context) (driver.Driver, error)

// Executor owns the Driver for the lifetime of the loop; no job may retain
// a handle to it past its Execute call.
type Executor struct {
	Driver   driver.Driver
	Scanner  scanner.Scanner
	Strategy strategy.Strategy
	Queue    *scheduler.Queue
	Attrs    job.AttributeConfig
	Config   Config

	// Now is a test seam; production wiring leaves it at time.Now.
	Now func() time.Time

	restart RestartDriver

	// queues holds each village's BuildingQueue across passes, keyed by
	// village ID. Scan rebuilds a brand-new GameState (and brand-new
	// BuildingQueues) every pass, so a freeze set while planning one pass
	// would otherwise vanish the moment the next pass's scan comes back;
	// runPass reconciles the freshly scanned queue into this persisted one
	// instead of trusting the scan's copy outright.
	queues map[string]*model.BuildingQueue
}

// New constructs an Executor with a fresh, empty job queue.
func New(d driver.Driver, s scanner.Scanner, strat strategy.Strategy, attrs job.AttributeConfig, cfg Config, restart RestartDriver) *Executor {
	return &Executor{
		Driver:   d,
		Scanner:  s,
		Strategy: strat,
		Queue:    scheduler.New(),
		Attrs:    attrs,
		Config:   cfg,
		Now:      time.Now,
		restart:  restart,
		queues:   map[string]*model.BuildingQueue{},
	}
}

// Run drives the loop until the exit condition holds or ctx is cancelled.
func (e *Executor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		exit, err := e.runPass(ctx)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

// runPass executes exactly one scan->plan->execute->reconcile cycle and
// reports whether the loop should now exit.
func (e *Executor) runPass(ctx context.Context) (exit bool, err error) {
	now := e.Now()
	passID := uuid.NewString()
	log := logger.WithContext(zap.String("pass_id", passID))

	state, scanErr := e.Scanner.Scan(ctx, e.Driver, passID)
	if state == nil {
		log.Warn("scan failed, attempting driver restart", zap.Error(scanErr))
		if restartErr := e.restartDriverWithBackoff(ctx); restartErr != nil {
			log.Error("driver restart failed, pass aborted", zap.Error(restartErr))
		}
		return false, nil
	}
	if scanErr != nil {
		for _, partial := range multierr.Errors(scanErr) {
			log.Warn("partial scan failure", zap.Error(partial))
		}
	}

	e.reconcileQueues(state, log)

	newJobs := e.Strategy.Plan(state, now)
	for _, j := range newJobs {
		e.Queue.Push(j)
	}

	expired := e.Queue.RemoveExpired(now, job.DefaultTTL)
	for _, j := range expired {
		e.unfreeze(state, j)
		log.Info("job expired", zap.String("job_id", j.ID), zap.String("kind", j.Kind.String()))
	}

	deps := job.Deps{Ads: e.Scanner, Attrs: e.Attrs}
	for {
		due := e.Queue.PopDue(e.Now())
		if due == nil {
			break
		}
		e.executeJob(ctx, state, due, deps, log)
	}

	if e.shouldExit(state, newJobs, e.Now()) {
		log.Info("no outstanding work within the exit horizon, stopping")
		return true, nil
	}

	e.sleepUntilNextPass(ctx)
	return false, nil
}

func (e *Executor) executeJob(ctx context.Context, state *model.GameState, j *job.Job, deps job.Deps, log *zap.Logger) {
	j.Status = job.Running
	ok := j.Execute(ctx, e.Driver, deps)
	if ok {
		j.Status = job.Completed
	} else {
		j.Status = job.Terminated
		e.unfreeze(state, j)
	}
	log.Info("job executed",
		zap.String("job_id", j.ID),
		zap.String("kind", j.Kind.String()),
		zap.String("village_id", j.VillageID),
		zap.Bool("ok", ok))
}

// unfreeze clears the slot a failed or expired job claimed, so the next
// pass can replan it immediately rather than waiting for the freeze to
// lapse on its own.
func (e *Executor) unfreeze(state *model.GameState, j *job.Job) {
	if j.QueueKey == "" {
		return
	}
	v, ok := state.VillageByID(j.VillageID)
	if !ok {
		return
	}
	v.BuildingQueue.Unfreeze(j.QueueKey)
}

// reconcileQueues merges each village's freshly scanned BuildingQueue into
// the one persisted for that village across passes, preserving any freeze
// still in the future, then swaps the persisted queue back onto the
// village so the strategy plans against freeze-aware state rather than the
// scan's amnesiac copy. A village seen for the first time seeds the
// registry with its scanned queue as-is. Without this, a slot frozen while
// planning one pass would look plannable again the moment the next pass's
// scan comes back, and the strategy would queue the same build over and
// over until it finally lands in-game.
func (e *Executor) reconcileQueues(state *model.GameState, log *zap.Logger) {
	for _, v := range state.Villages {
		if v.BuildingQueue == nil {
			continue
		}
		persisted, ok := e.queues[v.ID]
		if !ok {
			e.queues[v.ID] = v.BuildingQueue
			continue
		}
		persisted.Reconcile(v.BuildingQueue)
		v.BuildingQueue = persisted

		for _, key := range []model.QueueKey{model.QueueInside, model.QueueOutside} {
			if jobID, frozen := persisted.IsFrozen(key); frozen {
				log.Debug("slot still frozen from an earlier pass",
					zap.String("village_id", v.ID),
					zap.String("queue_key", string(key)),
					zap.String("job_id", jobID))
			}
		}
	}
}

// restartDriverWithBackoff recovers from a fatal driver failure: the
// browser session is rebuilt behind retry-go's exponential backoff, and
// the failed session is stopped first on a best-effort basis.
func (e *Executor) restartDriverWithBackoff(ctx context.Context) error {
	if e.restart == nil {
		return nil
	}
	_ = e.Driver.Stop()
	return retry.Do(func() error {
		d, err := e.restart(ctx)
		if err != nil {
			return err
		}
		e.Driver = d
		return nil
	}, retry.Attempts(e.Config.DriverRestartAttempts), retry.Context(ctx))
}

// shouldExit reports whether the agent has run out of useful work: this
// pass planned nothing, every village's observed queue is already
// occupied, and the nearest expected completion across both in-game
// queues and the scheduler's own pending jobs lies beyond the configured
// horizon.
func (e *Executor) shouldExit(state *model.GameState, newJobs []*job.Job, now time.Time) bool {
	if len(newJobs) != 0 {
		return false
	}
	for _, v := range state.Villages {
		if v.BuildingQueue.IsEmpty() {
			return false
		}
	}
	nearest, ok := e.nearestCompletion(state, now)
	if !ok {
		return false
	}
	return nearest > e.Config.ExitHorizon
}

func (e *Executor) nearestCompletion(state *model.GameState, now time.Time) (time.Duration, bool) {
	best := time.Duration(math.MaxInt64)
	found := false
	for _, v := range state.Villages {
		if d, ok := v.BuildingQueue.EarliestTimeRemaining(); ok && d < best {
			best = d
			found = true
		}
	}
	if t, ok := e.Queue.PeekNextTime(); ok {
		if d := t.Sub(now); !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}

func (e *Executor) sleepUntilNextPass(ctx context.Context) {
	wait := e.Config.MaxPollInterval
	if t, ok := e.Queue.PeekNextTime(); ok {
		if untilDue := t.Sub(e.Now()); untilDue < wait {
			wait = untilDue
		}
	}
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
