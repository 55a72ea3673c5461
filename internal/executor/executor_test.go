package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travian-agent/internal/driver"
	"travian-agent/internal/driver/drivertest"
	"travian-agent/internal/job"
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
	"travian-agent/internal/scanner"
)

// stubScanner returns a scripted sequence of results, one per call to Scan,
// holding on the last entry once the script is exhausted.
type stubScanner struct {
	results []scanResult
	calls   int
}

type scanResult struct {
	state *model.GameState
	err   error
}

func (s *stubScanner) Scan(ctx context.Context, d driver.Driver, passID string) (*model.GameState, error) {
	r := s.results[s.calls]
	if s.calls < len(s.results)-1 {
		s.calls++
	}
	return r.state, r.err
}

func (s *stubScanner) ScanVillageList(dorf1HTML string) ([]scanner.VillageIdentity, error) {
	return nil, nil
}
func (s *stubScanner) ScanAccountInfo(dorf1HTML string) (model.Account, error) {
	return model.Account{}, nil
}
func (s *stubScanner) ScanVillage(identity scanner.VillageIdentity, dorf1HTML, dorf2HTML string) (*model.Village, error) {
	return nil, nil
}
func (s *stubScanner) ScanStockBar(html string) (scanner.StockBar, error) {
	return scanner.StockBar{}, nil
}
func (s *stubScanner) ScanProduction(html string) (resources.Set, int, error) {
	return resources.Zero, 0, nil
}
func (s *stubScanner) ScanResourceFields(html string) ([]model.ResourcePit, error) {
	return nil, nil
}
func (s *stubScanner) ScanVillageCenter(html string) ([]model.Building, error) {
	return nil, nil
}
func (s *stubScanner) ScanBuildingQueue(html string, parallelAllowed bool) (*model.BuildingQueue, error) {
	return nil, nil
}
func (s *stubScanner) ScanHeroInfo(heroAttrsHTML, inventoryHTML string) (*model.HeroInfo, error) {
	return nil, nil
}
func (s *stubScanner) ScanTroops(html string) (map[string]int, error) { return nil, nil }
func (s *stubScanner) IsRewardAvailable(html string) bool             { return false }
func (s *stubScanner) IsDailyQuestIndicator(navFragment string) bool  { return false }
func (s *stubScanner) ScanAdvertiseRemainingTime(iframeHTML string) (int, bool) {
	return 0, false
}
func (s *stubScanner) ScanIncomingAttacks(movementsHTML string) (scanner.IncomingAttacks, error) {
	return scanner.IncomingAttacks{}, nil
}
func (s *stubScanner) IdentifyTribe(dorf2HTML string) (model.Tribe, error) {
	return model.TribeUnknown, nil
}

var _ scanner.Scanner = (*stubScanner)(nil)

// stubStrategy returns a scripted sequence of job batches, one per call,
// holding on the last entry once the script is exhausted.
type stubStrategy struct {
	plans [][]*job.Job
	calls int
}

func (s *stubStrategy) Plan(state *model.GameState, now time.Time) []*job.Job {
	p := s.plans[s.calls]
	if s.calls < len(s.plans)-1 {
		s.calls++
	}
	return p
}

func quietVillage(id string) *model.Village {
	return &model.Village{
		ID:            id,
		Name:          id,
		Tribe:         model.TribeGauls,
		BuildingQueue: model.NewBuildingQueue(model.TribeGauls),
	}
}

func newTestExecutor(d driver.Driver, sc scanner.Scanner, strat *stubStrategy, restart RestartDriver) *Executor {
	e := New(d, sc, strat, job.AttributeConfig{}, DefaultConfig(), restart)
	e.Now = time.Now
	return e
}

func TestRunPass_ExitsWhenNoWorkBeyondHorizon(t *testing.T) {
	v := quietVillage("v1")
	v.BuildingQueue.AddJob(model.QueueInside, model.BuildingJob{
		BuildingName:         "Main Building",
		TimeRemainingSeconds: int((48 * time.Hour).Seconds()),
	})
	state := &model.GameState{Villages: []*model.Village{v}}

	sc := &stubScanner{results: []scanResult{{state: state}}}
	strat := &stubStrategy{plans: [][]*job.Job{nil}}
	e := newTestExecutor(drivertest.New(), sc, strat, nil)

	exit, err := e.runPass(context.Background())
	require.NoError(t, err)
	assert.True(t, exit)
}

func TestRunPass_DoesNotExitWhenQueueEmpty(t *testing.T) {
	v := quietVillage("v1")
	state := &model.GameState{Villages: []*model.Village{v}}

	sc := &stubScanner{results: []scanResult{{state: state}}}
	strat := &stubStrategy{plans: [][]*job.Job{nil}}
	e := newTestExecutor(drivertest.New(), sc, strat, nil)

	exit, err := e.runPass(context.Background())
	require.NoError(t, err)
	assert.False(t, exit, "an idle building slot always leaves plannable work")
}

func TestRunPass_DoesNotExitWhenNewJobsPlanned(t *testing.T) {
	v := quietVillage("v1")
	v.BuildingQueue.AddJob(model.QueueInside, model.BuildingJob{TimeRemainingSeconds: int((48 * time.Hour).Seconds())})
	state := &model.GameState{Villages: []*model.Village{v}}

	sc := &stubScanner{results: []scanResult{{state: state}}}
	strat := &stubStrategy{plans: [][]*job.Job{{job.NewHeroAdventure(time.Now())}}}
	e := newTestExecutor(drivertest.New(), sc, strat, nil)

	exit, err := e.runPass(context.Background())
	require.NoError(t, err)
	assert.False(t, exit)
}

func TestRunPass_DoesNotExitWhenCompletionWithinHorizon(t *testing.T) {
	v := quietVillage("v1")
	v.BuildingQueue.AddJob(model.QueueInside, model.BuildingJob{TimeRemainingSeconds: 60})
	state := &model.GameState{Villages: []*model.Village{v}}

	sc := &stubScanner{results: []scanResult{{state: state}}}
	strat := &stubStrategy{plans: [][]*job.Job{nil}}
	e := newTestExecutor(drivertest.New(), sc, strat, nil)

	exit, err := e.runPass(context.Background())
	require.NoError(t, err)
	assert.False(t, exit)
}

func TestRunPass_ExecutesDueJobAndUnfreezesOnFailure(t *testing.T) {
	v := quietVillage("v1")
	state := &model.GameState{Villages: []*model.Village{v}}

	j := job.NewBuild(v.ID, model.QueueOutside, time.Now().Add(-time.Minute), 100, job.BuildPayload{
		SlotID:      1,
		BuildingGID: 1,
		TargetName:  "Woodcutter",
		TargetLevel: 2,
	})
	v.BuildingQueue.FreezeUntil(time.Now().Add(time.Hour), model.QueueOutside, j.ID)

	fake := drivertest.New()
	fake.ClickResults[".buildingButton"] = false

	sc := &stubScanner{results: []scanResult{{state: state}}}
	strat := &stubStrategy{plans: [][]*job.Job{{j}}}
	e := newTestExecutor(fake, sc, strat, nil)

	_, err := e.runPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, job.Terminated, j.Status)
	assert.True(t, v.BuildingQueue.CanBuildOutside(), "a failed job must release its freeze immediately")
}

func TestRunPass_FreezeSurvivesAFreshScanOnTheNextPass(t *testing.T) {
	v1 := quietVillage("v1")
	state1 := &model.GameState{Villages: []*model.Village{v1}}
	// Simulate what a real strategy's materialize step does while planning
	// this pass: claim the outside slot until the in-game build finishes.
	v1.BuildingQueue.FreezeUntil(time.Now().Add(20*time.Hour), model.QueueOutside, "job-1")

	// The next pass's scan is a wholly new GameState with a wholly new,
	// freeze-ignorant BuildingQueue, the way HTMLScanner.Scan really works:
	// the in-game slot still reads as empty because the build hasn't
	// started rendering in the queue widget yet.
	v2 := quietVillage("v1")
	state2 := &model.GameState{Villages: []*model.Village{v2}}

	sc := &stubScanner{results: []scanResult{{state: state1}, {state: state2}}}
	strat := &stubStrategy{plans: [][]*job.Job{nil, nil}}
	e := newTestExecutor(drivertest.New(), sc, strat, nil)

	_, err := e.runPass(context.Background())
	require.NoError(t, err)
	require.False(t, e.queues["v1"].CanBuildOutside(), "pass 1 must persist the freeze it observed")

	_, err = e.runPass(context.Background())
	require.NoError(t, err)

	assert.Same(t, e.queues["v1"], v2.BuildingQueue, "the persisted queue must be swapped back onto the freshly scanned village")
	assert.False(t, e.queues["v1"].CanBuildOutside(), "a fresh scan's empty queue must not erase a freeze still in the future")
}

func TestRunPass_NilStateTriggersDriverRestart(t *testing.T) {
	restarted := false
	fresh := drivertest.New()
	restart := func(ctx context.Context) (driver.Driver, error) {
		restarted = true
		return fresh, nil
	}

	sc := &stubScanner{results: []scanResult{{state: nil, err: errors.New("fatal")}}}
	strat := &stubStrategy{plans: [][]*job.Job{nil}}
	original := drivertest.New()
	e := newTestExecutor(original, sc, strat, restart)

	exit, err := e.runPass(context.Background())
	require.NoError(t, err)
	assert.False(t, exit)
	assert.True(t, restarted)
	assert.True(t, original.StopCalled)
	assert.Same(t, fresh, e.Driver)
}

func TestNearestCompletion_PrefersSchedulerOverIdleVillage(t *testing.T) {
	v := quietVillage("v1")
	state := &model.GameState{Villages: []*model.Village{v}}
	e := newTestExecutor(drivertest.New(), &stubScanner{}, &stubStrategy{}, nil)

	now := time.Now()
	e.Queue.Push(job.NewHeroAdventure(now.Add(10 * time.Minute)))

	d, ok := e.nearestCompletion(state, now)
	require.True(t, ok)
	assert.InDelta(t, (10 * time.Minute).Seconds(), d.Seconds(), 1)
}
