// Package job implements the scheduled unit of work the strategy plans and
// the executor runs: a tagged variant over a common header, dispatched to
// its driver calls via a switch on Kind rather than polymorphism.
package job

import (
	"context"
	"time"

	"github.com/google/uuid"

	"travian-agent/internal/driver"
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// Kind discriminates the job variants.
type Kind int

const (
	Build Kind = iota
	BuildNew
	Train
	HeroAdventure
	AllocateAttributes
	CollectDailyQuests
	CollectQuestmaster
	FoundNewVillage
	IncreaseProductionByAds
)

func (k Kind) String() string {
	switch k {
	case Build:
		return "build"
	case BuildNew:
		return "build_new"
	case Train:
		return "train"
	case HeroAdventure:
		return "hero_adventure"
	case AllocateAttributes:
		return "allocate_attributes"
	case CollectDailyQuests:
		return "collect_daily_quests"
	case CollectQuestmaster:
		return "collect_questmaster"
	case FoundNewVillage:
		return "found_new_village"
	case IncreaseProductionByAds:
		return "increase_production_by_ads"
	default:
		return "unknown"
	}
}

// Status is the job's lifecycle state.
type Status int

const (
	Pending Status = iota
	Running
	Completed
	Terminated
	Expired
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Terminated:
		return "terminated"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// DefaultTTL is how long a job may sit Pending before the scheduler marks
// it Expired.
const DefaultTTL = time.Hour

// Job is the common header shared by every variant, plus exactly one
// non-nil payload matching its Kind.
type Job struct {
	ID              string
	Kind            Kind
	ScheduledTime   time.Time
	Status          Status
	DurationSeconds int
	SuccessMessage  string
	FailureMessage  string

	VillageID string
	QueueKey  model.QueueKey

	BuildPayload                   *BuildPayload
	BuildNewPayload                *BuildNewPayload
	TrainPayload                   *TrainPayload
	HeroAdventurePayload           *HeroAdventurePayload
	AllocateAttributesPayload      *AllocateAttributesPayload
	CollectDailyQuestsPayload      *CollectDailyQuestsPayload
	CollectQuestmasterPayload      *CollectQuestmasterPayload
	FoundNewVillagePayload         *FoundNewVillagePayload
	IncreaseProductionByAdsPayload *IncreaseProductionByAdsPayload
}

// newHeader builds the common header fields shared by every constructor.
func newHeader(kind Kind, villageID string, queueKey model.QueueKey, scheduledTime time.Time, durationSeconds int) Job {
	return Job{
		ID:              uuid.NewString(),
		Kind:            kind,
		ScheduledTime:   scheduledTime,
		Status:          Pending,
		DurationSeconds: durationSeconds,
		VillageID:       villageID,
		QueueKey:        queueKey,
	}
}

// NewBuild constructs a pending Build job targeting an existing slot.
func NewBuild(villageID string, queueKey model.QueueKey, scheduledTime time.Time, durationSeconds int, payload BuildPayload) *Job {
	j := newHeader(Build, villageID, queueKey, scheduledTime, durationSeconds)
	j.BuildPayload = &payload
	return &j
}

// NewBuildNew constructs a pending BuildNew job targeting a free slot.
func NewBuildNew(villageID string, queueKey model.QueueKey, scheduledTime time.Time, durationSeconds int, payload BuildNewPayload) *Job {
	j := newHeader(BuildNew, villageID, queueKey, scheduledTime, durationSeconds)
	j.BuildNewPayload = &payload
	return &j
}

// NewTrain constructs a pending Train job.
func NewTrain(villageID string, scheduledTime time.Time, payload TrainPayload) *Job {
	j := newHeader(Train, villageID, "", scheduledTime, 0)
	j.TrainPayload = &payload
	return &j
}

// NewHeroAdventure constructs a pending HeroAdventure job.
func NewHeroAdventure(scheduledTime time.Time) *Job {
	j := newHeader(HeroAdventure, "", "", scheduledTime, 0)
	j.HeroAdventurePayload = &HeroAdventurePayload{}
	return &j
}

// NewAllocateAttributes constructs a pending AllocateAttributes job. The
// caller must ensure payload.Points > 0 — see Strategy 4.4 step 4.
func NewAllocateAttributes(scheduledTime time.Time, payload AllocateAttributesPayload) *Job {
	j := newHeader(AllocateAttributes, "", "", scheduledTime, 0)
	j.AllocateAttributesPayload = &payload
	return &j
}

// NewCollectDailyQuests constructs a pending CollectDailyQuests job.
func NewCollectDailyQuests(scheduledTime time.Time, threshold int) *Job {
	j := newHeader(CollectDailyQuests, "", "", scheduledTime, 0)
	j.CollectDailyQuestsPayload = &CollectDailyQuestsPayload{Threshold: threshold}
	return &j
}

// NewCollectQuestmaster constructs a pending CollectQuestmaster job.
func NewCollectQuestmaster(villageID string, scheduledTime time.Time) *Job {
	j := newHeader(CollectQuestmaster, villageID, "", scheduledTime, 0)
	j.CollectQuestmasterPayload = &CollectQuestmasterPayload{}
	return &j
}

// NewFoundNewVillage constructs a pending FoundNewVillage job.
func NewFoundNewVillage(villageID, villageName string, scheduledTime time.Time, finder AbandonedValleyFinder) *Job {
	j := newHeader(FoundNewVillage, villageID, "", scheduledTime, 0)
	j.FoundNewVillagePayload = &FoundNewVillagePayload{VillageName: villageName, Finder: finder}
	return &j
}

// NewIncreaseProductionByAds constructs a pending IncreaseProductionByAds
// job for the given village and eligible resource kinds.
func NewIncreaseProductionByAds(villageID string, scheduledTime time.Time, eligible []resources.Kind) *Job {
	j := newHeader(IncreaseProductionByAds, villageID, "", scheduledTime, 0)
	j.IncreaseProductionByAdsPayload = &IncreaseProductionByAdsPayload{Eligible: eligible}
	return &j
}

// IsDue reports whether the job is Pending and its scheduled time has
// arrived.
func (j *Job) IsDue(now time.Time) bool {
	return j.Status == Pending && !j.ScheduledTime.After(now)
}

// IsExpired reports whether the job has sat Pending past ttl.
func (j *Job) IsExpired(now time.Time, ttl time.Duration) bool {
	return j.Status == Pending && now.Sub(j.ScheduledTime) > ttl
}

// Deps bundles the capabilities a job's Execute may need beyond the
// Driver: reading an in-flight ad's remaining time, and the hero's
// attribute-allocation config. Not every variant uses every field.
type Deps struct {
	Ads   AdTimeReader
	Attrs AttributeConfig
}

// Execute dispatches to the variant's own execution logic, returning true
// iff the primary mutating action was successfully dispatched. It never
// panics on a driver failure — each variant catches its own.
func (j *Job) Execute(ctx context.Context, d driver.Driver, deps Deps) bool {
	switch j.Kind {
	case Build:
		return j.BuildPayload.execute(ctx, d, j.VillageID)
	case BuildNew:
		return j.BuildNewPayload.execute(ctx, d, j.VillageID)
	case Train:
		return j.TrainPayload.execute(ctx, d, j.VillageID)
	case HeroAdventure:
		return j.HeroAdventurePayload.execute(ctx, d, deps.Ads)
	case AllocateAttributes:
		return j.AllocateAttributesPayload.execute(ctx, d, deps.Attrs)
	case CollectDailyQuests:
		return j.CollectDailyQuestsPayload.execute(ctx, d)
	case CollectQuestmaster:
		return j.CollectQuestmasterPayload.execute(ctx, d, j.VillageID)
	case FoundNewVillage:
		return j.FoundNewVillagePayload.execute(ctx, d, j.VillageID)
	case IncreaseProductionByAds:
		return j.IncreaseProductionByAdsPayload.execute(ctx, d, j.VillageID, deps.Ads)
	default:
		return false
	}
}
