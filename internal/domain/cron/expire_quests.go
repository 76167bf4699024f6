package cron

import (
	"context"
	"time"

	"github.com/questforge-lab/backend/internal/common"
	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/domain/notification/event"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

// ExpireQuestsCronJob is the single sweep that retires overdue quests. One
// periodic scan replaces a timer per quest; a quest expires on the first sweep
// at or after its deadline.
type ExpireQuestsCronJob struct {
	interval         time.Duration
	questRegistry    registry.QuestRegistry
	questArchiveRepo repository.QuestArchiveRepository
	miniAppManager   *miniapp.Manager
	broadcaster      *notification.Broadcaster
}

func NewExpireQuestsCronJob(
	interval time.Duration,
	questRegistry registry.QuestRegistry,
	questArchiveRepo repository.QuestArchiveRepository,
	miniAppManager *miniapp.Manager,
	broadcaster *notification.Broadcaster,
) *ExpireQuestsCronJob {
	if interval <= 0 {
		interval = time.Minute
	}

	return &ExpireQuestsCronJob{
		interval:         interval,
		questRegistry:    questRegistry,
		questArchiveRepo: questArchiveRepo,
		miniAppManager:   miniAppManager,
		broadcaster:      broadcaster,
	}
}

func (job *ExpireQuestsCronJob) Do(ctx context.Context) {
	now := time.Now()

	expired := job.questRegistry.ExpireDue(ctx, now)
	for i := range expired {
		quest := &expired[i]

		if err := job.questArchiveRepo.Save(ctx, quest); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot archive expired quest %s: %v", quest.ID, err)
		}

		miniAppURL := ""
		if record, ok := job.miniAppManager.Get(ctx, quest.ID); ok {
			miniAppURL = record.URL
		}

		job.broadcaster.Publish(ctx, event.New(
			event.QuestExpiredEvent(model.ConvertQuest(quest, miniAppURL)),
			event.Metadata{},
		))

		job.miniAppManager.Close(ctx, quest.ID)
		common.PromCounters[common.QuestTransitionTotal].WithLabelValues("expired").Inc()
		xcontext.Logger(ctx).Infof("Expired quest %s of conversation %s", quest.ID, quest.ConversationID)
	}

	// Catches mini-app records whose quest left the registry, for example
	// after a restart.
	job.miniAppManager.ExpireDue(ctx, now)
}

func (job *ExpireQuestsCronJob) RunNow() bool {
	return true
}

func (job *ExpireQuestsCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
