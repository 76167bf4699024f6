package cron

import (
	"context"
	"time"

	"github.com/questforge-lab/backend/internal/domain/orchestrator"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

// PruneAnalyticsCronJob drops conversation analytics that went quiet, so the
// tracker does not grow with every conversation ever seen.
type PruneAnalyticsCronJob struct {
	tracker *orchestrator.Tracker
}

func NewPruneAnalyticsCronJob(tracker *orchestrator.Tracker) *PruneAnalyticsCronJob {
	return &PruneAnalyticsCronJob{tracker: tracker}
}

func (job *PruneAnalyticsCronJob) Do(ctx context.Context) {
	if pruned := job.tracker.PruneIdle(ctx, time.Now()); pruned > 0 {
		xcontext.Logger(ctx).Infof("Pruned analytics of %d idle conversations", pruned)
	}
}

func (job *PruneAnalyticsCronJob) RunNow() bool {
	return false
}

func (job *PruneAnalyticsCronJob) Next() time.Time {
	return time.Now().Add(time.Hour)
}
