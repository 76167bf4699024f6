package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questforge-lab/backend/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)

	// RunNow reports whether the first run happens immediately instead of
	// waiting for Next.
	RunNow() bool

	// Next returns the time of the following run.
	Next() time.Time
}

type CronJobManager struct {
	mutex   sync.Mutex
	wait    sync.WaitGroup
	started bool
	jobs    map[CronJob]*time.Timer
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*time.Timer)}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs[job] = nil
}

// Start runs every registered job on its own schedule. It blocks until the
// context is canceled or Cancel is called, whichever comes first.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	m.started = true
	for job := range m.jobs {
		m.wait.Add(1)
		if job.RunNow() {
			go m.run(ctx, job)
		} else {
			m.jobs[job] = m.nextTimer(ctx, job)
		}
	}
	m.mutex.Unlock()

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			m.Cancel(ctx)
		case <-finished:
		}
	}()

	m.wait.Wait()
	close(finished)
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

// Cancel stops every scheduled job and unblocks Start. A job in the middle
// of its Do keeps running but is never rescheduled.
func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.started {
		for _, timer := range m.jobs {
			// A nil timer belongs to a job currently running; its reschedule
			// becomes a no-op once the map is cleared.
			if timer != nil {
				timer.Stop()
			}

			m.wait.Done()
		}
	}

	// Drop all jobs so nothing reschedules them.
	m.jobs = make(map[CronJob]*time.Timer)
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Canceled jobs are no longer in the map and must not come back.
	if _, ok := m.jobs[job]; ok {
		m.jobs[job] = m.nextTimer(ctx, job)
	}
}

func (m *CronJobManager) nextTimer(ctx context.Context, job CronJob) *time.Timer {
	return time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
}
