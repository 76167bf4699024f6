package cron

import (
	"testing"
	"time"

	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func TestExpireQuestsCronJob(t *testing.T) {
	ctx := testutil.MockContext()

	questRegistry := registry.NewQuestRegistry()
	archiveRepo := repository.NewQuestArchiveRepository()
	miniApps := miniapp.NewManager()
	broadcaster := notification.NewBroadcaster()
	job := NewExpireQuestsCronJob(time.Minute, questRegistry, archiveRepo, miniApps, broadcaster)

	watcher := notification.NewSession("watcher")
	broadcaster.Register(watcher)

	overdue := &entity.Quest{
		ConversationID:  "conv1",
		Type:            entity.QuestSocialChallenge,
		Title:           "Overdue",
		Difficulty:      entity.DifficultyEasy,
		DurationMinutes: 30,
		MinParticipants: 1,
		MaxParticipants: 5,
	}
	require.NoError(t, questRegistry.Create(ctx, overdue))
	miniApps.Launch(ctx, *overdue)

	running := &entity.Quest{
		ConversationID:  "conv2",
		Type:            entity.QuestSocialChallenge,
		Title:           "Running",
		Difficulty:      entity.DifficultyEasy,
		DurationMinutes: 30,
		MinParticipants: 1,
		MaxParticipants: 5,
	}
	require.NoError(t, questRegistry.Create(ctx, running))
	miniApps.Launch(ctx, *running)

	_, err := questRegistry.Update(ctx, overdue.ID, func(quest *entity.Quest) error {
		quest.ExpiresAt = time.Now().Add(-time.Minute)
		return nil
	})
	require.NoError(t, err)

	job.Do(ctx)

	got, err := questRegistry.Get(ctx, overdue.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestExpired, got.Status)

	got, err = questRegistry.Get(ctx, running.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestActive, got.Status)

	archived, err := archiveRepo.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestExpired, archived.Status)

	record, ok := miniApps.Get(ctx, overdue.ID)
	require.True(t, ok)
	require.Equal(t, entity.MiniAppExpired, record.Status)

	ev := <-watcher.C
	require.Equal(t, "quest_expired", ev.Op)

	// A second sweep finds nothing; the expiry fired exactly once.
	job.Do(ctx)
	require.Empty(t, watcher.C)
}
