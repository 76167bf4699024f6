package domain

import (
	"context"
	"testing"
	"time"

	"github.com/questforge-lab/backend/internal/client"
	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/domain/orchestrator"
	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

type questFixture struct {
	questRegistry registry.QuestRegistry
	archiveRepo   repository.QuestArchiveRepository
	miniApps      *miniapp.Manager
	domain        *questDomain
}

func newQuestFixture() *questFixture {
	f := &questFixture{
		questRegistry: registry.NewQuestRegistry(),
		archiveRepo:   repository.NewQuestArchiveRepository(),
		miniApps:      miniapp.NewManager(),
	}

	orch := orchestrator.NewOrchestrator(
		orchestrator.NewTracker(),
		orchestrator.DefaultPersonaBook(),
		client.NewTemplateQuestProposer(),
		client.NewLogAnnouncer(),
		f.questRegistry,
		f.miniApps,
		notification.NewBroadcaster(),
	)

	f.domain = NewQuestDomain(f.questRegistry, f.archiveRepo, f.miniApps, orch)
	return f
}

func (f *questFixture) archiveQuest(
	t *testing.T, ctx context.Context,
	id, conversationID string,
	status entity.QuestStatusType,
	createdAt time.Time,
	participants ...string,
) {
	require.NoError(t, f.archiveRepo.Save(ctx, &entity.Quest{
		Base:            entity.Base{ID: id, CreatedAt: createdAt},
		ConversationID:  conversationID,
		Type:            entity.QuestSocialChallenge,
		Title:           "Archived",
		Difficulty:      entity.DifficultyEasy,
		DurationMinutes: 30,
		MinParticipants: 1,
		MaxParticipants: 5,
		Status:          status,
		Participants:    participants,
	}))
}

func TestGetQuestFromRegistryAndArchive(t *testing.T) {
	ctx := testutil.MockContext()
	f := newQuestFixture()

	quest := &entity.Quest{
		ConversationID:  "conv1",
		Type:            entity.QuestKnowledgeQuest,
		Title:           "Curiosity Run",
		Difficulty:      entity.DifficultyMedium,
		DurationMinutes: 60,
		MinParticipants: 1,
		MaxParticipants: 8,
	}
	require.NoError(t, f.questRegistry.Create(ctx, quest))
	f.miniApps.Launch(ctx, *quest)

	resp, err := f.domain.Get(ctx, &model.GetQuestRequest{ID: quest.ID})
	require.NoError(t, err)
	require.Equal(t, "Curiosity Run", resp.Title)
	require.Equal(t, "active", resp.Status)
	require.Contains(t, resp.MiniAppURL, quest.ID)

	// Quests no longer in the registry are read from the archive.
	f.archiveQuest(t, ctx, "old1", "conv2", entity.QuestExpired, time.Now().Add(-time.Hour), "user1")
	resp, err = f.domain.Get(ctx, &model.GetQuestRequest{ID: "old1"})
	require.NoError(t, err)
	require.Equal(t, "expired", resp.Status)
	require.Equal(t, []string{"user1"}, resp.Participants)

	_, err = f.domain.Get(ctx, &model.GetQuestRequest{ID: "missing"})
	require.Error(t, err)
	require.Equal(t, errorx.QuestNotFound, err.(errorx.Error).Code)

	_, err = f.domain.Get(ctx, &model.GetQuestRequest{})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}

func TestGetListQuests(t *testing.T) {
	ctx := testutil.MockContext()
	f := newQuestFixture()

	first := &entity.Quest{
		ConversationID: "conv1", Type: entity.QuestSocialChallenge, Title: "A",
		Difficulty: entity.DifficultyEasy, DurationMinutes: 30,
		MinParticipants: 1, MaxParticipants: 5,
	}
	second := &entity.Quest{
		ConversationID: "conv2", Type: entity.QuestSocialChallenge, Title: "B",
		Difficulty: entity.DifficultyEasy, DurationMinutes: 30,
		MinParticipants: 1, MaxParticipants: 5,
	}
	require.NoError(t, f.questRegistry.Create(ctx, first))
	require.NoError(t, f.questRegistry.Create(ctx, second))

	resp, err := f.domain.GetList(ctx, &model.GetListQuestsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 2)

	resp, err = f.domain.GetList(ctx, &model.GetListQuestsRequest{ConversationID: "conv2"})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 1)
	require.Equal(t, "B", resp.Quests[0].Title)
}

func TestGetQuestHistory(t *testing.T) {
	ctx := testutil.MockContext()
	f := newQuestFixture()

	now := time.Now()
	f.archiveQuest(t, ctx, "h1", "conv1", entity.QuestCompleted, now.Add(-time.Hour), "user1")
	f.archiveQuest(t, ctx, "h2", "conv1", entity.QuestExpired, now.Add(-2*time.Hour), "user2")
	f.archiveQuest(t, ctx, "h3", "conv2", entity.QuestCompleted, now.Add(-3*time.Hour), "user1")

	resp, err := f.domain.GetHistory(ctx, &model.GetQuestHistoryRequest{
		ConversationID: "conv1",
		Limit:          10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 2)
	require.Equal(t, "h1", resp.Quests[0].ID)
	require.Equal(t, "h2", resp.Quests[1].ID)

	resp, err = f.domain.GetHistory(ctx, &model.GetQuestHistoryRequest{
		UserID: "user1",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 2)
	require.Equal(t, "h1", resp.Quests[0].ID)
	require.Equal(t, "h3", resp.Quests[1].ID)

	// The default limit caps an unbounded request.
	resp, err = f.domain.GetHistory(ctx, &model.GetQuestHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 1)

	_, err = f.domain.GetHistory(ctx, &model.GetQuestHistoryRequest{Limit: -1})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)

	_, err = f.domain.GetHistory(ctx, &model.GetQuestHistoryRequest{Limit: 51})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}

func TestTriggerQuest(t *testing.T) {
	ctx := testutil.MockContext()
	f := newQuestFixture()

	resp, err := f.domain.Trigger(ctx, &model.TriggerQuestRequest{ConversationID: "conv1"})
	require.NoError(t, err)
	require.Equal(t, "active", resp.Quest.Status)
	require.Equal(t, "conv1", resp.Quest.ConversationID)
	require.NotEmpty(t, resp.Quest.MiniAppURL)

	_, err = f.domain.Trigger(ctx, &model.TriggerQuestRequest{ConversationID: "conv1"})
	require.Error(t, err)
	require.Equal(t, errorx.AlreadyExists, err.(errorx.Error).Code)

	_, err = f.domain.Trigger(ctx, &model.TriggerQuestRequest{})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}
