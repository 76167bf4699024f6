package miniapp

import (
	"context"
	"testing"
	"time"

	"github.com/questforge-lab/backend/config"
	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return xcontext.WithConfigs(context.Background(), config.Configs{
		MiniApp: config.MiniAppConfigs{DeepLinkBase: "https://t.me/forgebot/quests"},
	})
}

func launchedQuest() entity.Quest {
	now := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)
	return entity.Quest{
		Base:           entity.Base{ID: "q1", CreatedAt: now},
		ConversationID: "c1",
		Type:           entity.QuestSocialChallenge,
		Status:         entity.QuestActive,
		ExpiresAt:      now.Add(time.Hour),
		Participants:   entity.Array[string]{},
	}
}

func TestManagerLaunch(t *testing.T) {
	ctx := testContext()
	m := NewManager()

	record := m.Launch(ctx, launchedQuest())
	require.Equal(t, "q1", record.QuestID)
	require.Equal(t, entity.MiniAppActive, record.Status)
	require.Equal(t,
		"https://t.me/forgebot/quests?startapp=quest_social_challenge_q1", record.URL)

	// Launching again keeps the original record.
	m.AddParticipant(ctx, "q1", "u1")
	again := m.Launch(ctx, launchedQuest())
	require.Equal(t, entity.Array[string]{"u1"}, again.Participants)
}

func TestManagerParticipantsMirror(t *testing.T) {
	ctx := testContext()
	m := NewManager()
	m.Launch(ctx, launchedQuest())

	require.True(t, m.AddParticipant(ctx, "q1", "u1"))
	require.True(t, m.AddParticipant(ctx, "q1", "u1"))
	require.True(t, m.AddParticipant(ctx, "q1", "u2"))

	record, ok := m.Get(ctx, "q1")
	require.True(t, ok)
	require.Equal(t, entity.Array[string]{"u1", "u2"}, record.Participants)

	require.True(t, m.RemoveParticipant(ctx, "q1", "u1"))
	record, _ = m.Get(ctx, "q1")
	require.Equal(t, entity.Array[string]{"u2"}, record.Participants)

	// Unknown quest ids are nothing to do, not errors.
	require.False(t, m.AddParticipant(ctx, "missing", "u1"))
	require.False(t, m.RemoveParticipant(ctx, "missing", "u1"))
	_, ok = m.Get(ctx, "missing")
	require.False(t, ok)
}

func TestManagerClose(t *testing.T) {
	ctx := testContext()
	m := NewManager()
	m.Launch(ctx, launchedQuest())

	require.True(t, m.Close(ctx, "q1"))
	record, _ := m.Get(ctx, "q1")
	require.Equal(t, entity.MiniAppExpired, record.Status)

	// Idempotent.
	require.True(t, m.Close(ctx, "q1"))
	require.False(t, m.Close(ctx, "missing"))
}

func TestManagerExpireDue(t *testing.T) {
	ctx := testContext()
	m := NewManager()

	quest := launchedQuest()
	m.Launch(ctx, quest)

	fresh := launchedQuest()
	fresh.ID = "q2"
	fresh.ExpiresAt = quest.ExpiresAt.Add(time.Hour)
	m.Launch(ctx, fresh)

	expired := m.ExpireDue(ctx, quest.ExpiresAt)
	require.Len(t, expired, 1)
	require.Equal(t, "q1", expired[0].QuestID)
	require.Equal(t, entity.MiniAppExpired, expired[0].Status)

	require.Empty(t, m.ExpireDue(ctx, quest.ExpiresAt))

	record, _ := m.Get(ctx, "q2")
	require.Equal(t, entity.MiniAppActive, record.Status)
}
