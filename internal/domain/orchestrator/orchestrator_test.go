package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

type fakeProposer struct {
	mu       sync.Mutex
	proposal model.QuestProposal
	err      error
	requests []model.ProposeQuestRequest
}

func (p *fakeProposer) Propose(
	ctx context.Context, req *model.ProposeQuestRequest,
) (*model.QuestProposal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, *req)
	if p.err != nil {
		return nil, p.err
	}

	proposal := p.proposal
	return &proposal, nil
}

func (p *fakeProposer) calls() []model.ProposeQuestRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.ProposeQuestRequest{}, p.requests...)
}

type fakeAnnouncer struct {
	mu            sync.Mutex
	announcements []model.Announcement
}

func (a *fakeAnnouncer) Announce(ctx context.Context, announcement model.Announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.announcements = append(a.announcements, announcement)
	return nil
}

func (a *fakeAnnouncer) all() []model.Announcement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Announcement{}, a.announcements...)
}

type orchestratorFixture struct {
	tracker       *Tracker
	questRegistry registry.QuestRegistry
	miniApps      *miniapp.Manager
	broadcaster   *notification.Broadcaster
	proposer      *fakeProposer
	announcer     *fakeAnnouncer
	orchestrator  *Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		tracker:       NewTracker(),
		questRegistry: registry.NewQuestRegistry(),
		miniApps:      miniapp.NewManager(),
		broadcaster:   notification.NewBroadcaster(),
		proposer: &fakeProposer{proposal: model.QuestProposal{
			Type:            "social_challenge",
			Title:           "Speak Up Sprint",
			Description:     "Post one take the room has not heard yet.",
			Difficulty:      "easy",
			DurationMinutes: 45,
			MinParticipants: 2,
			MaxParticipants: 10,
			RewardXP:        50,
		}},
		announcer: &fakeAnnouncer{},
	}

	f.orchestrator = NewOrchestrator(
		f.tracker,
		DefaultPersonaBook(),
		f.proposer,
		f.announcer,
		f.questRegistry,
		f.miniApps,
		f.broadcaster,
	)

	return f
}

func (f *orchestratorFixture) sendMessages(ctx context.Context, conversationID string, n int) {
	for i := 0; i < n; i++ {
		sender := "user1"
		if i%2 == 0 {
			sender = "user2"
		}

		f.orchestrator.OnChatMessage(ctx, model.ChatMessage{
			ConversationID: conversationID,
			SenderID:       sender,
			Text:           "how does this even work, teach me",
			MemberCount:    3,
		})
	}
}

func TestOrchestratorCreatesQuest(t *testing.T) {
	ctx := testutil.MockContext()
	f := newOrchestratorFixture()

	watcher := notification.NewSession("watcher")
	f.broadcaster.Register(watcher)

	// Ten messages from two senders in a three member chat clear every
	// threshold on the last one. The announcement is the final pipeline step,
	// so waiting on it settles every other effect too.
	f.sendMessages(ctx, "conv1", 10)
	require.Eventually(t, func() bool {
		return len(f.announcer.all()) == 1
	}, time.Second, 10*time.Millisecond)

	quest, ok := f.questRegistry.GetActiveByConversation(ctx, "conv1")
	require.True(t, ok)

	require.Equal(t, "mentor", quest.PersonaID)
	require.Equal(t, entity.QuestSocialChallenge, quest.Type)
	require.Equal(t, "Speak Up Sprint", quest.Title)

	calls := f.proposer.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "mentor", calls[0].PersonaID)
	require.Equal(t, "knowledge_quest", calls[0].QuestType)
	require.Equal(t, 10, calls[0].Analytics.MessagesSinceLastQuest)
	require.Equal(t, 2, calls[0].Analytics.ActiveUsers)
	require.Contains(t, calls[0].RecentMessages, "teach me")

	record, launched := f.miniApps.Get(ctx, quest.ID)
	require.True(t, launched)
	require.Contains(t, record.URL, quest.ID)

	// Creation starts a new signal epoch.
	analytics, _ := f.tracker.Snapshot(ctx, "conv1")
	require.Equal(t, 0, analytics.MessagesSinceLastQuest)
	require.Equal(t, quest.CreatedAt, analytics.LastQuestCreatedAt)

	require.Equal(t, "quest_created", (<-watcher.C).Op)

	announcements := f.announcer.all()
	require.Len(t, announcements, 1)
	require.Equal(t, "conv1", announcements[0].ConversationID)
	require.Contains(t, announcements[0].Text, "Knowledge is calling.")
	require.Contains(t, announcements[0].Text, "Speak Up Sprint")
}

func TestOrchestratorOneActiveQuestPerConversation(t *testing.T) {
	ctx := testutil.MockContext()
	f := newOrchestratorFixture()

	f.sendMessages(ctx, "conv1", 10)
	require.Eventually(t, func() bool {
		_, ok := f.questRegistry.GetActiveByConversation(ctx, "conv1")
		return ok
	}, time.Second, 10*time.Millisecond)

	// More traffic while the quest runs must not call the proposer again.
	f.sendMessages(ctx, "conv1", 15)
	time.Sleep(50 * time.Millisecond)

	require.Len(t, f.proposer.calls(), 1)
	require.Len(t, f.questRegistry.ListActive(ctx, "conv1"), 1)
}

func TestOrchestratorProposerFailure(t *testing.T) {
	ctx := testutil.MockContext()
	f := newOrchestratorFixture()
	f.proposer.err = errors.New("proposer down")

	f.sendMessages(ctx, "conv1", 10)

	require.Eventually(t, func() bool {
		return len(f.proposer.calls()) == 1
	}, time.Second, 10*time.Millisecond)

	// No quest this cycle, and the signals are kept so the next message can
	// retry.
	_, ok := f.questRegistry.GetActiveByConversation(ctx, "conv1")
	require.False(t, ok)

	analytics, _ := f.tracker.Snapshot(ctx, "conv1")
	require.Equal(t, 10, analytics.MessagesSinceLastQuest)
}

func TestOrchestratorTrigger(t *testing.T) {
	ctx := testutil.MockContext()
	f := newOrchestratorFixture()

	// A manual trigger works without any observed traffic.
	quest, err := f.orchestrator.Trigger(ctx, "conv1")
	require.NoError(t, err)
	require.Equal(t, entity.QuestActive, quest.Status)
	require.Equal(t, "conv1", quest.ConversationID)

	_, err = f.orchestrator.Trigger(ctx, "conv1")
	require.Error(t, err)
	require.Equal(t, errorx.AlreadyExists, err.(errorx.Error).Code)

	f.proposer.err = errors.New("proposer down")
	_, err = f.orchestrator.Trigger(ctx, "conv2")
	require.Error(t, err)
}

func TestOrchestratorInvalidProposal(t *testing.T) {
	ctx := testutil.MockContext()
	f := newOrchestratorFixture()
	f.proposer.proposal.Title = ""

	_, err := f.orchestrator.Trigger(ctx, "conv1")
	require.Error(t, err)
	require.Equal(t, errorx.InvalidQuestDefinition, err.(errorx.Error).Code)

	// The failed attempt must not hold the conversation slot.
	f.proposer.proposal.Title = "Speak Up Sprint"
	_, err = f.orchestrator.Trigger(ctx, "conv1")
	require.NoError(t, err)
}