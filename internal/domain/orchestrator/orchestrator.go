package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questforge-lab/backend/internal/client"
	"github.com/questforge-lab/backend/internal/common"
	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/domain/notification/event"
	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/puzpuzpuz/xsync"
)

// Orchestrator sequences the whole creation pipeline: signal tracking, the
// creation gate, persona selection, the proposer call, registry insert,
// mini-app launch, and the announcement. It is the only writer of quests.
type Orchestrator struct {
	tracker        *Tracker
	personaBook    *PersonaBook
	proposer       client.QuestProposer
	announcer      client.Announcer
	questRegistry  registry.QuestRegistry
	miniAppManager *miniapp.Manager
	broadcaster    *notification.Broadcaster

	// inflight limits each conversation to one creation attempt at a time.
	inflight *xsync.MapOf[string, struct{}]
}

func NewOrchestrator(
	tracker *Tracker,
	personaBook *PersonaBook,
	proposer client.QuestProposer,
	announcer client.Announcer,
	questRegistry registry.QuestRegistry,
	miniAppManager *miniapp.Manager,
	broadcaster *notification.Broadcaster,
) *Orchestrator {
	return &Orchestrator{
		tracker:        tracker,
		personaBook:    personaBook,
		proposer:       proposer,
		announcer:      announcer,
		questRegistry:  questRegistry,
		miniAppManager: miniAppManager,
		broadcaster:    broadcaster,
		inflight:       xsync.NewMapOf[struct{}](),
	}
}

// OnChatMessage folds one message into the conversation signals and starts a
// creation attempt once every gate condition holds. The proposer runs in the
// background so the message stream is never blocked on it.
func (o *Orchestrator) OnChatMessage(ctx context.Context, msg model.ChatMessage) {
	if msg.ConversationID == "" || msg.SenderID == "" {
		xcontext.Logger(ctx).Debugf("Dropped a malformed chat message")
		return
	}

	common.PromCounters[common.ChatMessageTotal].WithLabelValues(msg.ConversationID).Inc()
	o.tracker.Observe(ctx, msg)

	analytics, ok := o.tracker.Snapshot(ctx, msg.ConversationID)
	if !ok {
		return
	}

	_, hasActive := o.questRegistry.GetActiveByConversation(ctx, msg.ConversationID)
	pass, reason := creationGate(xcontext.Configs(ctx).Engine, analytics, hasActive, time.Now())
	if !pass {
		xcontext.Logger(ctx).Debugf("Skip quest creation for %s: %s", msg.ConversationID, reason)
		return
	}

	if _, loaded := o.inflight.LoadOrStore(msg.ConversationID, struct{}{}); loaded {
		return
	}

	go func() {
		defer o.inflight.Delete(msg.ConversationID)
		if _, err := o.createQuest(ctx, analytics); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot create a quest for %s: %v", msg.ConversationID, err)
		}
	}()
}

// Trigger creates a quest right now, skipping every gate condition except the
// one-active-quest rule.
func (o *Orchestrator) Trigger(ctx context.Context, conversationID string) (entity.Quest, error) {
	if _, hasActive := o.questRegistry.GetActiveByConversation(ctx, conversationID); hasActive {
		return entity.Quest{}, errorx.New(errorx.AlreadyExists, "Conversation already has an active quest")
	}

	if _, loaded := o.inflight.LoadOrStore(conversationID, struct{}{}); loaded {
		return entity.Quest{}, errorx.New(errorx.AlreadyExists, "A quest is already being created")
	}
	defer o.inflight.Delete(conversationID)

	analytics, ok := o.tracker.Snapshot(ctx, conversationID)
	if !ok {
		analytics = entity.ConversationAnalytics{ConversationID: conversationID}
	}

	return o.createQuest(ctx, analytics)
}

func (o *Orchestrator) createQuest(
	ctx context.Context, analytics entity.ConversationAnalytics,
) (entity.Quest, error) {
	conversationID := analytics.ConversationID
	recent := o.tracker.RecentText(conversationID)
	persona := o.personaBook.Select(recent)

	proposal, err := o.proposer.Propose(ctx, &model.ProposeQuestRequest{
		PersonaID:      persona.ID,
		QuestType:      persona.QuestType,
		Analytics:      model.ConvertAnalytics(&analytics),
		RecentMessages: recent,
		MemberCount:    analytics.MemberCount,
	})
	if err != nil {
		common.PromCounters[common.ProposerFailureTotal].WithLabelValues("unavailable").Inc()
		return entity.Quest{}, err
	}

	quest := &entity.Quest{
		ConversationID:  conversationID,
		PersonaID:       persona.ID,
		Type:            entity.QuestType(proposal.Type),
		Title:           proposal.Title,
		Description:     proposal.Description,
		Difficulty:      entity.DifficultyType(proposal.Difficulty),
		DurationMinutes: proposal.DurationMinutes,
		Requirements:    proposal.Requirements,
		MinParticipants: proposal.MinParticipants,
		MaxParticipants: proposal.MaxParticipants,
		RewardXP:        proposal.RewardXP,
		RewardTokens:    proposal.RewardTokens,
		RewardBadges:    proposal.RewardBadges,
	}

	if err := o.questRegistry.Create(ctx, quest); err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) && errx.Code == errorx.InvalidQuestDefinition {
			common.PromCounters[common.ProposerFailureTotal].WithLabelValues("invalid_proposal").Inc()
		}

		return entity.Quest{}, err
	}

	record := o.miniAppManager.Launch(ctx, *quest)
	o.tracker.Reset(ctx, conversationID, quest.CreatedAt)

	o.broadcaster.Publish(ctx, event.New(
		event.QuestCreatedEvent(model.ConvertQuest(quest, record.URL)),
		event.Metadata{},
	))

	announcement := model.Announcement{
		ConversationID: conversationID,
		Text:           announcementText(persona, quest),
	}
	if err := o.announcer.Announce(ctx, announcement); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot announce quest %s: %v", quest.ID, err)
	}

	common.PromCounters[common.QuestTransitionTotal].WithLabelValues("created").Inc()
	xcontext.Logger(ctx).Infof("Created quest %s for conversation %s", quest.ID, conversationID)
	return *quest, nil
}

func announcementText(persona Persona, quest *entity.Quest) string {
	return fmt.Sprintf("%s A new quest begins: %s (%s, %d XP). You have %d minutes.",
		persona.Greeting, quest.Title, quest.Difficulty, quest.RewardXP, quest.DurationMinutes)
}
