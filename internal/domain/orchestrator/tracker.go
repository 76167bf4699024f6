package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/puzpuzpuz/xsync"
)

// recentMessageLimit bounds the trailing text kept per conversation. The text
// feeds persona matching and the proposer prompt, nothing else.
const recentMessageLimit = 10

type conversationState struct {
	mu        sync.Mutex
	analytics entity.ConversationAnalytics

	// activity maps sender id to the last time they spoke. Senders falling
	// out of the active window are pruned on every refresh.
	activity map[string]time.Time
	recent   []string
}

// Tracker accumulates per-conversation engagement signals from the chat
// stream. It owns all analytics state; everything it hands out is a copy.
type Tracker struct {
	conversations *xsync.MapOf[string, *conversationState]
}

func NewTracker() *Tracker {
	return &Tracker{conversations: xsync.NewMapOf[*conversationState]()}
}

// Observe folds one chat message into the conversation analytics. Messages
// without a conversation or sender are dropped.
func (t *Tracker) Observe(ctx context.Context, msg model.ChatMessage) {
	if msg.ConversationID == "" || msg.SenderID == "" {
		return
	}

	sentAt := msg.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	state := t.load(msg.ConversationID)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.analytics.MessagesSinceLastQuest++
	if sentAt.After(state.analytics.LastMessageAt) {
		state.analytics.LastMessageAt = sentAt
	}

	if msg.MemberCount > 0 {
		state.analytics.MemberCount = msg.MemberCount
	}

	if last, ok := state.activity[msg.SenderID]; !ok || sentAt.After(last) {
		state.activity[msg.SenderID] = sentAt
	}

	if msg.Text != "" {
		state.recent = append(state.recent, msg.Text)
		if len(state.recent) > recentMessageLimit {
			state.recent = state.recent[len(state.recent)-recentMessageLimit:]
		}
	}

	state.refresh(xcontext.Configs(ctx).Engine.ActiveWindow, sentAt)
}

// Snapshot recomputes the active-user window at now and returns a copy of the
// analytics. The second result reports whether the conversation was ever
// observed.
func (t *Tracker) Snapshot(ctx context.Context, conversationID string) (entity.ConversationAnalytics, bool) {
	state, ok := t.conversations.Load(conversationID)
	if !ok {
		return entity.ConversationAnalytics{}, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	state.refresh(xcontext.Configs(ctx).Engine.ActiveWindow, time.Now())
	return state.analytics, true
}

// RecentText returns the trailing messages of the conversation as one block,
// oldest first.
func (t *Tracker) RecentText(conversationID string) string {
	state, ok := t.conversations.Load(conversationID)
	if !ok {
		return ""
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return strings.Join(state.recent, "\n")
}

// Reset starts a new signal epoch after a quest was created. The message
// counter and trailing text restart from zero while sender activity keeps
// its time-based window.
func (t *Tracker) Reset(ctx context.Context, conversationID string, at time.Time) {
	state := t.load(conversationID)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.analytics.MessagesSinceLastQuest = 0
	state.analytics.LastQuestCreatedAt = at
	state.recent = nil
}

// PruneIdle drops conversations without any signal for the configured idle
// timeout and returns how many were removed.
func (t *Tracker) PruneIdle(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-xcontext.Configs(ctx).Engine.AnalyticsIdleTimeout)

	pruned := 0
	t.conversations.Range(func(conversationID string, state *conversationState) bool {
		state.mu.Lock()
		lastSignal := state.analytics.LastMessageAt
		if state.analytics.LastQuestCreatedAt.After(lastSignal) {
			lastSignal = state.analytics.LastQuestCreatedAt
		}
		state.mu.Unlock()

		if lastSignal.Before(cutoff) {
			t.conversations.Delete(conversationID)
			pruned++
		}

		return true
	})

	return pruned
}

func (t *Tracker) load(conversationID string) *conversationState {
	state, _ := t.conversations.LoadOrStore(conversationID, &conversationState{
		analytics: entity.ConversationAnalytics{ConversationID: conversationID},
		activity:  map[string]time.Time{},
	})

	return state
}

// refresh must be called with the state lock held.
func (s *conversationState) refresh(window time.Duration, now time.Time) {
	cutoff := now.Add(-window)
	for sender, last := range s.activity {
		if last.Before(cutoff) {
			delete(s.activity, sender)
		}
	}

	s.analytics.ActiveUsers = len(s.activity)

	s.analytics.EngagementRatio = 0
	if s.analytics.MemberCount > 0 {
		s.analytics.EngagementRatio = float64(s.analytics.ActiveUsers) / float64(s.analytics.MemberCount)
		if s.analytics.EngagementRatio > 1 {
			s.analytics.EngagementRatio = 1
		}
	}
}
