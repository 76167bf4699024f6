package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/enum"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
)

// QuestRegistry is the authoritative table of quest records. It is the single
// writer of quest state: every mutation goes through Create, Update, or
// ExpireDue, which serialize on a per-quest lock. Reads return detached
// copies, so callers never observe a record mid-mutation.
type QuestRegistry interface {
	Create(ctx context.Context, quest *entity.Quest) error
	Get(ctx context.Context, id string) (entity.Quest, error)
	ListActive(ctx context.Context, conversationID string) []entity.Quest
	GetActiveByConversation(ctx context.Context, conversationID string) (entity.Quest, bool)
	Update(ctx context.Context, id string, fn func(quest *entity.Quest) error) (entity.Quest, error)
	ExpireDue(ctx context.Context, now time.Time) []entity.Quest
}

type questRecord struct {
	mu    sync.Mutex
	quest entity.Quest
}

type questRegistry struct {
	quests *xsync.MapOf[string, *questRecord]

	// actives maps a conversation id to its single active quest id. A
	// conversation disappears from this index as soon as its quest
	// transitions, while the record itself stays in quests for the process
	// lifetime so late calls still resolve the id.
	actives *xsync.MapOf[string, string]
}

func NewQuestRegistry() *questRegistry {
	return &questRegistry{
		quests:  xsync.NewMapOf[*questRecord](),
		actives: xsync.NewMapOf[string](),
	}
}

// Create validates the quest definition, assigns identity and lifecycle
// fields, and registers it as the active quest of its conversation.
func (r *questRegistry) Create(ctx context.Context, quest *entity.Quest) error {
	if err := validateDefinition(quest); err != nil {
		return err
	}

	quest.ID = uuid.NewString()
	quest.CreatedAt = time.Now()
	quest.Status = entity.QuestActive
	quest.ExpiresAt = quest.CreatedAt.Add(time.Duration(quest.DurationMinutes) * time.Minute)
	quest.Participants = entity.Array[string]{}

	if _, existed := r.actives.LoadOrStore(quest.ConversationID, quest.ID); existed {
		return errorx.New(errorx.AlreadyExists,
			"Conversation already has an active quest")
	}

	r.quests.Store(quest.ID, &questRecord{quest: *quest})
	xcontext.Logger(ctx).Infof("Registered quest %s for conversation %s",
		quest.ID, quest.ConversationID)

	return nil
}

func (r *questRegistry) Get(ctx context.Context, id string) (entity.Quest, error) {
	record, ok := r.quests.Load(id)
	if !ok {
		return entity.Quest{}, errorx.New(errorx.QuestNotFound, "Not found quest")
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	return cloneQuest(record.quest), nil
}

// ListActive returns active quests ordered by creation time. An empty
// conversation id lists across all conversations.
func (r *questRegistry) ListActive(ctx context.Context, conversationID string) []entity.Quest {
	if conversationID != "" {
		if quest, ok := r.GetActiveByConversation(ctx, conversationID); ok {
			return []entity.Quest{quest}
		}

		return nil
	}

	var quests []entity.Quest
	r.quests.Range(func(id string, record *questRecord) bool {
		record.mu.Lock()
		if record.quest.Status == entity.QuestActive {
			quests = append(quests, cloneQuest(record.quest))
		}
		record.mu.Unlock()
		return true
	})

	sort.Slice(quests, func(i, j int) bool {
		return quests[i].CreatedAt.Before(quests[j].CreatedAt)
	})

	return quests
}

func (r *questRegistry) GetActiveByConversation(
	ctx context.Context, conversationID string,
) (entity.Quest, bool) {
	id, ok := r.actives.Load(conversationID)
	if !ok {
		return entity.Quest{}, false
	}

	record, ok := r.quests.Load(id)
	if !ok {
		return entity.Quest{}, false
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	if record.quest.Status != entity.QuestActive {
		return entity.Quest{}, false
	}

	return cloneQuest(record.quest), true
}

// Update runs fn on the quest under its record lock and returns a copy of the
// result. If fn returns an error, the quest is left untouched. A transition
// away from active removes the conversation from the active index.
func (r *questRegistry) Update(
	ctx context.Context, id string, fn func(quest *entity.Quest) error,
) (entity.Quest, error) {
	record, ok := r.quests.Load(id)
	if !ok {
		return entity.Quest{}, errorx.New(errorx.QuestNotFound, "Not found quest")
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	backup := cloneQuest(record.quest)
	if err := fn(&record.quest); err != nil {
		record.quest = backup
		return entity.Quest{}, err
	}

	if backup.Status == entity.QuestActive && record.quest.Status != entity.QuestActive {
		r.dropActiveIndex(record.quest.ConversationID, id)
	}

	return cloneQuest(record.quest), nil
}

// ExpireDue transitions every active quest whose deadline passed and returns
// them. A quest is returned at most once across all calls.
func (r *questRegistry) ExpireDue(ctx context.Context, now time.Time) []entity.Quest {
	var expired []entity.Quest
	r.quests.Range(func(id string, record *questRecord) bool {
		record.mu.Lock()
		if record.quest.Status == entity.QuestActive && !record.quest.ExpiresAt.After(now) {
			record.quest.Status = entity.QuestExpired
			r.dropActiveIndex(record.quest.ConversationID, id)
			expired = append(expired, cloneQuest(record.quest))
		}
		record.mu.Unlock()
		return true
	})

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].CreatedAt.Before(expired[j].CreatedAt)
	})

	return expired
}

// dropActiveIndex removes the conversation mapping if it still points at the
// given quest. Create never overwrites an existing mapping, so another quest
// cannot have taken the slot while this one was active.
func (r *questRegistry) dropActiveIndex(conversationID, questID string) {
	if current, ok := r.actives.Load(conversationID); ok && current == questID {
		r.actives.Delete(conversationID)
	}
}

func validateDefinition(quest *entity.Quest) error {
	if quest.ConversationID == "" {
		return errorx.New(errorx.InvalidQuestDefinition, "Quest is bound to no conversation")
	}

	if quest.Title == "" {
		return errorx.New(errorx.InvalidQuestDefinition, "Quest has no title")
	}

	if _, err := enum.ToEnum[entity.QuestType](string(quest.Type)); err != nil {
		return errorx.New(errorx.InvalidQuestDefinition, "Invalid quest type %s", quest.Type)
	}

	if _, err := enum.ToEnum[entity.DifficultyType](string(quest.Difficulty)); err != nil {
		return errorx.New(errorx.InvalidQuestDefinition, "Invalid difficulty %s", quest.Difficulty)
	}

	if quest.DurationMinutes <= 0 {
		return errorx.New(errorx.InvalidQuestDefinition, "Invalid duration %d", quest.DurationMinutes)
	}

	if quest.MinParticipants < 1 || quest.MaxParticipants < quest.MinParticipants {
		return errorx.New(errorx.InvalidQuestDefinition, "Invalid capacity [%d, %d]",
			quest.MinParticipants, quest.MaxParticipants)
	}

	if quest.RewardXP < 0 {
		return errorx.New(errorx.InvalidQuestDefinition, "Invalid reward of %d xp", quest.RewardXP)
	}

	if quest.RewardTokens < 0 {
		return errorx.New(errorx.InvalidQuestDefinition,
			"Invalid reward of %g tokens", quest.RewardTokens)
	}

	return nil
}

func cloneQuest(quest entity.Quest) entity.Quest {
	clone := quest
	clone.Requirements = append(entity.Array[string]{}, quest.Requirements...)
	clone.RewardBadges = append(entity.Array[string]{}, quest.RewardBadges...)
	clone.Participants = append(entity.Array[string]{}, quest.Participants...)
	return clone
}
