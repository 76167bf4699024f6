package miniapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/puzpuzpuz/xsync"
	"golang.org/x/exp/slices"
)

// Manager tracks the satellite mini-app record of every launched quest. It
// mirrors the registry's participant lists as a cache for mini-app clients;
// the registry stays the source of truth. Operations on unknown quest ids
// report false instead of failing, so callers treat missing state as nothing
// to do.
type Manager struct {
	records *xsync.MapOf[string, *miniAppRecord]
}

type miniAppRecord struct {
	mu     sync.Mutex
	record entity.MiniAppRecord
}

func NewManager() *Manager {
	return &Manager{records: xsync.NewMapOf[*miniAppRecord]()}
}

// Launch registers the mini-app record of a freshly created quest and derives
// its deep link. Launching the same quest twice returns the existing record.
func (m *Manager) Launch(ctx context.Context, quest entity.Quest) entity.MiniAppRecord {
	record := &miniAppRecord{
		record: entity.MiniAppRecord{
			QuestID:      quest.ID,
			URL:          deepLink(xcontext.Configs(ctx).MiniApp.DeepLinkBase, quest),
			Status:       entity.MiniAppActive,
			Participants: append(entity.Array[string]{}, quest.Participants...),
			LaunchedAt:   quest.CreatedAt,
			ExpiresAt:    quest.ExpiresAt,
		},
	}

	actual, existed := m.records.LoadOrStore(quest.ID, record)
	if existed {
		actual.mu.Lock()
		defer actual.mu.Unlock()
		return cloneRecord(actual.record)
	}

	xcontext.Logger(ctx).Infof("Launched mini-app for quest %s at %s",
		quest.ID, record.record.URL)

	return cloneRecord(record.record)
}

func (m *Manager) Get(ctx context.Context, questID string) (entity.MiniAppRecord, bool) {
	record, ok := m.records.Load(questID)
	if !ok {
		return entity.MiniAppRecord{}, false
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	return cloneRecord(record.record), true
}

// AddParticipant mirrors a registry join on the satellite record.
func (m *Manager) AddParticipant(ctx context.Context, questID, userID string) bool {
	record, ok := m.records.Load(questID)
	if !ok {
		return false
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	if !slices.Contains(record.record.Participants, userID) {
		record.record.Participants = append(record.record.Participants, userID)
	}

	return true
}

// RemoveParticipant mirrors a registry leave on the satellite record.
func (m *Manager) RemoveParticipant(ctx context.Context, questID, userID string) bool {
	record, ok := m.records.Load(questID)
	if !ok {
		return false
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	participants := entity.Array[string]{}
	for _, id := range record.record.Participants {
		if id != userID {
			participants = append(participants, id)
		}
	}

	record.record.Participants = participants
	return true
}

// Close forces the record to expired ahead of its deadline, for example when
// the quest completed. Closing twice or closing an unknown id is harmless.
func (m *Manager) Close(ctx context.Context, questID string) bool {
	record, ok := m.records.Load(questID)
	if !ok {
		return false
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	record.record.Status = entity.MiniAppExpired
	return true
}

// ExpireDue flips every active record whose deadline passed. It backs the
// same sweep that expires quests, so the two views transition together.
func (m *Manager) ExpireDue(ctx context.Context, now time.Time) []entity.MiniAppRecord {
	var expired []entity.MiniAppRecord
	m.records.Range(func(questID string, record *miniAppRecord) bool {
		record.mu.Lock()
		if record.record.Status == entity.MiniAppActive && !record.record.ExpiresAt.After(now) {
			record.record.Status = entity.MiniAppExpired
			expired = append(expired, cloneRecord(record.record))
		}
		record.mu.Unlock()
		return true
	})

	return expired
}

// deepLink builds the telegram mini-app start link of a quest. The startapp
// payload is limited to 64 characters of [A-Za-z0-9_-], which fits the quest
// type plus a uuid.
func deepLink(base string, quest entity.Quest) string {
	return fmt.Sprintf("%s?startapp=quest_%s_%s", base, quest.Type, quest.ID)
}

func cloneRecord(record entity.MiniAppRecord) entity.MiniAppRecord {
	clone := record
	clone.Participants = append(entity.Array[string]{}, record.Participants...)
	return clone
}
