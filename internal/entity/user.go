package entity

import (
	"time"

	"golang.org/x/exp/slices"
)

// UserProfile accumulates progression of one participant across quests. It is
// created lazily on the first interaction and lives for the process lifetime.
//
// Level is always derived as floor(XP/100)+1 and must never be set
// independently of XP.
type UserProfile struct {
	UserID      string
	XP          int
	Level       int
	SocialScore int

	CompletedQuestIDs Array[string]
	Preferences       Array[QuestType]

	LastActiveAt time.Time
}

// HasCompleted reports whether the quest id is already in the completed set.
func (p *UserProfile) HasCompleted(questID string) bool {
	return slices.Contains(p.CompletedQuestIDs, questID)
}
