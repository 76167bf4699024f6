package entity

import (
	"time"

	"github.com/questforge-lab/backend/pkg/enum"

	"golang.org/x/exp/slices"
)

type QuestType string

var (
	QuestSocialChallenge   = enum.New(QuestType("social_challenge"))
	QuestKnowledgeQuest    = enum.New(QuestType("knowledge_quest"))
	QuestCreativeContest   = enum.New(QuestType("creative_contest"))
	QuestCommunityBuilding = enum.New(QuestType("community_building"))
	QuestCrossProtocol     = enum.New(QuestType("cross_protocol"))
)

type DifficultyType string

var (
	DifficultyEasy   = enum.New(DifficultyType("easy"))
	DifficultyMedium = enum.New(DifficultyType("medium"))
	DifficultyHard   = enum.New(DifficultyType("hard"))
	DifficultyExpert = enum.New(DifficultyType("expert"))
)

type QuestStatusType string

var (
	QuestActive    = enum.New(QuestStatusType("active"))
	QuestCompleted = enum.New(QuestStatusType("completed"))
	QuestExpired   = enum.New(QuestStatusType("expired"))
)

// Quest is a time-boxed, capacity-bounded challenge tied to one conversation.
// Active quests live in the in-memory registry; the row form is written to
// the archive once the quest transitions to completed or expired.
type Quest struct {
	Base

	ConversationID string `gorm:"index"`
	PersonaID      string

	Type            QuestType
	Title           string
	Description     string `gorm:"type:text"`
	Difficulty      DifficultyType
	DurationMinutes int
	Requirements    Array[string]

	MinParticipants int
	MaxParticipants int

	RewardXP     int
	RewardTokens float64
	RewardBadges Array[string]

	Status    QuestStatusType `gorm:"index"`
	ExpiresAt time.Time

	// Participants keeps insertion order; duplicates are forbidden.
	Participants Array[string]
}

// HasParticipant reports whether the user already joined this quest.
func (q *Quest) HasParticipant(userID string) bool {
	return slices.Contains(q.Participants, userID)
}
