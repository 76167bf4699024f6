package entity

import (
	"time"

	"github.com/questforge-lab/backend/pkg/enum"
)

type LeaderBoardPeriodType string

var (
	LeaderBoardPeriodWeek  = enum.New(LeaderBoardPeriodType("week"))
	LeaderBoardPeriodMonth = enum.New(LeaderBoardPeriodType("month"))
	LeaderBoardPeriodTotal = enum.New(LeaderBoardPeriodType("total"))
)

// UserAggregate is one leader board row computed from archived completions.
type UserAggregate struct {
	UserID string
	Value  int64
}

// QuestCompletion is the immutable record of one participant finishing one
// quest. Rewards are snapshotted from the quest at completion time, not
// referenced, so later changes never rewrite history.
type QuestCompletion struct {
	SnowFlakeBase

	QuestID        string `gorm:"index"`
	UserID         string `gorm:"index"`
	ConversationID string `gorm:"index"`

	CompletedAt time.Time `gorm:"index"`
	Result      Map

	RewardXP         int
	RewardTokens     float64
	RewardBadges     Array[string]
	SocialScoreDelta int
	ResultingLevel   int
}
