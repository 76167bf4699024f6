package entity

import "time"

// ConversationAnalytics is the rolling signal snapshot of one conversation.
// It is tracker-owned, in-memory only, created on the first observed message
// and reset (not deleted) whenever a quest is created for the conversation.
type ConversationAnalytics struct {
	ConversationID string

	MessagesSinceLastQuest int
	ActiveUsers            int

	// EngagementRatio is active users divided by total member count, in
	// [0, 1]. Zero when the member count is unknown.
	EngagementRatio float64

	MemberCount        int
	LastMessageAt      time.Time
	LastQuestCreatedAt time.Time
}
