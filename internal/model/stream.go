package model

import "time"

// ChatMessage is one inbound tuple of the conversation stream.
type ChatMessage struct {
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	SentAt         time.Time `json:"sent_at"`
	MemberCount    int       `json:"member_count"`
}

// Announcement is the outbound text published for conversation gateways that
// deliver quest announcements themselves.
type Announcement struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// AnalyticsSnapshot is the conversation signal view handed to the proposer.
type AnalyticsSnapshot struct {
	ConversationID         string  `json:"conversation_id" structs:"conversation_id"`
	MessagesSinceLastQuest int     `json:"messages_since_last_quest" structs:"messages_since_last_quest"`
	ActiveUsers            int     `json:"active_users" structs:"active_users"`
	EngagementRatio        float64 `json:"engagement_ratio" structs:"engagement_ratio"`
	MemberCount            int     `json:"member_count" structs:"member_count"`
}

// ProposeQuestRequest is the payload sent to a quest proposer. QuestType is
// the persona's preferred type, a hint the proposer may override.
type ProposeQuestRequest struct {
	PersonaID      string            `json:"persona_id" structs:"persona_id"`
	QuestType      string            `json:"quest_type" structs:"quest_type"`
	Analytics      AnalyticsSnapshot `json:"analytics" structs:"analytics"`
	RecentMessages string            `json:"recent_messages" structs:"recent_messages"`
	MemberCount    int               `json:"member_count" structs:"member_count"`
}

// ServeSubscriptionRequest opens an event subscription over a websocket. It
// carries no parameters; the caller identity comes from the request context.
type ServeSubscriptionRequest struct{}

// QuestProposal is a candidate quest definition returned by a proposer. It is
// validated by the registry before any entry is created.
type QuestProposal struct {
	Type            string   `json:"type" mapstructure:"type"`
	Title           string   `json:"title" mapstructure:"title"`
	Description     string   `json:"description" mapstructure:"description"`
	Difficulty      string   `json:"difficulty" mapstructure:"difficulty"`
	DurationMinutes int      `json:"duration_minutes" mapstructure:"duration_minutes"`
	Requirements    []string `json:"requirements" mapstructure:"requirements"`
	MinParticipants int      `json:"min_participants" mapstructure:"min_participants"`
	MaxParticipants int      `json:"max_participants" mapstructure:"max_participants"`
	RewardXP        int      `json:"reward_xp" mapstructure:"reward_xp"`
	RewardTokens    float64  `json:"reward_tokens" mapstructure:"reward_tokens"`
	RewardBadges    []string `json:"reward_badges" mapstructure:"reward_badges"`
}
