package model

type JoinQuestRequest struct {
	QuestID string `json:"quest_id"`
}

type JoinQuestResponse struct {
	// Joined is false when the caller was already a participant.
	Joined bool  `json:"joined"`
	Quest  Quest `json:"quest,omitempty"`
}

type LeaveQuestRequest struct {
	QuestID string `json:"quest_id"`
}

type LeaveQuestResponse struct {
	// Left is false when the caller was not a participant.
	Left bool `json:"left"`
}

type CompleteQuestRequest struct {
	QuestID string         `json:"quest_id"`
	Result  map[string]any `json:"result"`
}

type CompleteQuestResponse struct {
	Completion QuestCompletion `json:"completion"`
	Stats      UserStats       `json:"stats"`
}

type QuestCompletion struct {
	ID               string         `json:"id,omitempty"`
	QuestID          string         `json:"quest_id,omitempty"`
	UserID           string         `json:"user_id,omitempty"`
	ConversationID   string         `json:"conversation_id,omitempty"`
	CompletedAt      string         `json:"completed_at,omitempty"`
	Result           map[string]any `json:"result,omitempty"`
	RewardXP         int            `json:"reward_xp,omitempty"`
	RewardTokens     float64        `json:"reward_tokens,omitempty"`
	RewardBadges     []string       `json:"reward_badges,omitempty"`
	SocialScoreDelta int            `json:"social_score_delta,omitempty"`
	ResultingLevel   int            `json:"resulting_level,omitempty"`
}
