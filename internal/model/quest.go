package model

type Quest struct {
	ID              string   `json:"id,omitempty"`
	ConversationID  string   `json:"conversation_id,omitempty"`
	PersonaID       string   `json:"persona_id,omitempty"`
	Type            string   `json:"type,omitempty"`
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Requirements    []string `json:"requirements,omitempty"`
	MinParticipants int      `json:"min_participants,omitempty"`
	MaxParticipants int      `json:"max_participants,omitempty"`
	RewardXP        int      `json:"reward_xp,omitempty"`
	RewardTokens    float64  `json:"reward_tokens,omitempty"`
	RewardBadges    []string `json:"reward_badges,omitempty"`
	Status          string   `json:"status,omitempty"`
	Participants    []string `json:"participants,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	ExpiresAt       string   `json:"expires_at,omitempty"`
	MiniAppURL      string   `json:"mini_app_url,omitempty"`
}

type GetQuestRequest struct {
	ID string `json:"id"`
}

type GetQuestResponse Quest

type GetListQuestsRequest struct {
	ConversationID string `json:"conversation_id"`
}

type GetListQuestsResponse struct {
	Quests []Quest `json:"quests,omitempty"`
}

type GetQuestHistoryRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Offset         int    `json:"offset"`
	Limit          int    `json:"limit"`
}

type GetQuestHistoryResponse struct {
	Quests []Quest `json:"quests,omitempty"`
}

type TriggerQuestRequest struct {
	ConversationID string `json:"conversation_id"`
}

type TriggerQuestResponse struct {
	Quest Quest `json:"quest,omitempty"`
}
