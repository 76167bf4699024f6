package model

type UserStats struct {
	UserID          string   `json:"user_id,omitempty"`
	XP              int      `json:"xp"`
	Level           int      `json:"level"`
	SocialScore     int      `json:"social_score"`
	XPToNextLevel   int      `json:"xp_to_next_level"`
	CompletedQuests int      `json:"completed_quests"`
	Preferences     []string `json:"preferences,omitempty"`
	LastActiveAt    string   `json:"last_active_at,omitempty"`
}

type GetUserStatsRequest struct {
	UserID string `json:"user_id"`
}

type GetUserStatsResponse struct {
	Stats             UserStats         `json:"stats"`
	RecentCompletions []QuestCompletion `json:"recent_completions,omitempty"`
}

type LeaderBoardEntry struct {
	UserID string `json:"user_id"`
	Value  int    `json:"value"`
}

type GetLeaderBoardRequest struct {
	// Period is week, month, or total.
	Period string `json:"period"`

	// OrderedBy is xp or social_score.
	OrderedBy string `json:"ordered_by"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLeaderBoardResponse struct {
	LeaderBoard []LeaderBoardEntry `json:"leaderboard,omitempty"`
}
