package model

import (
	"strconv"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertQuest(quest *entity.Quest, miniAppURL string) Quest {
	if quest == nil {
		return Quest{}
	}

	return Quest{
		ID:              quest.ID,
		ConversationID:  quest.ConversationID,
		PersonaID:       quest.PersonaID,
		Type:            string(quest.Type),
		Title:           quest.Title,
		Description:     quest.Description,
		Difficulty:      string(quest.Difficulty),
		DurationMinutes: quest.DurationMinutes,
		Requirements:    quest.Requirements,
		MinParticipants: quest.MinParticipants,
		MaxParticipants: quest.MaxParticipants,
		RewardXP:        quest.RewardXP,
		RewardTokens:    quest.RewardTokens,
		RewardBadges:    quest.RewardBadges,
		Status:          string(quest.Status),
		Participants:    quest.Participants,
		CreatedAt:       quest.CreatedAt.Format(DefaultTimeLayout),
		ExpiresAt:       quest.ExpiresAt.Format(DefaultTimeLayout),
		MiniAppURL:      miniAppURL,
	}
}

func ConvertQuestCompletion(completion *entity.QuestCompletion) QuestCompletion {
	if completion == nil {
		return QuestCompletion{}
	}

	return QuestCompletion{
		ID:               strconv.FormatInt(completion.ID, 10),
		QuestID:          completion.QuestID,
		UserID:           completion.UserID,
		ConversationID:   completion.ConversationID,
		CompletedAt:      completion.CompletedAt.Format(DefaultTimeLayout),
		Result:           completion.Result,
		RewardXP:         completion.RewardXP,
		RewardTokens:     completion.RewardTokens,
		RewardBadges:     completion.RewardBadges,
		SocialScoreDelta: completion.SocialScoreDelta,
		ResultingLevel:   completion.ResultingLevel,
	}
}

func ConvertAnalytics(analytics *entity.ConversationAnalytics) AnalyticsSnapshot {
	if analytics == nil {
		return AnalyticsSnapshot{}
	}

	return AnalyticsSnapshot{
		ConversationID:         analytics.ConversationID,
		MessagesSinceLastQuest: analytics.MessagesSinceLastQuest,
		ActiveUsers:            analytics.ActiveUsers,
		EngagementRatio:        analytics.EngagementRatio,
		MemberCount:            analytics.MemberCount,
	}
}

func ConvertUserStats(profile *entity.UserProfile) UserStats {
	if profile == nil {
		return UserStats{}
	}

	preferences := []string{}
	for _, p := range profile.Preferences {
		preferences = append(preferences, string(p))
	}

	lastActive := ""
	if !profile.LastActiveAt.IsZero() {
		lastActive = profile.LastActiveAt.Format(DefaultTimeLayout)
	}

	return UserStats{
		UserID:          profile.UserID,
		XP:              profile.XP,
		Level:           profile.Level,
		SocialScore:     profile.SocialScore,
		XPToNextLevel:   profile.Level*100 - profile.XP,
		CompletedQuests: len(profile.CompletedQuestIDs),
		Preferences:     preferences,
		LastActiveAt:    lastActive,
	}
}
