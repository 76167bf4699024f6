package progression

import (
	"testing"
	"time"

	"github.com/questforge-lab/backend/internal/entity"

	"github.com/stretchr/testify/require"
)

func TestLevelOf(t *testing.T) {
	require.Equal(t, 1, LevelOf(0))
	require.Equal(t, 1, LevelOf(99))
	require.Equal(t, 2, LevelOf(100))
	require.Equal(t, 2, LevelOf(199))
	require.Equal(t, 3, LevelOf(250))
}

func TestApplySocialScoreTable(t *testing.T) {
	completedAt := time.Date(2023, time.May, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		questType  entity.QuestType
		difficulty entity.DifficultyType
		want       int
	}{
		{entity.QuestCommunityBuilding, entity.DifficultyExpert, 5 + 10 + 15},
		{entity.QuestCrossProtocol, entity.DifficultyHard, 5 + 9 + 10},
		{entity.QuestSocialChallenge, entity.DifficultyMedium, 5 + 8 + 5},
		{entity.QuestCreativeContest, entity.DifficultyEasy, 5 + 7 + 2},
		{entity.QuestKnowledgeQuest, entity.DifficultyEasy, 5 + 6 + 2},
	}

	for _, tc := range testCases {
		t.Run(string(tc.questType)+"/"+string(tc.difficulty), func(t *testing.T) {
			quest := entity.Quest{
				Base:       entity.Base{ID: "q1"},
				Type:       tc.questType,
				Difficulty: tc.difficulty,
			}

			profile, completion := Apply(entity.UserProfile{UserID: "u1"}, quest, nil, completedAt)
			require.Equal(t, tc.want, profile.SocialScore)
			require.Equal(t, tc.want, completion.SocialScoreDelta)
		})
	}
}

func TestApply(t *testing.T) {
	completedAt := time.Date(2023, time.May, 1, 10, 0, 0, 0, time.UTC)
	quest := entity.Quest{
		Base:           entity.Base{ID: "q1"},
		ConversationID: "c1",
		Type:           entity.QuestSocialChallenge,
		Difficulty:     entity.DifficultyHard,
		RewardXP:       120,
		RewardTokens:   1.5,
		RewardBadges:   entity.Array[string]{"icebreaker"},
	}

	before := entity.UserProfile{
		UserID:            "u1",
		XP:                90,
		Level:             1,
		SocialScore:       40,
		CompletedQuestIDs: entity.Array[string]{"q0"},
	}

	after, completion := Apply(before, quest, entity.Map{"note": "done"}, completedAt)

	require.Equal(t, 210, after.XP)
	require.Equal(t, 3, after.Level)
	require.Equal(t, 40+5+8+10, after.SocialScore)
	require.Equal(t, entity.Array[string]{"q0", "q1"}, after.CompletedQuestIDs)
	require.Equal(t, entity.Array[entity.QuestType]{entity.QuestSocialChallenge}, after.Preferences)
	require.Equal(t, completedAt, after.LastActiveAt)

	require.Equal(t, "q1", completion.QuestID)
	require.Equal(t, "u1", completion.UserID)
	require.Equal(t, "c1", completion.ConversationID)
	require.Equal(t, 120, completion.RewardXP)
	require.Equal(t, 1.5, completion.RewardTokens)
	require.Equal(t, entity.Array[string]{"icebreaker"}, completion.RewardBadges)
	require.Equal(t, 3, completion.ResultingLevel)

	// The input profile is untouched.
	require.Equal(t, 90, before.XP)
	require.Equal(t, entity.Array[string]{"q0"}, before.CompletedQuestIDs)
}

func TestApplyRecompletionKeepsSetSemantics(t *testing.T) {
	completedAt := time.Date(2023, time.May, 1, 10, 0, 0, 0, time.UTC)
	quest := entity.Quest{
		Base:       entity.Base{ID: "q1"},
		Type:       entity.QuestKnowledgeQuest,
		Difficulty: entity.DifficultyEasy,
		RewardXP:   10,
	}

	profile := entity.UserProfile{UserID: "u1"}
	profile, _ = Apply(profile, quest, nil, completedAt)
	profile, _ = Apply(profile, quest, nil, completedAt.Add(time.Minute))

	require.Equal(t, entity.Array[string]{"q1"}, profile.CompletedQuestIDs)
	require.Equal(t, entity.Array[entity.QuestType]{entity.QuestKnowledgeQuest}, profile.Preferences)
	// XP still accrues on re-completion; only the id set is a union.
	require.Equal(t, 20, profile.XP)
}
