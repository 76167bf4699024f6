package domain

import (
	"testing"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/testutil"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func TestGetUserStats(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	profileRegistry := registry.NewProfileRegistry()
	completionRepo := repository.NewCompletionRepository()
	statisticDomain := NewStatisticDomain(profileRegistry, completionRepo)

	profileRegistry.Update(ctx, "user1", func(profile *entity.UserProfile) {
		profile.XP = 230
		profile.Level = 3
		profile.SocialScore = 45
		profile.CompletedQuestIDs = entity.Array[string]{"q1", "q2"}
	})

	for i := 0; i < 7; i++ {
		require.NoError(t, completionRepo.Create(ctx, &entity.QuestCompletion{
			SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
			QuestID:       "q1",
			UserID:        "user1",
			CompletedAt:   time.Now().Add(-time.Duration(i) * time.Hour),
			RewardXP:      10,
		}))
	}

	resp, err := statisticDomain.GetUserStats(ctx, &model.GetUserStatsRequest{UserID: "user1"})
	require.NoError(t, err)
	require.Equal(t, 230, resp.Stats.XP)
	require.Equal(t, 3, resp.Stats.Level)
	require.Equal(t, 45, resp.Stats.SocialScore)
	require.Equal(t, 70, resp.Stats.XPToNextLevel)
	require.Equal(t, 2, resp.Stats.CompletedQuests)

	// Only the newest completions come back, newest first.
	require.Len(t, resp.RecentCompletions, 5)
	first, err := time.Parse(model.DefaultTimeLayout, resp.RecentCompletions[0].CompletedAt)
	require.NoError(t, err)
	second, err := time.Parse(model.DefaultTimeLayout, resp.RecentCompletions[1].CompletedAt)
	require.NoError(t, err)
	require.True(t, first.After(second))

	// An empty user id falls back to the requester.
	resp, err = statisticDomain.GetUserStats(ctx, &model.GetUserStatsRequest{})
	require.NoError(t, err)
	require.Equal(t, "user1", resp.Stats.UserID)

	// Unknown users get a fresh profile instead of an error.
	resp, err = statisticDomain.GetUserStats(ctx, &model.GetUserStatsRequest{UserID: "nobody"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.Stats.XP)
	require.Equal(t, 1, resp.Stats.Level)
	require.Empty(t, resp.RecentCompletions)

	_, err = statisticDomain.GetUserStats(testutil.MockContext(), &model.GetUserStatsRequest{})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}

func TestGetLeaderBoard(t *testing.T) {
	ctx := testutil.MockContext()
	completionRepo := repository.NewCompletionRepository()
	statisticDomain := NewStatisticDomain(registry.NewProfileRegistry(), completionRepo)

	seed := []entity.QuestCompletion{
		{UserID: "user1", CompletedAt: time.Now(), RewardXP: 60, SocialScoreDelta: 5},
		{UserID: "user1", CompletedAt: time.Now(), RewardXP: 40, SocialScoreDelta: 5},
		{UserID: "user2", CompletedAt: time.Now(), RewardXP: 80, SocialScoreDelta: 30},
		// Two months old, so outside the week and month windows.
		{UserID: "user2", CompletedAt: time.Now().AddDate(0, -2, 0), RewardXP: 500, SocialScoreDelta: 50},
	}
	for i := range seed {
		seed[i].ID = xcontext.SnowFlake(ctx).Generate().Int64()
		seed[i].QuestID = "q1"
		require.NoError(t, completionRepo.Create(ctx, &seed[i]))
	}

	resp, err := statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{
		Period:    "week",
		OrderedBy: "xp",
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderBoardEntry{
		{UserID: "user1", Value: 100},
		{UserID: "user2", Value: 80},
	}, resp.LeaderBoard)

	// Ordering by social score flips the ranking.
	resp, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{
		Period:    "week",
		OrderedBy: "social_score",
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderBoardEntry{
		{UserID: "user2", Value: 30},
		{UserID: "user1", Value: 10},
	}, resp.LeaderBoard)

	// The total period has no window and counts the old completion.
	resp, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{
		Period:    "total",
		OrderedBy: "xp",
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderBoardEntry{
		{UserID: "user2", Value: 580},
		{UserID: "user1", Value: 100},
	}, resp.LeaderBoard)

	// Empty period and ordering fall back to the weekly xp board, and the
	// default limit applies.
	resp, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderBoardEntry{{UserID: "user1", Value: 100}}, resp.LeaderBoard)

	_, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{Period: "decade"})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)

	_, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{OrderedBy: "luck"})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)

	_, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{Limit: 51})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)

	_, err = statisticDomain.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{Limit: -1})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}
