package domain

import (
	"context"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/dateutil"
	"github.com/questforge-lab/backend/pkg/enum"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"golang.org/x/exp/slices"
)

// recentCompletionLimit caps the completion list attached to a stats reply.
const recentCompletionLimit = 5

type StatisticDomain interface {
	GetUserStats(context.Context, *model.GetUserStatsRequest) (*model.GetUserStatsResponse, error)
	GetLeaderBoard(context.Context, *model.GetLeaderBoardRequest) (*model.GetLeaderBoardResponse, error)
}

type statisticDomain struct {
	profileRegistry registry.ProfileRegistry
	completionRepo  repository.CompletionRepository
}

func NewStatisticDomain(
	profileRegistry registry.ProfileRegistry,
	completionRepo repository.CompletionRepository,
) *statisticDomain {
	return &statisticDomain{
		profileRegistry: profileRegistry,
		completionRepo:  completionRepo,
	}
}

func (d *statisticDomain) GetUserStats(
	ctx context.Context, req *model.GetUserStatsRequest,
) (*model.GetUserStatsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	profile := d.profileRegistry.Get(ctx, userID)

	completions, err := d.completionRepo.GetList(ctx, repository.CompletionFilter{
		UserID: userID,
		Limit:  recentCompletionLimit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load completions of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	recent := []model.QuestCompletion{}
	for i := range completions {
		recent = append(recent, model.ConvertQuestCompletion(&completions[i]))
	}

	return &model.GetUserStatsResponse{
		Stats:             model.ConvertUserStats(&profile),
		RecentCompletions: recent,
	}, nil
}

func (d *statisticDomain) GetLeaderBoard(
	ctx context.Context, req *model.GetLeaderBoardRequest,
) (*model.GetLeaderBoardResponse, error) {
	if req.Period == "" {
		req.Period = string(entity.LeaderBoardPeriodWeek)
	}

	period, err := enum.ToEnum[entity.LeaderBoardPeriodType](req.Period)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	if req.OrderedBy == "" {
		req.OrderedBy = "xp"
	}

	if !slices.Contains([]string{"xp", "social_score"}, req.OrderedBy) {
		return nil, errorx.New(errorx.BadRequest, "Invalid ordered by %s", req.OrderedBy)
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	begin, end, err := dateutil.GetRangeByPeriod(time.Now(), period)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Unsupported period %s", req.Period)
	}

	aggregates, err := d.completionRepo.Statistic(ctx, repository.LeaderBoardFilter{
		OrderedBy: req.OrderedBy,
		StartTime: begin,
		EndTime:   end,
		Offset:    req.Offset,
		Limit:     req.Limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load the leader board: %v", err)
		return nil, errorx.Unknown
	}

	leaderBoard := []model.LeaderBoardEntry{}
	for _, aggregate := range aggregates {
		leaderBoard = append(leaderBoard, model.LeaderBoardEntry{
			UserID: aggregate.UserID,
			Value:  int(aggregate.Value),
		})
	}

	return &model.GetLeaderBoardResponse{LeaderBoard: leaderBoard}, nil
}
