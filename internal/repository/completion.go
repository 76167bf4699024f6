package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

type CompletionFilter struct {
	ConversationID string
	UserID         string
	Offset         int
	Limit          int
}

type LeaderBoardFilter struct {
	OrderedBy string
	StartTime time.Time
	EndTime   time.Time
	Offset    int
	Limit     int
}

type CompletionRepository interface {
	Create(ctx context.Context, completion *entity.QuestCompletion) error
	GetList(ctx context.Context, filter CompletionFilter) ([]entity.QuestCompletion, error)
	Statistic(ctx context.Context, filter LeaderBoardFilter) ([]entity.UserAggregate, error)
}

type completionRepository struct{}

func NewCompletionRepository() *completionRepository {
	return &completionRepository{}
}

func (r *completionRepository) Create(
	ctx context.Context, completion *entity.QuestCompletion,
) error {
	return xcontext.DB(ctx).Create(completion).Error
}

func (r *completionRepository) GetList(
	ctx context.Context, filter CompletionFilter,
) ([]entity.QuestCompletion, error) {
	tx := xcontext.DB(ctx).
		Order("completed_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit)

	if filter.ConversationID != "" {
		tx = tx.Where("conversation_id=?", filter.ConversationID)
	}

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	result := []entity.QuestCompletion{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Statistic ranks users by the xp or social score they collected inside the
// filter window. The ordering column is resolved from a whitelist, never
// interpolated from user input.
func (r *completionRepository) Statistic(
	ctx context.Context, filter LeaderBoardFilter,
) ([]entity.UserAggregate, error) {
	var column string
	switch filter.OrderedBy {
	case "xp":
		column = "reward_xp"
	case "social_score":
		column = "social_score_delta"
	default:
		return nil, fmt.Errorf("leader board cannot be ordered by %s", filter.OrderedBy)
	}

	tx := xcontext.DB(ctx).Model(&entity.QuestCompletion{}).
		Select(fmt.Sprintf("user_id, SUM(%s) as value", column)).
		Group("user_id").
		Order("value DESC").
		Offset(filter.Offset).
		Limit(filter.Limit)

	if !filter.StartTime.IsZero() {
		tx = tx.Where("completed_at >= ?", filter.StartTime)
	}

	if !filter.EndTime.IsZero() {
		tx = tx.Where("completed_at < ?", filter.EndTime)
	}

	result := []entity.UserAggregate{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
