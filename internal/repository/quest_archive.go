package repository

import (
	"context"
	"fmt"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"gorm.io/gorm/clause"
)

type QuestArchiveFilter struct {
	ConversationID string
	ParticipantID  string
	Status         entity.QuestStatusType
	Offset         int
	Limit          int
}

// QuestArchiveRepository persists the row form of quests once they leave the
// in-memory registry's active set. The archive backs history queries and
// survives restarts; the registry remains the source of truth for active
// quests.
type QuestArchiveRepository interface {
	Save(ctx context.Context, quest *entity.Quest) error
	GetByID(ctx context.Context, id string) (*entity.Quest, error)
	GetList(ctx context.Context, filter QuestArchiveFilter) ([]entity.Quest, error)
}

type questArchiveRepository struct{}

func NewQuestArchiveRepository() *questArchiveRepository {
	return &questArchiveRepository{}
}

func (r *questArchiveRepository) Save(ctx context.Context, quest *entity.Quest) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(quest).Error
}

func (r *questArchiveRepository) GetByID(ctx context.Context, id string) (*entity.Quest, error) {
	result := &entity.Quest{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questArchiveRepository) GetList(
	ctx context.Context, filter QuestArchiveFilter,
) ([]entity.Quest, error) {
	tx := xcontext.DB(ctx).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit)

	if filter.ConversationID != "" {
		tx = tx.Where("conversation_id=?", filter.ConversationID)
	}

	if filter.ParticipantID != "" {
		// Participants is a json array column; the quoted form avoids
		// matching ids that contain each other.
		tx = tx.Where("participants LIKE ?", fmt.Sprintf(`%%%q%%`, filter.ParticipantID))
	}

	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	result := []entity.Quest{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
