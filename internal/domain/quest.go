package domain

import (
	"context"
	"errors"

	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/orchestrator"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type QuestDomain interface {
	Get(context.Context, *model.GetQuestRequest) (*model.GetQuestResponse, error)
	GetList(context.Context, *model.GetListQuestsRequest) (*model.GetListQuestsResponse, error)
	GetHistory(context.Context, *model.GetQuestHistoryRequest) (*model.GetQuestHistoryResponse, error)
	Trigger(context.Context, *model.TriggerQuestRequest) (*model.TriggerQuestResponse, error)
}

type questDomain struct {
	questRegistry    registry.QuestRegistry
	questArchiveRepo repository.QuestArchiveRepository
	miniAppManager   *miniapp.Manager
	orchestrator     *orchestrator.Orchestrator
}

func NewQuestDomain(
	questRegistry registry.QuestRegistry,
	questArchiveRepo repository.QuestArchiveRepository,
	miniAppManager *miniapp.Manager,
	orchestrator *orchestrator.Orchestrator,
) *questDomain {
	return &questDomain{
		questRegistry:    questRegistry,
		questArchiveRepo: questArchiveRepo,
		miniAppManager:   miniAppManager,
		orchestrator:     orchestrator,
	}
}

// Get serves from the registry first and falls back to the archive, so
// transitioned quests stay readable across restarts.
func (d *questDomain) Get(
	ctx context.Context, req *model.GetQuestRequest,
) (*model.GetQuestResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty quest id")
	}

	quest, err := d.questRegistry.Get(ctx, req.ID)
	if err != nil {
		var errx errorx.Error
		if !errors.As(err, &errx) || errx.Code != errorx.QuestNotFound {
			return nil, err
		}

		archived, err := d.questArchiveRepo.GetByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.QuestNotFound, "Not found quest")
			}

			xcontext.Logger(ctx).Errorf("Cannot load archived quest %s: %v", req.ID, err)
			return nil, errorx.Unknown
		}

		quest = *archived
	}

	resp := model.GetQuestResponse(model.ConvertQuest(&quest, d.miniAppURL(ctx, quest.ID)))
	return &resp, nil
}

func (d *questDomain) GetList(
	ctx context.Context, req *model.GetListQuestsRequest,
) (*model.GetListQuestsResponse, error) {
	quests := d.questRegistry.ListActive(ctx, req.ConversationID)

	result := []model.Quest{}
	for i := range quests {
		result = append(result, model.ConvertQuest(&quests[i], d.miniAppURL(ctx, quests[i].ID)))
	}

	return &model.GetListQuestsResponse{Quests: result}, nil
}

// GetHistory lists transitioned quests from the archive, newest first.
func (d *questDomain) GetHistory(
	ctx context.Context, req *model.GetQuestHistoryRequest,
) (*model.GetQuestHistoryResponse, error) {
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

	quests, err := d.questArchiveRepo.GetList(ctx, repository.QuestArchiveFilter{
		ConversationID: req.ConversationID,
		ParticipantID:  req.UserID,
		Offset:         req.Offset,
		Limit:          req.Limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load the quest history: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Quest{}
	for i := range quests {
		result = append(result, model.ConvertQuest(&quests[i], ""))
	}

	return &model.GetQuestHistoryResponse{Quests: result}, nil
}

// Trigger creates a quest on demand. The engagement gate is bypassed, the
// one-active-quest rule is not.
func (d *questDomain) Trigger(
	ctx context.Context, req *model.TriggerQuestRequest,
) (*model.TriggerQuestResponse, error) {
	if req.ConversationID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty conversation id")
	}

	quest, err := d.orchestrator.Trigger(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	return &model.TriggerQuestResponse{
		Quest: model.ConvertQuest(&quest, d.miniAppURL(ctx, quest.ID)),
	}, nil
}

func (d *questDomain) miniAppURL(ctx context.Context, questID string) string {
	if record, ok := d.miniAppManager.Get(ctx, questID); ok {
		return record.URL
	}

	return ""
}
