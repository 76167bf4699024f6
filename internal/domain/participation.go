package domain

import (
	"context"
	"time"

	"github.com/questforge-lab/backend/internal/common"
	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/domain/notification/event"
	"github.com/questforge-lab/backend/internal/domain/progression"
	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

type ParticipationDomain interface {
	Join(context.Context, *model.JoinQuestRequest) (*model.JoinQuestResponse, error)
	Leave(context.Context, *model.LeaveQuestRequest) (*model.LeaveQuestResponse, error)
	Complete(context.Context, *model.CompleteQuestRequest) (*model.CompleteQuestResponse, error)
}

type participationDomain struct {
	questRegistry    registry.QuestRegistry
	profileRegistry  registry.ProfileRegistry
	completionRepo   repository.CompletionRepository
	questArchiveRepo repository.QuestArchiveRepository
	miniAppManager   *miniapp.Manager
	broadcaster      *notification.Broadcaster
}

func NewParticipationDomain(
	questRegistry registry.QuestRegistry,
	profileRegistry registry.ProfileRegistry,
	completionRepo repository.CompletionRepository,
	questArchiveRepo repository.QuestArchiveRepository,
	miniAppManager *miniapp.Manager,
	broadcaster *notification.Broadcaster,
) *participationDomain {
	return &participationDomain{
		questRegistry:    questRegistry,
		profileRegistry:  profileRegistry,
		completionRepo:   completionRepo,
		questArchiveRepo: questArchiveRepo,
		miniAppManager:   miniAppManager,
		broadcaster:      broadcaster,
	}
}

func (d *participationDomain) Join(
	ctx context.Context, req *model.JoinQuestRequest,
) (*model.JoinQuestResponse, error) {
	if req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty quest id")
	}

	userID := xcontext.RequestUserID(ctx)
	joined := false
	quest, err := d.questRegistry.Update(ctx, req.QuestID, func(quest *entity.Quest) error {
		if quest.Status != entity.QuestActive {
			return errorx.New(errorx.QuestNotActive, "Quest is not accepting participants")
		}

		if quest.HasParticipant(userID) {
			// Joining twice is not an error, just a no-op.
			return nil
		}

		if len(quest.Participants) >= quest.MaxParticipants {
			return errorx.New(errorx.QuestFull, "Quest is already full")
		}

		quest.Participants = append(quest.Participants, userID)
		joined = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if joined {
		d.miniAppManager.AddParticipant(ctx, quest.ID, userID)
		d.broadcaster.Publish(ctx, event.New(
			event.ParticipantJoinedEvent{
				QuestID:      quest.ID,
				UserID:       userID,
				Participants: quest.Participants,
			},
			event.Metadata{},
		))
	}

	miniAppURL := ""
	if record, ok := d.miniAppManager.Get(ctx, quest.ID); ok {
		miniAppURL = record.URL
	}

	return &model.JoinQuestResponse{
		Joined: joined,
		Quest:  model.ConvertQuest(&quest, miniAppURL),
	}, nil
}

func (d *participationDomain) Leave(
	ctx context.Context, req *model.LeaveQuestRequest,
) (*model.LeaveQuestResponse, error) {
	if req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty quest id")
	}

	userID := xcontext.RequestUserID(ctx)
	left := false
	quest, err := d.questRegistry.Update(ctx, req.QuestID, func(quest *entity.Quest) error {
		// Leaving is allowed in any quest status.
		for i, id := range quest.Participants {
			if id == userID {
				quest.Participants = append(quest.Participants[:i], quest.Participants[i+1:]...)
				left = true
				break
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if left {
		d.miniAppManager.RemoveParticipant(ctx, quest.ID, userID)
		d.broadcaster.Publish(ctx, event.New(
			event.ParticipantLeftEvent{
				QuestID:      quest.ID,
				UserID:       userID,
				Participants: quest.Participants,
			},
			event.Metadata{},
		))
	}

	return &model.LeaveQuestResponse{Left: left}, nil
}

// Complete settles the whole quest. The caller must be a participant, but the
// transition rewards every participant at once; the submitted result is
// recorded on the caller's completion only.
func (d *participationDomain) Complete(
	ctx context.Context, req *model.CompleteQuestRequest,
) (*model.CompleteQuestResponse, error) {
	if req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty quest id")
	}

	userID := xcontext.RequestUserID(ctx)
	quest, err := d.questRegistry.Update(ctx, req.QuestID, func(quest *entity.Quest) error {
		if !quest.HasParticipant(userID) {
			return errorx.New(errorx.NotAParticipant, "User has not joined this quest")
		}

		if quest.Status != entity.QuestActive {
			return errorx.New(errorx.QuestNotActive, "Quest is not active")
		}

		quest.Status = entity.QuestCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	// After the transition above, no concurrent complete or expire can win
	// this quest anymore. Reward settlement happens outside the quest lock.
	completedAt := time.Now()
	var initiatorCompletion entity.QuestCompletion
	var initiatorProfile entity.UserProfile
	settled := []entity.QuestCompletion{}
	completions := []model.QuestCompletion{}
	for _, participantID := range quest.Participants {
		result := entity.Map{}
		if participantID == userID {
			result = entity.Map(req.Result)
		}

		var completion entity.QuestCompletion
		profile := d.profileRegistry.Update(ctx, participantID, func(profile *entity.UserProfile) {
			var next entity.UserProfile
			next, completion = progression.Apply(*profile, quest, result, completedAt)
			*profile = next
		})

		completion.ID = xcontext.SnowFlake(ctx).Generate().Int64()
		settled = append(settled, completion)
		completions = append(completions, model.ConvertQuestCompletion(&completion))
		if participantID == userID {
			initiatorCompletion = completion
			initiatorProfile = profile
		}

		d.broadcaster.Publish(ctx, event.New(
			event.UserStatsEvent(model.ConvertUserStats(&profile)),
			event.Metadata{To: participantID},
		))
	}

	// The in-memory rewards above are already committed, so a failed archive
	// write is logged and the completion still succeeds. The write itself is
	// all-or-nothing: the quest archive and every completion row land in one
	// transaction.
	txCtx := xcontext.WithDBTransaction(ctx)
	archiveErr := d.questArchiveRepo.Save(txCtx, &quest)
	for i := range settled {
		if archiveErr != nil {
			break
		}

		archiveErr = d.completionRepo.Create(txCtx, &settled[i])
	}

	if archiveErr != nil {
		xcontext.Logger(ctx).Errorf("Cannot archive the settlement of quest %s: %v", quest.ID, archiveErr)
		xcontext.WithRollbackDBTransaction(txCtx)
	} else {
		xcontext.WithCommitDBTransaction(txCtx)
	}

	miniAppURL := ""
	if record, ok := d.miniAppManager.Get(ctx, quest.ID); ok {
		miniAppURL = record.URL
	}
	d.miniAppManager.Close(ctx, quest.ID)

	d.broadcaster.Publish(ctx, event.New(
		event.QuestCompletedEvent{
			Quest:       model.ConvertQuest(&quest, miniAppURL),
			CompletedBy: userID,
			Completions: completions,
		},
		event.Metadata{},
	))

	common.PromCounters[common.QuestTransitionTotal].WithLabelValues("completed").Inc()

	return &model.CompleteQuestResponse{
		Completion: model.ConvertQuestCompletion(&initiatorCompletion),
		Stats:      model.ConvertUserStats(&initiatorProfile),
	}, nil
}
