package client

import (
	"context"
	"net/http"

	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/api"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
)

// QuestProposer turns a conversation snapshot into a candidate quest
// definition. Any failure means no quest this cycle, never a fatal error.
type QuestProposer interface {
	Propose(ctx context.Context, req *model.ProposeQuestRequest) (*model.QuestProposal, error)
}

type httpQuestProposer struct {
	generator api.Generator
}

// NewQuestProposer calls an external proposal service over http.
func NewQuestProposer(generator api.Generator) *httpQuestProposer {
	return &httpQuestProposer{generator: generator}
}

func (p *httpQuestProposer) Propose(
	ctx context.Context, req *model.ProposeQuestRequest,
) (*model.QuestProposal, error) {
	proposerCfg := xcontext.Configs(ctx).Proposer
	if proposerCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, proposerCfg.Timeout)
		defer cancel()
	}

	var opts []api.Opt
	if proposerCfg.APIKey != "" {
		opts = append(opts, api.OAuth2("Bearer", proposerCfg.APIKey))
	}

	resp, err := p.generator.New("/proposeQuest").
		Body(api.JSON(structs.Map(req))).
		POST(ctx, opts...)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot call the proposer: %v", err)
		return nil, errorx.New(errorx.ProposerUnavailable, "Proposer is unavailable")
	}

	if resp.Code != http.StatusOK {
		xcontext.Logger(ctx).Warnf("Proposer replied with status %d", resp.Code)
		return nil, errorx.New(errorx.ProposerUnavailable, "Proposer is unavailable")
	}

	var proposal model.QuestProposal
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &proposal,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create proposal decoder: %v", err)
		return nil, errorx.Unknown
	}

	if err := decoder.Decode(resp.Body); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode the proposal: %v", err)
		return nil, errorx.New(errorx.ProposerUnavailable, "Proposer replied with a malformed proposal")
	}

	return &proposal, nil
}

type questTemplate struct {
	title           string
	description     string
	requirements    []string
	durationMinutes int
	minParticipants int
	maxParticipants int
}

var questTemplates = map[string]questTemplate{
	"social_challenge": {
		title:           "Speak Up Sprint",
		description:     "Post one take the room has not heard yet and defend it.",
		requirements:    []string{"Post at least one original message", "React to another participant"},
		durationMinutes: 45,
		minParticipants: 2,
		maxParticipants: 10,
	},
	"knowledge_quest": {
		title:           "Curiosity Run",
		description:     "Answer the open questions in the conversation with sources.",
		requirements:    []string{"Answer one open question", "Link one source"},
		durationMinutes: 60,
		minParticipants: 1,
		maxParticipants: 8,
	},
	"creative_contest": {
		title:           "Make It Yours",
		description:     "Create something on the current topic and share it here.",
		requirements:    []string{"Share one original creation"},
		durationMinutes: 120,
		minParticipants: 2,
		maxParticipants: 12,
	},
	"community_building": {
		title:           "Open The Circle",
		description:     "Welcome the quiet members and get them talking.",
		requirements:    []string{"Mention one member who has not spoken today"},
		durationMinutes: 90,
		minParticipants: 2,
		maxParticipants: 15,
	},
	"cross_protocol": {
		title:           "Boundary Crossing",
		description:     "Try the protocol discussed here and report one finding.",
		requirements:    []string{"Report one finding from the other side"},
		durationMinutes: 90,
		minParticipants: 1,
		maxParticipants: 8,
	},
}

type templateQuestProposer struct{}

// NewTemplateQuestProposer proposes quests from a fixed per-type template
// table. It backs deployments without an external proposal service and the
// difficulty scales with the observed engagement.
func NewTemplateQuestProposer() *templateQuestProposer {
	return &templateQuestProposer{}
}

func (p *templateQuestProposer) Propose(
	ctx context.Context, req *model.ProposeQuestRequest,
) (*model.QuestProposal, error) {
	template, ok := questTemplates[req.QuestType]
	if !ok {
		return nil, errorx.New(errorx.ProposerUnavailable, "No template for quest type %s", req.QuestType)
	}

	difficulty, rewardXP := "easy", 50
	switch {
	case req.Analytics.EngagementRatio > 0.85:
		difficulty, rewardXP = "hard", 150
	case req.Analytics.EngagementRatio > 0.65:
		difficulty, rewardXP = "medium", 100
	}

	return &model.QuestProposal{
		Type:            req.QuestType,
		Title:           template.title,
		Description:     template.description,
		Difficulty:      difficulty,
		DurationMinutes: template.durationMinutes,
		Requirements:    template.requirements,
		MinParticipants: template.minParticipants,
		MaxParticipants: template.maxParticipants,
		RewardXP:        rewardXP,
	}, nil
}
