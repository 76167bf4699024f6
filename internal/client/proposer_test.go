package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/api"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func TestHTTPQuestProposer(t *testing.T) {
	ctx := testutil.MockContext()

	var sentBody api.Body
	generator := &api.MockAPIGenerator{MockClient: api.MockAPIClient{
		POSTFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{
				Code: http.StatusOK,
				Body: api.JSON{
					"type":             "knowledge_quest",
					"title":            "Curiosity Run",
					"description":      "Answer the open questions.",
					"difficulty":       "medium",
					"duration_minutes": float64(60),
					"min_participants": float64(1),
					"max_participants": float64(8),
					"reward_xp":        float64(100),
					"requirements":     []any{"Answer one open question"},
				},
			}, nil
		},
	}}
	generator.MockClient.BodyFunc = func(body api.Body) api.Client {
		sentBody = body
		return &generator.MockClient
	}

	proposer := NewQuestProposer(generator)
	proposal, err := proposer.Propose(ctx, &model.ProposeQuestRequest{
		PersonaID: "mentor",
		QuestType: "knowledge_quest",
		Analytics: model.AnalyticsSnapshot{ConversationID: "conv1", ActiveUsers: 3},
	})
	require.NoError(t, err)
	require.Equal(t, "Curiosity Run", proposal.Title)
	require.Equal(t, "knowledge_quest", proposal.Type)
	require.Equal(t, 60, proposal.DurationMinutes)
	require.Equal(t, 100, proposal.RewardXP)
	require.Equal(t, []string{"Answer one open question"}, proposal.Requirements)

	payload, ok := sentBody.(api.JSON)
	require.True(t, ok)
	require.Equal(t, "mentor", payload["persona_id"])
	require.Equal(t, "knowledge_quest", payload["quest_type"])
}

func TestHTTPQuestProposerFailure(t *testing.T) {
	ctx := testutil.MockContext()

	generator := &api.MockAPIGenerator{MockClient: api.MockAPIClient{
		POSTFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{Code: http.StatusInternalServerError, Body: api.JSON{}}, nil
		},
	}}

	proposer := NewQuestProposer(generator)
	_, err := proposer.Propose(ctx, &model.ProposeQuestRequest{PersonaID: "mentor"})
	require.Error(t, err)
	require.Equal(t, errorx.ProposerUnavailable, err.(errorx.Error).Code)
}

func TestTemplateQuestProposer(t *testing.T) {
	ctx := testutil.MockContext()
	proposer := NewTemplateQuestProposer()

	proposal, err := proposer.Propose(ctx, &model.ProposeQuestRequest{
		PersonaID: "challenger",
		QuestType: "social_challenge",
		Analytics: model.AnalyticsSnapshot{EngagementRatio: 0.6},
	})
	require.NoError(t, err)
	require.Equal(t, "social_challenge", proposal.Type)
	require.Equal(t, "easy", proposal.Difficulty)
	require.Equal(t, 50, proposal.RewardXP)
	require.True(t, proposal.MaxParticipants >= proposal.MinParticipants)

	// Difficulty scales with engagement.
	proposal, err = proposer.Propose(ctx, &model.ProposeQuestRequest{
		QuestType: "social_challenge",
		Analytics: model.AnalyticsSnapshot{EngagementRatio: 0.9},
	})
	require.NoError(t, err)
	require.Equal(t, "hard", proposal.Difficulty)
	require.Equal(t, 150, proposal.RewardXP)

	_, err = proposer.Propose(ctx, &model.ProposeQuestRequest{QuestType: "time_travel"})
	require.Error(t, err)
	require.Equal(t, errorx.ProposerUnavailable, err.(errorx.Error).Code)
}
