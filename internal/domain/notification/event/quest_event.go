package event

import "github.com/questforge-lab/backend/internal/model"

type QuestCreatedEvent model.Quest

func (QuestCreatedEvent) Op() string {
	return "quest_created"
}

type QuestCompletedEvent struct {
	Quest       model.Quest             `json:"quest"`
	CompletedBy string                  `json:"completed_by"`
	Completions []model.QuestCompletion `json:"completions"`
}

func (QuestCompletedEvent) Op() string {
	return "quest_completed"
}

type QuestExpiredEvent model.Quest

func (QuestExpiredEvent) Op() string {
	return "quest_expired"
}
