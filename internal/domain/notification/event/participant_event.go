package event

type ParticipantJoinedEvent struct {
	QuestID      string   `json:"quest_id"`
	UserID       string   `json:"user_id"`
	Participants []string `json:"participants"`
}

func (ParticipantJoinedEvent) Op() string {
	return "participant_joined"
}

type ParticipantLeftEvent struct {
	QuestID      string   `json:"quest_id"`
	UserID       string   `json:"user_id"`
	Participants []string `json:"participants"`
}

func (ParticipantLeftEvent) Op() string {
	return "participant_left"
}
