package event

import "github.com/questforge-lab/backend/internal/model"

type UserStatsEvent model.UserStats

func (UserStatsEvent) Op() string {
	return "user_stats"
}

type ErrorEvent struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (ErrorEvent) Op() string {
	return "error"
}
