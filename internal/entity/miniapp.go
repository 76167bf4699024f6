package entity

import (
	"time"

	"github.com/questforge-lab/backend/pkg/enum"
)

type MiniAppStatusType string

var (
	MiniAppActive  = enum.New(MiniAppStatusType("active"))
	MiniAppExpired = enum.New(MiniAppStatusType("expired"))
)

// MiniAppRecord mirrors the public-facing state of one quest for mini-app
// clients. It is a satellite view over the quest registry; a divergence
// between the two participant lists is a bug, not a valid state.
type MiniAppRecord struct {
	QuestID string
	URL     string
	Status  MiniAppStatusType

	Participants Array[string]

	LaunchedAt time.Time
	ExpiresAt  time.Time
}
