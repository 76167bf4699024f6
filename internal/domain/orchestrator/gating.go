package orchestrator

import (
	"time"

	"github.com/questforge-lab/backend/config"
	"github.com/questforge-lab/backend/internal/entity"
)

// creationGate decides whether a conversation has earned an autonomous quest
// and names the first unmet condition. Every condition must hold at once; a
// manual trigger bypasses everything here except the active-quest rule, which
// the registry enforces on its own.
func creationGate(
	cfg config.EngineConfigs,
	analytics entity.ConversationAnalytics,
	hasActiveQuest bool,
	now time.Time,
) (bool, string) {
	if hasActiveQuest {
		return false, "an active quest already exists"
	}

	if analytics.MessagesSinceLastQuest < cfg.MinMessages {
		return false, "not enough messages since the last quest"
	}

	if analytics.ActiveUsers < cfg.MinActiveUsers {
		return false, "not enough active users"
	}

	if analytics.EngagementRatio <= cfg.MinEngagementRatio {
		return false, "engagement ratio below threshold"
	}

	if !analytics.LastQuestCreatedAt.IsZero() &&
		now.Sub(analytics.LastQuestCreatedAt) < cfg.MinQuestInterval {
		return false, "quest cooldown has not elapsed"
	}

	return true, ""
}
