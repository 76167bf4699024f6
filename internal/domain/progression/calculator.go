package progression

import (
	"time"

	"github.com/questforge-lab/backend/internal/entity"

	"golang.org/x/exp/slices"
)

// The social score of a completion is a fixed base plus two bonus lookups.
// These constants are part of the reward contract; changing them changes
// every score the engine hands out.
const baseSocialScore = 5

var questTypeBonus = map[entity.QuestType]int{
	entity.QuestCommunityBuilding: 10,
	entity.QuestCrossProtocol:     9,
	entity.QuestSocialChallenge:   8,
	entity.QuestCreativeContest:   7,
	entity.QuestKnowledgeQuest:    6,
}

var difficultyBonus = map[entity.DifficultyType]int{
	entity.DifficultyExpert: 15,
	entity.DifficultyHard:   10,
	entity.DifficultyMedium: 5,
	entity.DifficultyEasy:   2,
}

// LevelOf derives the level for an xp total. Levels are always recomputed
// from xp, never incremented independently.
func LevelOf(xp int) int {
	return xp/100 + 1
}

// Apply returns the profile after crediting one quest completion, together
// with the immutable completion record. Inputs are not mutated; the caller
// assigns the record id.
func Apply(
	profile entity.UserProfile,
	quest entity.Quest,
	result entity.Map,
	completedAt time.Time,
) (entity.UserProfile, entity.QuestCompletion) {
	scoreDelta := baseSocialScore + questTypeBonus[quest.Type] + difficultyBonus[quest.Difficulty]

	profile.XP += quest.RewardXP
	profile.Level = LevelOf(profile.XP)
	profile.SocialScore += scoreDelta
	profile.LastActiveAt = completedAt

	profile.CompletedQuestIDs = appendUnique(profile.CompletedQuestIDs, quest.ID)
	profile.Preferences = appendUnique(profile.Preferences, quest.Type)

	completion := entity.QuestCompletion{
		QuestID:          quest.ID,
		UserID:           profile.UserID,
		ConversationID:   quest.ConversationID,
		CompletedAt:      completedAt,
		Result:           result,
		RewardXP:         quest.RewardXP,
		RewardTokens:     quest.RewardTokens,
		RewardBadges:     append(entity.Array[string]{}, quest.RewardBadges...),
		SocialScoreDelta: scoreDelta,
		ResultingLevel:   profile.Level,
	}

	return profile, completion
}

// appendUnique keeps set semantics while retaining insertion order. The copy
// guarantees the caller's slice is never aliased by the returned profile.
func appendUnique[T comparable](list entity.Array[T], value T) entity.Array[T] {
	if slices.Contains(list, value) {
		return append(entity.Array[T]{}, list...)
	}

	return append(append(entity.Array[T]{}, list...), value)
}
