package registry

import (
	"context"
	"sync"

	"github.com/questforge-lab/backend/internal/entity"

	"github.com/puzpuzpuz/xsync"
)

// ProfileRegistry keeps one progression profile per user. Profiles are
// created lazily on first write; reading an unknown user returns a fresh
// level-one profile without allocating it.
type ProfileRegistry interface {
	Get(ctx context.Context, userID string) entity.UserProfile
	Update(ctx context.Context, userID string, fn func(profile *entity.UserProfile)) entity.UserProfile
}

type profileRecord struct {
	mu      sync.Mutex
	profile entity.UserProfile
}

type profileRegistry struct {
	profiles *xsync.MapOf[string, *profileRecord]
}

func NewProfileRegistry() *profileRegistry {
	return &profileRegistry{profiles: xsync.NewMapOf[*profileRecord]()}
}

func (r *profileRegistry) Get(ctx context.Context, userID string) entity.UserProfile {
	record, ok := r.profiles.Load(userID)
	if !ok {
		return newProfile(userID)
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	return cloneProfile(record.profile)
}

// Update runs fn on the profile under its record lock and returns a copy of
// the result. The profile is created first if the user was never seen.
func (r *profileRegistry) Update(
	ctx context.Context, userID string, fn func(profile *entity.UserProfile),
) entity.UserProfile {
	record, _ := r.profiles.LoadOrStore(userID, &profileRecord{profile: newProfile(userID)})

	record.mu.Lock()
	defer record.mu.Unlock()

	fn(&record.profile)
	return cloneProfile(record.profile)
}

func newProfile(userID string) entity.UserProfile {
	return entity.UserProfile{
		UserID:            userID,
		XP:                0,
		Level:             1,
		SocialScore:       0,
		CompletedQuestIDs: entity.Array[string]{},
		Preferences:       entity.Array[entity.QuestType]{},
	}
}

func cloneProfile(profile entity.UserProfile) entity.UserProfile {
	clone := profile
	clone.CompletedQuestIDs = append(entity.Array[string]{}, profile.CompletedQuestIDs...)
	clone.Preferences = append(entity.Array[entity.QuestType]{}, profile.Preferences...)
	return clone
}
