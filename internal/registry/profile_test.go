package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/questforge-lab/backend/internal/entity"

	"github.com/stretchr/testify/require"
)

func TestProfileRegistryGetUnknownUser(t *testing.T) {
	r := NewProfileRegistry()

	profile := r.Get(context.Background(), "stranger")
	require.Equal(t, "stranger", profile.UserID)
	require.Equal(t, 0, profile.XP)
	require.Equal(t, 1, profile.Level)
	require.Empty(t, profile.CompletedQuestIDs)
}

func TestProfileRegistryUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewProfileRegistry()

	updated := r.Update(ctx, "u1", func(p *entity.UserProfile) {
		p.XP += 150
		p.Level = p.XP/100 + 1
	})
	require.Equal(t, 150, updated.XP)
	require.Equal(t, 2, updated.Level)

	got := r.Get(ctx, "u1")
	require.Equal(t, 150, got.XP)
	require.Equal(t, 2, got.Level)
}

func TestProfileRegistryReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	r := NewProfileRegistry()

	first := r.Update(ctx, "u1", func(p *entity.UserProfile) {
		p.CompletedQuestIDs = append(p.CompletedQuestIDs, "q1")
	})

	first.CompletedQuestIDs[0] = "tampered"

	got := r.Get(ctx, "u1")
	require.Equal(t, entity.Array[string]{"q1"}, got.CompletedQuestIDs)
}

func TestProfileRegistryConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	r := NewProfileRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Update(ctx, "u1", func(p *entity.UserProfile) {
				p.XP += 10
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 1000, r.Get(ctx, "u1").XP)
}
