package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/questforge-lab/backend/internal/domain/notification/event"

	"github.com/stretchr/testify/require"
)

func TestBroadcasterFanOutKeepsOrder(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster()

	first := NewSession("u1")
	second := NewSession("u2")
	b.Register(first)
	b.Register(second)

	for i := 0; i < 5; i++ {
		b.Publish(ctx, event.New(event.ParticipantJoinedEvent{
			QuestID: "q1",
			UserID:  fmt.Sprintf("user-%d", i),
		}, event.Metadata{}))
	}

	for _, session := range []*Session{first, second} {
		for i := 0; i < 5; i++ {
			ev := <-session.C
			require.Equal(t, "participant_joined", ev.Op)

			data, ok := ev.Data.(event.ParticipantJoinedEvent)
			require.True(t, ok)
			require.Equal(t, fmt.Sprintf("user-%d", i), data.UserID)
		}
	}
}

func TestBroadcasterDropsSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster()

	slow := NewSession("slow")
	fast := NewSession("fast")
	b.Register(slow)
	b.Register(fast)

	// Nobody drains the slow session; its buffer fills and the overflowing
	// publish drops the whole session. The loop finishing at all proves the
	// publisher never blocks.
	total := sessionBufferSize + 10
	for i := 0; i < total; i++ {
		b.Publish(ctx, event.New(event.QuestExpiredEvent{ID: fmt.Sprint(i)}, event.Metadata{}))
		<-fast.C
	}

	select {
	case <-slow.Done():
	default:
		require.FailNow(t, "the slow session was not dropped")
	}

	// Everything buffered before the drop is still there, in order. Nothing
	// was skipped in between.
	require.Len(t, slow.C, sessionBufferSize)
	for i := 0; i < sessionBufferSize; i++ {
		data, ok := (<-slow.C).Data.(event.QuestExpiredEvent)
		require.True(t, ok)
		require.Equal(t, fmt.Sprint(i), data.ID)
	}
}

func TestBroadcasterTargetedDelivery(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster()

	target := NewSession("u1")
	other := NewSession("u2")
	b.Register(target)
	b.Register(other)

	b.Publish(ctx, event.New(event.UserStatsEvent{UserID: "u1"}, event.Metadata{To: "u1"}))

	require.Len(t, target.C, 1)
	require.Empty(t, other.C)
}

func TestBroadcasterUnregister(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster()

	session := NewSession("u1")
	b.Register(session)
	b.Unregister(session)

	b.Publish(ctx, event.New(event.QuestCreatedEvent{ID: "q1"}, event.Metadata{}))
	require.Empty(t, session.C)
}
