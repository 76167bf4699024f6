package notification

import (
	"context"

	"github.com/questforge-lab/backend/internal/domain/notification/event"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/puzpuzpuz/xsync"
)

// Broadcaster fans published events out to every registered session. Sends
// never block: a subscriber that stopped draining its channel is dropped
// instead of stalling the publisher or the other subscribers.
type Broadcaster struct {
	sessions *xsync.MapOf[string, *Session]
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{sessions: xsync.NewMapOf[*Session]()}
}

func (b *Broadcaster) Register(session *Session) {
	b.sessions.Store(session.id, session)
}

// Unregister removes the session from the fan-out set. The session channel
// is left open; in-flight publishes may still land on it harmlessly.
func (b *Broadcaster) Unregister(session *Session) {
	b.sessions.Delete(session.id)
}

func (b *Broadcaster) Publish(ctx context.Context, ev *event.EventRequest) {
	b.sessions.Range(func(id string, session *Session) bool {
		if ev.Metadata.To != "" && session.userID != ev.Metadata.To {
			return true
		}

		select {
		case session.C <- ev:
		default:
			// The sequence numbers handed to this session must stay gapless,
			// so a full buffer drops the whole session rather than one event.
			b.sessions.Delete(id)
			session.Drop()
			xcontext.Logger(ctx).Warnf("Dropped slow session %s of user %s", id, session.userID)
		}

		return true
	})
}
