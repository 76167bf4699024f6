package notification

import (
	"sync"

	"github.com/questforge-lab/backend/internal/domain/notification/event"

	"github.com/google/uuid"
)

const sessionBufferSize = 16

// Session is one subscriber connection. The channel keeps published events
// until the serve loop drains them to the websocket.
type Session struct {
	C chan *event.EventRequest

	id     string
	userID string

	dropOnce sync.Once
	done     chan struct{}
}

func NewSession(userID string) *Session {
	return &Session{
		C:      make(chan *event.EventRequest, sessionBufferSize),
		id:     uuid.NewString(),
		userID: userID,
		done:   make(chan struct{}),
	}
}

// Drop marks the session dead. The serve loop observes Done and closes the
// connection.
func (s *Session) Drop() {
	s.dropOnce.Do(func() { close(s.done) })
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}
