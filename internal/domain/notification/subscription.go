package notification

import (
	"context"
	"encoding/json"

	"github.com/questforge-lab/backend/internal/domain/notification/event"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

type SubscriptionServer struct {
	broadcaster *Broadcaster
}

func NewSubscriptionServer(broadcaster *Broadcaster) *SubscriptionServer {
	return &SubscriptionServer{broadcaster: broadcaster}
}

// Serve pumps broadcast events to one websocket subscriber until it
// disconnects. There is no replay: the subscriber only sees events published
// while it is connected.
func (s *SubscriptionServer) Serve(ctx context.Context, _ *model.ServeSubscriptionRequest) error {
	wsClient := xcontext.WSClient(ctx)
	if wsClient == nil {
		return errorx.New(errorx.BadRequest, "Subscriptions require a websocket connection")
	}

	session := NewSession(xcontext.RequestUserID(ctx))
	s.broadcaster.Register(session)
	defer s.broadcaster.Unregister(session)

	var seq int64
	send := func(ev *event.EventRequest) error {
		b, err := json.Marshal(event.Format(ev, seq))
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot marshal %s event: %v", ev.Op, err)
			return nil
		}

		seq++
		return wsClient.Write(b, false)
	}

	for {
		select {
		case ev := <-session.C:
			if err := send(ev); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot send %s event to session %s: %v",
					ev.Op, session.id, err)
				return errorx.Unknown
			}

		case <-session.Done():
			return errorx.New(errorx.Unavailable, "Subscriber is too slow")

		case frame, ok := <-wsClient.R:
			if !ok {
				return nil
			}

			// The subscription surface is one-way. Valid frames are ignored,
			// garbage gets an error event back.
			if !json.Valid(frame) {
				errEvent := event.New(event.ErrorEvent{
					Code:    int64(errorx.BadRequest),
					Message: "Malformed frame",
				}, event.Metadata{})

				if err := send(errEvent); err != nil {
					return errorx.Unknown
				}
			}
		}
	}
}
