package pubsub

import (
	"context"
	"time"
)

// SubscribeHandler consumes one pack. The timestamp is the broker-side
// produce time of the message.
type SubscribeHandler func(context.Context, *Pack, time.Time)

type Subscriber interface {
	// Subscribe starts consuming in the background and returns once the
	// consumer joined its group.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
