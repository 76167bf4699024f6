package pubsub

import "context"

// Pack is one message on a topic. Key picks the partition, Msg is the
// payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
	Stop(ctx context.Context) error
}
