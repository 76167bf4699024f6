package client

import (
	"context"
	"encoding/json"

	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/pubsub"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

// Announcer delivers a quest announcement back into its conversation.
type Announcer interface {
	Announce(ctx context.Context, announcement model.Announcement) error
}

type kafkaAnnouncer struct {
	publisher pubsub.Publisher
}

// NewKafkaAnnouncer publishes announcements on the announcement topic, keyed
// by conversation so one conversation stays ordered.
func NewKafkaAnnouncer(publisher pubsub.Publisher) *kafkaAnnouncer {
	return &kafkaAnnouncer{publisher: publisher}
}

func (a *kafkaAnnouncer) Announce(ctx context.Context, announcement model.Announcement) error {
	b, err := json.Marshal(announcement)
	if err != nil {
		return err
	}

	return a.publisher.Publish(ctx, xcontext.Configs(ctx).Kafka.AnnouncementTopic, &pubsub.Pack{
		Key: []byte(announcement.ConversationID),
		Msg: b,
	})
}

type logAnnouncer struct{}

// NewLogAnnouncer writes announcements to the log only, for deployments
// without an outbound gateway.
func NewLogAnnouncer() *logAnnouncer {
	return &logAnnouncer{}
}

func (a *logAnnouncer) Announce(ctx context.Context, announcement model.Announcement) error {
	xcontext.Logger(ctx).Infof("Announcement to %s: %s", announcement.ConversationID, announcement.Text)
	return nil
}
