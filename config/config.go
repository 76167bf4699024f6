package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	// SnowFlakeNodeID distinguishes id generators between instances. Two
	// instances sharing a node id can generate colliding ids.
	SnowFlakeNodeID int64

	Database         DatabaseConfigs
	ApiServer        APIServerConfigs
	PrometheusServer ServerConfigs
	Auth             AuthConfigs
	Kafka            KafkaConfigs
	Telegram         TelegramConfigs
	Proposer         ProposerConfigs
	Engine           EngineConfigs
	MiniApp          MiniAppConfigs
}

type DatabaseConfigs struct {
	// Driver is either "sqlite" or "mysql". The archive keeps transitioned
	// quests and completion records only; authoritative state is in-memory.
	Driver string

	SQLiteFile string

	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host      string
	Port      string
	Cert      string
	Key       string
	AllowCORS []string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int
	DefaultLimit int
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type KafkaConfigs struct {
	Addr              string
	ConsumerGroup     string
	ChatMessageTopic  string
	AnnouncementTopic string
}

type TelegramConfigs struct {
	BotToken string

	// ReconnectDelay bounds the backoff between long-poll restarts after a
	// transport failure.
	ReconnectDelay time.Duration

	// MemberCountTTL is how long a cached chat member count stays fresh.
	MemberCountTTL time.Duration
}

type ProposerConfigs struct {
	// URL of the external proposal service. Empty falls back to the built-in
	// template proposer.
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey  string
	Timeout time.Duration
}

type EngineConfigs struct {
	MinMessages        int
	MinActiveUsers     int
	MinEngagementRatio float64
	MinQuestInterval   time.Duration

	// ActiveWindow is the trailing window over which distinct senders count
	// as active.
	ActiveWindow time.Duration

	// SweepInterval drives the expiry sweep cron job.
	SweepInterval time.Duration

	// AnalyticsIdleTimeout drops conversation analytics untouched for this
	// long.
	AnalyticsIdleTimeout time.Duration

	PersonaFile string
}

type MiniAppConfigs struct {
	// DeepLinkBase is the public link prefix quests are reachable under,
	// e.g. https://t.me/questforge_bot/quests.
	DeepLinkBase string
}
