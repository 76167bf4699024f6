package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/questforge-lab/backend/config"
)

func loadConfigs() *config.Configs {
	return &config.Configs{
		Env:             getEnv("ENV", "local"),
		SnowFlakeNodeID: getInt64Env("SNOWFLAKE_NODE_ID", 0),
		Database: config.DatabaseConfigs{
			Driver:     getEnv("DATABASE_DRIVER", "sqlite"),
			SQLiteFile: getEnv("DATABASE_SQLITE_FILE", "questforge.db"),
			Host:       getEnv("MYSQL_HOST", "localhost"),
			Port:       getEnv("MYSQL_PORT", "3306"),
			Database:   getEnv("MYSQL_DATABASE", "questforge"),
			User:       getEnv("MYSQL_USER", "root"),
			Password:   getEnv("MYSQL_PASSWORD", "mysql"),
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{
				Host:      getEnv("API_HOST", ""),
				Port:      getEnv("API_PORT", "8080"),
				Cert:      getEnv("API_CERT", ""),
				Key:       getEnv("API_KEY", ""),
				AllowCORS: getListEnv("API_ALLOW_CORS", nil),
			},
			MaxLimit:     getIntEnv("API_MAX_LIMIT", 50),
			DefaultLimit: getIntEnv("API_DEFAULT_LIMIT", 1),
		},
		PrometheusServer: config.ServerConfigs{
			Host: getEnv("PROMETHEUS_HOST", ""),
			Port: getEnv("PROMETHEUS_PORT", "9000"),
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token_secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: getDurationEnv("ACCESS_TOKEN_DURATION", time.Hour*24*30),
			},
		},
		Kafka: config.KafkaConfigs{
			Addr:              getEnv("KAFKA_ADDR", ""),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "questforge"),
			ChatMessageTopic:  getEnv("KAFKA_CHAT_MESSAGE_TOPIC", "chat-messages"),
			AnnouncementTopic: getEnv("KAFKA_ANNOUNCEMENT_TOPIC", "quest-announcements"),
		},
		Telegram: config.TelegramConfigs{
			BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			ReconnectDelay: getDurationEnv("TELEGRAM_RECONNECT_DELAY", 5*time.Second),
			MemberCountTTL: getDurationEnv("TELEGRAM_MEMBER_COUNT_TTL", 5*time.Minute),
		},
		Proposer: config.ProposerConfigs{
			URL:     getEnv("PROPOSER_URL", ""),
			APIKey:  getEnv("PROPOSER_API_KEY", ""),
			Timeout: getDurationEnv("PROPOSER_TIMEOUT", 10*time.Second),
		},
		Engine: config.EngineConfigs{
			MinMessages:          getIntEnv("ENGINE_MIN_MESSAGES", 10),
			MinActiveUsers:       getIntEnv("ENGINE_MIN_ACTIVE_USERS", 2),
			MinEngagementRatio:   getFloatEnv("ENGINE_MIN_ENGAGEMENT_RATIO", 0.5),
			MinQuestInterval:     getDurationEnv("ENGINE_MIN_QUEST_INTERVAL", 30*time.Minute),
			ActiveWindow:         getDurationEnv("ENGINE_ACTIVE_WINDOW", time.Hour),
			SweepInterval:        getDurationEnv("ENGINE_SWEEP_INTERVAL", time.Minute),
			AnalyticsIdleTimeout: getDurationEnv("ENGINE_ANALYTICS_IDLE_TIMEOUT", 24*time.Hour),
			PersonaFile:          getEnv("ENGINE_PERSONA_FILE", ""),
		},
		MiniApp: config.MiniAppConfigs{
			DeepLinkBase: getEnv("MINIAPP_DEEP_LINK_BASE", "https://t.me/questforge_bot/quests"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getListEnv(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	return strings.Split(value, ",")
}

func getIntEnv(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func getInt64Env(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		panic(err)
	}

	return parsed
}

func getFloatEnv(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		panic(err)
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}

	return parsed
}
