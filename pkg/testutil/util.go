package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questforge-lab/backend/config"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/migration"
	"github.com/questforge-lab/backend/pkg/authenticator"
	"github.com/questforge-lab/backend/pkg/logger"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 1,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Engine: config.EngineConfigs{
			MinMessages:          10,
			MinActiveUsers:       2,
			MinEngagementRatio:   0.5,
			MinQuestInterval:     30 * time.Minute,
			ActiveWindow:         time.Hour,
			SweepInterval:        time.Minute,
			AnalyticsIdleTimeout: 24 * time.Hour,
		},
		MiniApp: config.MiniAppConfigs{
			DeepLinkBase: "https://t.me/questforge_bot/quests",
		},
	}

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger())
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine[model.AccessToken](cfg.Auth))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.Migrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
