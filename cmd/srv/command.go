package main

import (
	"context"
	"net/http"
	"time"

	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/authenticator"
	"github.com/questforge-lab/backend/pkg/logger"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "QuestForge"
	app.Usage = ""
	app.Before = func(*cli.Context) error {
		cfg := loadConfigs()

		s.ctx = context.Background()
		s.ctx = xcontext.WithConfigs(s.ctx, *cfg)
		s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger())
		s.ctx = xcontext.WithTokenEngine(s.ctx,
			authenticator.NewTokenEngine[model.AccessToken](cfg.Auth))
		s.ctx = xcontext.WithHTTPClient(s.ctx, &http.Client{Timeout: 30 * time.Second})

		node, err := snowflake.NewNode(cfg.SnowFlakeNodeID)
		if err != nil {
			return err
		}
		s.ctx = xcontext.WithSnowFlake(s.ctx, node)

		return nil
	}
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Used for start service api, it main service included all apis.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the archive database",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Used to bring the archive database to the latest schema version.`,
		},
		{
			Action: server.startToken,
			Name:   "token",
			Usage:  "Generate an access token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "user",
					Usage: "the user id the token is issued for",
					Value: "operator",
				},
				&cli.BoolFlag{
					Name:  "operator",
					Usage: "mark the token as an operator token",
					Value: true,
				},
			},
			Category:    "Operator",
			Description: `Used to mint a token accepted by authenticated and operator-only apis.`,
		},
	}

	s.app = app
}
