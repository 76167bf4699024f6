package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/questforge-lab/backend/internal/domain/cron"
	"github.com/questforge-lab/backend/internal/middleware"
	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/kafka"
	"github.com/questforge-lab/backend/pkg/prometheus"
	"github.com/questforge-lab/backend/pkg/pubsub"
	"github.com/questforge-lab/backend/pkg/router"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()
	s.loadRegistries()
	s.loadPublisher()
	s.loadEngine()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)

	go func() {
		promHandler := prometheus.NewHandler()

		httpSrv := &http.Server{
			Addr:    cfg.PrometheusServer.Address(),
			Handler: promHandler,
		}
		xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
		if err := httpSrv.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewExpireQuestsCronJob(
		cfg.Engine.SweepInterval,
		s.questRegistry,
		s.questArchiveRepo,
		s.miniAppManager,
		s.broadcaster,
	))
	cronJobManager.Register(cron.NewPruneAnalyticsCronJob(s.tracker))
	go cronJobManager.Start(s.ctx)

	s.startChatStream()

	s.server = &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.ServerConfigs),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", cfg.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	xcontext.Logger(s.ctx).Infof("Server stop")

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger(xcontext.Configs(s.ctx).Env))
	s.router.AddCloser(middleware.Prometheus())

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier().WithAccessToken().WithTelegramInitData()
	authRouter.Before(authVerifier.Middleware())
	{
		router.POST(authRouter, "/joinQuest", s.participationDomain.Join)
		router.POST(authRouter, "/leaveQuest", s.participationDomain.Leave)
		router.POST(authRouter, "/completeQuest", s.participationDomain.Complete)
		router.Websocket(authRouter, "/subscription", s.subscriptionServer.Serve)
	}

	// These following APIs are for operators only.
	operatorRouter := s.router.Branch()
	operatorVerifier := middleware.NewAuthVerifier().WithAccessToken().WithOperatorRequired()
	operatorRouter.Before(operatorVerifier.Middleware())
	{
		router.POST(operatorRouter, "/triggerQuest", s.questDomain.Trigger)
	}

	// Public API.
	router.GET(s.router, "/", s.home)
	router.GET(s.router, "/getQuest", s.questDomain.Get)
	router.GET(s.router, "/getListQuests", s.questDomain.GetList)
	router.GET(s.router, "/getQuestHistory", s.questDomain.GetHistory)
	router.GET(s.router, "/getUserStats", s.statisticDomain.GetUserStats)
	router.GET(s.router, "/getLeaderBoard", s.statisticDomain.GetLeaderBoard)
}

func (s *srv) home(ctx context.Context, _ *model.HomeRequest) (*model.HomeResponse, error) {
	return &model.HomeResponse{
		AppName: "QuestForge",
		Env:     xcontext.Configs(ctx).Env,
	}, nil
}

// startChatStream connects the orchestrator to whichever message sources are
// configured. Kafka carries messages mirrored by an external ingest; the
// telegram gateway long-polls the bot api directly.
func (s *srv) startChatStream() {
	cfg := xcontext.Configs(s.ctx)

	if cfg.Kafka.Addr != "" {
		subscriber := kafka.NewSubscriber(
			cfg.Kafka.ConsumerGroup,
			[]string{cfg.Kafka.Addr},
			[]string{cfg.Kafka.ChatMessageTopic},
			s.handleChatPack,
		)
		go subscriber.Subscribe(s.ctx)
	}

	if s.telegram != nil {
		go s.telegram.Poll(s.ctx, s.orchestrator.OnChatMessage)
	}

	if cfg.Kafka.Addr == "" && s.telegram == nil {
		xcontext.Logger(s.ctx).Warnf("No chat stream configured, quests come from /triggerQuest only")
	}
}

func (s *srv) handleChatPack(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var msg model.ChatMessage
	if err := json.Unmarshal(pack.Msg, &msg); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal chat message: %v", err)
		return
	}

	if msg.SentAt.IsZero() {
		msg.SentAt = t
	}

	s.orchestrator.OnChatMessage(ctx, msg)
}
