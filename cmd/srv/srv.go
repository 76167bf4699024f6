package main

import (
	"context"
	"net/http"

	"github.com/questforge-lab/backend/internal/client"
	"github.com/questforge-lab/backend/internal/domain"
	"github.com/questforge-lab/backend/internal/domain/miniapp"
	"github.com/questforge-lab/backend/internal/domain/notification"
	"github.com/questforge-lab/backend/internal/domain/orchestrator"
	"github.com/questforge-lab/backend/internal/registry"
	"github.com/questforge-lab/backend/internal/repository"
	"github.com/questforge-lab/backend/migration"
	"github.com/questforge-lab/backend/pkg/api"
	"github.com/questforge-lab/backend/pkg/kafka"
	"github.com/questforge-lab/backend/pkg/pubsub"
	"github.com/questforge-lab/backend/pkg/router"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	completionRepo   repository.CompletionRepository
	questArchiveRepo repository.QuestArchiveRepository

	questRegistry   registry.QuestRegistry
	profileRegistry registry.ProfileRegistry

	tracker        *orchestrator.Tracker
	personaBook    *orchestrator.PersonaBook
	proposer       client.QuestProposer
	announcer      client.Announcer
	orchestrator   *orchestrator.Orchestrator
	miniAppManager *miniapp.Manager

	broadcaster        *notification.Broadcaster
	subscriptionServer *notification.SubscriptionServer

	questDomain         domain.QuestDomain
	participationDomain domain.ParticipationDomain
	statisticDomain     domain.StatisticDomain

	publisher pubsub.Publisher
	telegram  *client.TelegramGateway

	router *router.Router
	server *http.Server
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.Database.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	default:
		dialector = sqlite.Open(cfg.Database.SQLiteFile)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.completionRepo = repository.NewCompletionRepository()
	s.questArchiveRepo = repository.NewQuestArchiveRepository()
}

func (s *srv) loadRegistries() {
	s.questRegistry = registry.NewQuestRegistry()
	s.profileRegistry = registry.NewProfileRegistry()
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		return
	}

	s.publisher = kafka.NewPublisher("questforge-api", []string{cfg.Kafka.Addr})
}

// loadEngine assembles the quest creation pipeline. The proposer and the
// announcer are picked from the configuration: an external proposal service
// when its url is set, built-in templates otherwise; announcements go to
// kafka, then telegram, then the log, whichever is configured first.
func (s *srv) loadEngine() {
	cfg := xcontext.Configs(s.ctx)

	personaBook, err := orchestrator.LoadPersonaBook(cfg.Engine.PersonaFile)
	if err != nil {
		panic(err)
	}
	s.personaBook = personaBook

	s.tracker = orchestrator.NewTracker()
	s.miniAppManager = miniapp.NewManager()
	s.broadcaster = notification.NewBroadcaster()
	s.subscriptionServer = notification.NewSubscriptionServer(s.broadcaster)

	if cfg.Proposer.URL != "" {
		s.proposer = client.NewQuestProposer(api.NewGenerator(cfg.Proposer.URL))
	} else {
		s.proposer = client.NewTemplateQuestProposer()
	}

	if cfg.Telegram.BotToken != "" {
		s.telegram, err = client.NewTelegramGateway(cfg.Telegram.BotToken)
		if err != nil {
			panic(err)
		}
	}

	switch {
	case s.publisher != nil:
		s.announcer = client.NewKafkaAnnouncer(s.publisher)
	case s.telegram != nil:
		s.announcer = s.telegram
	default:
		s.announcer = client.NewLogAnnouncer()
	}

	s.orchestrator = orchestrator.NewOrchestrator(
		s.tracker,
		s.personaBook,
		s.proposer,
		s.announcer,
		s.questRegistry,
		s.miniAppManager,
		s.broadcaster,
	)
}

func (s *srv) loadDomains() {
	s.questDomain = domain.NewQuestDomain(
		s.questRegistry, s.questArchiveRepo, s.miniAppManager, s.orchestrator)
	s.participationDomain = domain.NewParticipationDomain(
		s.questRegistry, s.profileRegistry, s.completionRepo, s.questArchiveRepo,
		s.miniAppManager, s.broadcaster)
	s.statisticDomain = domain.NewStatisticDomain(s.profileRegistry, s.completionRepo)
}
