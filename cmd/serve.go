package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/database"
	_ "github.com/lshigami/PrepDeck/docs" // registers the OpenAPI doc
	"github.com/lshigami/PrepDeck/internal/cache"
	"github.com/lshigami/PrepDeck/internal/catalog"
	adminctrl "github.com/lshigami/PrepDeck/internal/controller/admin"
	userctrl "github.com/lshigami/PrepDeck/internal/controller/user"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/lshigami/PrepDeck/internal/live"
	"github.com/lshigami/PrepDeck/internal/logger"
	"github.com/lshigami/PrepDeck/internal/metrics"
	"github.com/lshigami/PrepDeck/internal/piston"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/lshigami/PrepDeck/internal/server"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(serveModule())
		if err := app.Start(context.Background()); err != nil {
			return err
		}
		// Wait for a shutdown signal
		<-app.Done()
		log.Info().Msg("Application shutting down gracefully...")
		return app.Stop(context.Background())
	},
}

// coreModule provides configuration, storage, repositories and services.
func coreModule() fx.Option {
	return fx.Options(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			newCatalog,
		),
		fx.Invoke(func(cfg *config.Config) { logger.Init(cfg.LogLevel) }),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewProblemRepository,
			repository.NewAttemptRepository,
			repository.NewQuizReportRepository,
			repository.NewInterviewRepository,
			repository.NewContactRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewScoreConverterService,
			service.NewLLMService,
			service.NewAuthService,
			service.NewUserService,
			service.NewContactService,
			service.NewProblemService,
			service.NewAttemptService,
			service.NewQuizReportService,
			service.NewDashboardService,
			service.NewInterviewService,
			fx.Annotate(piston.NewClient, fx.As(new(piston.Executor))),
			service.NewCodingService,
		),
	)
}

func serveModule() fx.Option {
	return fx.Options(
		coreModule(),
		fx.Provide(
			metrics.NewRegistry,
			newSessionCache,
			live.NewHub,
			newLiveServer,
			server.NewGinEngine,
			server.NewHTTPServer,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminController,
			userctrl.NewAccountController,
			userctrl.NewPracticeController,
			userctrl.NewInterviewController,
		),

		fx.Invoke(database.AutoMigrate),
		fx.Invoke(registerRoutes),
	)
}

func newCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.Interview.CatalogPath)
}

// newSessionCache uses Redis when REDIS_ADDR is set and process memory otherwise.
func newSessionCache(lc fx.Lifecycle, cfg *config.Config) cache.SessionCache {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR is not set. Live session state is kept in memory on this instance only.")
		return cache.NewMemorySessionCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis is not reachable yet")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return cache.NewRedisSessionCache(client, cache.WithTTL(cfg.Redis.TTL))
}

func newLiveServer(hub *live.Hub, interviews service.InterviewService, cfg *config.Config) *live.Server {
	return live.NewServer(hub, interviews.Scorer(), interviews, live.Options{
		Interview: interview.Options{
			TurnTicks:     cfg.Interview.TurnSeconds,
			TickInterval:  cfg.Interview.TickInterval,
			FeedbackPause: cfg.Interview.FeedbackPause,
			RemoteTimeout: cfg.Interview.RemoteTimeout,
		},
	})
}

func registerRoutes(
	router *gin.Engine,
	_ *http.Server,
	auth service.AuthService,
	adminCtrl *adminctrl.AdminController,
	accountCtrl *userctrl.AccountController,
	practiceCtrl *userctrl.PracticeController,
	interviewCtrl *userctrl.InterviewController,
) {
	server.RegisterRoutes(router, auth, adminCtrl, accountCtrl, practiceCtrl, interviewCtrl)
}
