package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-relay/internal/api/http"
	"github.com/spec-kit/support-relay/internal/api/http/handlers"
	"github.com/spec-kit/support-relay/internal/bot"
	"github.com/spec-kit/support-relay/internal/config"
	"github.com/spec-kit/support-relay/internal/events"
	"github.com/spec-kit/support-relay/internal/observability"
	"github.com/spec-kit/support-relay/internal/persistence"
	"github.com/spec-kit/support-relay/internal/repository"
	"github.com/spec-kit/support-relay/internal/service"
	"github.com/spec-kit/support-relay/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	if cfg.Bot.WorkspaceID == 0 {
		logger.Warn("ADMIN_GROUP_ID not set; administrator threads cannot be created")
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	logRepo := repository.NewMessageLogRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewRelayMetrics()

	notifier := service.NewNotifier(dispatcher, logger)
	notifier.RegisterHandlers()

	roles := service.NewRoleService(adminRepo, dispatcher, logger)
	if err := roles.Bootstrap(ctx, cfg.Bot.BootstrapAdminID); err != nil {
		logger.Error("failed to seed bootstrap admin", zap.Error(err))
	}

	tg := transport.NewTelegram(cfg.Bot.Token, []string{"📊 Bewertungen"}, logger)

	router := service.NewTicketRouter(service.RouterDependencies{
		TicketRepo:  ticketRepo,
		LogRepo:     logRepo,
		Roles:       roles,
		Transport:   tg,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
		WorkspaceID: cfg.Bot.WorkspaceID,
	})
	coalescer := service.NewMediaBatchCoalescer(cfg.Bot.BatchCollectDelay(), tg, dispatcher, metrics, logger)

	sessions := bot.NewRedisSessionStore(redis.Client, cfg.Bot.SessionTTL())
	facade := bot.NewFacade(bot.FacadeDependencies{
		Router:       router,
		Coalescer:    coalescer,
		Roles:        roles,
		Sessions:     sessions,
		Transport:    tg,
		Metrics:      metrics,
		Logger:       logger,
		ReviewPhotos: cfg.Bot.ReviewPhotoRefs,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, pg, redis),
		Metrics: handlers.NewMetricsHandler(metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	eventDispatcher := bot.NewDispatcher(facade.Handle, logger)
	eventDispatcher.Start(ctx)

	poller := transport.NewPoller(tg, cfg.Bot.PollTimeoutSeconds, logger)
	go poller.Run(ctx, func(ctx context.Context, update transport.Update) {
		ev, ok := bot.FromUpdate(update)
		if !ok {
			return
		}
		eventDispatcher.Enqueue(ctx, ev)
	})

	logger.Info("support relay started",
		zap.Int64("workspace_id", cfg.Bot.WorkspaceID),
		zap.Duration("batch_collect_delay", cfg.Bot.BatchCollectDelay()))

	waitForShutdown(logger)

	cancel()
	eventDispatcher.Wait()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
