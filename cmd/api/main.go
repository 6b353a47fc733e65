package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/joshwa2003/hr-helpdesk/internal/api/http"
	"github.com/joshwa2003/hr-helpdesk/internal/api/http/handlers"
	"github.com/joshwa2003/hr-helpdesk/internal/auth"
	"github.com/joshwa2003/hr-helpdesk/internal/config"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
	"github.com/joshwa2003/hr-helpdesk/internal/observability"
	"github.com/joshwa2003/hr-helpdesk/internal/persistence"
	"github.com/joshwa2003/hr-helpdesk/internal/repository"
	"github.com/joshwa2003/hr-helpdesk/internal/service"
	"github.com/joshwa2003/hr-helpdesk/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, userRepo)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	sequencer := service.NewTicketSequencer(redis.Client, ticketRepo, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		EscalationRepo: escalationRepo,
		HistoryRepo:    historyRepo,
		Selector:       assignmentService,
		Sequencer:      sequencer,
		Dispatcher:     dispatcher,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		EscalationRepo: escalationRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
		SweepBatchSize: cfg.Sweep.BatchSize,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if cfg.Sweep.Enabled {
		sweeper := worker.NewEscalationWorker(escalationService, metrics, logger, cfg.Sweep)
		go sweeper.Run(ctx)
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, escalationService),
		HRTickets:      handlers.NewHRTicketsHandler(ticketService, assignmentService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
