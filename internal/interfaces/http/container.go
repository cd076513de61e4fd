package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsync "opsdesk/internal/application/sync"
	"opsdesk/internal/infrastructure/config"
	"opsdesk/internal/infrastructure/helpdesk"
	"opsdesk/internal/infrastructure/pubsub"
	"opsdesk/internal/infrastructure/repository"
	"opsdesk/internal/infrastructure/scheduler"
	"opsdesk/internal/shared/db"
	"opsdesk/internal/shared/logger"
)

// Container wires the sync engine together: upstream client, application
// services, repositories, event publishing, scheduling, and the HTTP
// router. It owns the pieces that need graceful shutdown.
type Container struct {
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client
	router *Router

	orchestrator *appsync.Orchestrator
	scheduler    *scheduler.SchedulerManager
}

// NewContainer builds the full dependency graph on top of an initialized
// database connection.
func NewContainer(cfg *config.Config, gormDB *gorm.DB, log logger.Interface) (*Container, error) {
	c := &Container{
		cfg: cfg,
		log: log,
	}

	var publisher appsync.EventPublisher = pubsub.NewNoopSyncEventPublisher()
	if cfg.Redis.Enabled {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publisher = pubsub.NewRedisSyncEventBus(c.redis, log)
	}

	orchestrator, err := buildOrchestratorWithPublisher(cfg, gormDB, log, publisher)
	if err != nil {
		return nil, err
	}
	c.orchestrator = orchestrator

	if cfg.Sync.ScheduleEnabled {
		manager, err := scheduler.NewSchedulerManager(log)
		if err != nil {
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		if err := manager.RegisterSyncJob(c.orchestrator, cfg.Sync.Interval()); err != nil {
			return nil, fmt.Errorf("failed to register sync job: %w", err)
		}
		c.scheduler = manager
	}

	c.router = NewRouter(c.orchestrator, log)
	c.router.SetupRoutes()

	return c, nil
}

// BuildOrchestrator wires the sync engine without event publishing. Used
// by the one-shot CLI and as the base for the server container.
func BuildOrchestrator(cfg *config.Config, gormDB *gorm.DB, log logger.Interface) (*appsync.Orchestrator, error) {
	return buildOrchestratorWithPublisher(cfg, gormDB, log, pubsub.NewNoopSyncEventPublisher())
}

func buildOrchestratorWithPublisher(
	cfg *config.Config,
	gormDB *gorm.DB,
	log logger.Interface,
	publisher appsync.EventPublisher,
) (*appsync.Orchestrator, error) {
	client, err := helpdesk.NewClient(&cfg.Helpdesk, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create helpdesk client: %w", err)
	}
	pacing := client.Pacing()

	ticketRepo := repository.NewTicketRepository(gormDB)
	technicianRepo := repository.NewTechnicianRepository(gormDB)
	activityLogRepo := repository.NewActivityLogRepository(gormDB)
	requesterRepo := repository.NewRequesterRepository(gormDB)
	satisfactionRepo := repository.NewSatisfactionRepository(gormDB)
	runRepo := repository.NewSyncRunRepository(gormDB)
	txManager := db.NewTransactionManager(gormDB)

	planner := appsync.NewWindowPlanner(runRepo, &cfg.Sync)
	enricher := appsync.NewEnricher(client, pacing, log)
	upserter := appsync.NewUpserter(ticketRepo, technicianRepo, activityLogRepo, txManager, log)
	tracker := appsync.NewProgressTracker()

	return appsync.NewOrchestrator(
		client,
		planner,
		enricher,
		upserter,
		ticketRepo,
		technicianRepo,
		requesterRepo,
		satisfactionRepo,
		runRepo,
		publisher,
		tracker,
		pacing,
		log,
	), nil
}

// Engine returns the gin engine for the HTTP server.
func (c *Container) Engine() *gin.Engine {
	return c.router.GetEngine()
}

// Orchestrator returns the wired sync engine.
func (c *Container) Orchestrator() *appsync.Orchestrator {
	return c.orchestrator
}

// StartBackground starts the scheduled sync job, if enabled.
func (c *Container) StartBackground() {
	if c.scheduler != nil {
		c.scheduler.Start()
	}
}

// Shutdown stops background components. The in-flight run, if any, is
// cancelled through the orchestrator.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		if err := c.scheduler.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	if c.orchestrator.ForceStop() {
		c.log.Infow("cancelled in-flight sync run during shutdown")
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close redis client", "error", err)
		}
	}
}
