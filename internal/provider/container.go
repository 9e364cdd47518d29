package provider

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/cache"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/config"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/legacy"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/queue"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"
)

// Container dependency injection container
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Cache       *cache.TTLCache
	LegacySrc   legacy.Source

	// Repositories
	ItemRepo    repository.ItemRepository
	CartRepo    repository.CartRepository
	BlockedRepo repository.BlockedItemRepository
	HistoryRepo repository.HistoryRepository

	// Services
	ReservationService *service.ReservationService
	LockService        *service.LockService
	CartService        *service.CartService
	ReconcileService   *service.ReconcileService
	GhostService       *service.GhostService
	ExpirationService  *service.ExpirationService
}

// NewContainer wires repositories and services against the shared DB handle
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Cache: cache.New(cache.Options{
			DefaultTTL:    time.Duration(cfg.Cache.DefaultTTLMinutes) * time.Minute,
			PurgeCeiling:  time.Duration(cfg.Cache.PurgeCeilingHours) * time.Hour,
			PurgeInterval: time.Duration(cfg.Cache.PurgeIntervalMin) * time.Minute,
		}),
	}

	if cfg.Legacy.Enabled {
		src, err := legacy.NewClient(&cfg.Legacy)
		if err != nil {
			logger.Errorw("provider_init_legacy_failed", "error", err)
		} else {
			c.LegacySrc = src
		}
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ItemRepo = repository.NewItemRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.BlockedRepo = repository.NewBlockedItemRepository(db)
	c.HistoryRepo = repository.NewHistoryRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.ReservationService = service.NewReservationService(c.ItemRepo, c.CartRepo, c.HistoryRepo,
		cfg.Reservation.DefaultTTLMinutes, cfg.Reservation.MaxTTLMinutes)
	c.LockService = service.NewLockService(c.ItemRepo, c.HistoryRepo, cfg.Reservation.LockTTLMinutes)
	c.CartService = service.NewCartService(c.CartRepo, c.ReservationService)
	c.GhostService = service.NewGhostService(c.ItemRepo, c.CartRepo)
	c.ExpirationService = service.NewExpirationService(c.ItemRepo, c.ReservationService, c.LockService)
	if c.LegacySrc != nil {
		c.ReconcileService = service.NewReconcileService(c.LegacySrc, c.Cache,
			c.ItemRepo, c.CartRepo, c.BlockedRepo, c.HistoryRepo, service.ReconcileOptions{
				ChangeWindow: cfg.Legacy.ChangeWindow(),
				CacheTTL:     time.Duration(cfg.Legacy.CacheTTLMinutes) * time.Minute,
				MaxBlocked:   cfg.Legacy.MaxBlockedPerQuery,
			})
	}
}
