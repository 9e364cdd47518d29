package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/config"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/queue"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"

	"github.com/hibiken/asynq"
)

// Service background engine host: reconciliation, expiration sweeps, cache
// purge and the daily cart consistency scan. The asynq server piece is
// optional; the timed loops run regardless so a redis outage never stops
// expiry or reconciliation.
type Service struct {
	name     string
	cfg      *config.Config
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the background service
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		name:     "worker",
		cfg:      cfg,
		consumer: consumer,
	}
	if cfg.Queue.Enabled {
		opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	}
	return s, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the timed loops and, when enabled, the asynq server. Blocks
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}

	if s.consumer.ReconcileService != nil {
		go s.runReconcileLoop(ctx)
	}
	go s.runSweepLoop(ctx)
	go s.consumer.Cache.RunPurgeLoop(ctx)
	go s.runConsistencyScanLoop(ctx)

	if s.server != nil && s.mux != nil {
		return s.server.Run(s.mux)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Stop stops the asynq server when one is running
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func newTicker(interval time.Duration) *time.Ticker {
	if interval <= 0 {
		interval = time.Minute
	}
	return time.NewTicker(interval)
}

func (s *Service) runReconcileLoop(ctx context.Context) {
	runOnce := func() {
		_, err := s.consumer.ReconcileService.RunCycle(ctx)
		if err != nil && !errors.Is(err, service.ErrReconcileInFlight) {
			logger.Warnw("worker_reconcile_cycle_failed", "error", err)
		}
	}
	runOnce()

	ticker := newTicker(s.cfg.Reconcile.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runSweepLoop(ctx context.Context) {
	runOnce := func() {
		if _, err := s.consumer.ExpirationService.Sweep(ctx); err != nil {
			logger.Warnw("worker_expiration_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := newTicker(s.cfg.Sweep.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runConsistencyScanLoop(ctx context.Context) {
	runOnce := func() {
		if s.consumer.QueueClient.Enabled() {
			err := s.consumer.QueueClient.EnqueueCartConsistencyScan(queue.CartConsistencyScanPayload{
				RequestedBy: "scheduler",
			})
			if err != nil {
				logger.Warnw("worker_consistency_scan_enqueue_failed", "error", err)
			}
			return
		}
		if _, err := s.consumer.GhostService.ScanCarts(ctx); err != nil {
			logger.Warnw("worker_consistency_scan_failed", "error", err)
		}
	}

	ticker := newTicker(s.cfg.Sweep.ConsistencyScanInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
