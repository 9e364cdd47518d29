package worker

import (
	"context"
	"encoding/json"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/provider"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartConsistencyScan, c.handleCartConsistencyScan)
}

func (c *Consumer) handleCartConsistencyScan(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_consistency_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartConsistencyScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_consistency_scan_unmarshal_failed", "error", err)
		return err
	}
	result, err := c.GhostService.ScanCarts(ctx)
	if err != nil {
		logger.Warnw("worker_consistency_scan_failed", "requested_by", payload.RequestedBy, "error", err)
		return err
	}
	logger.Infow("worker_consistency_scan_done",
		"requested_by", payload.RequestedBy,
		"carts", result.CartsScanned,
		"ghosted", result.LinesGhosted,
	)
	return nil
}
