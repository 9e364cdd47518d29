package admin

import (
	"errors"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/queue"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// RunReconcile fires a single reconciliation cycle and returns its result
func (h *Handler) RunReconcile(c *gin.Context) {
	if h.ReconcileService == nil {
		respondError(c, response.CodeBadRequest, "legacy integration disabled", nil)
		return
	}
	if c.Query("fresh") == "true" {
		h.ReconcileService.InvalidateCache()
	}
	result, err := h.ReconcileService.RunCycle(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReconcileInFlight):
			respondError(c, response.CodeConflict, "reconciliation already running", nil)
		default:
			respondError(c, response.CodeInternal, "reconcile cycle failed", err)
		}
		return
	}
	response.Success(c, result)
}

// GetBlockedRegistry returns the blocked-item registry contents
func (h *Handler) GetBlockedRegistry(c *gin.Context) {
	if h.ReconcileService == nil {
		respondError(c, response.CodeBadRequest, "legacy integration disabled", nil)
		return
	}
	items, err := h.ReconcileService.BlockedRegistry()
	if err != nil {
		respondError(c, response.CodeInternal, "registry fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": items, "count": len(items)})
}

// GetCacheStats returns read-through cache counters and per-key ages
func (h *Handler) GetCacheStats(c *gin.Context) {
	response.Success(c, h.Cache.Snapshot())
}

// ClearCache drops every cached legacy result
func (h *Handler) ClearCache(c *gin.Context) {
	h.Cache.Clear()
	response.Success(c, gin.H{"cleared": true})
}

// TriggerConsistencyScan runs the cart ghost pass, via the queue when one
// is available and inline otherwise
func (h *Handler) TriggerConsistencyScan(c *gin.Context) {
	if h.QueueClient.Enabled() {
		err := h.QueueClient.EnqueueCartConsistencyScan(queue.CartConsistencyScanPayload{
			RequestedBy: getAdminUser(c),
		})
		if err != nil {
			respondError(c, response.CodeInternal, "enqueue failed", err)
			return
		}
		response.SuccessWithMsg(c, "scan enqueued", nil)
		return
	}

	result, err := h.GhostService.ScanCarts(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "consistency scan failed", err)
		return
	}
	response.Success(c, result)
}
