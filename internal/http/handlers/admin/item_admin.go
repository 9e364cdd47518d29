package admin

import (
	"errors"
	"strconv"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// LockRequest administrative lock request body
type LockRequest struct {
	Reason     string `json:"reason"`
	TTLMinutes int    `json:"ttl_minutes"`
}

// LockItem places an administrative lock on an item
func (h *Handler) LockItem(c *gin.Context) {
	// An empty body is acceptable; malformed JSON is not.
	var req LockRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
	}

	lock, err := h.LockService.Acquire(c.Param("item_number"), getAdminUser(c), req.Reason, req.TTLMinutes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			respondError(c, response.CodeBadRequest, "invalid request", nil)
		case errors.Is(err, service.ErrItemNotFound):
			respondError(c, response.CodeNotFound, "item not found", nil)
		case errors.Is(err, service.ErrItemAlreadyReserved):
			respondError(c, response.CodeConflict, "item reserved by a customer", nil)
		case errors.Is(err, service.ErrItemAlreadyLocked):
			respondError(c, response.CodeConflict, "item already locked", nil)
		case errors.Is(err, service.ErrItemNotAvailable):
			respondError(c, response.CodeConflict, "item not available", nil)
		case errors.Is(err, service.ErrSelectionOwned):
			respondError(c, response.CodeConflict, "item belongs to a special selection", nil)
		default:
			respondError(c, response.CodeInternal, "lock failed", err)
		}
		return
	}
	response.Success(c, lock)
}

// UnlockItem releases an administrative lock. Idempotent.
func (h *Handler) UnlockItem(c *gin.Context) {
	if err := h.LockService.Release(c.Param("item_number"), getAdminUser(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			respondError(c, response.CodeBadRequest, "invalid request", nil)
		case errors.Is(err, service.ErrItemNotFound):
			respondError(c, response.CodeNotFound, "item not found", nil)
		case errors.Is(err, service.ErrSelectionOwned):
			respondError(c, response.CodeConflict, "item belongs to a special selection", nil)
		default:
			respondError(c, response.CodeInternal, "unlock failed", err)
		}
		return
	}
	response.Success(c, gin.H{"unlocked": true})
}

// GetItemHistory returns the append-only status trail for one item
func (h *Handler) GetItemHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	entries, err := h.HistoryRepo.ListByItem(c.Param("item_number"), limit)
	if err != nil {
		respondError(c, response.CodeInternal, "history fetch failed", err)
		return
	}
	response.Success(c, gin.H{"entries": entries})
}
