package public

import (
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// ReserveRequest reservation request body
type ReserveRequest struct {
	ClientCode string       `json:"client_code" binding:"required"`
	TTLMinutes int          `json:"ttl_minutes"`
	Price      models.Money `json:"price"`
}

// GetItemStatus returns the live status view for one item
func (h *Handler) GetItemStatus(c *gin.Context) {
	view, err := h.ReservationService.ItemStatus(c.Param("item_number"))
	if err != nil {
		respondWithMappedError(c, err, itemHoldErrorRules, response.CodeInternal, "status lookup failed")
		return
	}
	response.Success(c, view)
}

// ReserveItem places a hold on an item for the caller's session. Repeating
// the call as the current holder renews the hold.
func (h *Handler) ReserveItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	reservation, err := h.ReservationService.Reserve(service.ReserveInput{
		ItemNumber: c.Param("item_number"),
		ClientCode: req.ClientCode,
		SessionID:  sessionID,
		TTLMinutes: req.TTLMinutes,
		Price:      req.Price,
	})
	if err != nil {
		respondWithMappedError(c, err, itemHoldErrorRules, response.CodeInternal, "reserve failed")
		return
	}
	response.Success(c, reservation)
}

// ReleaseItem releases the caller's hold. Idempotent: releasing an item
// that is not held still succeeds.
func (h *Handler) ReleaseItem(c *gin.Context) {
	if _, ok := getSessionID(c); !ok {
		return
	}
	clientCode := getClientCode(c)
	err := h.ReservationService.Release(c.Param("item_number"),
		constants.ReleaseReasonCustomer, clientCode, constants.PerformedByCustomer)
	if err != nil {
		respondWithMappedError(c, err, itemHoldErrorRules, response.CodeInternal, "release failed")
		return
	}
	response.Success(c, gin.H{"released": true})
}
