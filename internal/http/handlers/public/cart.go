package public

import (
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// CartAddRequest add-to-cart request body
type CartAddRequest struct {
	ItemNumber string       `json:"item_number" binding:"required"`
	ClientCode string       `json:"client_code" binding:"required"`
	TTLMinutes int          `json:"ttl_minutes"`
	Price      models.Money `json:"price"`
}

// GetCart returns the session cart, ghost lines included
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	view, err := h.CartService.Get(sessionID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart fetch failed")
		return
	}
	response.Success(c, view)
}

// AddCartItem reserves an item into the session cart
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var req CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	reservation, err := h.CartService.AddItem(service.ReserveInput{
		ItemNumber: req.ItemNumber,
		ClientCode: req.ClientCode,
		SessionID:  sessionID,
		TTLMinutes: req.TTLMinutes,
		Price:      req.Price,
	})
	if err != nil {
		respondWithMappedError(c, err, itemHoldErrorRules, response.CodeInternal, "add to cart failed")
		return
	}
	response.Success(c, reservation)
}

// RemoveCartItem drops a line from the session cart, releasing the hold
// when the line is still live
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(sessionID, c.Param("item_number")); err != nil {
		respondWithMappedError(c, err, concatRules(cartErrorRules, itemHoldErrorRules), response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, gin.H{"removed": true})
}

func concatRules(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
