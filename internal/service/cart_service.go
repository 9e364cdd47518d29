package service

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
)

// CartService session cart reads and line removal. Adding a line is the
// reserve operation itself; the cart never holds an item the reservation
// path did not grant.
type CartService struct {
	cartRepo    repository.CartRepository
	reservation *ReservationService
}

func NewCartService(cartRepo repository.CartRepository, reservation *ReservationService) *CartService {
	return &CartService{cartRepo: cartRepo, reservation: reservation}
}

// CartLineView one cart line as rendered to the customer. Ghost lines stay
// visible with a zeroed price and the reason they went stale.
type CartLineView struct {
	ItemNumber    string       `json:"item_number"`
	FileName      string       `json:"file_name,omitempty"`
	Price         models.Money `json:"price"`
	OriginalPrice models.Money `json:"original_price,omitempty"`
	HasPrice      bool         `json:"has_price"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	Ghost         bool         `json:"ghost"`
	GhostReason   string       `json:"ghost_reason,omitempty"`
	GhostedAt     *time.Time   `json:"ghosted_at,omitempty"`
}

// CartView the customer-facing cart snapshot
type CartView struct {
	SessionID    string         `json:"session_id"`
	ClientCode   string         `json:"client_code,omitempty"`
	TotalItems   int            `json:"total_items"`
	LastActivity time.Time      `json:"last_activity"`
	Lines        []CartLineView `json:"lines"`
}

// Get returns the cart for a session. A session without a cart gets an
// empty view rather than an error.
func (s *CartService) Get(sessionID string) (*CartView, error) {
	if sessionID == "" {
		return nil, ErrInvalidRequest
	}
	cart, err := s.cartRepo.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartView{SessionID: sessionID, Lines: []CartLineView{}}, nil
	}

	view := &CartView{
		SessionID:    cart.SessionID,
		ClientCode:   cart.ClientCode,
		TotalItems:   cart.TotalItems,
		LastActivity: cart.LastActivity,
		Lines:        make([]CartLineView, 0, len(cart.Items)),
	}
	for _, line := range cart.Items {
		view.Lines = append(view.Lines, CartLineView{
			ItemNumber:    line.ItemNumber,
			FileName:      line.FileName,
			Price:         line.Price,
			OriginalPrice: line.OriginalPrice,
			HasPrice:      line.HasPrice,
			ExpiresAt:     line.ExpiresAt,
			Ghost:         line.GhostStatus == constants.GhostStatusGhost,
			GhostReason:   line.GhostReason,
			GhostedAt:     line.GhostedAt,
		})
	}
	return view, nil
}

// AddItem reserves the item for the session and mirrors it into the cart
func (s *CartService) AddItem(input ReserveInput) (*Reservation, error) {
	return s.reservation.Reserve(input)
}

// RemoveItem drops a line from the session's cart. A live line releases
// the underlying reservation; a ghost line is simply deleted.
func (s *CartService) RemoveItem(sessionID, itemNumber string) error {
	if sessionID == "" || itemNumber == "" {
		return ErrInvalidRequest
	}
	cart, err := s.cartRepo.GetBySession(sessionID)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartNotFound
	}

	var line *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ItemNumber == itemNumber {
			line = &cart.Items[i]
			break
		}
	}
	if line == nil {
		return ErrCartNotFound
	}

	if line.GhostStatus != constants.GhostStatusGhost {
		if err := s.reservation.Release(itemNumber, constants.ReleaseReasonCustomer, cart.ClientCode, constants.PerformedByCustomer); err != nil {
			return err
		}
		// Release already removed the mirrored line from active carts.
		return nil
	}

	affected, err := s.cartRepo.RemoveLine(sessionID, itemNumber)
	if err != nil {
		return err
	}
	if affected > 0 {
		logger.Infow("ghost_line_removed", "session_id", sessionID, "item_number", itemNumber)
	}
	return nil
}
