package repository

import (
	"errors"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"

	"gorm.io/gorm"
)

// CartRepository cart data access. The derived total_items counter is
// recomputed from the line table on every mutation; it is never written from
// a caller-supplied value.
type CartRepository interface {
	GetBySession(sessionID string) (*models.Cart, error)
	GetOrCreate(sessionID, clientCode string) (*models.Cart, error)
	AddLine(cartID uint, line *models.CartItem) error
	RemoveLine(sessionID, itemNumber string) (int64, error)
	RemoveLineFromActiveCarts(itemNumber string) (int64, error)
	GhostLine(cartID uint, itemNumber, reason string, now time.Time) (int64, error)
	UpdateLineExpiry(sessionID, itemNumber string, expiresAt time.Time) (int64, error)
	ListActiveCartsWithItem(itemNumber string) ([]models.Cart, error)
	ListActiveCarts() ([]models.Cart, error)
	Touch(cartID uint, now time.Time) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM implementation
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates the cart repository
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx binds a transaction
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetBySession loads a cart with its lines, nil when absent
func (r *GormCartRepository) GetBySession(sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").Where("session_id = ?", sessionID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the session's cart, creating an empty active one on
// first use
func (r *GormCartRepository) GetOrCreate(sessionID, clientCode string) (*models.Cart, error) {
	if sessionID == "" {
		return nil, errors.New("session id required")
	}
	cart, err := r.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	now := time.Now()
	cart = &models.Cart{
		SessionID:    sessionID,
		ClientCode:   clientCode,
		IsActive:     true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// AddLine inserts a cart line and recomputes the derived counter
func (r *GormCartRepository) AddLine(cartID uint, line *models.CartItem) error {
	if cartID == 0 || line == nil {
		return errors.New("invalid cart line")
	}
	line.CartID = cartID
	if line.GhostStatus == "" {
		line.GhostStatus = constants.GhostStatusActive
	}
	if err := r.db.Create(line).Error; err != nil {
		return err
	}
	return r.recountTotals(cartID, time.Now())
}

// RemoveLine hard-deletes a line from one session's cart
func (r *GormCartRepository) RemoveLine(sessionID, itemNumber string) (int64, error) {
	cart, err := r.GetBySession(sessionID)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, nil
	}
	result := r.db.Where("cart_id = ? AND item_number = ?", cart.ID, itemNumber).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		if err := r.recountTotals(cart.ID, time.Now()); err != nil {
			return result.RowsAffected, err
		}
	}
	return result.RowsAffected, nil
}

// RemoveLineFromActiveCarts hard-deletes every line referencing the item
// from every active cart (forced cleanup: the application never owned the
// state change, so the line is removed rather than ghosted).
func (r *GormCartRepository) RemoveLineFromActiveCarts(itemNumber string) (int64, error) {
	if itemNumber == "" {
		return 0, errors.New("item number required")
	}
	carts, err := r.ListActiveCartsWithItem(itemNumber)
	if err != nil {
		return 0, err
	}
	var removed int64
	now := time.Now()
	for i := range carts {
		result := r.db.Where("cart_id = ? AND item_number = ?", carts[i].ID, itemNumber).Delete(&models.CartItem{})
		if result.Error != nil {
			return removed, result.Error
		}
		removed += result.RowsAffected
		if err := r.recountTotals(carts[i].ID, now); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// UpdateLineExpiry refreshes the expiry mirror on one session's live line.
// The line carries its own expires_at so the cart view never re-reads the
// item; a renewal must push the new expiry here too.
func (r *GormCartRepository) UpdateLineExpiry(sessionID, itemNumber string, expiresAt time.Time) (int64, error) {
	if sessionID == "" || itemNumber == "" {
		return 0, errors.New("invalid line expiry params")
	}
	cart, err := r.GetBySession(sessionID)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, nil
	}
	result := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND item_number = ? AND ghost_status <> ?", cart.ID, itemNumber, constants.GhostStatusGhost).
		Updates(map[string]interface{}{
			"expires_at": expiresAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GhostLine marks a line as ghost: snapshot the price, zero what the
// customer sees, and keep the row so the UI can explain the disappearance.
func (r *GormCartRepository) GhostLine(cartID uint, itemNumber, reason string, now time.Time) (int64, error) {
	if cartID == 0 || itemNumber == "" {
		return 0, errors.New("invalid ghost params")
	}
	result := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND item_number = ? AND ghost_status <> ?", cartID, itemNumber, constants.GhostStatusGhost).
		Updates(map[string]interface{}{
			"ghost_status":   constants.GhostStatusGhost,
			"ghost_reason":   reason,
			"ghosted_at":     now,
			"original_price": gorm.Expr("price"),
			"price":          0,
			"has_price":      false,
			"updated_at":     now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		if err := r.recountTotals(cartID, now); err != nil {
			return result.RowsAffected, err
		}
	}
	return result.RowsAffected, nil
}

// ListActiveCartsWithItem returns active carts holding a non-deleted line
// for the item
func (r *GormCartRepository) ListActiveCartsWithItem(itemNumber string) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.Joins("JOIN cart_items ON cart_items.cart_id = carts.id").
		Where("carts.is_active = ? AND cart_items.item_number = ?", true, itemNumber).
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

// ListActiveCarts returns all active carts with lines preloaded
func (r *GormCartRepository) ListActiveCarts() ([]models.Cart, error) {
	var carts []models.Cart
	if err := r.db.Preload("Items").Where("is_active = ?", true).Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// Touch refreshes last_activity
func (r *GormCartRepository) Touch(cartID uint, now time.Time) error {
	if cartID == 0 {
		return nil
	}
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).
		Updates(map[string]interface{}{"last_activity": now, "updated_at": now}).Error
}

// recountTotals recomputes total_items from the line table. The derived
// count always excludes ghosted lines.
func (r *GormCartRepository) recountTotals(cartID uint, now time.Time) error {
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).
		Updates(map[string]interface{}{
			"total_items": gorm.Expr(
				"(SELECT COUNT(*) FROM cart_items WHERE cart_items.cart_id = ? AND cart_items.ghost_status <> ?)",
				cartID, constants.GhostStatusGhost),
			"last_activity": now,
			"updated_at":    now,
		}).Error
}
