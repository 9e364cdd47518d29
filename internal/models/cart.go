package models

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
)

// Cart one browsing session's cart. TotalItems is derived on every save from
// the non-ghost lines and is never accepted from a client.
type Cart struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	SessionID    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"session_id"`
	ClientCode   string    `gorm:"type:varchar(64);index" json:"client_code"`
	TotalItems   int       `gorm:"not null;default:0" json:"total_items"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

// TableName table name
func (Cart) TableName() string {
	return "carts"
}

// RecomputeTotals refreshes the derived TotalItems counter. Ghosted lines
// stay in the cart for customer-facing explanation but are excluded from the
// visible count.
func (c *Cart) RecomputeTotals() {
	total := 0
	for i := range c.Items {
		if c.Items[i].GhostStatus != constants.GhostStatusGhost {
			total++
		}
	}
	c.TotalItems = total
}

// CartItem one line in a cart, carrying its own expiry mirror of the
// item-level reservation and the ghost fields of stale lines.
type CartItem struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	CartID     uint   `gorm:"not null;uniqueIndex:idx_cart_item_number" json:"cart_id"`
	ItemNumber string `gorm:"type:varchar(32);not null;uniqueIndex:idx_cart_item_number;index" json:"item_number"`
	FileName   string `gorm:"type:varchar(255)" json:"file_name"`

	Price         Money      `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	OriginalPrice Money      `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`
	HasPrice      bool       `gorm:"not null;default:true" json:"has_price"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`

	GhostStatus string     `gorm:"type:varchar(10);not null;default:'active'" json:"ghost_status"`
	GhostReason string     `gorm:"type:varchar(255)" json:"ghost_reason,omitempty"`
	GhostedAt   *time.Time `json:"ghosted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName table name
func (CartItem) TableName() string {
	return "cart_items"
}
