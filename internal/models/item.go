package models

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
)

// Item one physical, non-fungible unit represented by a catalog photo.
// `Status` is the application's authoritative view; `LegacyStatus` is the
// last raw status string seen in the CDE, kept deliberately separate because
// the mapping between the two is lossy.
type Item struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ItemNumber string `gorm:"type:varchar(32);not null;uniqueIndex" json:"item_number"` // stable business key
	LegacyID   string `gorm:"type:varchar(64);index" json:"legacy_id"`
	FileName   string `gorm:"type:varchar(255)" json:"file_name"`

	// Price is set at catalog ingestion and is the authoritative display
	// price for cart lines. A zero price means the catalog has none yet.
	Price Money `gorm:"type:decimal(20,2);not null;default:0" json:"price"`

	Status       string `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	LegacyStatus string `gorm:"type:varchar(20)" json:"legacy_status"`
	Location     string `gorm:"type:varchar(30);not null;default:'stock'" json:"location"`

	// Back-references for cart and curated selection ownership. A non-empty
	// SelectionID is a hard override: no component other than the selection
	// builder may mutate Status or Location while it is set.
	CartSessionID string  `gorm:"type:varchar(64);index" json:"cart_session_id,omitempty"`
	SelectionID   *string `gorm:"type:varchar(64);index" json:"selection_id,omitempty"`

	// Customer reservation (time-bounded hold granted via cart interaction)
	IsReserved           bool       `gorm:"not null;default:false" json:"is_reserved"`
	ReservedBy           string     `gorm:"type:varchar(64)" json:"reserved_by,omitempty"`
	ReservedSession      string     `gorm:"type:varchar(64)" json:"reserved_session,omitempty"`
	ReservedAt           *time.Time `json:"reserved_at,omitempty"`
	ReservationExpiresAt *time.Time `gorm:"index" json:"reservation_expires_at,omitempty"`
	RenewalCount         int        `gorm:"not null;default:0" json:"renewal_count"`

	// Administrative edit lock, separate TTL namespace from reservations
	LockedBy      string     `gorm:"type:varchar(64)" json:"locked_by,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	LockExpiresAt *time.Time `gorm:"index" json:"lock_expires_at,omitempty"`
	LockReason    string     `gorm:"type:varchar(255)" json:"lock_reason,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// TableName table name
func (Item) TableName() string {
	return "items"
}

// SelectionOwned reports whether a curated selection owns this item
func (i *Item) SelectionOwned() bool {
	return i != nil && i.SelectionID != nil && *i.SelectionID != ""
}

// HasValidReservation reports whether a customer reservation is active and
// not yet expired at the given instant
func (i *Item) HasValidReservation(now time.Time) bool {
	if i == nil || !i.IsReserved || i.Status != constants.ItemStatusReserved {
		return false
	}
	if i.ReservationExpiresAt == nil {
		return false
	}
	return i.ReservationExpiresAt.After(now)
}

// AdminLocked reports whether an administrative (non-CDE) edit lock is held
func (i *Item) AdminLocked() bool {
	return i != nil && i.Status == constants.ItemStatusLocked && i.LockedBy != "" && i.LockedBy != constants.LockHolderCDE
}
