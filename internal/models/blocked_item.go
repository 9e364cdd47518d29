package models

import "time"

// BlockedItem bounded registry of items the CDE currently reports in a
// blocking status (RESERVED / STANDBY / PRE-SELECTED). Rows are a caching
// optimization owned by the reconciliation engine, not business data: they
// are created when the legacy system starts blocking an item and deleted
// when it reports the item released.
type BlockedItem struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ItemNumber    string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"item_number"`
	LegacyStatus  string    `gorm:"type:varchar(20);not null" json:"legacy_status"`
	FirstDetected time.Time `json:"first_detected"`
	LastChecked   time.Time `json:"last_checked"`
	CheckCount    int       `gorm:"not null;default:1" json:"check_count"`
}

// TableName table name
func (BlockedItem) TableName() string {
	return "blocked_items"
}
