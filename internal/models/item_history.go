package models

import "time"

// ItemStatusHistory append-only audit record of item status transitions.
// Rows are only ever inserted, never updated or deleted.
type ItemStatusHistory struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	ItemNumber      string    `gorm:"type:varchar(32);not null;index" json:"item_number"`
	Action          string    `gorm:"type:varchar(30);not null" json:"action"`
	PreviousStatus  string    `gorm:"type:varchar(20)" json:"previous_status"`
	NewStatus       string    `gorm:"type:varchar(20)" json:"new_status"`
	PerformedBy     string    `gorm:"type:varchar(64)" json:"performed_by"`
	PerformedByType string    `gorm:"type:varchar(20);not null" json:"performed_by_type"` // customer / admin / system
	Success         bool      `gorm:"not null;default:true" json:"success"`
	Error           string    `gorm:"type:varchar(500)" json:"error,omitempty"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName table name
func (ItemStatusHistory) TableName() string {
	return "item_status_history"
}
