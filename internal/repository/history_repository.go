package repository

import (
	"errors"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"

	"gorm.io/gorm"
)

// HistoryRepository append-only item status audit trail
type HistoryRepository interface {
	Append(entry *models.ItemStatusHistory) error
	ListByItem(itemNumber string, limit int) ([]models.ItemStatusHistory, error)
	CountByItem(itemNumber string) (int64, error)
	CountAll() (int64, error)
	WithTx(tx *gorm.DB) HistoryRepository
}

// GormHistoryRepository GORM implementation
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates the history repository
func NewHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// WithTx binds a transaction
func (r *GormHistoryRepository) WithTx(tx *gorm.DB) HistoryRepository {
	if tx == nil {
		return r
	}
	return &GormHistoryRepository{db: tx}
}

// Append inserts one audit entry; entries are never updated or deleted
func (r *GormHistoryRepository) Append(entry *models.ItemStatusHistory) error {
	if entry == nil || entry.ItemNumber == "" {
		return errors.New("invalid history entry")
	}
	return r.db.Create(entry).Error
}

// ListByItem returns newest entries first
func (r *GormHistoryRepository) ListByItem(itemNumber string, limit int) ([]models.ItemStatusHistory, error) {
	var entries []models.ItemStatusHistory
	query := r.db.Where("item_number = ?", itemNumber).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByItem counts one item's entries
func (r *GormHistoryRepository) CountByItem(itemNumber string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ItemStatusHistory{}).Where("item_number = ?", itemNumber).Count(&count).Error
	return count, err
}

// CountAll counts every entry
func (r *GormHistoryRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.ItemStatusHistory{}).Count(&count).Error
	return count, err
}
