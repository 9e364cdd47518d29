package repository

import (
	"errors"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"

	"gorm.io/gorm"
)

// BlockedItemRepository registry of CDE-blocked item numbers, used to bound
// the cost of each reconciliation pass
type BlockedItemRepository interface {
	Upsert(itemNumber, legacyStatus string, now time.Time) error
	Remove(itemNumber string) error
	ListNumbers(limit int) ([]string, error)
	List() ([]models.BlockedItem, error)
	WithTx(tx *gorm.DB) BlockedItemRepository
}

// GormBlockedItemRepository GORM implementation
type GormBlockedItemRepository struct {
	db *gorm.DB
}

// NewBlockedItemRepository creates the blocked item repository
func NewBlockedItemRepository(db *gorm.DB) *GormBlockedItemRepository {
	return &GormBlockedItemRepository{db: db}
}

// WithTx binds a transaction
func (r *GormBlockedItemRepository) WithTx(tx *gorm.DB) BlockedItemRepository {
	if tx == nil {
		return r
	}
	return &GormBlockedItemRepository{db: tx}
}

// Upsert records a blocking legacy status, keeping first_detected and
// bumping the check counters on repeat sightings
func (r *GormBlockedItemRepository) Upsert(itemNumber, legacyStatus string, now time.Time) error {
	if itemNumber == "" {
		return errors.New("item number required")
	}
	var existing models.BlockedItem
	err := r.db.Where("item_number = ?", itemNumber).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.BlockedItem{
			ItemNumber:    itemNumber,
			LegacyStatus:  legacyStatus,
			FirstDetected: now,
			LastChecked:   now,
			CheckCount:    1,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"legacy_status": legacyStatus,
		"last_checked":  now,
		"check_count":   gorm.Expr("check_count + 1"),
	}).Error
}

// Remove deletes the registry entry once the CDE reports the item released
func (r *GormBlockedItemRepository) Remove(itemNumber string) error {
	if itemNumber == "" {
		return nil
	}
	return r.db.Where("item_number = ?", itemNumber).Delete(&models.BlockedItem{}).Error
}

// ListNumbers returns registered item numbers, oldest check first
func (r *GormBlockedItemRepository) ListNumbers(limit int) ([]string, error) {
	var numbers []string
	query := r.db.Model(&models.BlockedItem{}).Order("last_checked asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("item_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// List returns the full registry for the admin surface
func (r *GormBlockedItemRepository) List() ([]models.BlockedItem, error) {
	var records []models.BlockedItem
	if err := r.db.Order("first_detected asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
