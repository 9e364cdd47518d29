package repository

import (
	"errors"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"

	"gorm.io/gorm"
)

// ItemRepository item data access. Every mutation that can race with a
// concurrent writer is a single conditional UPDATE guarded on the current
// status; callers inspect RowsAffected to detect a lost race.
type ItemRepository interface {
	GetByNumber(itemNumber string) (*models.Item, error)
	Create(item *models.Item) error
	Reserve(itemNumber, clientCode, sessionID string, now time.Time, expiresAt time.Time) (int64, error)
	RenewReservation(itemNumber, clientCode string, now time.Time, expiresAt time.Time) (int64, error)
	Release(itemNumber string, now time.Time) (int64, error)
	AcquireLock(itemNumber, lockedBy, reason string, now time.Time, expiresAt *time.Time) (int64, error)
	ReleaseLock(itemNumber string, now time.Time) (int64, error)
	ApplyTransition(itemNumber, expectedStatus string, updates map[string]interface{}) (int64, error)
	RefreshLegacyStatus(itemNumber, legacyStatus string, now time.Time) error
	ListExpiredReservations(now time.Time, limit int) ([]models.Item, error)
	ListExpiredLocks(now time.Time, limit int) ([]models.Item, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ItemRepository
}

// GormItemRepository GORM implementation
type GormItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates the item repository
func NewItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// WithTx binds a transaction
func (r *GormItemRepository) WithTx(tx *gorm.DB) ItemRepository {
	if tx == nil {
		return r
	}
	return &GormItemRepository{db: tx}
}

// Transaction runs fn in a transaction
func (r *GormItemRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByNumber loads an item by its business key, nil when absent
func (r *GormItemRepository) GetByNumber(itemNumber string) (*models.Item, error) {
	var item models.Item
	err := r.db.Where("item_number = ?", itemNumber).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item record
func (r *GormItemRepository) Create(item *models.Item) error {
	if item == nil {
		return nil
	}
	return r.db.Create(item).Error
}

// Reserve places a customer hold. The write succeeds only when the item is
// currently available and not selection-owned; RowsAffected 0 means the
// caller lost the race or the item is not reservable.
func (r *GormItemRepository) Reserve(itemNumber, clientCode, sessionID string, now time.Time, expiresAt time.Time) (int64, error) {
	if itemNumber == "" || clientCode == "" {
		return 0, errors.New("invalid reserve params")
	}
	result := r.db.Model(&models.Item{}).
		Where("item_number = ? AND status = ? AND (selection_id IS NULL OR selection_id = '')",
			itemNumber, constants.ItemStatusAvailable).
		Updates(map[string]interface{}{
			"status":                 constants.ItemStatusReserved,
			"location":               constants.LocationCart,
			"cart_session_id":        sessionID,
			"is_reserved":            true,
			"reserved_by":            clientCode,
			"reserved_session":       sessionID,
			"reserved_at":            now,
			"reservation_expires_at": expiresAt,
			"renewal_count":          0,
			"updated_at":             now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RenewReservation extends the hold of the current holder only
func (r *GormItemRepository) RenewReservation(itemNumber, clientCode string, now time.Time, expiresAt time.Time) (int64, error) {
	if itemNumber == "" || clientCode == "" {
		return 0, errors.New("invalid renew params")
	}
	result := r.db.Model(&models.Item{}).
		Where("item_number = ? AND status = ? AND is_reserved = ? AND reserved_by = ?",
			itemNumber, constants.ItemStatusReserved, true, clientCode).
		Updates(map[string]interface{}{
			"reservation_expires_at": expiresAt,
			"renewal_count":          gorm.Expr("renewal_count + 1"),
			"updated_at":             now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Release clears a customer hold and returns the item to stock. Guarded on
// status so a release racing a reconciliation write loses cleanly.
func (r *GormItemRepository) Release(itemNumber string, now time.Time) (int64, error) {
	if itemNumber == "" {
		return 0, errors.New("invalid release params")
	}
	result := r.db.Model(&models.Item{}).
		Where("item_number = ? AND status = ?", itemNumber, constants.ItemStatusReserved).
		Updates(releaseUpdates(now))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func releaseUpdates(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":                 constants.ItemStatusAvailable,
		"location":               constants.LocationStock,
		"cart_session_id":        "",
		"is_reserved":            false,
		"reserved_by":            "",
		"reserved_session":       "",
		"reserved_at":            nil,
		"reservation_expires_at": nil,
		"renewal_count":          0,
		"updated_at":             now,
	}
}

// AcquireLock places an administrative edit lock on an available item.
// Lock TTLs live in their own namespace, independent of reservations.
func (r *GormItemRepository) AcquireLock(itemNumber, lockedBy, reason string, now time.Time, expiresAt *time.Time) (int64, error) {
	if itemNumber == "" || lockedBy == "" {
		return 0, errors.New("invalid lock params")
	}
	result := r.db.Model(&models.Item{}).
		Where("item_number = ? AND status = ? AND (selection_id IS NULL OR selection_id = '')",
			itemNumber, constants.ItemStatusAvailable).
		Updates(map[string]interface{}{
			"status":          constants.ItemStatusLocked,
			"locked_by":       lockedBy,
			"locked_at":       now,
			"lock_expires_at": expiresAt,
			"lock_reason":     reason,
			"updated_at":      now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseLock clears an administrative lock. CDE-imposed unavailability is
// not an admin lock and is excluded here; only reconciliation may clear it.
func (r *GormItemRepository) ReleaseLock(itemNumber string, now time.Time) (int64, error) {
	if itemNumber == "" {
		return 0, errors.New("invalid unlock params")
	}
	result := r.db.Model(&models.Item{}).
		Where("item_number = ? AND status = ? AND locked_by <> ?",
			itemNumber, constants.ItemStatusLocked, constants.LockHolderCDE).
		Updates(lockClearUpdates(now))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func lockClearUpdates(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":          constants.ItemStatusAvailable,
		"location":        constants.LocationStock,
		"locked_by":       "",
		"locked_at":       nil,
		"lock_expires_at": nil,
		"lock_reason":     "",
		"updated_at":      now,
	}
}

// ApplyTransition performs one reconciliation write, compare-and-swapped on
// the status the caller last read. Selection-owned items never match.
func (r *GormItemRepository) ApplyTransition(itemNumber, expectedStatus string, updates map[string]interface{}) (int64, error) {
	if itemNumber == "" || expectedStatus == "" || len(updates) == 0 {
		return 0, errors.New("invalid transition params")
	}
	result := r.db.Model(&models.Item{}).
		Where("item_number = ? AND status = ? AND (selection_id IS NULL OR selection_id = '')",
			itemNumber, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RefreshLegacyStatus updates only the cached raw CDE status. This is the
// one write allowed on selection-owned items.
func (r *GormItemRepository) RefreshLegacyStatus(itemNumber, legacyStatus string, now time.Time) error {
	if itemNumber == "" {
		return errors.New("invalid refresh params")
	}
	return r.db.Model(&models.Item{}).
		Where("item_number = ?", itemNumber).
		Updates(map[string]interface{}{
			"legacy_status": legacyStatus,
			"updated_at":    now,
		}).Error
}

// ListExpiredReservations returns reserved items whose hold TTL elapsed
func (r *GormItemRepository) ListExpiredReservations(now time.Time, limit int) ([]models.Item, error) {
	var items []models.Item
	query := r.db.Where("status = ? AND reservation_expires_at IS NOT NULL AND reservation_expires_at < ?",
		constants.ItemStatusReserved, now).
		Order("reservation_expires_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListExpiredLocks returns admin-locked items whose lock TTL elapsed.
// CDE-imposed locks carry no expiry and are never swept.
func (r *GormItemRepository) ListExpiredLocks(now time.Time, limit int) ([]models.Item, error) {
	var items []models.Item
	query := r.db.Where("status = ? AND locked_by <> ? AND lock_expires_at IS NOT NULL AND lock_expires_at < ?",
		constants.ItemStatusLocked, constants.LockHolderCDE, now).
		Order("lock_expires_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
