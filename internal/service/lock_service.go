package service

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
)

// LockService administrative edit locks. Locks live in their own TTL
// namespace; they are not customer reservations and never touch
// reservation fields.
type LockService struct {
	itemRepo    repository.ItemRepository
	historyRepo repository.HistoryRepository
	defaultTTL  time.Duration
}

// NewLockService creates the lock service
func NewLockService(itemRepo repository.ItemRepository, historyRepo repository.HistoryRepository, defaultTTLMinutes int) *LockService {
	ttl := time.Duration(defaultTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &LockService{
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		defaultTTL:  ttl,
	}
}

// Lock granted admin lock view
type Lock struct {
	ItemNumber string    `json:"item_number"`
	LockedBy   string    `json:"locked_by"`
	LockedAt   time.Time `json:"locked_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Reason     string    `json:"reason,omitempty"`
}

// Acquire places an edit lock on an available item
func (s *LockService) Acquire(itemNumber, admin, reason string, ttlMinutes int) (*Lock, error) {
	if itemNumber == "" || admin == "" {
		return nil, ErrInvalidRequest
	}
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(item); err != nil {
		return nil, err
	}

	ttl := time.Duration(ttlMinutes) * time.Minute
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := time.Now()
	expiresAt := now.Add(ttl)

	affected, err := s.itemRepo.AcquireLock(itemNumber, admin, reason, now, &expiresAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.lockConflict(itemNumber)
	}

	s.appendHistory(itemNumber, constants.HistoryActionAdminLock, item.Status,
		constants.ItemStatusLocked, admin, constants.PerformedByAdmin)

	return &Lock{
		ItemNumber: itemNumber,
		LockedBy:   admin,
		LockedAt:   now,
		ExpiresAt:  expiresAt,
		Reason:     reason,
	}, nil
}

func (s *LockService) lockConflict(itemNumber string) error {
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	if item.SelectionOwned() {
		return ErrSelectionOwned
	}
	switch item.Status {
	case constants.ItemStatusLocked:
		return ErrItemAlreadyLocked
	case constants.ItemStatusReserved:
		return ErrItemAlreadyReserved
	default:
		return ErrItemNotAvailable
	}
}

// Release clears an admin lock. Idempotent when the lock is already gone.
func (s *LockService) Release(itemNumber, admin string) error {
	if itemNumber == "" {
		return ErrInvalidRequest
	}
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return err
	}
	if err := guardMutable(item); err != nil {
		return err
	}

	affected, err := s.itemRepo.ReleaseLock(itemNumber, time.Now())
	if err != nil {
		return err
	}
	if affected > 0 {
		s.appendHistory(itemNumber, constants.HistoryActionAdminUnlock, constants.ItemStatusLocked,
			constants.ItemStatusAvailable, admin, constants.PerformedByAdmin)
	}
	return nil
}

func (s *LockService) appendHistory(itemNumber, action, previous, next, performedBy, performedByType string) {
	entry := &models.ItemStatusHistory{
		ItemNumber:      itemNumber,
		Action:          action,
		PreviousStatus:  previous,
		NewStatus:       next,
		PerformedBy:     performedBy,
		PerformedByType: performedByType,
		Success:         true,
	}
	if err := s.historyRepo.Append(entry); err != nil {
		logger.Errorw("history_append_failed", "item_number", itemNumber, "action", action, "error", err)
	}
}
