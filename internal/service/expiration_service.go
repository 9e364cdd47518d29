package service

import (
	"context"
	"errors"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
)

const sweepBatchSize = 200

// ExpirationService owns expiry. Nothing else in the system releases a
// hold because time passed: read paths report expired states as-is and
// this sweeper performs the actual writes.
type ExpirationService struct {
	itemRepo    repository.ItemRepository
	reservation *ReservationService
	lock        *LockService
}

func NewExpirationService(itemRepo repository.ItemRepository, reservation *ReservationService, lock *LockService) *ExpirationService {
	return &ExpirationService{itemRepo: itemRepo, reservation: reservation, lock: lock}
}

// SweepResult one sweep pass's outcome
type SweepResult struct {
	ReservationsReleased int `json:"reservations_released"`
	LocksReleased        int `json:"locks_released"`
	Errors               int `json:"errors"`
}

// Sweep releases expired customer reservations and expired admin locks.
// The two TTL namespaces are independent; CDE locks have no expiry and are
// never touched here.
func (s *ExpirationService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now()
	result := &SweepResult{}

	if err := s.sweepReservations(ctx, now, result); err != nil {
		return result, err
	}
	if err := s.sweepLocks(ctx, now, result); err != nil {
		return result, err
	}

	if result.ReservationsReleased > 0 || result.LocksReleased > 0 || result.Errors > 0 {
		logger.Infow("expiration_sweep_done",
			"reservations_released", result.ReservationsReleased,
			"locks_released", result.LocksReleased,
			"errors", result.Errors,
		)
	}
	return result, nil
}

func (s *ExpirationService) sweepReservations(ctx context.Context, now time.Time, result *SweepResult) error {
	items, err := s.itemRepo.ListExpiredReservations(now, sweepBatchSize)
	if err != nil {
		return err
	}
	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		err := s.reservation.Release(item.ItemNumber, constants.ReleaseReasonExpired, item.ReservedBy, constants.PerformedBySystem)
		switch {
		case err == nil:
			result.ReservationsReleased++
			logger.Infow("reservation_expired",
				"item_number", item.ItemNumber,
				"client_code", item.ReservedBy,
				"expired_at", item.ReservationExpiresAt,
			)
		case errors.Is(err, ErrItemNotFound):
			// Raced with a concurrent release; already clean.
		default:
			result.Errors++
			logger.Warnw("reservation_sweep_failed", "item_number", item.ItemNumber, "error", err)
		}
	}
	return nil
}

func (s *ExpirationService) sweepLocks(ctx context.Context, now time.Time, result *SweepResult) error {
	items, err := s.itemRepo.ListExpiredLocks(now, sweepBatchSize)
	if err != nil {
		return err
	}
	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		affected, err := s.itemRepo.ReleaseLock(item.ItemNumber, now)
		if err != nil {
			result.Errors++
			logger.Warnw("lock_sweep_failed", "item_number", item.ItemNumber, "error", err)
			continue
		}
		if affected == 0 {
			continue
		}
		result.LocksReleased++
		s.lock.appendHistory(item.ItemNumber, constants.HistoryActionLockSweep, constants.ItemStatusLocked, constants.ItemStatusAvailable, item.LockedBy, constants.PerformedBySystem)
		logger.Infow("admin_lock_expired", "item_number", item.ItemNumber, "locked_by", item.LockedBy, "expired_at", item.LockExpiresAt)
	}
	return nil
}
