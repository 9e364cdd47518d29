package service

import (
	"context"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
)

// GhostService the cart consistency scan. A line whose backing item no
// longer belongs to the cart's session is ghosted in place: kept visible,
// price zeroed, excluded from totals. Plain reservation expiry is left to
// the expiration sweeper.
type GhostService struct {
	itemRepo repository.ItemRepository
	cartRepo repository.CartRepository
}

func NewGhostService(itemRepo repository.ItemRepository, cartRepo repository.CartRepository) *GhostService {
	return &GhostService{itemRepo: itemRepo, cartRepo: cartRepo}
}

// ScanResult one scan pass's outcome
type ScanResult struct {
	CartsScanned int   `json:"carts_scanned"`
	LinesChecked int   `json:"lines_checked"`
	LinesGhosted int64 `json:"lines_ghosted"`
	Errors       int   `json:"errors"`
}

// ScanCarts walks every active cart and ghosts lines that drifted out of
// sync with the catalog.
func (s *GhostService) ScanCarts(ctx context.Context) (*ScanResult, error) {
	carts, err := s.cartRepo.ListActiveCarts()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &ScanResult{}
	for _, cart := range carts {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.CartsScanned++
		for _, line := range cart.Items {
			if line.GhostStatus == constants.GhostStatusGhost {
				continue
			}
			result.LinesChecked++
			reason, err := s.lineGhostReason(cart.SessionID, line.ItemNumber, now)
			if err != nil {
				result.Errors++
				logger.Warnw("ghost_scan_line_failed", "session_id", cart.SessionID, "item_number", line.ItemNumber, "error", err)
				continue
			}
			if reason == "" {
				continue
			}
			affected, err := s.cartRepo.GhostLine(cart.ID, line.ItemNumber, reason, now)
			if err != nil {
				result.Errors++
				logger.Warnw("ghost_line_failed", "session_id", cart.SessionID, "item_number", line.ItemNumber, "error", err)
				continue
			}
			if affected > 0 {
				result.LinesGhosted += affected
				logger.Infow("cart_line_ghosted", "session_id", cart.SessionID, "item_number", line.ItemNumber, "reason", reason)
			}
		}
	}

	logger.Infow("cart_consistency_scan_done",
		"carts", result.CartsScanned,
		"lines", result.LinesChecked,
		"ghosted", result.LinesGhosted,
		"errors", result.Errors,
	)
	return result, nil
}

// lineGhostReason decides whether a live cart line still backs a valid
// hold for its session. Empty reason means the line is healthy.
func (s *GhostService) lineGhostReason(sessionID, itemNumber string, now time.Time) (string, error) {
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "item_removed", nil
	}
	if item.SelectionOwned() {
		return "selection_owned", nil
	}
	switch item.Status {
	case constants.ItemStatusSold:
		return "item_sold", nil
	case constants.ItemStatusLocked:
		return "item_locked", nil
	case constants.ItemStatusArchived:
		return "item_archived", nil
	case constants.ItemStatusMoved:
		return "item_moved", nil
	case constants.ItemStatusReserved:
		if item.ReservedSession != sessionID {
			return "reserved_elsewhere", nil
		}
		// Expired-but-unswept lines stay live here: releasing holds is the
		// sweeper's job, and ghosting them early would race with it.
		return "", nil
	case constants.ItemStatusAvailable:
		// The hold was released but the line survived; the item went back
		// to stock without this cart.
		return "reservation_lost", nil
	}
	return "", nil
}
