package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/cache"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/legacy"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
)

const (
	cacheKeyLegacyChanged = "legacy:changed"
	cacheKeyLegacyBlocked = "legacy:blocked"
)

// ReconcileService one pull-merge-apply cycle against the CDE. Cycles are
// single-flight: a new cycle never starts while a previous one is running.
type ReconcileService struct {
	source      legacy.Source
	cache       *cache.TTLCache
	itemRepo    repository.ItemRepository
	cartRepo    repository.CartRepository
	blockedRepo repository.BlockedItemRepository
	historyRepo repository.HistoryRepository

	changeWindow time.Duration
	cacheTTL     time.Duration
	maxBlocked   int

	mu        sync.Mutex
	lastRunAt time.Time
	cycles    uint64
}

// ReconcileOptions reconciliation tuning parameters
type ReconcileOptions struct {
	ChangeWindow time.Duration
	CacheTTL     time.Duration
	MaxBlocked   int
}

// NewReconcileService creates the reconciliation engine
func NewReconcileService(source legacy.Source, ttlCache *cache.TTLCache, itemRepo repository.ItemRepository, cartRepo repository.CartRepository, blockedRepo repository.BlockedItemRepository, historyRepo repository.HistoryRepository, opts ReconcileOptions) *ReconcileService {
	if opts.ChangeWindow <= 0 {
		opts.ChangeWindow = 24 * time.Hour
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.MaxBlocked <= 0 {
		opts.MaxBlocked = 200
	}
	return &ReconcileService{
		source:       source,
		cache:        ttlCache,
		itemRepo:     itemRepo,
		cartRepo:     cartRepo,
		blockedRepo:  blockedRepo,
		historyRepo:  historyRepo,
		changeWindow: opts.ChangeWindow,
		cacheTTL:     opts.CacheTTL,
		maxBlocked:   opts.MaxBlocked,
	}
}

// CycleResult one cycle's outcome, used by the admin trigger and by tests
type CycleResult struct {
	StartedAt        time.Time `json:"started_at"`
	DurationMS       int64     `json:"duration_ms"`
	Candidates       int       `json:"candidates"`
	Applied          int       `json:"applied"`
	LegacyRefreshed  int       `json:"legacy_refreshed"`
	Skipped          int       `json:"skipped"`
	CartLinesRemoved int64     `json:"cart_lines_removed"`
	Errors           int       `json:"errors"`
}

// RunCycle executes one reconciliation cycle. Connectivity failure aborts
// the cycle without raising past the scheduler; per-item failures are
// logged and never abort the rest of the batch.
func (s *ReconcileService) RunCycle(ctx context.Context) (*CycleResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrReconcileInFlight
	}
	defer s.mu.Unlock()

	now := time.Now()
	result := &CycleResult{StartedAt: now}

	rows, err := s.pullCandidates(ctx, now)
	if err != nil {
		logger.Warnw("reconcile_cycle_aborted", "error", err)
		return nil, err
	}

	for _, row := range dedupeRows(rows) {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		if err := s.applyRow(row, now, result); err != nil {
			result.Errors++
			logger.Warnw("reconcile_item_failed", "item_number", row.ItemNumber, "legacy_status", row.Status, "error", err)
		}
	}

	s.lastRunAt = now
	s.cycles++
	result.DurationMS = time.Since(now).Milliseconds()
	logger.Infow("reconcile_cycle_done",
		"candidates", result.Candidates,
		"applied", result.Applied,
		"legacy_refreshed", result.LegacyRefreshed,
		"skipped", result.Skipped,
		"cart_lines_removed", result.CartLinesRemoved,
		"errors", result.Errors,
		"duration_ms", result.DurationMS,
	)
	return result, nil
}

// pullCandidates fetches the recent-change set and the blocked-registry
// set through the read-through cache, so a transient CDE outage degrades to
// stale rows instead of failing the cycle.
func (s *ReconcileService) pullCandidates(ctx context.Context, now time.Time) ([]legacy.Row, error) {
	since := now.Add(-s.changeWindow)
	changedValue, err := s.cache.GetOrFetch(ctx, cacheKeyLegacyChanged, s.cacheTTL, func(fctx context.Context) (interface{}, error) {
		return s.source.FetchChangedSince(fctx, since)
	})
	if err != nil {
		return nil, err
	}
	changed, _ := changedValue.([]legacy.Row)

	numbers, err := s.blockedRepo.ListNumbers(s.maxBlocked)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return changed, nil
	}

	blockedValue, err := s.cache.GetOrFetch(ctx, cacheKeyLegacyBlocked, s.cacheTTL, func(fctx context.Context) (interface{}, error) {
		return s.source.FetchByItemNumbers(fctx, numbers)
	})
	if err != nil {
		// The changed set alone is still worth merging.
		logger.Warnw("reconcile_blocked_fetch_failed", "blocked", len(numbers), "error", err)
		return changed, nil
	}
	blocked, _ := blockedValue.([]legacy.Row)
	return append(changed, blocked...), nil
}

// dedupeRows collapses the two candidate sets by item number, keeping the
// most recently timestamped row when they disagree.
func dedupeRows(rows []legacy.Row) []legacy.Row {
	byNumber := make(map[string]legacy.Row, len(rows))
	for _, row := range rows {
		if row.ItemNumber == "" {
			continue
		}
		existing, seen := byNumber[row.ItemNumber]
		if !seen || row.Timestamp.After(existing.Timestamp) {
			byNumber[row.ItemNumber] = row
		}
	}
	deduped := make([]legacy.Row, 0, len(byNumber))
	for _, row := range byNumber {
		deduped = append(deduped, row)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].ItemNumber < deduped[j].ItemNumber })
	return deduped
}

func (s *ReconcileService) applyRow(row legacy.Row, now time.Time, result *CycleResult) error {
	result.Candidates++

	item, err := s.itemRepo.GetByNumber(row.ItemNumber)
	if err != nil {
		return err
	}
	if item == nil {
		logger.Debugw("reconcile_unknown_item", "item_number", row.ItemNumber, "legacy_status", row.Status)
		result.Skipped++
		return nil
	}

	if item.SelectionOwned() {
		// Selection ownership is inviolable. The cached raw status may still
		// be refreshed when the CDE already agrees the item is set aside.
		if row.Status == constants.LegacyStatusPreSelected && item.LegacyStatus != row.Status {
			if err := s.itemRepo.RefreshLegacyStatus(item.ItemNumber, row.Status, now); err != nil {
				return err
			}
			result.LegacyRefreshed++
		} else {
			result.Skipped++
		}
		s.updateRegistry(row, now)
		return nil
	}

	transition := mapLegacyStatus(item, row.Status, now)
	switch transition.decision {
	case decisionUnknown:
		logger.Errorw("reconcile_data_inconsistency",
			"item_number", item.ItemNumber,
			"status", item.Status,
			"legacy_status_before", item.LegacyStatus,
			"legacy_status_after", row.Status,
			"error", ErrDataInconsistency,
		)
		result.Skipped++
		return nil
	case decisionSkip:
		result.Skipped++
	case decisionRefreshLegacyOnly:
		if item.LegacyStatus != row.Status {
			if err := s.itemRepo.RefreshLegacyStatus(item.ItemNumber, row.Status, now); err != nil {
				return err
			}
			result.LegacyRefreshed++
		} else {
			result.Skipped++
		}
	case decisionApply:
		if item.Status == transition.targetStatus && item.LegacyStatus == row.Status {
			// No-op cycle: nothing changed since the last merge.
			result.Skipped++
			break
		}
		if err := s.applyTransition(item, row, transition, now, result); err != nil {
			return err
		}
	}

	s.updateRegistry(row, now)
	return nil
}

func (s *ReconcileService) applyTransition(item *models.Item, row legacy.Row, transition legacyTransition, now time.Time, result *CycleResult) error {
	updates := transitionUpdates(transition.targetStatus, row, now)
	affected, err := s.itemRepo.ApplyTransition(item.ItemNumber, item.Status, updates)
	if err != nil {
		return err
	}
	if affected == 0 {
		// Lost the compare-and-swap to a concurrent cart write; the next
		// cycle sees the fresh status and retries.
		logger.Debugw("reconcile_cas_lost", "item_number", item.ItemNumber, "expected_status", item.Status)
		result.Skipped++
		return nil
	}

	result.Applied++
	s.appendHistory(item.ItemNumber, item.Status, transition.targetStatus, row.Status)

	if transition.forceCartCleanup {
		removed, err := s.cartRepo.RemoveLineFromActiveCarts(item.ItemNumber)
		if err != nil {
			logger.Warnw("reconcile_forced_cleanup_failed", "item_number", item.ItemNumber, "error", err)
		} else if removed > 0 {
			result.CartLinesRemoved += removed
			logger.Infow("reconcile_forced_cleanup", "item_number", item.ItemNumber, "lines_removed", removed, "target_status", transition.targetStatus)
		}
	}
	return nil
}

// transitionUpdates builds the conditional-write column set for one mapped
// target status
func transitionUpdates(targetStatus string, row legacy.Row, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"status":        targetStatus,
		"legacy_status": row.Status,
		"updated_at":    now,
		// A state the application never granted clears any stale hold.
		"cart_session_id":        "",
		"is_reserved":            false,
		"reserved_by":            "",
		"reserved_session":       "",
		"reserved_at":            nil,
		"reservation_expires_at": nil,
		"renewal_count":          0,
	}
	if row.LegacyID != "" {
		updates["legacy_id"] = row.LegacyID
	}
	switch targetStatus {
	case constants.ItemStatusSold:
		updates["location"] = constants.LocationSoldFolder
		updates["locked_by"] = ""
		updates["locked_at"] = nil
		updates["lock_expires_at"] = nil
		updates["lock_reason"] = ""
	case constants.ItemStatusLocked:
		updates["location"] = constants.LocationStock
		updates["locked_by"] = constants.LockHolderCDE
		updates["locked_at"] = now
		updates["lock_expires_at"] = nil
		updates["lock_reason"] = "cde:" + row.Status
	case constants.ItemStatusAvailable:
		updates["location"] = constants.LocationStock
		updates["locked_by"] = ""
		updates["locked_at"] = nil
		updates["lock_expires_at"] = nil
		updates["lock_reason"] = ""
	}
	return updates
}

// updateRegistry keeps the blocked-item registry aligned with the latest
// raw CDE status
func (s *ReconcileService) updateRegistry(row legacy.Row, now time.Time) {
	switch {
	case blockingLegacyStatuses[row.Status]:
		if err := s.blockedRepo.Upsert(row.ItemNumber, row.Status, now); err != nil {
			logger.Warnw("blocked_registry_upsert_failed", "item_number", row.ItemNumber, "error", err)
		}
	case releasedLegacyStatuses[row.Status]:
		if err := s.blockedRepo.Remove(row.ItemNumber); err != nil {
			logger.Warnw("blocked_registry_remove_failed", "item_number", row.ItemNumber, "error", err)
		}
	}
}

func (s *ReconcileService) appendHistory(itemNumber, previous, next, legacyStatus string) {
	entry := &models.ItemStatusHistory{
		ItemNumber:      itemNumber,
		Action:          constants.HistoryActionLegacySync,
		PreviousStatus:  previous,
		NewStatus:       next,
		PerformedBy:     "cde:" + legacyStatus,
		PerformedByType: constants.PerformedBySystem,
		Success:         true,
	}
	if err := s.historyRepo.Append(entry); err != nil {
		logger.Errorw("history_append_failed", "item_number", itemNumber, "action", entry.Action, "error", err)
	}
}

// InvalidateCache drops the cached legacy candidate sets so the next cycle
// pulls fresh rows (admin trigger)
func (s *ReconcileService) InvalidateCache() {
	s.cache.Delete(cacheKeyLegacyChanged)
	s.cache.Delete(cacheKeyLegacyBlocked)
}

// CacheStats exposes the read-through cache counters
func (s *ReconcileService) CacheStats() cache.Stats {
	return s.cache.Snapshot()
}

// BlockedRegistry returns the current registry contents
func (s *ReconcileService) BlockedRegistry() ([]models.BlockedItem, error) {
	return s.blockedRepo.List()
}
