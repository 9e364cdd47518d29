package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type expirationTestEnv struct {
	sweeper     *ExpirationService
	reservation *ReservationService
	lock        *LockService
	db          *gorm.DB
}

func setupExpirationServiceTest(t *testing.T) *expirationTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:expiration_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Item{}, &models.ItemStatusHistory{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	itemRepo := repository.NewItemRepository(db)
	cartRepo := repository.NewCartRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	reservation := NewReservationService(itemRepo, cartRepo, historyRepo, 120, 240)
	lock := NewLockService(itemRepo, historyRepo, 30)
	return &expirationTestEnv{
		sweeper:     NewExpirationService(itemRepo, reservation, lock),
		reservation: reservation,
		lock:        lock,
		db:          db,
	}
}

func forceExpiry(t *testing.T, db *gorm.DB, itemNumber, column string) {
	t.Helper()

	past := time.Now().Add(-time.Hour)
	if err := db.Model(&models.Item{}).Where("item_number = ?", itemNumber).
		Update(column, past).Error; err != nil {
		t.Fatalf("force expiry on %s failed: %v", itemNumber, err)
	}
}

func TestSweepReleasesExpiredReservation(t *testing.T) {
	env := setupExpirationServiceTest(t)
	createTestItem(t, env.db, "05001", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "05001", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}
	forceExpiry(t, env.db, "05001", "reservation_expires_at")

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.ReservationsReleased != 1 {
		t.Fatalf("expected one released reservation, got %+v", result)
	}

	item := reloadItem(t, env.db, "05001")
	if item.Status != constants.ItemStatusAvailable || item.IsReserved {
		t.Fatalf("expired hold not released: %+v", item)
	}

	var lineCount int64
	if err := env.db.Model(&models.CartItem{}).Where("item_number = ?", "05001").Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines failed: %v", err)
	}
	if lineCount != 0 {
		t.Fatalf("cart line survived the sweep: %d", lineCount)
	}

	var entries []models.ItemStatusHistory
	if err := env.db.Where("item_number = ? AND action = ?", "05001", constants.HistoryActionExpireSweep).Find(&entries).Error; err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(entries) != 1 || entries[0].PerformedByType != constants.PerformedBySystem {
		t.Fatalf("expected one system expire_sweep entry, got %+v", entries)
	}
}

func TestSweepIgnoresActiveReservation(t *testing.T) {
	env := setupExpirationServiceTest(t)
	createTestItem(t, env.db, "05002", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "05002", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.ReservationsReleased != 0 {
		t.Fatalf("active hold swept: %+v", result)
	}
	if item := reloadItem(t, env.db, "05002"); item.Status != constants.ItemStatusReserved {
		t.Fatalf("active hold lost: %s", item.Status)
	}
}

func TestSweepReleasesExpiredAdminLockOnly(t *testing.T) {
	env := setupExpirationServiceTest(t)
	createTestItem(t, env.db, "05003", constants.ItemStatusAvailable)
	createTestItem(t, env.db, "05004", constants.ItemStatusAvailable)

	// Admin lock, then push it past its TTL.
	if _, err := env.lock.Acquire("05003", "alice", "photo retake", 30); err != nil {
		t.Fatalf("seed lock failed: %v", err)
	}
	forceExpiry(t, env.db, "05003", "lock_expires_at")

	// CDE-imposed unavailability: locked, no expiry, holder "cde".
	if err := env.db.Model(&models.Item{}).Where("item_number = ?", "05004").
		Updates(map[string]interface{}{
			"status":    constants.ItemStatusLocked,
			"locked_by": constants.LockHolderCDE,
		}).Error; err != nil {
		t.Fatalf("seed cde lock failed: %v", err)
	}

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.LocksReleased != 1 {
		t.Fatalf("expected one released lock, got %+v", result)
	}

	adminItem := reloadItem(t, env.db, "05003")
	if adminItem.Status != constants.ItemStatusAvailable || adminItem.LockedBy != "" {
		t.Fatalf("expired admin lock not cleared: %+v", adminItem)
	}
	cdeItem := reloadItem(t, env.db, "05004")
	if cdeItem.Status != constants.ItemStatusLocked || cdeItem.LockedBy != constants.LockHolderCDE {
		t.Fatalf("CDE lock must survive the sweep: %+v", cdeItem)
	}
}

func TestReservationAndLockTTLNamespacesAreIndependent(t *testing.T) {
	env := setupExpirationServiceTest(t)
	createTestItem(t, env.db, "05005", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "05005", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}
	// A stale lock expiry left on a reserved item must not cause a sweep.
	forceExpiry(t, env.db, "05005", "lock_expires_at")

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.ReservationsReleased != 0 || result.LocksReleased != 0 {
		t.Fatalf("cross-namespace sweep: %+v", result)
	}
	if item := reloadItem(t, env.db, "05005"); item.Status != constants.ItemStatusReserved {
		t.Fatalf("reservation lost to lock namespace: %s", item.Status)
	}
}
