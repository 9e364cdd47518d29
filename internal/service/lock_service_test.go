package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type lockTestEnv struct {
	lock        *LockService
	reservation *ReservationService
	db          *gorm.DB
}

func setupLockServiceTest(t *testing.T) *lockTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:lock_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return &lockTestEnv{
		lock:        NewLockService(itemRepo, historyRepo, 30),
		reservation: NewReservationService(itemRepo, cartRepo, historyRepo, 120, 240),
		db:          db,
	}
}

func TestAcquireLockRoundTrip(t *testing.T) {
	env := setupLockServiceTest(t)
	createTestItem(t, env.db, "06001", constants.ItemStatusAvailable)

	lock, err := env.lock.Acquire("06001", "alice", "photo retake", 0)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if lock.LockedBy != "alice" || lock.ExpiresAt.Before(lock.LockedAt) {
		t.Fatalf("unexpected lock view: %+v", lock)
	}

	item := reloadItem(t, env.db, "06001")
	if item.Status != constants.ItemStatusLocked || item.LockedBy != "alice" || item.LockExpiresAt == nil {
		t.Fatalf("lock not persisted: %+v", item)
	}
	if item.LockReason != "photo retake" {
		t.Fatalf("lock reason lost: %q", item.LockReason)
	}

	if err := env.lock.Release("06001", "alice"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	item = reloadItem(t, env.db, "06001")
	if item.Status != constants.ItemStatusAvailable || item.LockedBy != "" || item.LockExpiresAt != nil {
		t.Fatalf("lock not cleared: %+v", item)
	}

	var actions []string
	if err := env.db.Model(&models.ItemStatusHistory{}).Where("item_number = ?", "06001").
		Order("id asc").Pluck("action", &actions).Error; err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(actions) != 2 || actions[0] != constants.HistoryActionAdminLock || actions[1] != constants.HistoryActionAdminUnlock {
		t.Fatalf("unexpected history trail: %v", actions)
	}
}

func TestAcquireLockRejectsReservedItem(t *testing.T) {
	env := setupLockServiceTest(t)
	createTestItem(t, env.db, "06002", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "06002", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	if _, err := env.lock.Acquire("06002", "alice", "", 0); !errors.Is(err, ErrItemAlreadyReserved) {
		t.Fatalf("expected ErrItemAlreadyReserved, got: %v", err)
	}
	if item := reloadItem(t, env.db, "06002"); item.Status != constants.ItemStatusReserved {
		t.Fatalf("reservation clobbered by lock attempt: %s", item.Status)
	}
}

func TestAcquireLockConflictsWithExistingLock(t *testing.T) {
	env := setupLockServiceTest(t)
	createTestItem(t, env.db, "06003", constants.ItemStatusAvailable)
	if _, err := env.lock.Acquire("06003", "alice", "", 0); err != nil {
		t.Fatalf("seed lock failed: %v", err)
	}

	if _, err := env.lock.Acquire("06003", "bob", "", 0); !errors.Is(err, ErrItemAlreadyLocked) {
		t.Fatalf("expected ErrItemAlreadyLocked, got: %v", err)
	}
	if item := reloadItem(t, env.db, "06003"); item.LockedBy != "alice" {
		t.Fatalf("lock holder changed: %s", item.LockedBy)
	}
}

func TestReleaseLockIdempotent(t *testing.T) {
	env := setupLockServiceTest(t)
	createTestItem(t, env.db, "06004", constants.ItemStatusAvailable)

	if err := env.lock.Release("06004", "alice"); err != nil {
		t.Fatalf("release on unlocked item must be a no-op: %v", err)
	}

	var count int64
	if err := env.db.Model(&models.ItemStatusHistory{}).Where("item_number = ?", "06004").Count(&count).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no-op release wrote history: %d", count)
	}
}

func TestReleaseLockLeavesCDELockAlone(t *testing.T) {
	env := setupLockServiceTest(t)
	createTestItem(t, env.db, "06005", constants.ItemStatusAvailable)
	if err := env.db.Model(&models.Item{}).Where("item_number = ?", "06005").
		Updates(map[string]interface{}{
			"status":    constants.ItemStatusLocked,
			"locked_by": constants.LockHolderCDE,
		}).Error; err != nil {
		t.Fatalf("seed cde lock failed: %v", err)
	}

	if err := env.lock.Release("06005", "alice"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	item := reloadItem(t, env.db, "06005")
	if item.Status != constants.ItemStatusLocked || item.LockedBy != constants.LockHolderCDE {
		t.Fatalf("CDE lock released by admin unlock: %+v", item)
	}
}

func TestAcquireLockRejectsSelectionOwnedItem(t *testing.T) {
	env := setupLockServiceTest(t)
	createTestItem(t, env.db, "06006", constants.ItemStatusAvailable)
	if err := env.db.Model(&models.Item{}).Where("item_number = ?", "06006").
		Update("selection_id", "sel-42").Error; err != nil {
		t.Fatalf("seed selection failed: %v", err)
	}

	if _, err := env.lock.Acquire("06006", "alice", "", 0); !errors.Is(err, ErrSelectionOwned) {
		t.Fatalf("expected ErrSelectionOwned, got: %v", err)
	}
}
