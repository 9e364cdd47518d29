package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) (*GormCartRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_repository_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate cart/cart_item failed: %v", err)
	}
	return NewCartRepository(db), db
}

func addTestLine(t *testing.T, repo *GormCartRepository, cartID uint, itemNumber string, price float64) {
	t.Helper()
	line := &models.CartItem{
		ItemNumber: itemNumber,
		FileName:   itemNumber + ".jpg",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		HasPrice:   true,
	}
	if err := repo.AddLine(cartID, line); err != nil {
		t.Fatalf("add line %s failed: %v", itemNumber, err)
	}
}

func reloadCart(t *testing.T, db *gorm.DB, cartID uint) *models.Cart {
	t.Helper()
	var cart models.Cart
	if err := db.Preload("Items").First(&cart, cartID).Error; err != nil {
		t.Fatalf("reload cart failed: %v", err)
	}
	return &cart
}

func TestGetOrCreateReusesActiveCart(t *testing.T) {
	repo, _ := setupCartRepositoryTest(t)

	first, err := repo.GetOrCreate("sess-a", "CLI-A")
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	second, err := repo.GetOrCreate("sess-a", "CLI-A")
	if err != nil {
		t.Fatalf("reuse cart failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same cart, got %d and %d", first.ID, second.ID)
	}
}

func TestTotalItemsTracksLineMutations(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreate("sess-a", "CLI-A")
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}

	addTestLine(t, repo, cart.ID, "01144", 149.90)
	addTestLine(t, repo, cart.ID, "02210", 89.00)
	if got := reloadCart(t, db, cart.ID); got.TotalItems != 2 {
		t.Fatalf("total after adds want 2 got %d", got.TotalItems)
	}

	affected, err := repo.RemoveLine("sess-a", "01144")
	if err != nil || affected != 1 {
		t.Fatalf("remove line failed: affected=%d err=%v", affected, err)
	}
	if got := reloadCart(t, db, cart.ID); got.TotalItems != 1 {
		t.Fatalf("total after remove want 1 got %d", got.TotalItems)
	}
}

func TestGhostLineSnapshotsPriceAndDropsFromTotal(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreate("sess-a", "CLI-A")
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	addTestLine(t, repo, cart.ID, "01144", 149.90)

	now := time.Now()
	affected, err := repo.GhostLine(cart.ID, "01144", "item_sold", now)
	if err != nil || affected != 1 {
		t.Fatalf("ghost failed: affected=%d err=%v", affected, err)
	}

	got := reloadCart(t, db, cart.ID)
	if got.TotalItems != 0 {
		t.Fatalf("ghost line must not count, total=%d", got.TotalItems)
	}
	if len(got.Items) != 1 {
		t.Fatalf("ghost line must stay in the cart, lines=%d", len(got.Items))
	}
	line := got.Items[0]
	if line.GhostStatus != constants.GhostStatusGhost || line.GhostReason != "item_sold" {
		t.Fatalf("ghost markers missing: %+v", line)
	}
	if line.HasPrice || !line.Price.IsZero() {
		t.Fatalf("ghost line still priced: %+v", line)
	}
	if line.OriginalPrice.IsZero() {
		t.Fatalf("original price snapshot lost")
	}

	// Ghosting again is a no-op and must not touch the snapshot.
	affected, err = repo.GhostLine(cart.ID, "01144", "item_locked", now)
	if err != nil {
		t.Fatalf("second ghost failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("ghost must be idempotent, affected=%d", affected)
	}
	if again := reloadCart(t, db, cart.ID); again.Items[0].GhostReason != "item_sold" {
		t.Fatalf("second ghost rewrote reason: %s", again.Items[0].GhostReason)
	}
}

func TestRemoveLineFromActiveCartsClearsEveryCart(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	first, err := repo.GetOrCreate("sess-a", "CLI-A")
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	second, err := repo.GetOrCreate("sess-b", "CLI-B")
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	addTestLine(t, repo, first.ID, "01144", 149.90)
	addTestLine(t, repo, second.ID, "01144", 149.90)

	removed, err := repo.RemoveLineFromActiveCarts("01144")
	if err != nil {
		t.Fatalf("forced cleanup failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed lines, got %d", removed)
	}
	for _, cartID := range []uint{first.ID, second.ID} {
		if got := reloadCart(t, db, cartID); got.TotalItems != 0 || len(got.Items) != 0 {
			t.Fatalf("cart %d not cleaned: total=%d lines=%d", cartID, got.TotalItems, len(got.Items))
		}
	}
}
