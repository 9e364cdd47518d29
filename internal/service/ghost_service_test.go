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

type ghostTestEnv struct {
	ghost       *GhostService
	reservation *ReservationService
	db          *gorm.DB
}

func setupGhostServiceTest(t *testing.T) *ghostTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:ghost_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return &ghostTestEnv{
		ghost:       NewGhostService(itemRepo, cartRepo),
		reservation: NewReservationService(itemRepo, cartRepo, historyRepo, 120, 240),
		db:          db,
	}
}

func TestScanGhostsSoldItemLine(t *testing.T) {
	env := setupGhostServiceTest(t)
	createTestItem(t, env.db, "04001", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "04001", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	// The item is sold out from under the cart, line still present.
	if err := env.db.Model(&models.Item{}).Where("item_number = ?", "04001").
		Updates(map[string]interface{}{
			"status":      constants.ItemStatusSold,
			"is_reserved": false,
		}).Error; err != nil {
		t.Fatalf("force sold failed: %v", err)
	}
	if err := env.db.Model(&models.CartItem{}).Where("item_number = ?", "04001").
		Update("price", 120).Error; err != nil {
		t.Fatalf("seed price failed: %v", err)
	}

	result, err := env.ghost.ScanCarts(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.LinesGhosted != 1 {
		t.Fatalf("expected one ghosted line, got %+v", result)
	}

	var line models.CartItem
	if err := env.db.Where("item_number = ?", "04001").First(&line).Error; err != nil {
		t.Fatalf("load line failed: %v", err)
	}
	if line.GhostStatus != constants.GhostStatusGhost {
		t.Fatalf("line not ghosted: %s", line.GhostStatus)
	}
	if line.GhostReason != "item_sold" {
		t.Fatalf("unexpected ghost reason: %s", line.GhostReason)
	}
	if line.HasPrice || !line.Price.IsZero() {
		t.Fatalf("ghost line still priced: has_price=%v price=%s", line.HasPrice, line.Price)
	}
	if line.OriginalPrice.IsZero() {
		t.Fatalf("original price not snapshotted")
	}

	var cart models.Cart
	if err := env.db.Where("session_id = ?", "sess-a").First(&cart).Error; err != nil {
		t.Fatalf("load cart failed: %v", err)
	}
	if cart.TotalItems != 0 {
		t.Fatalf("ghost line counted in totals: %d", cart.TotalItems)
	}
}

func TestScanLeavesHealthyLines(t *testing.T) {
	env := setupGhostServiceTest(t)
	createTestItem(t, env.db, "04002", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "04002", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	result, err := env.ghost.ScanCarts(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.LinesGhosted != 0 {
		t.Fatalf("healthy line ghosted: %+v", result)
	}
}

func TestScanGhostsLineReservedByAnotherSession(t *testing.T) {
	env := setupGhostServiceTest(t)
	createTestItem(t, env.db, "04003", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "04003", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	// Drift: the reservation migrated to another session but the old line
	// survived.
	if err := env.db.Model(&models.Item{}).Where("item_number = ?", "04003").
		Update("reserved_session", "sess-b").Error; err != nil {
		t.Fatalf("force drift failed: %v", err)
	}

	result, err := env.ghost.ScanCarts(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.LinesGhosted != 1 {
		t.Fatalf("expected one ghosted line, got %+v", result)
	}

	var line models.CartItem
	if err := env.db.Where("item_number = ?", "04003").First(&line).Error; err != nil {
		t.Fatalf("load line failed: %v", err)
	}
	if line.GhostReason != "reserved_elsewhere" {
		t.Fatalf("unexpected ghost reason: %s", line.GhostReason)
	}
}

func TestScanLeavesExpiredHoldsToSweeper(t *testing.T) {
	env := setupGhostServiceTest(t)
	createTestItem(t, env.db, "04004", constants.ItemStatusAvailable)
	if _, err := env.reservation.Reserve(ReserveInput{ItemNumber: "04004", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := env.db.Model(&models.Item{}).Where("item_number = ?", "04004").
		Update("reservation_expires_at", past).Error; err != nil {
		t.Fatalf("force expiry failed: %v", err)
	}

	result, err := env.ghost.ScanCarts(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.LinesGhosted != 0 {
		t.Fatalf("expired-but-unswept line must stay live, got %+v", result)
	}
}
