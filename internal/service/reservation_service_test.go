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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupReservationServiceTest(t *testing.T) (*ReservationService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:reservation_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return NewReservationService(itemRepo, cartRepo, historyRepo, 120, 240), db
}

func createTestItem(t *testing.T, db *gorm.DB, itemNumber, status string) models.Item {
	t.Helper()

	item := models.Item{
		ItemNumber: itemNumber,
		FileName:   itemNumber + ".jpg",
		Status:     status,
		Location:   constants.LocationStock,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, itemNumber string) models.Item {
	t.Helper()

	var item models.Item
	if err := db.Where("item_number = ?", itemNumber).First(&item).Error; err != nil {
		t.Fatalf("reload item %s failed: %v", itemNumber, err)
	}
	return item
}

func TestReserveRoundTrip(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "01144", constants.ItemStatusAvailable)

	reservation, err := svc.Reserve(ReserveInput{
		ItemNumber: "01144",
		ClientCode: "CLI-7",
		SessionID:  "sess-a",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(149.90)),
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if reservation.ReservedBy != "CLI-7" || reservation.RenewalCount != 0 {
		t.Fatalf("unexpected reservation: %+v", reservation)
	}

	item := reloadItem(t, db, "01144")
	if item.Status != constants.ItemStatusReserved || !item.IsReserved {
		t.Fatalf("expected reserved item, got status=%s is_reserved=%v", item.Status, item.IsReserved)
	}
	if item.Location != constants.LocationCart {
		t.Fatalf("expected cart location, got %s", item.Location)
	}

	var cart models.Cart
	if err := db.Preload("Items").Where("session_id = ?", "sess-a").First(&cart).Error; err != nil {
		t.Fatalf("load cart failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ItemNumber != "01144" {
		t.Fatalf("expected mirrored cart line, got %+v", cart.Items)
	}
	if cart.TotalItems != 1 {
		t.Fatalf("expected total_items=1, got %d", cart.TotalItems)
	}

	if err := svc.Release("01144", constants.ReleaseReasonCustomer, "CLI-7", constants.PerformedByCustomer); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	item = reloadItem(t, db, "01144")
	if item.Status != constants.ItemStatusAvailable || item.IsReserved {
		t.Fatalf("expected released item, got status=%s is_reserved=%v", item.Status, item.IsReserved)
	}
	if item.Location != constants.LocationStock {
		t.Fatalf("expected stock location, got %s", item.Location)
	}

	var lineCount int64
	if err := db.Model(&models.CartItem{}).Where("item_number = ?", "01144").Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines failed: %v", err)
	}
	if lineCount != 0 {
		t.Fatalf("expected cart line removed on release, found %d", lineCount)
	}
}

func TestReserveRejectsSecondClient(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02001", constants.ItemStatusAvailable)

	if _, err := svc.Reserve(ReserveInput{ItemNumber: "02001", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	_, err := svc.Reserve(ReserveInput{ItemNumber: "02001", ClientCode: "CLI-B", SessionID: "sess-b"})
	if !errors.Is(err, ErrItemAlreadyReserved) {
		t.Fatalf("expected ErrItemAlreadyReserved, got %v", err)
	}

	item := reloadItem(t, db, "02001")
	if item.ReservedBy != "CLI-A" {
		t.Fatalf("holder changed after rejected reserve: %s", item.ReservedBy)
	}
}

func TestReserveSameHolderRenews(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02002", constants.ItemStatusAvailable)

	if _, err := svc.Reserve(ReserveInput{ItemNumber: "02002", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	renewed, err := svc.Reserve(ReserveInput{ItemNumber: "02002", ClientCode: "CLI-A", SessionID: "sess-a"})
	if err != nil {
		t.Fatalf("repeat reserve by holder failed: %v", err)
	}
	if renewed.RenewalCount != 1 {
		t.Fatalf("expected renewal_count=1, got %d", renewed.RenewalCount)
	}

	item := reloadItem(t, db, "02002")
	if item.RenewalCount != 1 {
		t.Fatalf("expected persisted renewal_count=1, got %d", item.RenewalCount)
	}
	var lineCount int64
	if err := db.Model(&models.CartItem{}).Where("item_number = ?", "02002").Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines failed: %v", err)
	}
	if lineCount != 1 {
		t.Fatalf("renewal duplicated the cart line: %d", lineCount)
	}
}

func TestRenewRefreshesCartLineExpiry(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02005", constants.ItemStatusAvailable)

	if _, err := svc.Reserve(ReserveInput{ItemNumber: "02005", ClientCode: "CLI-A", SessionID: "sess-a", TTLMinutes: 30}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	loadLine := func() models.CartItem {
		var line models.CartItem
		if err := db.Where("item_number = ?", "02005").First(&line).Error; err != nil {
			t.Fatalf("load cart line failed: %v", err)
		}
		return line
	}
	before := loadLine()
	if before.ExpiresAt == nil {
		t.Fatalf("cart line missing expiry mirror")
	}

	if _, err := svc.Renew("02005", "CLI-A", 180); err != nil {
		t.Fatalf("renew failed: %v", err)
	}

	item := reloadItem(t, db, "02005")
	after := loadLine()
	if after.ExpiresAt == nil || item.ReservationExpiresAt == nil {
		t.Fatalf("expiry lost after renew: line=%v item=%v", after.ExpiresAt, item.ReservationExpiresAt)
	}
	if !after.ExpiresAt.After(*before.ExpiresAt) {
		t.Fatalf("cart line expiry did not move: before=%v after=%v", before.ExpiresAt, after.ExpiresAt)
	}
	if after.ExpiresAt.Unix() != item.ReservationExpiresAt.Unix() {
		t.Fatalf("cart line expiry no longer mirrors item expiry: line=%v item=%v", after.ExpiresAt, item.ReservationExpiresAt)
	}
}

func TestReserveCatalogPriceWinsOverRequest(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02006", constants.ItemStatusAvailable)
	if err := db.Model(&models.Item{}).Where("item_number = ?", "02006").
		Update("price", models.NewMoneyFromDecimal(decimal.NewFromFloat(200.00))).Error; err != nil {
		t.Fatalf("seed catalog price failed: %v", err)
	}

	if _, err := svc.Reserve(ReserveInput{
		ItemNumber: "02006",
		ClientCode: "CLI-A",
		SessionID:  "sess-a",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(0.01)),
	}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	var line models.CartItem
	if err := db.Where("item_number = ?", "02006").First(&line).Error; err != nil {
		t.Fatalf("load cart line failed: %v", err)
	}
	want := decimal.NewFromFloat(200.00)
	if !line.Price.Equal(want) || !line.OriginalPrice.Equal(want) {
		t.Fatalf("cart line did not take the catalog price: price=%s original=%s", line.Price, line.OriginalPrice)
	}
}

func TestRenewRejectsNonHolder(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02003", constants.ItemStatusAvailable)

	if _, err := svc.Reserve(ReserveInput{ItemNumber: "02003", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.Renew("02003", "CLI-B", 0); !errors.Is(err, ErrNotReservationHolder) {
		t.Fatalf("expected ErrNotReservationHolder, got %v", err)
	}
}

func TestReserveSelectionOwnedRejected(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	item := createTestItem(t, db, "02004", constants.ItemStatusAvailable)
	selection := "SEL-9"
	if err := db.Model(&item).Update("selection_id", selection).Error; err != nil {
		t.Fatalf("set selection failed: %v", err)
	}

	if _, err := svc.Reserve(ReserveInput{ItemNumber: "02004", ClientCode: "CLI-A", SessionID: "sess-a"}); !errors.Is(err, ErrSelectionOwned) {
		t.Fatalf("expected ErrSelectionOwned, got %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02005", constants.ItemStatusAvailable)

	if err := svc.Release("02005", constants.ReleaseReasonCustomer, "CLI-A", constants.PerformedByCustomer); err != nil {
		t.Fatalf("release of unreserved item should succeed, got %v", err)
	}

	var historyCount int64
	if err := db.Model(&models.ItemStatusHistory{}).Where("item_number = ?", "02005").Count(&historyCount).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	if historyCount != 0 {
		t.Fatalf("no-op release wrote %d history entries", historyCount)
	}
}

func TestItemStatusViewExposesHold(t *testing.T) {
	svc, db := setupReservationServiceTest(t)
	createTestItem(t, db, "02006", constants.ItemStatusAvailable)

	if _, err := svc.Reserve(ReserveInput{ItemNumber: "02006", ClientCode: "CLI-A", SessionID: "sess-a"}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	view, err := svc.ItemStatus("02006")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if view.Status != constants.ItemStatusReserved {
		t.Fatalf("expected reserved view, got %s", view.Status)
	}
	if view.ReservationInfo == nil || view.ReservationInfo.ReservedBy != "CLI-A" {
		t.Fatalf("expected reservation info for CLI-A, got %+v", view.ReservationInfo)
	}

	if _, err := svc.ItemStatus("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}
