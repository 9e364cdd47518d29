package service

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/repository"
)

// ReservationService grants, renews and releases time-bounded customer
// holds as a side effect of cart mutation. Every grant is a single
// conditional write; at most one active reservation exists per item.
type ReservationService struct {
	itemRepo    repository.ItemRepository
	cartRepo    repository.CartRepository
	historyRepo repository.HistoryRepository
	defaultTTL  time.Duration
	maxTTL      time.Duration
}

// NewReservationService creates the reservation service
func NewReservationService(itemRepo repository.ItemRepository, cartRepo repository.CartRepository, historyRepo repository.HistoryRepository, defaultTTLMinutes, maxTTLMinutes int) *ReservationService {
	defaultTTL := time.Duration(defaultTTLMinutes) * time.Minute
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Hour
	}
	maxTTL := time.Duration(maxTTLMinutes) * time.Minute
	if maxTTL < defaultTTL {
		maxTTL = defaultTTL
	}
	return &ReservationService{
		itemRepo:    itemRepo,
		cartRepo:    cartRepo,
		historyRepo: historyRepo,
		defaultTTL:  defaultTTL,
		maxTTL:      maxTTL,
	}
}

// ReserveInput reservation request
type ReserveInput struct {
	ItemNumber string
	ClientCode string
	SessionID  string
	TTLMinutes int
	Price      models.Money
}

// Reservation granted hold view
type Reservation struct {
	ItemNumber   string    `json:"item_number"`
	ReservedBy   string    `json:"reserved_by"`
	SessionID    string    `json:"session_id"`
	ReservedAt   time.Time `json:"reserved_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	RenewalCount int       `json:"renewal_count"`
}

// ItemStatusView item status API response shape
type ItemStatusView struct {
	ItemNumber      string           `json:"item_number"`
	Status          string           `json:"status"`
	LegacyStatus    string           `json:"legacy_status,omitempty"`
	Location        string           `json:"location"`
	ReservationInfo *ReservationInfo `json:"reservation_info,omitempty"`
	LockInfo        *LockInfo        `json:"lock_info,omitempty"`
	SelectionID     string           `json:"selection_id,omitempty"`
}

// ReservationInfo customer hold details
type ReservationInfo struct {
	IsReserved   bool       `json:"is_reserved"`
	ReservedBy   string     `json:"reserved_by"`
	SessionID    string     `json:"session_id"`
	ReservedAt   *time.Time `json:"reserved_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	RenewalCount int        `json:"renewal_count"`
}

// LockInfo administrative lock details
type LockInfo struct {
	LockedBy  string     `json:"locked_by"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

func (s *ReservationService) normalizeTTL(minutes int) time.Duration {
	ttl := time.Duration(minutes) * time.Minute
	if ttl <= 0 {
		return s.defaultTTL
	}
	if ttl > s.maxTTL {
		return s.maxTTL
	}
	return ttl
}

// Reserve places a hold and mirrors it as a cart line. The underlying write
// succeeds only while the item is available; a holder repeating the call
// gets a renewal, anyone else gets ErrItemAlreadyReserved.
func (s *ReservationService) Reserve(input ReserveInput) (*Reservation, error) {
	if input.ItemNumber == "" || input.ClientCode == "" || input.SessionID == "" {
		return nil, ErrInvalidRequest
	}
	item, err := s.itemRepo.GetByNumber(input.ItemNumber)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(item); err != nil {
		return nil, err
	}

	now := time.Now()
	ttl := s.normalizeTTL(input.TTLMinutes)
	expiresAt := now.Add(ttl)

	affected, err := s.itemRepo.Reserve(input.ItemNumber, input.ClientCode, input.SessionID, now, expiresAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return s.reserveConflict(input, now, expiresAt)
	}

	s.appendHistory(input.ItemNumber, constants.HistoryActionReserve, item.Status,
		constants.ItemStatusReserved, input.ClientCode, constants.PerformedByCustomer, true, "")

	if err := s.addCartLine(item, input, expiresAt); err != nil {
		logger.Errorw("reserve_cart_line_failed", "item_number", input.ItemNumber, "session", input.SessionID, "error", err)
	}

	return &Reservation{
		ItemNumber:   input.ItemNumber,
		ReservedBy:   input.ClientCode,
		SessionID:    input.SessionID,
		ReservedAt:   now,
		ExpiresAt:    expiresAt,
		RenewalCount: 0,
	}, nil
}

// reserveConflict resolves a lost conditional write: the same holder gets a
// renewal, everyone else a typed rejection.
func (s *ReservationService) reserveConflict(input ReserveInput, now time.Time, expiresAt time.Time) (*Reservation, error) {
	item, err := s.itemRepo.GetByNumber(input.ItemNumber)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.SelectionOwned() {
		return nil, ErrSelectionOwned
	}
	switch item.Status {
	case constants.ItemStatusReserved:
		if item.ReservedBy == input.ClientCode {
			return s.renew(item, input.ClientCode, now, expiresAt)
		}
		return nil, ErrItemAlreadyReserved
	case constants.ItemStatusAvailable:
		// Lost a near-simultaneous race that has since been released; treat
		// as a conflict rather than looping.
		return nil, ErrItemAlreadyReserved
	default:
		return nil, ErrItemNotAvailable
	}
}

// Renew extends the current holder's reservation
func (s *ReservationService) Renew(itemNumber, clientCode string, ttlMinutes int) (*Reservation, error) {
	if itemNumber == "" || clientCode == "" {
		return nil, ErrInvalidRequest
	}
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(item); err != nil {
		return nil, err
	}
	if item.Status != constants.ItemStatusReserved || !item.IsReserved {
		return nil, ErrItemNotAvailable
	}
	if item.ReservedBy != clientCode {
		return nil, ErrNotReservationHolder
	}
	now := time.Now()
	return s.renew(item, clientCode, now, now.Add(s.normalizeTTL(ttlMinutes)))
}

func (s *ReservationService) renew(item *models.Item, clientCode string, now time.Time, expiresAt time.Time) (*Reservation, error) {
	affected, err := s.itemRepo.RenewReservation(item.ItemNumber, clientCode, now, expiresAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotReservationHolder
	}
	s.appendHistory(item.ItemNumber, constants.HistoryActionRenew, constants.ItemStatusReserved,
		constants.ItemStatusReserved, clientCode, constants.PerformedByCustomer, true, "")

	// The cart line mirrors the item-level expiry; a renewal must move both.
	if item.ReservedSession != "" {
		if _, err := s.cartRepo.UpdateLineExpiry(item.ReservedSession, item.ItemNumber, expiresAt); err != nil {
			logger.Warnw("renew_cart_line_expiry_failed", "item_number", item.ItemNumber, "session", item.ReservedSession, "error", err)
		}
	}

	reservedAt := now
	if item.ReservedAt != nil {
		reservedAt = *item.ReservedAt
	}
	return &Reservation{
		ItemNumber:   item.ItemNumber,
		ReservedBy:   clientCode,
		SessionID:    item.ReservedSession,
		ReservedAt:   reservedAt,
		ExpiresAt:    expiresAt,
		RenewalCount: item.RenewalCount + 1,
	}, nil
}

// Release clears a hold and removes the mirrored line from every cart that
// references the item. Idempotent: releasing an already-released item
// succeeds without a new history entry.
func (s *ReservationService) Release(itemNumber, reason, performedBy, performedByType string) error {
	if itemNumber == "" {
		return ErrInvalidRequest
	}
	if reason == "" {
		reason = constants.ReleaseReasonCustomer
	}
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return err
	}
	if err := guardMutable(item); err != nil {
		return err
	}

	now := time.Now()
	affected, err := s.itemRepo.Release(itemNumber, now)
	if err != nil {
		return err
	}
	if affected > 0 {
		action := constants.HistoryActionRelease
		if reason == constants.ReleaseReasonExpired {
			action = constants.HistoryActionExpireSweep
		}
		s.appendHistory(itemNumber, action, constants.ItemStatusReserved,
			constants.ItemStatusAvailable, performedBy, performedByType, true, "")
	}

	if _, err := s.cartRepo.RemoveLineFromActiveCarts(itemNumber); err != nil {
		logger.Warnw("release_cart_cleanup_failed", "item_number", itemNumber, "error", err)
	}
	return nil
}

// ItemStatus returns the status view for the public API
func (s *ReservationService) ItemStatus(itemNumber string) (*ItemStatusView, error) {
	if itemNumber == "" {
		return nil, ErrInvalidRequest
	}
	item, err := s.itemRepo.GetByNumber(itemNumber)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	view := &ItemStatusView{
		ItemNumber:   item.ItemNumber,
		Status:       item.Status,
		LegacyStatus: item.LegacyStatus,
		Location:     item.Location,
	}
	if item.SelectionOwned() {
		view.SelectionID = *item.SelectionID
	}
	if item.IsReserved {
		view.ReservationInfo = &ReservationInfo{
			IsReserved:   true,
			ReservedBy:   item.ReservedBy,
			SessionID:    item.ReservedSession,
			ReservedAt:   item.ReservedAt,
			ExpiresAt:    item.ReservationExpiresAt,
			RenewalCount: item.RenewalCount,
		}
	}
	if item.LockedBy != "" {
		view.LockInfo = &LockInfo{
			LockedBy:  item.LockedBy,
			LockedAt:  item.LockedAt,
			ExpiresAt: item.LockExpiresAt,
			Reason:    item.LockReason,
		}
	}
	return view, nil
}

func (s *ReservationService) addCartLine(item *models.Item, input ReserveInput, expiresAt time.Time) error {
	cart, err := s.cartRepo.GetOrCreate(input.SessionID, input.ClientCode)
	if err != nil {
		return err
	}
	// The ingested catalog price wins over whatever the client sent; the
	// request price is only a display fallback for items ingested without one.
	price := item.Price
	if price.IsZero() {
		price = input.Price
	}
	line := &models.CartItem{
		ItemNumber:    input.ItemNumber,
		FileName:      item.FileName,
		Price:         price,
		OriginalPrice: price,
		HasPrice:      true,
		ExpiresAt:     &expiresAt,
		GhostStatus:   constants.GhostStatusActive,
	}
	return s.cartRepo.AddLine(cart.ID, line)
}

func (s *ReservationService) appendHistory(itemNumber, action, previous, next, performedBy, performedByType string, success bool, errText string) {
	entry := &models.ItemStatusHistory{
		ItemNumber:      itemNumber,
		Action:          action,
		PreviousStatus:  previous,
		NewStatus:       next,
		PerformedBy:     performedBy,
		PerformedByType: performedByType,
		Success:         success,
		Error:           errText,
	}
	if err := s.historyRepo.Append(entry); err != nil {
		logger.Errorw("history_append_failed", "item_number", itemNumber, "action", action, "error", err)
	}
}
