package service

import "errors"

var (
	// ErrItemNotFound item number does not resolve to a catalog record
	ErrItemNotFound = errors.New("item not found")
	// ErrItemAlreadyReserved another customer holds a valid reservation
	ErrItemAlreadyReserved = errors.New("item already reserved")
	// ErrItemNotAvailable item is sold, locked, moved or archived
	ErrItemNotAvailable = errors.New("item not available")
	// ErrNotReservationHolder renewal attempted by a non-holder
	ErrNotReservationHolder = errors.New("caller does not hold the reservation")
	// ErrItemAlreadyLocked another admin holds the edit lock
	ErrItemAlreadyLocked = errors.New("item already locked")
	// ErrSelectionOwned item belongs to a curated selection; the owner
	// overrides every other mutation path
	ErrSelectionOwned = errors.New("item owned by a special selection")
	// ErrInvalidRequest malformed reservation or cart request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCartNotFound no cart exists for the session
	ErrCartNotFound = errors.New("cart not found")
	// ErrReconcileInFlight a reconciliation cycle is already running
	ErrReconcileInFlight = errors.New("reconciliation cycle already running")
	// ErrDataInconsistency legacy and application state disagree in a way
	// no mapping rule covers; the item is left untouched for manual review
	ErrDataInconsistency = errors.New("legacy data inconsistency")
)
