package constants

// Item status constants (application view)
const (
	ItemStatusAvailable = "available"
	ItemStatusReserved  = "reserved"
	ItemStatusLocked    = "locked"
	ItemStatusMoved     = "moved"
	ItemStatusSold      = "sold"
	ItemStatusArchived  = "archived"
)

// Item location constants
const (
	LocationStock            = "stock"
	LocationCart             = "cart"
	LocationSpecialSelection = "special_selection"
	LocationSoldFolder       = "sold_folder"
	LocationArchived         = "archived"
)

// Raw CDE status constants (legacy warehouse system of record)
const (
	LegacyStatusIngresado   = "INGRESADO"
	LegacyStatusReserved    = "RESERVED"
	LegacyStatusStandby     = "STANDBY"
	LegacyStatusPreSelected = "PRE-SELECTED"
	LegacyStatusRetirado    = "RETIRADO"
)

// Ghost status constants for cart lines
const (
	GhostStatusActive = "active"
	GhostStatusGhost  = "ghost"
)

// History actor type constants
const (
	PerformedByCustomer = "customer"
	PerformedByAdmin    = "admin"
	PerformedBySystem   = "system"
)

// History action constants
const (
	HistoryActionReserve       = "reserve"
	HistoryActionRenew         = "renew"
	HistoryActionRelease       = "release"
	HistoryActionAdminLock     = "admin_lock"
	HistoryActionAdminUnlock   = "admin_unlock"
	HistoryActionLegacySync    = "legacy_sync"
	HistoryActionExpireSweep   = "expire_sweep"
	HistoryActionLockSweep     = "lock_sweep"
	HistoryActionForcedCleanup = "forced_cleanup"
)

// Release reason constants
const (
	ReleaseReasonCustomer = "customer"
	ReleaseReasonExpired  = "expired"
	ReleaseReasonForced   = "forced_cleanup"
)

// LockHolderCDE marks a non-purchasable state imposed by the legacy system
// rather than by an admin edit lock.
const LockHolderCDE = "cde"

// Queue task and queue name constants
const (
	QueueDefault            = "default"
	TaskCartConsistencyScan = "cart:consistency_scan"
)
