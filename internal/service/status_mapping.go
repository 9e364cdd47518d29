package service

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"
)

// mappingDecision outcome of translating one CDE row against the current
// application record
type mappingDecision int

const (
	// decisionApply write the mapped target status
	decisionApply mappingDecision = iota
	// decisionRefreshLegacyOnly keep the application status, refresh the
	// cached raw CDE string
	decisionRefreshLegacyOnly
	// decisionSkip leave the item untouched this cycle
	decisionSkip
	// decisionUnknown no mapping rule covers the raw status
	decisionUnknown
)

// legacyTransition result of the mapping table
type legacyTransition struct {
	decision     mappingDecision
	targetStatus string
	// forceCartCleanup the item must be hard-removed from every active
	// cart: the application never owned the state change
	forceCartCleanup bool
}

// blockingLegacyStatuses CDE statuses that keep an item in the blocked
// registry
var blockingLegacyStatuses = map[string]bool{
	constants.LegacyStatusReserved:    true,
	constants.LegacyStatusStandby:     true,
	constants.LegacyStatusPreSelected: true,
}

// releasedLegacyStatuses CDE statuses that drop an item from the blocked
// registry
var releasedLegacyStatuses = map[string]bool{
	constants.LegacyStatusIngresado: true,
	constants.LegacyStatusRetirado:  true,
}

// mapLegacyStatus is the single place raw CDE statuses translate to
// application statuses. Call sites never re-derive status from strings.
//
// Rules:
//   - RETIRADO: sold, with forced cart cleanup.
//   - RESERVED / STANDBY: non-purchasable (locked by the CDE, not a
//     customer reservation), with forced cart cleanup.
//   - PRE-SELECTED: a currently valid customer reservation wins; only the
//     cached raw status is refreshed. An expired reservation is left alone
//     entirely. Expiry belongs to the sweeper, and writing here would race
//     it on the same field.
//   - INGRESADO: available. A currently valid customer reservation again
//     wins (the CDE does not know about application holds). When the
//     previous cached raw status was PRE-SELECTED, the release also forces
//     cart cleanup for whoever was riding the pre-selection.
func mapLegacyStatus(item *models.Item, legacyStatus string, now time.Time) legacyTransition {
	switch legacyStatus {
	case constants.LegacyStatusRetirado:
		return legacyTransition{
			decision:         decisionApply,
			targetStatus:     constants.ItemStatusSold,
			forceCartCleanup: true,
		}
	case constants.LegacyStatusReserved, constants.LegacyStatusStandby:
		return legacyTransition{
			decision:         decisionApply,
			targetStatus:     constants.ItemStatusLocked,
			forceCartCleanup: true,
		}
	case constants.LegacyStatusPreSelected:
		if item.HasValidReservation(now) {
			return legacyTransition{decision: decisionRefreshLegacyOnly}
		}
		return legacyTransition{decision: decisionSkip}
	case constants.LegacyStatusIngresado:
		if item.HasValidReservation(now) {
			return legacyTransition{decision: decisionRefreshLegacyOnly}
		}
		return legacyTransition{
			decision:         decisionApply,
			targetStatus:     constants.ItemStatusAvailable,
			forceCartCleanup: item.LegacyStatus == constants.LegacyStatusPreSelected,
		}
	default:
		return legacyTransition{decision: decisionUnknown}
	}
}
