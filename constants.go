package plazza

import "github.com/kcoder/plazza/internal/constants"

// Re-exported so callers of the top-level package never need to import
// internal/constants directly.
const (
	StockReservationRetry    = constants.StockReservationRetry
	StockReservationDeadline = constants.StockReservationDeadline
	OrderQueueDequeueTimeout = constants.OrderQueueDequeueTimeout
	KitchenIdleTimeout       = constants.KitchenIdleTimeout
	KitchenTickInterval      = constants.KitchenTickInterval
	ReceptionTickInterval    = constants.ReceptionTickInterval
	TerminateGrace           = constants.TerminateGrace
	SaturationMultiple       = constants.SaturationMultiple
)
