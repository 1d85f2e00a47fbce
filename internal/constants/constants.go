// Package constants collects the fixed timing and sizing values spec.md
// pins to specific numbers rather than leaving to Config: the bounded-wait
// windows, the idle-closure timer, and the dispatch saturation rule.
package constants

import "time"

// Bounded-wait windows (spec.md §4.3, §4.5).
const (
	// StockReservationRetry is how often a cook re-attempts an ingredient
	// reservation against the Stock while waiting for a restock.
	StockReservationRetry = 100 * time.Millisecond

	// StockReservationDeadline is the total time a cook will wait for an
	// ingredient reservation before giving up and requeuing the order.
	StockReservationDeadline = 2 * time.Second

	// OrderQueueDequeueTimeout bounds how long a cook blocks waiting for
	// the next queued order before re-checking its shutdown signal.
	OrderQueueDequeueTimeout = 100 * time.Millisecond

	// KitchenIdleTimeout is how long a kitchen may sit with every cook
	// idle and its queue empty before it self-closes.
	KitchenIdleTimeout = 5 * time.Second

	// KitchenTickInterval is how often a kitchen's main loop drains its
	// order pipe and re-runs the idle-closure check.
	KitchenTickInterval = 10 * time.Millisecond

	// ReceptionTickInterval is how often the reception's manager loop
	// polls the shared kitchen-to-reception pipe.
	ReceptionTickInterval = 10 * time.Millisecond
)

// Process teardown (spec.md §4.7).
const (
	// TerminateGrace is how long a supervised kitchen process gets to
	// exit cleanly after SIGTERM before being sent SIGKILL.
	TerminateGrace = 1 * time.Second
)

// Dispatch policy (spec.md §4.6).
const (
	// SaturationMultiple: a kitchen is considered saturated, and excluded
	// from receiving a new order, once its projected load (busy cooks plus
	// queued pizzas) reaches SaturationMultiple times its cook count.
	SaturationMultiple = 2
)

// FrameReadSize is how many bytes a Channel asks the underlying FIFO for
// on each poll (spec.md §4.1 step 1).
const FrameReadSize = 4096
