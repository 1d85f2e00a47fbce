package plazza

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational statistics for a running simulation: the
// Reception holds one and reports dispatches, kitchen spawns and kitchen
// closures into it through the Observer interface below. Cooks report
// cooked pizzas and requeues through the same interface, but a re-exec'd
// kitchen process runs with NoOpObserver, and the Reception derives no
// counts from Status or CookedPizza messages, so in the Reception's
// Metrics the cooked, requeue and cook-time counters stay at zero.
type Metrics struct {
	PizzasDispatched atomic.Uint64 // orders handed to a kitchen's pipe
	PizzasCooked     atomic.Uint64 // pizzas reported through ObserveCooked
	PizzasRequeued   atomic.Uint64 // ingredient reservations that timed out and looped
	KitchensSpawned  atomic.Uint64 // new kitchens created by the dispatch policy
	KitchensClosed   atomic.Uint64 // Closed messages observed

	TotalCookTimeNs atomic.Uint64 // cumulative effective cook time, successes only
	CookCount       atomic.Uint64 // denominator for average cook time

	StartTime atomic.Int64 // UnixNano
	StopTime  atomic.Int64 // UnixNano, 0 while running
}

// NewMetrics creates a metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordDispatch records one pizza being handed to a kitchen.
func (m *Metrics) RecordDispatch() { m.PizzasDispatched.Add(1) }

// RecordCooked records one pizza finishing, with its effective cook time.
func (m *Metrics) RecordCooked(cookTime time.Duration) {
	m.PizzasCooked.Add(1)
	m.TotalCookTimeNs.Add(uint64(cookTime.Nanoseconds()))
	m.CookCount.Add(1)
}

// RecordRequeue records an ingredient-starvation requeue.
func (m *Metrics) RecordRequeue() { m.PizzasRequeued.Add(1) }

// RecordKitchenSpawned records a new kitchen being created by the dispatch
// policy.
func (m *Metrics) RecordKitchenSpawned() { m.KitchensSpawned.Add(1) }

// RecordKitchenClosed records a kitchen's self-initiated shutdown.
func (m *Metrics) RecordKitchenClosed() { m.KitchensClosed.Add(1) }

// Stop marks the simulation as stopped.
func (m *Metrics) Stop() { m.StopTime.Store(time.Now().UnixNano()) }

// MetricsSnapshot is a point-in-time, non-atomic view of Metrics, safe to
// print or compare in tests.
type MetricsSnapshot struct {
	PizzasDispatched uint64
	PizzasCooked     uint64
	PizzasRequeued   uint64
	KitchensSpawned  uint64
	KitchensClosed   uint64
	AvgCookTimeNs    uint64
	UptimeNs         uint64
}

// Snapshot takes a consistent-enough point-in-time copy of m.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		PizzasDispatched: m.PizzasDispatched.Load(),
		PizzasCooked:     m.PizzasCooked.Load(),
		PizzasRequeued:   m.PizzasRequeued.Load(),
		KitchensSpawned:  m.KitchensSpawned.Load(),
		KitchensClosed:   m.KitchensClosed.Load(),
	}
	if n := m.CookCount.Load(); n > 0 {
		snap.AvgCookTimeNs = m.TotalCookTimeNs.Load() / n
	}
	start := m.StartTime.Load()
	if stop := m.StopTime.Load(); stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}
	return snap
}

// Reset zeroes all counters and restarts the uptime clock. Useful in
// tests that share a Metrics instance across scenarios.
func (m *Metrics) Reset() {
	m.PizzasDispatched.Store(0)
	m.PizzasCooked.Store(0)
	m.PizzasRequeued.Store(0)
	m.KitchensSpawned.Store(0)
	m.KitchensClosed.Store(0)
	m.TotalCookTimeNs.Store(0)
	m.CookCount.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection, so internal/kitchen and
// internal/reception don't need a direct dependency on *Metrics.
type Observer interface {
	ObserveDispatch()
	ObserveCooked(cookTime time.Duration)
	ObserveRequeue()
	ObserveKitchenSpawned()
	ObserveKitchenClosed()
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveDispatch()                     {}
func (NoOpObserver) ObserveCooked(time.Duration)          {}
func (NoOpObserver) ObserveRequeue()                      {}
func (NoOpObserver) ObserveKitchenSpawned()                {}
func (NoOpObserver) ObserveKitchenClosed()                {}

// MetricsObserver implements Observer by recording into a *Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver wraps m as an Observer.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveDispatch()            { o.metrics.RecordDispatch() }
func (o *MetricsObserver) ObserveCooked(d time.Duration) { o.metrics.RecordCooked(d) }
func (o *MetricsObserver) ObserveRequeue()              { o.metrics.RecordRequeue() }
func (o *MetricsObserver) ObserveKitchenSpawned()       { o.metrics.RecordKitchenSpawned() }
func (o *MetricsObserver) ObserveKitchenClosed()        { o.metrics.RecordKitchenClosed() }

var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = NoOpObserver{}
)
