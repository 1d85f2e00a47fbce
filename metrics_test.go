package plazza

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsBasic(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	assert.Zero(t, snap.PizzasCooked)

	m.RecordDispatch()
	m.RecordCooked(10 * time.Millisecond)
	m.RecordCooked(20 * time.Millisecond)
	m.RecordRequeue()
	m.RecordKitchenSpawned()
	m.RecordKitchenClosed()

	snap = m.Snapshot()
	assert.EqualValues(t, 1, snap.PizzasDispatched)
	assert.EqualValues(t, 2, snap.PizzasCooked)
	assert.EqualValues(t, 1, snap.PizzasRequeued)
	assert.EqualValues(t, 1, snap.KitchensSpawned)
	assert.EqualValues(t, 1, snap.KitchensClosed)
	assert.EqualValues(t, 15*time.Millisecond, time.Duration(snap.AvgCookTimeNs))
}

func TestMetricsUptimeStopsClock(t *testing.T) {
	m := NewMetrics()
	time.Sleep(5 * time.Millisecond)

	m.Stop()
	snap1 := m.Snapshot()
	time.Sleep(5 * time.Millisecond)
	snap2 := m.Snapshot()

	assert.Equal(t, snap1.UptimeNs, snap2.UptimeNs)
	assert.GreaterOrEqual(t, snap1.UptimeNs, uint64(5*time.Millisecond))
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordCooked(time.Millisecond)
	m.RecordDispatch()

	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.PizzasCooked)
	assert.Zero(t, snap.PizzasDispatched)
	assert.Zero(t, snap.AvgCookTimeNs)
}

func TestObserverForwarding(t *testing.T) {
	var noop Observer = NoOpObserver{}
	noop.ObserveDispatch()
	noop.ObserveCooked(time.Second)
	noop.ObserveRequeue()
	noop.ObserveKitchenSpawned()
	noop.ObserveKitchenClosed()

	m := NewMetrics()
	obs := NewMetricsObserver(m)
	obs.ObserveDispatch()
	obs.ObserveCooked(2 * time.Millisecond)

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap.PizzasDispatched)
	assert.EqualValues(t, 1, snap.PizzasCooked)
}
