package reception

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateOrderSortsByIdleThenQueuedThenTimeThenID(t *testing.T) {
	snaps := []kitchenSnapshot{
		{id: 2, idleCount: 1, queuedCount: 0, queuedCookTimeMs: 100},
		{id: 0, idleCount: 2, queuedCount: 5, queuedCookTimeMs: 50},
		{id: 1, idleCount: 2, queuedCount: 5, queuedCookTimeMs: 10},
		{id: 3, idleCount: 2, queuedCount: 1, queuedCookTimeMs: 0},
	}
	order := candidateOrder(snaps)

	var ids []uint64
	for _, i := range order {
		ids = append(ids, snaps[i].id)
	}
	// idle=2 beats idle=1 (kitchen 2 last); among idle=2, queued=5 beats
	// queued=1 (kitchen 3 third); among the two queued=5, lower time wins.
	assert.Equal(t, []uint64{1, 0, 3, 2}, ids)
}

func TestPickAndReservePicksFirstUnderSaturation(t *testing.T) {
	snaps := []kitchenSnapshot{
		{id: 0, idleCount: 0, queuedCount: 2}, // cooks=1: projected (1-0)+2=3, saturation 2 -> full
		{id: 1, idleCount: 1, queuedCount: 0}, // projected (1-1)+0=0 -> fits
	}
	i := pickAndReserve(snaps, 1)
	assert.Equal(t, 1, i)
	assert.EqualValues(t, 0, snaps[1].idleCount, "idle count should have been decremented for the hypothetical dispatch")
}

func TestPickAndReserveReturnsMinusOneWhenAllSaturated(t *testing.T) {
	snaps := []kitchenSnapshot{
		{id: 0, idleCount: 0, queuedCount: 2},
		{id: 1, idleCount: 0, queuedCount: 2},
	}
	assert.Equal(t, -1, pickAndReserve(snaps, 1))
}

func TestPickAndReserveAdjustsQueuedWhenNoIdleCooksLeft(t *testing.T) {
	snaps := []kitchenSnapshot{
		{id: 0, idleCount: 0, queuedCount: 0}, // cooks=2: projected (2-0)+0=2 < 4 -> fits
	}
	i := pickAndReserve(snaps, 2)
	assert.Equal(t, 0, i)
	assert.EqualValues(t, 1, snaps[0].queuedCount, "no idle cooks to decrement, so queued count should bump instead")
}

func TestPickAndReserveAcrossMultiplePizzasInOneBatch(t *testing.T) {
	snaps := []kitchenSnapshot{
		{id: 0, idleCount: 1, queuedCount: 0}, // cooks=1
	}
	first := pickAndReserve(snaps, 1)
	assert.Equal(t, 0, first)
	assert.EqualValues(t, 0, snaps[0].idleCount)

	// Second pizza in the same batch: projected (1-0)+0=1, saturation 2 -> still fits.
	second := pickAndReserve(snaps, 1)
	assert.Equal(t, 0, second)
	assert.EqualValues(t, 1, snaps[0].queuedCount)

	// Third pizza: projected (1-0)+1=2, saturation 2 -> no longer fits.
	third := pickAndReserve(snaps, 1)
	assert.Equal(t, -1, third)
}
