package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveAllOrNothing(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	for i := 0; i < initialUnits; i++ {
		require.True(t, s.TryReserve([]Ingredient{Dough, Tomato}))
	}
	assert.False(t, s.TryReserve([]Ingredient{Dough, Tomato}))

	levels := s.Levels()
	assert.Equal(t, 0, levels[Dough.String()])
	assert.Equal(t, 0, levels[Tomato.String()])
	assert.Equal(t, initialUnits, levels[Gruyere.String()]) // untouched
}

func TestTryReserveAtomicAcrossIngredients(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	for i := 0; i < initialUnits; i++ {
		require.True(t, s.TryReserve([]Ingredient{Steak}))
	}
	// Dough is plentiful, Steak is exhausted: the whole reservation fails.
	assert.False(t, s.TryReserve([]Ingredient{Dough, Steak}))
	assert.Equal(t, initialUnits, s.Levels()[Dough.String()])
}

func TestWaitAndReserveSucceedsAfterRestock(t *testing.T) {
	s := New(20 * time.Millisecond)
	defer s.Close()

	for i := 0; i < initialUnits; i++ {
		require.True(t, s.TryReserve([]Ingredient{Ham}))
	}
	assert.False(t, s.TryReserve([]Ingredient{Ham}))

	ok := s.WaitAndReserve([]Ingredient{Ham}, 500*time.Millisecond)
	assert.True(t, ok, "restock should have replenished Ham within the timeout")
}

func TestWaitAndReserveTimesOut(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	for i := 0; i < initialUnits; i++ {
		require.True(t, s.TryReserve([]Ingredient{Mushrooms}))
	}

	start := time.Now()
	ok := s.WaitAndReserve([]Ingredient{Mushrooms}, 150*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
}

func TestIngredientString(t *testing.T) {
	assert.Equal(t, "ChiefLove", ChiefLove.String())
	assert.Equal(t, "Unknown", Ingredient(999).String())
}

func TestStockStringFixedOrder(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	assert.Equal(t, "5 5 5 5 5 5 5 5 5", s.StockString())

	require.True(t, s.TryReserve([]Ingredient{Dough}))
	require.True(t, s.TryReserve([]Ingredient{ChiefLove}))
	assert.Equal(t, "4 5 5 5 5 5 5 5 4", s.StockString())
}
