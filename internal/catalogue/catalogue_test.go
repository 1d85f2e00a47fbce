package catalogue

import (
	"testing"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownTypes(t *testing.T) {
	r, ok := Lookup(plazza.Margarita)
	require.True(t, ok)
	assert.Equal(t, 1.0, r.BaseCookTimeS)
	assert.ElementsMatch(t, []stock.Ingredient{stock.Dough, stock.Tomato, stock.Gruyere}, r.Ingredients)

	r, ok = Lookup(plazza.Fantasia)
	require.True(t, ok)
	assert.Equal(t, 4.0, r.BaseCookTimeS)
	assert.Len(t, r.Ingredients, 5)
}

func TestLookupUnknownType(t *testing.T) {
	_, ok := Lookup(plazza.PizzaType(200))
	assert.False(t, ok)
}

func TestEveryValidTypeHasARecipe(t *testing.T) {
	for typ := plazza.Margarita; typ <= plazza.Fantasia; typ++ {
		_, ok := Lookup(typ)
		assert.True(t, ok, "%s has no catalogue entry", typ)
	}
}
