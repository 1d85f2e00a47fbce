// Package catalogue is the static pizza recipe table: which ingredients
// and how much base cook time each PizzaType needs, independent of Size
// or the run's global multiplier. Grounded on original_source's
// APizza.cpp/PizzaFactory.cpp subclasses, one per pizza type.
package catalogue

import (
	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/stock"
)

// Recipe is one pizza type's fixed ingredient list and base cook time in
// seconds (before Config.Multiplier is applied).
type Recipe struct {
	Ingredients   []stock.Ingredient
	BaseCookTimeS float64
}

var table = map[plazza.PizzaType]Recipe{
	plazza.Margarita: {
		Ingredients:   []stock.Ingredient{stock.Dough, stock.Tomato, stock.Gruyere},
		BaseCookTimeS: 1,
	},
	plazza.Regina: {
		Ingredients:   []stock.Ingredient{stock.Dough, stock.Tomato, stock.Gruyere, stock.Ham, stock.Mushrooms},
		BaseCookTimeS: 2,
	},
	plazza.Americana: {
		Ingredients:   []stock.Ingredient{stock.Dough, stock.Tomato, stock.Gruyere, stock.Steak},
		BaseCookTimeS: 2,
	},
	plazza.Fantasia: {
		Ingredients:   []stock.Ingredient{stock.Dough, stock.Tomato, stock.Eggplant, stock.GoatCheese, stock.ChiefLove},
		BaseCookTimeS: 4,
	},
}

// Lookup returns the Recipe for a pizza type, or ok=false if t isn't one
// of the four known types.
func Lookup(t plazza.PizzaType) (Recipe, bool) {
	r, ok := table[t]
	return r, ok
}
