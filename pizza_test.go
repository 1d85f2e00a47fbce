package plazza

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPizzaPackRoundTrip(t *testing.T) {
	for typ := Margarita; typ <= Fantasia; typ++ {
		for size := SizeS; size <= SizeXXL; size++ {
			p := Pizza{Type: typ, Size: size}
			got := UnpackPizza(p.Pack())
			assert.Equal(t, p.Type, got.Type)
			assert.Equal(t, p.Size, got.Size)
			assert.True(t, got.Valid())
		}
	}
}

func TestPizzaString(t *testing.T) {
	assert.Equal(t, "Margarita(M)", Pizza{Type: Margarita, Size: SizeM}.String())
	assert.Equal(t, "Fantasia(XXL)", Pizza{Type: Fantasia, Size: SizeXXL}.String())
}

func TestParseSize(t *testing.T) {
	s, ok := ParseSize("XL")
	assert.True(t, ok)
	assert.Equal(t, SizeXL, s)

	_, ok = ParseSize("banana")
	assert.False(t, ok)
}

func TestPizzaTypeValid(t *testing.T) {
	assert.True(t, Fantasia.Valid())
	assert.False(t, PizzaType(200).Valid())
}

func TestParsePizzaType(t *testing.T) {
	typ, ok := ParsePizzaType("regina")
	assert.True(t, ok)
	assert.Equal(t, Regina, typ)

	_, ok = ParsePizzaType("Regina")
	assert.False(t, ok, "grammar tokens are normalized to lowercase before parsing")

	_, ok = ParsePizzaType("hawaiian")
	assert.False(t, ok)
}
