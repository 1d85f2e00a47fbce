package plazza

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	good := Config{Multiplier: 1.0, CooksPerKitchen: 2, RestockPeriod: time.Second}
	assert.NoError(t, good.Validate())

	bad := good
	bad.Multiplier = 0
	assert.True(t, IsCode(bad.Validate(), ErrCodeUsage))

	bad = good
	bad.CooksPerKitchen = 0
	assert.True(t, IsCode(bad.Validate(), ErrCodeUsage))

	bad = good
	bad.RestockPeriod = 0
	assert.True(t, IsCode(bad.Validate(), ErrCodeUsage))
}

func TestEffectiveCookTime(t *testing.T) {
	c := Config{Multiplier: 1.0, CooksPerKitchen: 1, RestockPeriod: time.Second}
	assert.Equal(t, time.Second, c.EffectiveCookTime(1))

	c.Multiplier = 0.1
	assert.Equal(t, 100*time.Millisecond, c.EffectiveCookTime(1))
}
