package plazza

import (
	"fmt"
	"time"
)

// Config is the set of process-wide simulation parameters fixed at
// startup by the CLI. It is threaded explicitly through Reception and
// Kitchen construction rather than held in a package-level singleton, per
// spec.md §9 ("Global mutable state").
type Config struct {
	// Multiplier scales every pizza's base cooking time. Must be > 0.
	Multiplier float64

	// CooksPerKitchen is the fixed cook-pool size of every kitchen this
	// Reception spawns. Must be > 0.
	CooksPerKitchen int

	// RestockPeriod is the interval at which a kitchen's Stock gains one
	// unit of every ingredient. Must be > 0.
	RestockPeriod time.Duration
}

// Validate reports the first usage problem found, wrapped as a
// *Error with ErrCodeUsage, or nil if c is well-formed.
func (c Config) Validate() error {
	if c.Multiplier <= 0 {
		return NewError("Config.Validate", ErrCodeUsage, "multiplier must be > 0")
	}
	if c.CooksPerKitchen <= 0 {
		return NewError("Config.Validate", ErrCodeUsage, "cooks-per-kitchen must be > 0")
	}
	if c.RestockPeriod <= 0 {
		return NewError("Config.Validate", ErrCodeUsage, "restock-ms must be > 0")
	}
	return nil
}

// EffectiveCookTime returns the rounded-to-milliseconds cooking duration
// of a pizza whose base cooking time is baseSeconds, under this config,
// per spec.md §3 ("Effective cooking time = base
// × global multiplier, rounded to milliseconds").
func (c Config) EffectiveCookTime(baseSeconds float64) time.Duration {
	ms := baseSeconds * c.Multiplier * 1000.0
	return time.Duration(ms+0.5) * time.Millisecond
}

func (c Config) String() string {
	return fmt.Sprintf("Config{Multiplier:%.3f CooksPerKitchen:%d RestockPeriod:%s}",
		c.Multiplier, c.CooksPerKitchen, c.RestockPeriod)
}
