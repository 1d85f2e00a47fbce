// Package stock implements a Kitchen's shared ingredient inventory: a
// bounded-wait reservation API backed by a periodically replenished
// counter per ingredient. Grounded on original_source's Stock.cpp
// (mutex + condition variable guarding a map, a dedicated restock
// goroutine in place of its restock thread).
package stock

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kcoder/plazza/internal/constants"
)

// Ingredient is one of the nine raw ingredients the catalogue's recipes
// draw from.
type Ingredient int

const (
	Dough Ingredient = iota
	Tomato
	Gruyere
	Ham
	Mushrooms
	Steak
	Eggplant
	GoatCheese
	ChiefLove

	ingredientCount
)

func (i Ingredient) String() string {
	switch i {
	case Dough:
		return "Dough"
	case Tomato:
		return "Tomato"
	case Gruyere:
		return "Gruyere"
	case Ham:
		return "Ham"
	case Mushrooms:
		return "Mushrooms"
	case Steak:
		return "Steak"
	case Eggplant:
		return "Eggplant"
	case GoatCheese:
		return "GoatCheese"
	case ChiefLove:
		return "ChiefLove"
	default:
		return "Unknown"
	}
}

// initialUnits is how many units of each ingredient a fresh Stock starts
// with, per original_source's Stock constructor.
const initialUnits = 5

// Stock is one kitchen's ingredient inventory. Safe for concurrent use by
// every cook in the kitchen plus the restock goroutine.
type Stock struct {
	mu     sync.Mutex
	cond   *sync.Cond
	levels [ingredientCount]int

	restockPeriod time.Duration
	stopCh        chan struct{}
	stopped       bool
	wg            sync.WaitGroup
}

// New creates a Stock with every ingredient at its initial level and
// starts its restock goroutine, which adds one unit of every ingredient
// every restockPeriod until Close is called.
func New(restockPeriod time.Duration) *Stock {
	s := &Stock{
		restockPeriod: restockPeriod,
		stopCh:        make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	for i := range s.levels {
		s.levels[i] = initialUnits
	}
	s.wg.Add(1)
	go s.restockLoop()
	return s
}

func (s *Stock) restockLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.restockPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			for i := range s.levels {
				s.levels[i]++
			}
			s.cond.Broadcast()
			s.mu.Unlock()
		}
	}
}

// Close stops the restock goroutine and waits for it to exit.
func (s *Stock) Close() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	s.cond.Broadcast()
	s.wg.Wait()
}

// TryReserve attempts to deduct one unit of every ingredient atomically:
// either all are available and all are deducted, or none are.
func (s *Stock) TryReserve(ingredients []Ingredient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tryReserveLocked(ingredients)
}

func (s *Stock) tryReserveLocked(ingredients []Ingredient) bool {
	for _, ing := range ingredients {
		if s.levels[ing] <= 0 {
			return false
		}
	}
	for _, ing := range ingredients {
		s.levels[ing]--
	}
	return true
}

// WaitAndReserve retries TryReserve every constants.StockReservationRetry
// until it succeeds or timeout elapses, matching original_source's
// WaitAndReserveIngredients loop. It wakes early whenever a restock
// broadcasts, rather than sleeping the full retry interval every time.
func (s *Stock) WaitAndReserve(ingredients []Ingredient, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	for time.Now().Before(deadline) {
		if s.tryReserveLocked(ingredients) {
			return true
		}
		s.waitWithTimeout(constants.StockReservationRetry)
	}
	return false
}

// waitWithTimeout blocks on s.cond for at most d, or until a restock
// broadcasts sooner. Caller holds s.mu; cond.Wait releases it while
// blocked and reacquires it before returning.
func (s *Stock) waitWithTimeout(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer timer.Stop()
	s.cond.Wait()
}

// Levels returns a point-in-time copy of every ingredient's remaining
// count, keyed by name, for callers that want it by ingredient rather
// than as the wire string (e.g. a human-readable `status` rendering).
func (s *Stock) Levels() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, ingredientCount)
	for i := Ingredient(0); i < ingredientCount; i++ {
		out[i.String()] = s.levels[i]
	}
	return out
}

// StockString renders the nine ingredient counts as single-space
// separated integers in fixed enum order, matching spec.md §9's wire
// format for Status's stock-string field.
func (s *Stock) StockString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, ingredientCount)
	for i := Ingredient(0); i < ingredientCount; i++ {
		parts[i] = strconv.Itoa(s.levels[i])
	}
	return strings.Join(parts, " ")
}
