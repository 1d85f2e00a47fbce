// Package cook implements a kitchen's fixed pool of cook goroutines: each
// one loops pulling a packed pizza off the kitchen's order queue, reserving
// its ingredients from the shared Stock, and sleeping out its effective
// cook time. Grounded on original_source's Kitchen/Cook.cpp Routine/
// CookPizza, reworked from a raw pthread loop into a goroutine with a
// done-channel for shutdown.
package cook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/catalogue"
	"github.com/kcoder/plazza/internal/constants"
	"github.com/kcoder/plazza/internal/logging"
	"github.com/kcoder/plazza/internal/orderqueue"
	"github.com/kcoder/plazza/internal/stock"
)

// Result is what a Cook reports back to its Kitchen once a pizza finishes.
type Result struct {
	Pizza    plazza.Pizza
	CookTime time.Duration
}

// Cook is one cook goroutine's state. The zero value is not usable; use
// New.
type Cook struct {
	index   int
	queue   *orderqueue.Queue
	stock   *stock.Stock
	cfg     plazza.Config
	obs     plazza.Observer
	logger  *logging.Logger

	// onReserved fires the instant ingredients are reserved, before the
	// cook time sleep. onDone fires once the pizza is fully cooked.
	onReserved func()
	onDone     func(Result)

	cooking atomic.Bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New builds a Cook. Both callbacks are invoked synchronously from the
// cook's own goroutine — callers that need to touch shared state from
// them must synchronize themselves.
func New(index int, queue *orderqueue.Queue, st *stock.Stock, cfg plazza.Config, obs plazza.Observer, logger *logging.Logger, onReserved func(), onDone func(Result)) *Cook {
	if obs == nil {
		obs = plazza.NoOpObserver{}
	}
	return &Cook{
		index:      index,
		queue:      queue,
		stock:      st,
		cfg:        cfg,
		obs:        obs,
		logger:     logger.WithCook(index),
		onReserved: onReserved,
		onDone:     onDone,
		stopCh:     make(chan struct{}),
	}
}

// Start runs the cook's loop in its own goroutine.
func (c *Cook) Start() {
	c.wg.Add(1)
	go c.loop()
}

// Stop signals the loop to exit and waits for it to do so. A pizza
// already mid-cook is allowed to finish first.
func (c *Cook) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// IsCooking reports whether this cook currently has a pizza in the oven,
// used by the kitchen's idle-closure check (spec.md §4.5).
func (c *Cook) IsCooking() bool { return c.cooking.Load() }

func (c *Cook) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		packed, ok := c.queue.Dequeue()
		if !ok {
			continue
		}
		c.cookOne(packed)
	}
}

func (c *Cook) cookOne(packed uint16) {
	pizza := plazza.UnpackPizza(packed)
	if !pizza.Valid() {
		c.logger.Error("dropping malformed packed pizza off the queue", "packed", packed)
		return
	}

	recipe, ok := catalogue.Lookup(pizza.Type)
	if !ok {
		c.logger.Error("no recipe for pizza type", "pizza", pizza.String())
		return
	}

	if !c.stock.WaitAndReserve(recipe.Ingredients, constants.StockReservationDeadline) {
		// Starved past the deadline: put it back for another cook (or a
		// later restock) to pick up, per original_source's CookPizza.
		c.queue.Enqueue(packed)
		c.obs.ObserveRequeue()
		return
	}

	cookTime := c.cfg.EffectiveCookTime(recipe.BaseCookTimeS)

	// spec.md §4.4: emit a status update right after reserving, so the
	// reception sees the idle-cook-count drop before the sleep starts.
	// The cooking flag is set first so that status counts this cook busy.
	c.cooking.Store(true)
	if c.onReserved != nil {
		c.onReserved()
	}

	time.Sleep(cookTime)
	c.cooking.Store(false)

	c.obs.ObserveCooked(cookTime)
	if c.onDone != nil {
		c.onDone(Result{Pizza: pizza, CookTime: cookTime})
	}
}
