// Package kitchen implements one Kitchen subprocess: its stock, cook
// pool, order queue, and the idle-closure state machine that decides when
// the kitchen self-terminates. Grounded on original_source's Kitchen.cpp
// main loop and spec.md §4.5, reworked from the teacher's queue.Runner
// I/O loop (internal/queue/runner.go): a ctx/select-driven loop around a
// fixed worker pool, owning exactly the shared state its workers need.
package kitchen

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/catalogue"
	"github.com/kcoder/plazza/internal/constants"
	"github.com/kcoder/plazza/internal/cook"
	"github.com/kcoder/plazza/internal/ipc"
	"github.com/kcoder/plazza/internal/logging"
	"github.com/kcoder/plazza/internal/orderqueue"
	"github.com/kcoder/plazza/internal/stock"
)

// Config bundles what New needs to build one kitchen, mirroring the
// teacher's queue.Config pattern of grouping constructor inputs instead
// of a long parameter list.
type Config struct {
	ID       uint64
	PlazzaCf plazza.Config

	// OrderIn is this kitchen's own order pipe, read-only. Reception
	// writes Order/RequestStatus/Closed onto it.
	OrderIn ipc.ReadWriter

	// ToReception is the shared kitchen-to-reception pipe, write-only.
	// Every kitchen in the process writes Status/CookedPizza/Closed here.
	ToReception ipc.ReadWriter

	Observer plazza.Observer
	Logger   *logging.Logger
}

// Kitchen is one subprocess's state: a cook pool, its stock, its order
// queue, and the idle-closure timer. The zero value is not usable; use
// New.
type Kitchen struct {
	id     uint64
	cfg    plazza.Config
	obs    plazza.Observer
	logger *logging.Logger

	orderIn     ipc.ReadWriter
	toReception ipc.ReadWriter

	stock *stock.Stock
	queue *orderqueue.Queue
	cooks []*cook.Cook

	queuedCookTimeMs atomic.Int64
	idleSinceNs      atomic.Int64

	statusMu sync.Mutex // serializes Write calls onto toReception

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a Kitchen and its cook pool but does not start anything;
// call Run to start the main loop and cook goroutines.
func New(cfg Config) *Kitchen {
	obs := cfg.Observer
	if obs == nil {
		obs = plazza.NoOpObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.WithKitchen(cfg.ID)

	k := &Kitchen{
		id:          cfg.ID,
		cfg:         cfg.PlazzaCf,
		obs:         obs,
		logger:      logger,
		orderIn:     cfg.OrderIn,
		toReception: cfg.ToReception,
		stock:       stock.New(cfg.PlazzaCf.RestockPeriod),
		queue:       orderqueue.New(),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	k.idleSinceNs.Store(time.Now().UnixNano())

	k.cooks = make([]*cook.Cook, cfg.PlazzaCf.CooksPerKitchen)
	for i := range k.cooks {
		k.cooks[i] = cook.New(i, k.queue, k.stock, k.cfg, obs, logger, k.onCookReserved, k.onCookDone)
	}

	return k
}

// ID returns the kitchen's stable numeric id.
func (k *Kitchen) ID() uint64 { return k.id }

// Done is closed once Run has fully torn down (cooks stopped, stock
// closed). Callers supervising the kitchen's host process wait on it.
func (k *Kitchen) Done() <-chan struct{} { return k.doneCh }

// RequestShutdown asks the kitchen's main loop to stop at its next tick,
// without waiting for Done. Idempotent.
func (k *Kitchen) RequestShutdown() {
	k.stopOnce.Do(func() { close(k.stopCh) })
}

// Run starts the cook pool and runs the main loop until the kitchen
// closes itself (idle timeout), is asked to via RequestShutdown, ctx is
// canceled, or its order pipe reports it is closed. It blocks until
// shutdown is complete.
func (k *Kitchen) Run(ctx context.Context) {
	for _, c := range k.cooks {
		c.Start()
	}
	defer k.teardown()

	ticker := time.NewTicker(constants.KitchenTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-k.stopCh:
			return
		case <-ticker.C:
			if k.drainOrderPipe() {
				return
			}
			if k.checkIdleClosure() {
				_ = k.toReception.Write(ipc.NewClosed(k.id))
				return
			}
		}
	}
}

// drainOrderPipe reads every message currently waiting on the order pipe
// (spec.md §4.5 step 1). Returns true if shutdown was requested, either
// by a Closed message or because the pipe itself reported closed.
func (k *Kitchen) drainOrderPipe() bool {
	for {
		msg, ok, err := k.orderIn.Read()
		if err != nil {
			k.logger.WithError(err).Debug("order pipe closed, shutting down")
			return true
		}
		if !ok {
			return false
		}

		switch msg.Tag {
		case ipc.TagRequestStatus:
			k.emitStatus()

		case ipc.TagOrder:
			k.handleOrder(msg.PackedPizza)

		case ipc.TagClosed:
			k.logger.Debug("received shutdown instruction on order pipe")
			return true

		default:
			k.logger.Warn("ignoring unexpected message on order pipe", "tag", msg.Tag.String())
		}
	}
}

func (k *Kitchen) handleOrder(packed uint16) {
	pizza := plazza.UnpackPizza(packed)
	recipe, ok := catalogue.Lookup(pizza.Type)
	if !ok {
		k.logger.Error("dropping order for unknown pizza type", "pizza", pizza.String())
		return
	}

	if !k.queue.Enqueue(packed) {
		k.logger.Error("order queue full, dropping order", "pizza", pizza.String())
		return
	}

	cookTime := k.cfg.EffectiveCookTime(recipe.BaseCookTimeS)
	k.queuedCookTimeMs.Add(cookTime.Milliseconds())
	k.emitStatus()
}

// onCookReserved is a cook's onReserved callback: emit a status update
// immediately so the reception sees the idle-cook-count drop before the
// cook time sleep starts (spec.md §4.4).
func (k *Kitchen) onCookReserved() {
	k.emitStatus()
}

// onCookDone is a cook's onDone callback: decrement the queued cook
// time, emit status, then emit CookedPizza (spec.md §4.5, "Pizza
// completion").
func (k *Kitchen) onCookDone(r cook.Result) {
	remaining := k.queuedCookTimeMs.Add(-r.CookTime.Milliseconds())
	if remaining < 0 {
		k.queuedCookTimeMs.Store(0)
	}
	k.emitStatus()
	if err := k.toReception.Write(ipc.NewCookedPizza(k.id, r.Pizza.Pack())); err != nil {
		k.logger.WithError(err).Error("failed to report cooked pizza")
	}
}

func (k *Kitchen) emitStatus() {
	idleCooks := 0
	for _, c := range k.cooks {
		if !c.IsCooking() {
			idleCooks++
		}
	}
	elapsedMs := (time.Now().UnixNano() - k.idleSinceNs.Load()) / int64(time.Millisecond)

	msg := ipc.NewStatus(
		k.id,
		k.stock.StockString(),
		elapsedMs,
		uint64(idleCooks),
		uint64(k.queue.Len()),
		k.queuedCookTimeMs.Load(),
	)

	k.statusMu.Lock()
	defer k.statusMu.Unlock()
	if err := k.toReception.Write(msg); err != nil {
		k.logger.WithError(err).Error("failed to report status")
	}
}

// checkIdleClosure implements spec.md §4.5.1: tracks how long every cook
// has been idle with an empty queue, and reports true once that has held
// for constants.KitchenIdleTimeout.
func (k *Kitchen) checkIdleClosure() bool {
	idleCooks := 0
	for _, c := range k.cooks {
		if !c.IsCooking() {
			idleCooks++
		}
	}
	busy := idleCooks < len(k.cooks) || k.queue.Len() > 0
	now := time.Now()

	if busy {
		k.idleSinceNs.Store(now.UnixNano())
		return false
	}

	idleSince := time.Unix(0, k.idleSinceNs.Load())
	return now.Sub(idleSince) >= constants.KitchenIdleTimeout
}

// teardown implements spec.md §4.5's shutdown sequence: stop every cook
// (each finishes any in-flight pizza and exits once its current Dequeue
// wait, at most constants.OrderQueueDequeueTimeout, returns), put the
// queue into drain mode, and close the stock's restock goroutine.
// Pizzas still in the queue are not cooked; they are dropped with it.
func (k *Kitchen) teardown() {
	var wg sync.WaitGroup
	for _, c := range k.cooks {
		wg.Add(1)
		go func(c *cook.Cook) {
			defer wg.Done()
			c.Stop()
		}(c)
	}
	wg.Wait()

	k.queue.Drain()
	k.stock.Close()
	close(k.doneCh)
}
