// Package reception implements the Reception side of the simulator: the
// kitchens registry, the manager thread that polls the shared
// kitchen-to-reception pipe, and the load-balancing dispatch policy
// (spec.md §4.6). Grounded on the teacher's queue.Runner ctx/select main
// loop (internal/queue/runner.go) for the manager thread's shape, and on
// original_source's Reception.cpp for the dispatch/ownership semantics.
package reception

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/constants"
	"github.com/kcoder/plazza/internal/ipc"
	"github.com/kcoder/plazza/internal/logging"
)

// Spawner creates a new kitchen given the id the Reception has assigned
// it, returning a ReadWriter for sending that kitchen Order/RequestStatus/
// Closed messages. It exists so Reception doesn't itself depend on
// internal/procsup or real FIFOs — cmd/plazza wires a real Spawner;
// tests wire a fake one.
type Spawner interface {
	SpawnKitchen(id uint64) (ipc.ReadWriter, error)
}

// kitchenRecord is the Reception's view of one live kitchen (spec.md §3,
// "Kitchen record (Reception view)").
type kitchenRecord struct {
	id    uint64
	order ipc.ReadWriter

	hasStatus bool
	snapshot  kitchenSnapshot
	stock     string
	elapsedMs int64
}

// Reception owns the kitchens registry and drives the manager loop.
type Reception struct {
	cfg     plazza.Config
	obs     plazza.Observer
	logger  *logging.Logger
	spawner Spawner
	shared  ipc.ReadWriter
	out     io.Writer

	mu       sync.Mutex
	kitchens map[uint64]*kitchenRecord
	order    []uint64 // insertion order, for deterministic snapshot/status iteration
	nextID   uint64
}

// New builds a Reception. shared is the read end of the kitchen-to-
// reception pipe every spawned kitchen writes onto.
func New(cfg plazza.Config, shared ipc.ReadWriter, spawner Spawner, obs plazza.Observer, logger *logging.Logger) *Reception {
	if obs == nil {
		obs = plazza.NoOpObserver{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Reception{
		cfg:      cfg,
		obs:      obs,
		logger:   logger,
		spawner:  spawner,
		shared:   shared,
		out:      os.Stdout,
		kitchens: make(map[uint64]*kitchenRecord),
	}
}

// SetOutput redirects the "ready" print line, for tests.
func (r *Reception) SetOutput(w io.Writer) { r.out = w }

// Run polls the shared pipe every constants.ReceptionTickInterval until
// ctx is canceled.
func (r *Reception) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.ReceptionTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drainShared()
		}
	}
}

// drainShared applies every message currently waiting on the shared pipe
// (spec.md §4.6's manager thread).
func (r *Reception) drainShared() {
	for {
		msg, ok, err := r.shared.Read()
		if err != nil {
			r.logger.WithError(err).Debug("shared pipe closed")
			return
		}
		if !ok {
			return
		}

		switch msg.Tag {
		case ipc.TagStatus:
			r.applyStatus(msg)

		case ipc.TagCookedPizza:
			r.printReady(plazza.UnpackPizza(msg.PackedPizza))

		case ipc.TagClosed:
			r.acknowledgeClosed(msg.KitchenID)

		default:
			r.logger.Warn("ignoring unexpected message on shared pipe", "tag", msg.Tag.String())
		}
	}
}

func (r *Reception) applyStatus(msg ipc.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.kitchens[msg.KitchenID]
	if !ok {
		return
	}
	rec.hasStatus = true
	rec.stock = msg.StockString
	rec.elapsedMs = msg.ElapsedIdleMs
	rec.snapshot = kitchenSnapshot{
		id:               msg.KitchenID,
		idleCount:        msg.IdleCookCount,
		queuedCount:      msg.QueuedCount,
		queuedCookTimeMs: msg.QueuedCookTimeMs,
	}
}

// acknowledgeClosed is the Reception's half of the Closed handshake
// (spec.md §4.6): it acks the kitchen's self-closure and forgets it.
func (r *Reception) acknowledgeClosed(id uint64) {
	r.mu.Lock()
	rec, ok := r.kitchens[id]
	if ok {
		delete(r.kitchens, id)
		for i, oid := range r.order {
			if oid == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	_ = rec.order.Write(ipc.NewClosed(id))
	r.obs.ObserveKitchenClosed()
}

// printReady prints the human-facing completion line, spec.md §9's
// "Human output" format.
func (r *Reception) printReady(p plazza.Pizza) {
	article := "A"
	if isVowelLead(p.Type.String()) {
		article = "An"
	}
	fmt.Fprintf(r.out, "%s %s is ready!\n", article, p.String())
}

func isVowelLead(name string) bool {
	if name == "" {
		return false
	}
	switch strings.ToUpper(name[:1]) {
	case "A", "E", "I", "O", "U":
		return true
	default:
		return false
	}
}

// Dispatch applies spec.md §4.6's dispatch policy to a batch of pizzas,
// one at a time, sending an Order to whichever kitchen the policy picks
// (spawning a new one if every existing kitchen is saturated, or none
// exist yet).
func (r *Reception) Dispatch(pizzas []plazza.Pizza) error {
	batchID := uuid.NewString()
	log := r.logger.WithOrder(batchID, fmt.Sprintf("%d pizzas", len(pizzas)))
	log.Debug("dispatching batch")

	r.mu.Lock()
	snaps, ids := r.snapshotLocked()
	r.mu.Unlock()

	for _, p := range pizzas {
		idx := pickAndReserve(snaps, r.cfg.CooksPerKitchen)
		if idx == -1 {
			id, err := r.spawnKitchen()
			if err != nil {
				return err
			}
			// A fresh kitchen starts with every cook idle and nothing
			// queued; reserve it for this pizza the same way
			// pickAndReserve would for an existing idle candidate.
			snaps = append(snaps, kitchenSnapshot{
				id:        id,
				idleCount: uint64(r.cfg.CooksPerKitchen) - 1,
			})
			ids = append(ids, id)
			idx = len(snaps) - 1
		}

		targetID := ids[idx]
		if err := r.sendOrder(targetID, p); err != nil {
			return err
		}
	}
	return nil
}

// snapshotLocked takes a point-in-time copy of every known kitchen's last
// status, in stable insertion order, for one dispatch batch to mutate
// locally as it assigns pizzas. Caller holds r.mu only for the copy; the
// returned slices are then used lock-free.
func (r *Reception) snapshotLocked() ([]kitchenSnapshot, []uint64) {
	ids := append([]uint64(nil), r.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snaps := make([]kitchenSnapshot, len(ids))
	for i, id := range ids {
		rec := r.kitchens[id]
		snaps[i] = rec.snapshot
		snaps[i].id = id
	}
	return snaps, ids
}

func (r *Reception) spawnKitchen() (uint64, error) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	order, err := r.spawner.SpawnKitchen(id)
	if err != nil {
		return 0, plazza.WrapError("Reception.Dispatch", plazza.ErrCodeFork, err)
	}

	r.mu.Lock()
	r.kitchens[id] = &kitchenRecord{id: id, order: order}
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.obs.ObserveKitchenSpawned()
	r.logger.Info("spawned kitchen", "kitchen_id", id)
	return id, nil
}

func (r *Reception) sendOrder(id uint64, p plazza.Pizza) error {
	r.mu.Lock()
	rec, ok := r.kitchens[id]
	r.mu.Unlock()
	if !ok {
		return plazza.NewKitchenError("Reception.Dispatch", id, plazza.ErrCodeShutdown, "kitchen record vanished before dispatch")
	}

	if err := rec.order.Write(ipc.NewOrder(id, p.Pack())); err != nil {
		return plazza.WrapError("Reception.Dispatch", plazza.ErrCodeIPCFatal, err)
	}
	r.obs.ObserveDispatch()
	return nil
}

// KitchenCount returns how many kitchens are currently tracked, for
// status rendering and tests.
func (r *Reception) KitchenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.kitchens)
}
