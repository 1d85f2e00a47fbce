// Package orderqueue is a Kitchen's pending-order FIFO: a lock-free MPMC
// queue (code.hybscloud.com/lfq) for storage — multiple producers (the
// pipe reader handing off new orders, cooks requeuing a starved one) and
// multiple consumers (the cook pool) — wrapped with a small condvar-based
// notifier so Dequeue can offer the bounded wait spec.md §4.3 requires.
// lfq's Queue deliberately has no length; a separate atomic counter tracks
// it for Status reporting.
package orderqueue

import (
	"sync"
	"sync/atomic"
	"time"

	"code.hybscloud.com/lfq"

	"github.com/kcoder/plazza/internal/constants"
)

// capacity bounds how many pizzas a single kitchen can have queued at
// once. It is generous relative to the saturation threshold the dispatch
// policy enforces (constants.SaturationMultiple × cooks), which is what
// actually keeps a healthy kitchen's queue short.
const capacity = 4096

// Queue is one kitchen's order queue.
type Queue struct {
	q      *lfq.MPMC[uint16]
	length atomic.Int64

	mu   sync.Mutex
	cond *sync.Cond
}

// New creates an empty Queue.
func New() *Queue {
	q := &Queue{q: lfq.NewMPMC[uint16](capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a packed pizza to the queue. Returns false if the queue is
// at capacity.
func (q *Queue) Enqueue(packedPizza uint16) bool {
	if err := q.q.Enqueue(&packedPizza); err != nil {
		return false
	}
	q.length.Add(1)
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
	return true
}

// Dequeue waits up to constants.OrderQueueDequeueTimeout for a pizza to
// become available. ok is false if the timeout elapsed with nothing
// queued — cooks treat that as "re-check shutdown, then try again",
// per spec.md §4.4.
func (q *Queue) Dequeue() (packedPizza uint16, ok bool) {
	deadline := time.Now().Add(constants.OrderQueueDequeueTimeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if v, err := q.q.Dequeue(); err == nil {
			q.length.Add(-1)
			return v, true
		}
		if !time.Now().Before(deadline) {
			return 0, false
		}
		q.waitUntilLocked(deadline)
	}
}

// waitUntilLocked blocks on q.cond until Broadcast or deadline, whichever
// comes first. Caller holds q.mu.
func (q *Queue) waitUntilLocked(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	timer := time.AfterFunc(d, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()
	q.cond.Wait()
}

// Len returns the current queue length, for Status reporting. It is a
// plain counter alongside the lock-free storage, not derived from it:
// lfq.Queue intentionally omits a length operation (see lfq's package
// doc, "Capacity and Length").
func (q *Queue) Len() int64 { return q.length.Load() }

// Drain puts the underlying queue into drain mode (when lfq's queue
// supports it), so the FAA threshold mechanism no longer blocks Dequeue
// once producers have stopped. It neither removes nor returns the pizzas
// still queued; a shutting-down kitchen calls it and then drops the queue
// with whatever is left in it.
func (q *Queue) Drain() {
	if d, ok := any(q.q).(lfq.Drainer); ok {
		d.Drain()
	}
}
