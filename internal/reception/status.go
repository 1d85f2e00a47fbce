package reception

import (
	"fmt"
	"sort"
	"strings"
)

// RenderStatus renders one block per known kitchen, in ascending id
// order: id, idle/total cooks, pizzas in flight, stock string, the
// closure-timer value, and the aggregated remaining cook time. This is
// the body of the `status` command read from stdin (spec.md §9, "Human output").
func (r *Reception) RenderStatus() string {
	r.mu.Lock()
	ids := append([]uint64(nil), r.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	blocks := make([]string, 0, len(ids))
	for _, id := range ids {
		rec := r.kitchens[id]
		blocks = append(blocks, renderKitchenBlock(rec, r.cfg.CooksPerKitchen))
	}
	r.mu.Unlock()

	if len(blocks) == 0 {
		return "no kitchens running\n"
	}
	return strings.Join(blocks, "")
}

func renderKitchenBlock(rec *kitchenRecord, cooksPerKitchen int) string {
	if !rec.hasStatus {
		return fmt.Sprintf("kitchen %d: awaiting first status\n", rec.id)
	}
	return fmt.Sprintf(
		"kitchen %d: %d/%d cooks idle, %d queued, stock [%s], idle-timer %dms, queued-cook-time %dms\n",
		rec.id,
		rec.snapshot.idleCount, cooksPerKitchen,
		rec.snapshot.queuedCount,
		rec.stock,
		rec.elapsedMs,
		rec.snapshot.queuedCookTimeMs,
	)
}
