package reception

import (
	"sort"

	"github.com/kcoder/plazza/internal/constants"
)

// kitchenSnapshot is a point-in-time, locally-mutable view of one
// kitchen's load, used only by the dispatch policy (spec.md §4.6). It is
// intentionally a plain value type distinct from kitchenRecord's
// pipe-holding state, so pickAndReserve can cheaply adjust it in place
// across several pizzas in one dispatch batch without touching the
// record it was snapshotted from until a real Status round-trip arrives.
type kitchenSnapshot struct {
	id               uint64
	idleCount        uint64
	queuedCount      uint64
	queuedCookTimeMs int64
}

// candidateOrder returns indices into snaps sorted by spec.md §4.6 step
// 2's tiebreak chain: most idle cooks, then most queued pizzas, then
// shortest queued cook time, then lowest id.
func candidateOrder(snaps []kitchenSnapshot) []int {
	idx := make([]int, len(snaps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		x, y := snaps[idx[a]], snaps[idx[b]]
		if x.idleCount != y.idleCount {
			return x.idleCount > y.idleCount
		}
		if x.queuedCount != y.queuedCount {
			return x.queuedCount > y.queuedCount
		}
		if x.queuedCookTimeMs != y.queuedCookTimeMs {
			return x.queuedCookTimeMs < y.queuedCookTimeMs
		}
		return x.id < y.id
	})
	return idx
}

// pickAndReserve implements spec.md §4.6 steps 2-3: it walks snaps in
// tiebreak order and returns the index of the first one whose projected
// load is strictly under saturation, adjusting that entry's local
// counters to reflect the hypothetical dispatch (so the next pizza in the
// same batch sees it) before returning. -1 means every kitchen is
// saturated and the caller must spawn a new one.
func pickAndReserve(snaps []kitchenSnapshot, cooksPerKitchen int) int {
	saturation := uint64(constants.SaturationMultiple * cooksPerKitchen)

	for _, i := range candidateOrder(snaps) {
		s := &snaps[i]
		projected := (uint64(cooksPerKitchen) - s.idleCount) + s.queuedCount
		if projected < saturation {
			if s.idleCount > 0 {
				s.idleCount--
			} else {
				s.queuedCount++
			}
			return i
		}
	}
	return -1
}
