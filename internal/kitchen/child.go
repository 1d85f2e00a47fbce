package kitchen

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/ipc"
	"github.com/kcoder/plazza/internal/logging"
)

// ChildArgs is what a re-exec'd kitchen process needs to bring itself up:
// its own numeric id, the simulation-wide config, and the two FIFO paths
// its parent already created. Go has no fork; spec.md §9's answer to
// "fork vs. re-exec" is to re-exec the same binary with a hidden
// subcommand, which is what cmd/plazza wires RunChild into.
type ChildArgs struct {
	KitchenID      uint64
	PlazzaCf       plazza.Config
	OrderPipePath  string
	SharedPipePath string
}

// RunChild is the body of a re-exec'd kitchen subprocess. It opens its
// two FIFOs (its own order pipe read-only, the shared kitchen-to-reception
// pipe write-only, per spec.md §4.5), builds a Kitchen, and runs it until
// self-closure, SIGTERM, or SIGINT. It returns a non-nil error only for
// conditions the parent's process supervisor should treat as an abnormal
// exit (exit code 2 in cmd/plazza's mapping); a clean idle-closure returns
// nil.
func RunChild(args ChildArgs) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	orderIn, err := ipc.Open(ctx, args.OrderPipePath, syscall.O_RDONLY)
	if err != nil {
		return plazza.WrapError("kitchen.RunChild", plazza.ErrCodeFork, err)
	}
	defer orderIn.Close()

	toReception, err := ipc.Open(ctx, args.SharedPipePath, syscall.O_WRONLY)
	if err != nil {
		return plazza.WrapError("kitchen.RunChild", plazza.ErrCodeFork, err)
	}
	defer toReception.Close()

	logger := logging.Default().WithKitchen(args.KitchenID)

	k := New(Config{
		ID:          args.KitchenID,
		PlazzaCf:    args.PlazzaCf,
		OrderIn:     orderIn,
		ToReception: toReception,
		Observer:    plazza.NoOpObserver{},
		Logger:      logger,
	})

	logger.Info("kitchen starting", "cooks", args.PlazzaCf.CooksPerKitchen)
	k.Run(ctx)
	logger.Info("kitchen shut down")

	return nil
}

// FIFOPaths returns the conventional paths for a kitchen's two FIFOs
// under dir, matching the naming spec.md §4.5 uses in prose
// ("reception-to-kitchen-<id>" and the shared kitchen-to-reception pipe).
// Both the parent (when spawning) and the child (when opening) must agree
// on these, so it lives here rather than being duplicated in
// internal/reception and internal/procsup.
func FIFOPaths(dir string, kitchenID uint64) (orderPipe, sharedPipe string) {
	return fmt.Sprintf("%s/reception-to-kitchen-%d", dir, kitchenID),
		fmt.Sprintf("%s/kitchen-to-reception", dir)
}
