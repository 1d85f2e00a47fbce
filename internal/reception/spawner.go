package reception

import (
	"context"
	"fmt"
	"strconv"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/ipc"
	"github.com/kcoder/plazza/internal/kitchen"
	"github.com/kcoder/plazza/internal/procsup"
)

// FIFOSpawner is the real Spawner: it creates a kitchen's pair of named
// FIFOs, re-execs the binary into the hidden kitchen-child subcommand
// (spec.md §9's fork replacement), and opens the write end of the new
// kitchen's order pipe for the Reception to send on. Grounded on
// spec.md §4.5's "parent side writes one end of
// reception-to-kitchen-<id>".
type FIFOSpawner struct {
	ctx        context.Context
	runDir     string
	executable string
	cfg        plazza.Config
	procs      []*procsup.Process
}

// NewFIFOSpawner builds a FIFOSpawner rooted at runDir (a directory the
// caller has already created, typically under os.MkdirTemp).
func NewFIFOSpawner(ctx context.Context, runDir string, cfg plazza.Config) *FIFOSpawner {
	return &FIFOSpawner{ctx: ctx, runDir: runDir, cfg: cfg}
}

// SpawnKitchen implements Spawner.
func (s *FIFOSpawner) SpawnKitchen(id uint64) (ipc.ReadWriter, error) {
	orderPath, sharedPath := kitchen.FIFOPaths(s.runDir, id)

	// Reception holds the write end; the child (opened by RunChild on
	// the other side) holds the read end. Open blocks until both ends
	// are open, so the child must be started before this returns.
	args := []string{
		"--id", strconv.FormatUint(id, 10),
		"--multiplier", strconv.FormatFloat(s.cfg.Multiplier, 'f', -1, 64),
		"--cooks", strconv.Itoa(s.cfg.CooksPerKitchen),
		"--restock-ms", strconv.FormatInt(s.cfg.RestockPeriod.Milliseconds(), 10),
		"--run-dir", s.runDir,
	}
	proc, err := procsup.Start(fmt.Sprintf("kitchen-%d", id), "kitchen-child", args)
	if err != nil {
		return nil, err
	}
	s.procs = append(s.procs, proc)

	orderOut, err := ipc.Open(s.ctx, orderPath, syscall.O_WRONLY)
	if err != nil {
		return nil, fmt.Errorf("reception: open order pipe for kitchen %d: %w", id, err)
	}
	return orderOut, nil
}

// TerminateAll sends every spawned kitchen through procsup's
// SIGTERM/SIGKILL escalation, used by cmd/plazza at simulation teardown
// for any kitchen that didn't already self-close.
func (s *FIFOSpawner) TerminateAll() error {
	return terminateAll(s.procs)
}

var _ Spawner = (*FIFOSpawner)(nil)

// sharedPipePath is the one path every kitchen (and the reception) agree
// on for the kitchen-to-reception pipe, independent of kitchen id.
func sharedPipePath(runDir string) string {
	_, shared := kitchen.FIFOPaths(runDir, 0)
	return shared
}

// OpenShared opens the reception's read end of the shared
// kitchen-to-reception pipe, creating the FIFO if it does not exist yet.
func OpenShared(ctx context.Context, runDir string) (ipc.ReadWriter, error) {
	return ipc.Open(ctx, sharedPipePath(runDir), syscall.O_RDONLY)
}

// terminateAll escalates every process through SIGTERM/SIGKILL,
// accumulating failures with go-multierror rather than stopping at the
// first one: one stuck kitchen shouldn't prevent the others from being
// cleaned up.
func terminateAll(procs []*procsup.Process) error {
	var result *multierror.Error
	for _, p := range procs {
		if err := p.Terminate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
