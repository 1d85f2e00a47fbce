// Package procsup is the Reception's process supervisor: it starts each
// Kitchen as a re-exec'd child process (Go has no raw fork; spec.md §9's
// resolution to that Open Question is a hidden subcommand re-exec
// instead), polls whether it is still alive, and tears it down with a
// SIGTERM-then-SIGKILL escalation. Grounded on spec.md §4.7 and, for the
// exec.Cmd/Signal shape, the mediasoup-go worker process wrapper in
// other_examples (child *exec.Cmd, Process.Signal(syscall.SIGTERM) on
// close).
package procsup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/constants"
)

// ExitCode mirrors spec.md §4.7's exit-code mapping for a supervised
// child: 0 success, 1 a typed (expected) failure, 2 anything else.
type ExitCode int

const (
	ExitSuccess      ExitCode = 0
	ExitTypedFailure ExitCode = 1
	ExitOtherFailure ExitCode = 2
)

// Process is one supervised child. The zero value is not usable; use
// Start.
type Process struct {
	cmd   *exec.Cmd
	label string

	mu       sync.Mutex
	exited   bool
	exitCode int
	waitErr  error

	doneCh chan struct{}
}

// Start re-execs the running binary (os.Executable()) with subcommand and
// args prepended as its argv, so the child dispatches to the same
// binary's hidden kitchen-child entrypoint. label is used only for error
// context.
func Start(label, subcommand string, args []string) (*Process, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, plazza.WrapError("procsup.Start", plazza.ErrCodeFork, err)
	}

	fullArgs := append([]string{subcommand}, args...)
	cmd := exec.Command(self, fullArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return start(cmd, label)
}

// start wraps an already-configured, not-yet-started *exec.Cmd. Split out
// from Start so tests can supervise an arbitrary command (e.g. /bin/sh)
// without going through the re-exec/os.Executable path.
func start(cmd *exec.Cmd, label string) (*Process, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, plazza.WrapError("procsup.Start", plazza.ErrCodeFork, err)
	}

	p := &Process{cmd: cmd, label: label, doneCh: make(chan struct{})}
	go p.wait()
	return p, nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exited = true
	p.waitErr = err
	if exitErr, ok := err.(*exec.ExitError); ok {
		p.exitCode = exitErr.ExitCode()
	} else if err == nil {
		p.exitCode = int(ExitSuccess)
	} else {
		p.exitCode = int(ExitOtherFailure)
	}
	p.mu.Unlock()

	close(p.doneCh)
}

// Pid returns the child's process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// IsRunning polls whether the child has exited yet, the Go equivalent of
// spec.md §4.7's waitpid(WNOHANG).
func (p *Process) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.exited
}

// ExitCode returns the child's exit code once it has exited, and ok=false
// while it is still running.
func (p *Process) ExitCode() (code int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.exited
}

// Wait blocks until the child exits or ctx is canceled.
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-p.doneCh:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.waitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Terminate sends SIGTERM and waits up to constants.TerminateGrace for
// the child to exit on its own; if it hasn't, it escalates to SIGKILL and
// waits for the reap to complete. Safe to call on an already-exited
// process. Any failure at either stage is accumulated rather than
// short-circuited, since a SIGTERM failing (process already gone) doesn't
// mean the eventual SIGKILL/wait outcome isn't worth reporting too.
func (p *Process) Terminate() error {
	if !p.IsRunning() {
		return nil
	}

	var result *multierror.Error

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: sigterm: %w", p.label, err))
	}

	select {
	case <-p.doneCh:
		return result.ErrorOrNil()
	case <-time.After(constants.TerminateGrace):
	}

	if p.IsRunning() {
		if err := p.cmd.Process.Kill(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: sigkill: %w", p.label, err))
		}
		<-p.doneCh
	}

	return result.ErrorOrNil()
}
