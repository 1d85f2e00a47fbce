package procsup

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRunsToCompletion(t *testing.T) {
	p, err := start(exec.Command("sh", "-c", "exit 0"), "test")
	require.NoError(t, err)

	require.NoError(t, p.Wait(context.Background()))
	assert.False(t, p.IsRunning())

	code, ok := p.ExitCode()
	require.True(t, ok)
	assert.Equal(t, 0, code)
}

func TestProcessNonZeroExitCode(t *testing.T) {
	p, err := start(exec.Command("sh", "-c", "exit 7"), "test")
	require.NoError(t, err)

	_ = p.Wait(context.Background())
	code, ok := p.ExitCode()
	require.True(t, ok)
	assert.Equal(t, 7, code)
}

func TestIsRunningWhileChildSleeps(t *testing.T) {
	p, err := start(exec.Command("sleep", "5"), "test")
	require.NoError(t, err)
	defer p.Terminate()

	assert.True(t, p.IsRunning())
	_, ok := p.ExitCode()
	assert.False(t, ok, "exit code is not available until the process exits")
}

func TestTerminateSIGTERMExitsPromptly(t *testing.T) {
	// sleep installs no SIGTERM handler, so SIGTERM kills it immediately
	// without needing the SIGKILL escalation.
	p, err := start(exec.Command("sleep", "30"), "test")
	require.NoError(t, err)

	start := time.Now()
	err = p.Terminate()
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.False(t, p.IsRunning())
	assert.Less(t, elapsed, time.Second, "a SIGTERM-responsive child should not need the grace period")
}

func TestTerminateEscalatesToSIGKILLWhenChildIgnoresSIGTERM(t *testing.T) {
	// trap SIGTERM and ignore it, forcing procsup to escalate to SIGKILL
	// after constants.TerminateGrace.
	p, err := start(exec.Command("sh", "-c", "trap '' TERM; sleep 30"), "test")
	require.NoError(t, err)

	start := time.Now()
	err = p.Terminate()
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.False(t, p.IsRunning())
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should have waited out the grace period before escalating")
}

func TestTerminateOnAlreadyExitedProcessIsNoOp(t *testing.T) {
	p, err := start(exec.Command("sh", "-c", "exit 0"), "test")
	require.NoError(t, err)
	require.NoError(t, p.Wait(context.Background()))

	assert.NoError(t, p.Terminate())
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	p, err := start(exec.Command("sleep", "30"), "test")
	require.NoError(t, err)
	defer p.Terminate()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
