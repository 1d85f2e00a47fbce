package kitchen

import (
	"context"
	"testing"
	"time"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/ipc"
	"github.com/kcoder/plazza/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlazzaConfig() plazza.Config {
	return plazza.Config{Multiplier: 0.01, CooksPerKitchen: 2, RestockPeriod: time.Hour}
}

func newTestKitchen(t *testing.T, id uint64, cfg plazza.Config) (*Kitchen, ipc.ReadWriter, ipc.ReadWriter) {
	t.Helper()
	orderInTheirs, orderInOurs := plazza.NewFakePair()
	toReceptionOurs, toReceptionTheirs := plazza.NewFakePair()

	k := New(Config{
		ID:          id,
		PlazzaCf:    cfg,
		OrderIn:     orderInTheirs,
		ToReception: toReceptionOurs,
		Logger:      logging.NewLogger(&logging.Config{Level: logging.LevelError}),
	})
	return k, orderInOurs, toReceptionTheirs
}

func readStatusEventually(t *testing.T, from ipc.ReadWriter, timeout time.Duration) ipc.Message {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		msg, ok, err := from.Read()
		require.NoError(t, err)
		if ok {
			return msg
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for a message")
	return ipc.Message{}
}

func TestKitchenCooksDispatchedOrder(t *testing.T) {
	k, orderIn, toReception := newTestKitchen(t, 1, testPlazzaConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	pizza := plazza.Pizza{Type: plazza.Margarita, Size: plazza.SizeS}
	require.NoError(t, orderIn.Write(ipc.NewOrder(1, pizza.Pack())))

	var cooked ipc.Message
	require.Eventually(t, func() bool {
		msg, ok, err := toReception.Read()
		if err != nil || !ok {
			return false
		}
		if msg.Tag == ipc.TagCookedPizza {
			cooked = msg
			return true
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, pizza.Pack(), cooked.PackedPizza)
	assert.EqualValues(t, 1, cooked.KitchenID)
}

func TestKitchenEmitsStatusOnRequestStatus(t *testing.T) {
	k, orderIn, toReception := newTestKitchen(t, 2, testPlazzaConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, orderIn.Write(ipc.NewRequestStatus()))

	msg := readStatusEventually(t, toReception, time.Second)
	require.Equal(t, ipc.TagStatus, msg.Tag)
	assert.EqualValues(t, 2, msg.KitchenID)
	assert.Equal(t, "5 5 5 5 5 5 5 5 5", msg.StockString)
	assert.EqualValues(t, 2, msg.IdleCookCount)
	assert.EqualValues(t, 0, msg.QueuedCount)
}

func TestKitchenShutsDownOnClosedMessage(t *testing.T) {
	k, orderIn, _ := newTestKitchen(t, 3, testPlazzaConfig())

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	require.NoError(t, orderIn.Write(ipc.NewClosed(3)))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("kitchen did not shut down after receiving Closed")
	}
}

func TestKitchenIdleClosureEmitsClosedAfterTimeout(t *testing.T) {
	k, _, toReception := newTestKitchen(t, 4, testPlazzaConfig())
	k.idleSinceNs.Store(time.Now().Add(-6 * time.Second).UnixNano())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()
	defer cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("kitchen did not self-close once past the idle timeout")
	}

	var sawClosed bool
	for {
		msg, ok, err := toReception.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		if msg.Tag == ipc.TagClosed {
			sawClosed = true
			assert.EqualValues(t, 4, msg.KitchenID)
		}
	}
	assert.True(t, sawClosed, "expected a Closed message once idle timeout elapsed")
}

func TestKitchenRequestShutdownStopsCleanly(t *testing.T) {
	k, _, _ := newTestKitchen(t, 5, testPlazzaConfig())

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	k.RequestShutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("kitchen did not stop after RequestShutdown")
	}
	k.RequestShutdown() // idempotent
}
