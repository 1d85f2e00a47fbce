package plazza

import (
	"sync"

	"github.com/kcoder/plazza/internal/ipc"
)

// fakeEnd is one side of an in-memory ipc.ReadWriter pair, used by
// reception and kitchen unit tests that want deterministic message
// exchange without spinning up real named FIFOs. internal/ipc's own
// tests cover the real Channel's framing over a real FIFO; this fake
// skips straight to message-level semantics.
type fakeEnd struct {
	mu     sync.Mutex
	peer   *fakeEnd
	inbox  []ipc.Message
	closed bool
}

func (e *fakeEnd) Write(m ipc.Message) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ipc.ErrClosed
	}
	e.peer.mu.Lock()
	defer e.peer.mu.Unlock()
	e.peer.inbox = append(e.peer.inbox, m)
	return nil
}

// Read pops the oldest undelivered message, matching Channel.Read's "at
// most one message, ok=false means nothing ready yet" contract.
func (e *fakeEnd) Read() (ipc.Message, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.inbox) == 0 {
		if e.closed {
			return ipc.Message{}, false, ipc.ErrClosed
		}
		return ipc.Message{}, false, nil
	}
	m := e.inbox[0]
	e.inbox = e.inbox[1:]
	return m, true, nil
}

func (e *fakeEnd) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// NewFakePair returns two connected ReadWriters: a.Write is visible to
// b.Read and vice versa, as if joined by one named FIFO in each direction.
func NewFakePair() (a, b ipc.ReadWriter) {
	ea := &fakeEnd{}
	eb := &fakeEnd{}
	ea.peer = eb
	eb.peer = ea
	return ea, eb
}

var _ ipc.ReadWriter = (*fakeEnd)(nil)
