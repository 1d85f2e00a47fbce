// Package ipc implements the inter-process message protocol and its
// framed-FIFO transport: spec.md §4.1 (Framed Channel) and §4.2 (Message).
package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"syscall"

	"github.com/containerd/fifo"
)

// ReadWriter is what Reception and Kitchen actually depend on, so tests can
// swap in an in-memory fake instead of a real named FIFO. *Channel
// satisfies it.
type ReadWriter interface {
	Write(Message) error
	Read() (Message, bool, error)
	Close() error
}

var _ ReadWriter = (*Channel)(nil)

// frameHeaderLen is the 4-byte length prefix described in spec.md §4.1.
const frameHeaderLen = 4

// pollReadSize is how many bytes Channel.Read asks the underlying FIFO for
// on every call, per spec.md §4.1 step 1 ("Read up to 4096 bytes").
const pollReadSize = 4096

// ErrClosed is returned by Read/Write once the channel has observed the far
// end close (EOF on read) or an unrecoverable write error (EPIPE).
var ErrClosed = errors.New("ipc: channel closed")

// chunk is one delivery from the pump goroutine: either bytes read off the
// FIFO, or the terminal error that ended the pump loop.
type chunk struct {
	data []byte
	err  error
}

// Channel is a length-prefixed message transport over a named FIFO,
// wrapping github.com/containerd/fifo for the open/create-if-absent
// semantics. One Channel is built around one direction of traffic: a
// Kitchen holds two (its order pipe to read, the shared pipe to write),
// and the Reception holds the shared pipe's read end plus one order-pipe
// write end per kitchen.
//
// containerd/fifo always hands back a blocking *os.File — it strips
// O_NONBLOCK from the open flags rather than honoring it — so Channel
// cannot poll the fd directly without parking the caller's goroutine.
// Instead a dedicated pump goroutine runs the blocking Read loop and
// forwards what it gets onto an internal channel; Channel.Read only ever
// does a non-blocking select against that channel, so it never blocks its
// caller (spec.md §5, "Framed-channel reader: never blocks").
type Channel struct {
	path string
	f    io.ReadWriteCloser

	chunks  chan chunk
	stopCh  chan struct{}
	stopped sync.Once

	mu     sync.Mutex
	acc    []byte // bytes read but not yet decoded into a Message
	closed bool
}

// Open opens (creating it if absent) the named FIFO at path with the given
// flags, e.g. syscall.O_RDONLY or syscall.O_WRONLY, both ORed with
// syscall.O_CREAT by this call, and starts the pump goroutine that keeps
// Read non-blocking.
func Open(ctx context.Context, path string, flags int) (*Channel, error) {
	f, err := fifo.OpenFifo(ctx, path, flags|syscall.O_CREAT, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ipc: open fifo %s: %w", path, err)
	}
	c := &Channel{
		path:   path,
		f:      f,
		chunks: make(chan chunk, 64),
		stopCh: make(chan struct{}),
	}
	go c.pump()
	return c, nil
}

// pump runs the blocking read loop against the underlying FIFO in its own
// goroutine, forwarding each chunk of bytes (or the terminal error) onto
// c.chunks. It exits either when the FIFO read returns a non-retryable
// error, or when Close signals stopCh.
func (c *Channel) pump() {
	for {
		buf := getBuffer(pollReadSize)
		n, err := c.f.Read(buf)
		var data []byte
		if n > 0 {
			data = append([]byte(nil), buf[:n]...)
		}
		putBuffer(buf)

		if n > 0 {
			select {
			case c.chunks <- chunk{data: data}:
			case <-c.stopCh:
				return
			}
		}

		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			select {
			case c.chunks <- chunk{err: err}:
			case <-c.stopCh:
			}
			return
		}
	}
}

// Path returns the filesystem path of the underlying FIFO.
func (c *Channel) Path() string { return c.path }

// Close releases the underlying FIFO and stops the pump goroutine. Safe to
// call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stopped.Do(func() { close(c.stopCh) })
	return c.f.Close()
}

// Write sends m as one frame: a 4-byte native-endian length prefix followed
// by its packed payload, retrying the underlying write on EINTR until the
// whole frame is drained. Per spec.md §4.1, a write that hits EPIPE marks
// the channel closed and returns ErrClosed to every subsequent caller.
func (c *Channel) Write(m Message) error {
	payload := m.Pack()

	frame := make([]byte, frameHeaderLen+len(payload))
	wireOrder.PutUint32(frame[:frameHeaderLen], uint32(len(payload)))
	copy(frame[frameHeaderLen:], payload)

	if err := c.writeAll(frame); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			return ErrClosed
		}
		return fmt.Errorf("ipc: write %s: %w", c.path, err)
	}
	return nil
}

// writeAll drains buf into the underlying FIFO, retrying short writes and
// EINTR, the way the teacher's syscall loops retry on partial progress.
func (c *Channel) writeAll(buf []byte) error {
	for len(buf) > 0 {
		n, err := c.f.Write(buf)
		if n > 0 {
			buf = buf[n:]
		}
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return err
		}
	}
	return nil
}

// Read is poll-style: it returns at most one decoded Message per call, and
// ok is false whenever there isn't a complete frame ready yet (not an
// error). It never blocks — it only drains whatever the pump goroutine has
// already forwarded onto c.chunks — so callers can call it every tick of a
// select loop without risking the loop (spec.md §5, "Framed-channel
// reader: never blocks"). Callers poll Read from their own tick loops
// (the kitchen's and the reception's).
//
// Read:
//  1. Tries to decode a message already sitting in the accumulator.
//  2. Otherwise drains every chunk currently buffered on c.chunks (a
//     non-blocking select), appending their bytes to the accumulator.
//  3. Decodes at most one frame from the accumulator. A decode failure
//     discards the frame and returns "no message" rather than an error, so
//     one corrupt frame can't wedge the channel.
//
// The pump goroutine observing the far end close is delivered as a chunk
// carrying that error; Read surfaces it as ErrClosed.
func (c *Channel) Read() (Message, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Message{}, false, ErrClosed
	}

	if msg, ok, err := c.decodeOne(); ok || err != nil {
		return msg, ok, err
	}

	for {
		select {
		case ch := <-c.chunks:
			if ch.err != nil {
				c.closed = true
				if errors.Is(ch.err, io.EOF) {
					return Message{}, false, ErrClosed
				}
				return Message{}, false, fmt.Errorf("ipc: read %s: %w", c.path, ch.err)
			}
			c.acc = append(c.acc, ch.data...)
		default:
			return c.decodeOne()
		}
	}
}

// decodeOne extracts and decodes exactly one frame from c.acc if a full
// one is present. Caller holds c.mu.
func (c *Channel) decodeOne() (Message, bool, error) {
	if len(c.acc) < frameHeaderLen {
		return Message{}, false, nil
	}
	frameLen := int(wireOrder.Uint32(c.acc[:frameHeaderLen]))
	if len(c.acc) < frameHeaderLen+frameLen {
		return Message{}, false, nil
	}

	payload := c.acc[frameHeaderLen : frameHeaderLen+frameLen]
	rest := c.acc[frameHeaderLen+frameLen:]
	c.acc = append([]byte(nil), rest...)

	msg, err := Unpack(payload)
	if err != nil {
		return Message{}, false, nil
	}
	return msg, true, nil
}
