// Package ipc implements the inter-process message protocol and its
// framed-FIFO transport: spec.md §4.1 (Framed Channel) and §4.2 (Message).
package ipc

import (
	"encoding/binary"
	"fmt"
)

// Tag identifies which of the five Message variants a payload decodes as.
// Values are part of the wire protocol and must not be renumbered.
type Tag uint8

const (
	TagClosed Tag = iota
	TagOrder
	TagStatus
	TagRequestStatus
	TagCookedPizza
)

func (t Tag) String() string {
	switch t {
	case TagClosed:
		return "Closed"
	case TagOrder:
		return "Order"
	case TagStatus:
		return "Status"
	case TagRequestStatus:
		return "RequestStatus"
	case TagCookedPizza:
		return "CookedPizza"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Message is a tagged union of the five control/data messages exchanged
// between Reception and Kitchen over a Channel. Only the fields relevant
// to Tag are meaningful; Pack/Unpack only look at those fields.
type Message struct {
	Tag Tag

	KitchenID uint64 // Closed, Order, Status, CookedPizza

	PackedPizza uint16 // Order, CookedPizza

	// Status fields
	StockString       string
	ElapsedIdleMs     int64
	IdleCookCount     uint64
	QueuedCount       uint64
	QueuedCookTimeMs  int64
}

// NewClosed builds a Closed message.
func NewClosed(kitchenID uint64) Message {
	return Message{Tag: TagClosed, KitchenID: kitchenID}
}

// NewOrder builds an Order message.
func NewOrder(kitchenID uint64, packedPizza uint16) Message {
	return Message{Tag: TagOrder, KitchenID: kitchenID, PackedPizza: packedPizza}
}

// NewStatus builds a Status message using the richer six-field form named
// by spec.md §9's open question ("two serialisation schemes... the richer
// six-field form is specified here").
func NewStatus(kitchenID uint64, stockString string, elapsedIdleMs int64, idleCount, queuedCount uint64, queuedCookTimeMs int64) Message {
	return Message{
		Tag:              TagStatus,
		KitchenID:        kitchenID,
		StockString:      stockString,
		ElapsedIdleMs:    elapsedIdleMs,
		IdleCookCount:    idleCount,
		QueuedCount:      queuedCount,
		QueuedCookTimeMs: queuedCookTimeMs,
	}
}

// NewRequestStatus builds a RequestStatus message.
func NewRequestStatus() Message {
	return Message{Tag: TagRequestStatus}
}

// NewCookedPizza builds a CookedPizza message.
func NewCookedPizza(kitchenID uint64, packedPizza uint16) Message {
	return Message{Tag: TagCookedPizza, KitchenID: kitchenID, PackedPizza: packedPizza}
}

// wireOrder is the host's native byte order, matching spec.md §4.1: "All multi-byte integers use the
// host's native endianness (producer and consumer are on the same
// machine)."
var wireOrder = binary.NativeEndian

// Pack serializes m into the inner payload bytes (tag + variant fields).
// The outer frame length prefix is added by Channel.Write, not here.
func (m Message) Pack() []byte {
	switch m.Tag {
	case TagClosed:
		buf := make([]byte, 1+8)
		buf[0] = byte(TagClosed)
		wireOrder.PutUint64(buf[1:9], m.KitchenID)
		return buf

	case TagOrder:
		buf := make([]byte, 1+8+2)
		buf[0] = byte(TagOrder)
		wireOrder.PutUint64(buf[1:9], m.KitchenID)
		wireOrder.PutUint16(buf[9:11], m.PackedPizza)
		return buf

	case TagStatus:
		strBytes := []byte(m.StockString)
		buf := make([]byte, 1+8+4+len(strBytes)+8+8+8+8)
		off := 0
		buf[off] = byte(TagStatus)
		off++
		wireOrder.PutUint64(buf[off:off+8], m.KitchenID)
		off += 8
		wireOrder.PutUint32(buf[off:off+4], uint32(len(strBytes)))
		off += 4
		copy(buf[off:off+len(strBytes)], strBytes)
		off += len(strBytes)
		wireOrder.PutUint64(buf[off:off+8], uint64(m.ElapsedIdleMs))
		off += 8
		wireOrder.PutUint64(buf[off:off+8], m.IdleCookCount)
		off += 8
		wireOrder.PutUint64(buf[off:off+8], m.QueuedCount)
		off += 8
		wireOrder.PutUint64(buf[off:off+8], uint64(m.QueuedCookTimeMs))
		off += 8
		return buf[:off]

	case TagRequestStatus:
		return []byte{byte(TagRequestStatus)}

	case TagCookedPizza:
		buf := make([]byte, 1+8+2)
		buf[0] = byte(TagCookedPizza)
		wireOrder.PutUint64(buf[1:9], m.KitchenID)
		wireOrder.PutUint16(buf[9:11], m.PackedPizza)
		return buf

	default:
		panic(fmt.Sprintf("ipc: Pack: unknown tag %d", m.Tag))
	}
}

// errShortFrame is returned internally when a payload doesn't carry enough
// bytes for its declared tag, and also when a fixed-size variant (Closed,
// Order, CookedPizza) carries any other byte count, extra bytes included;
// errTrailingBytes is used only for Status and RequestStatus. Channel.Read
// treats every decode error as "discard and
// return no message" per spec.md §4.1 step 4.
var errShortFrame = fmt.Errorf("ipc: frame too short for its tag")
var errTrailingBytes = fmt.Errorf("ipc: frame has bytes past its declared fields")
var errUnknownTag = fmt.Errorf("ipc: unknown message tag")

// Unpack decodes a payload (the bytes after the frame's length prefix has
// already been consumed) into a Message. It rejects any frame whose
// post-tag cursor does not reach exactly the end of payload, per spec.md
// §4.2.
func Unpack(payload []byte) (Message, error) {
	if len(payload) < 1 {
		return Message{}, errShortFrame
	}
	tag := Tag(payload[0])
	rest := payload[1:]

	switch tag {
	case TagClosed:
		if len(rest) != 8 {
			return Message{}, errShortFrame
		}
		return NewClosed(wireOrder.Uint64(rest)), nil

	case TagOrder:
		if len(rest) != 8+2 {
			return Message{}, errShortFrame
		}
		id := wireOrder.Uint64(rest[0:8])
		pizza := wireOrder.Uint16(rest[8:10])
		return NewOrder(id, pizza), nil

	case TagStatus:
		if len(rest) < 8+4 {
			return Message{}, errShortFrame
		}
		id := wireOrder.Uint64(rest[0:8])
		strLen := wireOrder.Uint32(rest[8:12])
		off := 12
		if uint32(len(rest)-off) < strLen {
			return Message{}, errShortFrame
		}
		str := string(rest[off : off+int(strLen)])
		off += int(strLen)
		if len(rest)-off != 8+8+8+8 {
			return Message{}, errTrailingBytes
		}
		elapsed := int64(wireOrder.Uint64(rest[off : off+8]))
		off += 8
		idle := wireOrder.Uint64(rest[off : off+8])
		off += 8
		queued := wireOrder.Uint64(rest[off : off+8])
		off += 8
		queuedTime := int64(wireOrder.Uint64(rest[off : off+8]))
		return NewStatus(id, str, elapsed, idle, queued, queuedTime), nil

	case TagRequestStatus:
		if len(rest) != 0 {
			return Message{}, errTrailingBytes
		}
		return NewRequestStatus(), nil

	case TagCookedPizza:
		if len(rest) != 8+2 {
			return Message{}, errShortFrame
		}
		id := wireOrder.Uint64(rest[0:8])
		pizza := wireOrder.Uint16(rest[8:10])
		return NewCookedPizza(id, pizza), nil

	default:
		return Message{}, errUnknownTag
	}
}
